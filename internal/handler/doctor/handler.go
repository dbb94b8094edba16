package doctor

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/handler"
	"github.com/medisched/medisched-api/internal/middleware"
	"github.com/medisched/medisched-api/internal/model"
)

type DoctorService interface {
	List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
	UpdateConsultationLocations(ctx context.Context, id uuid.UUID, locations []string) (*model.Doctor, error)
}

type Handler struct {
	service DoctorService
}

func NewHandler(service DoctorService) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes exposes the doctor directory.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	doctors := rg.Group("/doctors")
	{
		doctors.GET("", h.List)
		doctors.GET("/:id", h.GetProfile)
	}
}

// RegisterDoctorRoutes exposes the doctor self-service endpoints. The caller
// must gate the group with authentication and the doctor kind check.
func (h *Handler) RegisterDoctorRoutes(rg *gin.RouterGroup) {
	rg.PUT("/doctors/update-locations", h.UpdateLocations)
}

func (h *Handler) List(c *gin.Context) {
	var filters model.DoctorFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctors, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) UpdateLocations(c *gin.Context) {
	doctorID, ok := middleware.PrincipalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing principal"))
		return
	}

	var req model.UpdateLocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctor, err := h.service.UpdateConsultationLocations(c.Request.Context(), doctorID, req.ConsultationLocations)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}
