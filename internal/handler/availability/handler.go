package availability

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/handler"
	"github.com/medisched/medisched-api/internal/middleware"
	"github.com/medisched/medisched-api/internal/model"
)

type AvailabilityService interface {
	CreateSlot(ctx context.Context, doctorID uuid.UUID, req *model.CreateSlotRequest) (*model.AvailabilitySlot, error)
	ListOpenSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]*model.AvailabilitySlot, error)
}

type Handler struct {
	service AvailabilityService
}

func NewHandler(service AvailabilityService) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes exposes slot listing for patients browsing a doctor.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability/:doctorId", h.ListOpenSlots)
}

// RegisterDoctorRoutes exposes slot publishing. The caller must gate the
// group with authentication and the doctor kind check.
func (h *Handler) RegisterDoctorRoutes(rg *gin.RouterGroup) {
	rg.POST("/availability", h.CreateSlot)
}

func (h *Handler) CreateSlot(c *gin.Context) {
	doctorID, ok := middleware.PrincipalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing principal"))
		return
	}

	var req model.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), doctorID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(slot))
}

func (h *Handler) ListOpenSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	slots, err := h.service.ListOpenSlots(c.Request.Context(), doctorID, c.Query("date"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}
