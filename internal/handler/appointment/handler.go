package appointment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/handler"
	"github.com/medisched/medisched-api/internal/middleware"
	"github.com/medisched/medisched-api/internal/model"
)

type BookingService interface {
	Book(ctx context.Context, patientID, slotID uuid.UUID) (*model.AppointmentDetail, error)
	Cancel(ctx context.Context, patientID, appointmentID uuid.UUID) error
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error)
}

type Handler struct {
	service BookingService
}

func NewHandler(service BookingService) *Handler {
	return &Handler{service: service}
}

// RegisterPatientRoutes exposes booking operations. The caller must gate the
// group with authentication and the patient kind check.
func (h *Handler) RegisterPatientRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments/book", h.Book)
	rg.PUT("/appointments/:id/cancel", h.Cancel)
	rg.GET("/appointments/patient", h.ListForPatient)
}

// RegisterDoctorRoutes exposes the doctor's schedule view. The caller must
// gate the group with authentication and the doctor kind check.
func (h *Handler) RegisterDoctorRoutes(rg *gin.RouterGroup) {
	rg.GET("/appointments/doctor", h.ListForDoctor)
}

func (h *Handler) Book(c *gin.Context) {
	patientID, ok := middleware.PrincipalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing principal"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	detail, err := h.service.Book(c.Request.Context(), patientID, req.SlotID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(detail))
}

func (h *Handler) Cancel(c *gin.Context) {
	patientID, ok := middleware.PrincipalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing principal"))
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), patientID, appointmentID); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"canceled": true}))
}

func (h *Handler) ListForPatient(c *gin.Context) {
	patientID, ok := middleware.PrincipalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing principal"))
		return
	}

	details, err := h.service.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(details))
}

func (h *Handler) ListForDoctor(c *gin.Context) {
	doctorID, ok := middleware.PrincipalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing principal"))
		return
	}

	details, err := h.service.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(details))
}
