package scheduling

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/middleware"
	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/service/scheduling"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/httputil"
	"github.com/carebook/clinic-api/pkg/metrics"
)

type Handler struct {
	service *scheduling.Service
	metrics *metrics.Metrics
}

func NewHandler(service *scheduling.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

// RegisterPatientRoutes mounts the patient-facing booking flow.
func (h *Handler) RegisterPatientRoutes(r *gin.RouterGroup) {
	r.GET("/slots", h.ListBookableSlots)
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.UpcomingForPatient)
		appointments.DELETE("/:id", h.Cancel)
	}
	r.GET("/history", h.History)
}

// RegisterClinicianRoutes mounts the clinician-facing schedule management.
func (h *Handler) RegisterClinicianRoutes(r *gin.RouterGroup) {
	availability := r.Group("/availability")
	{
		availability.PUT("", h.SetAvailability)
		availability.GET("", h.ListAvailability)
	}
	r.GET("/schedule", h.UpcomingForClinician)
	r.POST("/appointments/:id/complete", h.Complete)
	r.GET("/patients/:id/history", h.HistoryForPatient)
}

// RegisterAdminRoutes mounts the administrator overrides.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.DELETE("/appointments/:id", h.Cancel)
	r.GET("/patients/:id/history", h.HistoryForPatient)
}

func (h *Handler) ListBookableSlots(c *gin.Context) {
	var specializationID *uuid.UUID
	if raw := c.Query("specialization_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid specialization id"))
			return
		}
		specializationID = &id
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 31 {
			httputil.RespondWithError(c, apperrors.Validation("days must be between 1 and 31"))
			return
		}
		days = n
	}

	result, err := h.service.ListBookableSlots(c.Request.Context(), specializationID, days)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.SlotListings.Inc()
	offered := 0
	for _, cs := range result {
		for _, day := range cs.Days {
			offered += len(day.Slots)
		}
	}
	h.metrics.SlotsOffered.Observe(float64(offered))

	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) Book(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	start := time.Now()
	appointment, err := h.service.Book(c.Request.Context(), actor, &req)
	h.metrics.BookingLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if apperrors.Is(err, apperrors.ErrConflict) {
			outcome = "conflict"
		} else if apperrors.Is(err, apperrors.ErrValidation) {
			outcome = "rejected"
		}
		h.metrics.BookingsTotal.WithLabelValues(outcome).Inc()
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.BookingsTotal.WithLabelValues("booked").Inc()
	httputil.RespondWithCreated(c, appointment)
}

func (h *Handler) Cancel(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment id"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), actor, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.metrics.Cancellations.Inc()
	httputil.RespondWithSuccess(c, gin.H{"cancelled": true})
}

func (h *Handler) Complete(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment id"))
		return
	}

	var req model.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	record, err := h.service.Complete(c.Request.Context(), actor, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.metrics.Completions.Inc()
	httputil.RespondWithSuccess(c, record)
}

func (h *Handler) SetAvailability(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	var req model.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	window, err := h.service.SetAvailability(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, window)
}

func (h *Handler) ListAvailability(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	windows, err := h.service.ListAvailability(c.Request.Context(), actor, 0)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, windows)
}

func (h *Handler) UpcomingForClinician(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	appointments, err := h.service.UpcomingForClinician(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpcomingForPatient(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	appointments, err := h.service.UpcomingForPatient(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) History(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	history, err := h.service.History(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}

func (h *Handler) HistoryForPatient(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid patient id"))
		return
	}

	history, err := h.service.HistoryForPatient(c.Request.Context(), actor, patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}
