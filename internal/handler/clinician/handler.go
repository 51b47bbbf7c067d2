package clinician

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/service/clinician"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/httputil"
)

type Handler struct {
	service *clinician.Service
}

func NewHandler(service *clinician.Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts clinician management for administrators.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	clinicians := r.Group("/clinicians")
	{
		clinicians.POST("", h.Create)
		clinicians.GET("", h.List)
		clinicians.GET("/:id", h.Get)
		clinicians.PUT("/:id", h.Update)
		clinicians.PUT("/:id/active", h.SetActive)
		clinicians.DELETE("/:id", h.Deactivate)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateClinicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid clinician id"))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) List(c *gin.Context) {
	var specializationID *uuid.UUID
	if raw := c.Query("specialization_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid specialization id"))
			return
		}
		specializationID = &id
	}

	clinicians, err := h.service.List(c.Request.Context(), specializationID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinicians)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid clinician id"))
		return
	}

	var req model.UpdateClinicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

// SetActive toggles the account blacklist flag.
func (h *Handler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid clinician id"))
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.service.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"active": *req.Active})
}

func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid clinician id"))
		return
	}

	if err := h.service.SetActive(c.Request.Context(), id, false); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deactivated": true})
}
