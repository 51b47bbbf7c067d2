package specialization

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/service/specialization"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/httputil"
)

type Handler struct {
	service *specialization.Service
}

func NewHandler(service *specialization.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read endpoints available to any authenticated
// user.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	specs := r.Group("/specializations")
	{
		specs.GET("", h.List)
		specs.GET("/:id", h.Get)
	}
}

// RegisterAdminRoutes mounts the catalog write endpoints.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/specializations", h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateSpecializationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	spec, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, spec)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid specialization id"))
		return
	}

	spec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, spec)
}

func (h *Handler) List(c *gin.Context) {
	specs, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, specs)
}
