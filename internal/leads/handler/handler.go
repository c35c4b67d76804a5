package handler

import (
	"net/http"

	"sdr_backend/internal/leads/service"
	"sdr_backend/internal/leads/transport"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/httpkit"
	"sdr_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts lead routes on rg (the /leads group).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:contact", h.Get)
	rg.PATCH("/:contact", h.Update)
}

// Create registers a lead, returning the existing one for a known contact.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	result, err := h.svc.CreateLead(c.Request.Context(), req.Contact)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, transport.CreateLeadResponse{
		Lead:    transport.ToLeadResponse(result.Lead),
		Created: result.Created,
	})
}

// Get returns a lead by contact.
// GET /api/v1/leads/:contact
func (h *Handler) Get(c *gin.Context) {
	lead, err := h.svc.GetLeadByContact(c.Request.Context(), c.Param("contact"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// Update applies a partial update to a lead.
// PATCH /api/v1/leads/:contact
func (h *Handler) Update(c *gin.Context) {
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	ctx := httpkit.ActorContext(c)
	lead, err := h.svc.GetLeadByContact(ctx, c.Param("contact"))
	if httpkit.HandleError(c, err) {
		return
	}

	updated, err := h.svc.UpdateLead(ctx, lead.ID, req.ToDomain())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(updated))
}
