package handler

import (
	"context"

	"sdr_backend/internal/followups/service"
	"sdr_backend/internal/followups/transport"
	leadsdomain "sdr_backend/internal/leads/domain"
	"sdr_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// LeadLookup resolves the :contact path parameter.
type LeadLookup interface {
	GetLeadByContact(ctx context.Context, contact string) (leadsdomain.Lead, error)
}

// Handler handles HTTP requests for follow-ups.
type Handler struct {
	svc   *service.Service
	leads LeadLookup
}

// New creates a new follow-ups handler.
func New(svc *service.Service, leads LeadLookup) *Handler {
	return &Handler{svc: svc, leads: leads}
}

// RegisterRoutes mounts follow-up routes on the /leads group.
func (h *Handler) RegisterRoutes(leads *gin.RouterGroup) {
	leads.GET("/:contact/followups", h.ListByLead)
}

// ListByLead returns a lead's follow-ups in schedule order.
// GET /api/v1/leads/:contact/followups
func (h *Handler) ListByLead(c *gin.Context) {
	ctx := c.Request.Context()
	lead, err := h.leads.GetLeadByContact(ctx, c.Param("contact"))
	if httpkit.HandleError(c, err) {
		return
	}

	items, err := h.svc.GetFollowupsByLead(ctx, lead.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToFollowUpList(items))
}
