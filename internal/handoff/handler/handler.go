package handler

import (
	"context"

	"sdr_backend/internal/handoff/service"
	"sdr_backend/internal/handoff/transport"
	leadsdomain "sdr_backend/internal/leads/domain"
	"sdr_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// LeadLookup resolves the :contact path parameter.
type LeadLookup interface {
	GetLeadByContact(ctx context.Context, contact string) (leadsdomain.Lead, error)
}

// Handler handles HTTP requests for handoffs.
type Handler struct {
	svc   *service.Service
	leads LeadLookup
}

// New creates a new handoff handler.
func New(svc *service.Service, leads LeadLookup) *Handler {
	return &Handler{svc: svc, leads: leads}
}

// RegisterRoutes mounts handoff routes on the /leads group.
func (h *Handler) RegisterRoutes(leads *gin.RouterGroup) {
	leads.POST("/:contact/handoff", h.Perform)
}

// Perform hands the lead to a broker.
// POST /api/v1/leads/:contact/handoff
func (h *Handler) Perform(c *gin.Context) {
	ctx := httpkit.ActorContext(c)
	lead, err := h.leads.GetLeadByContact(ctx, c.Param("contact"))
	if httpkit.HandleError(c, err) {
		return
	}

	res, err := h.svc.PerformHandoff(ctx, lead.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToHandoffResponse(res))
}
