package handler

import (
	"sdr_backend/internal/brokers/service"
	"sdr_backend/internal/brokers/transport"
	"sdr_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the broker directory.
type Handler struct {
	svc *service.Service
}

// New creates a new brokers handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts broker routes on rg (the /brokers group).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}

// List returns all brokers.
// GET /api/v1/brokers
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToBrokerList(items))
}
