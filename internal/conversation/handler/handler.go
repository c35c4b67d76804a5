package handler

import (
	"context"
	"net/http"
	"strings"

	"sdr_backend/internal/conversation/service"
	"sdr_backend/internal/conversation/transport"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/httpkit"
	"sdr_backend/platform/logger"
	"sdr_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Deduplicator claims inbound message ids so redeliveries are processed once.
type Deduplicator interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Handler handles inbound conversation webhooks.
type Handler struct {
	svc   *service.Service
	val   *validator.Validator
	dedup Deduplicator
	log   *logger.Logger
}

// New creates a new conversation handler. dedup may be nil.
func New(svc *service.Service, val *validator.Validator, dedup Deduplicator, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{svc: svc, val: val, dedup: dedup, log: log}
}

// Webhook processes one inbound chat message and returns the assistant reply.
// POST /api/v1/conversation/webhook
func (h *Handler) Webhook(c *gin.Context) {
	var req transport.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	ctx := c.Request.Context()
	messageID := strings.TrimSpace(req.MessageID)
	if messageID != "" && h.dedup != nil {
		claimed, err := h.dedup.Claim(ctx, messageID)
		if err != nil {
			// Redis being down must not drop the message.
			h.log.CollaboratorFailure("redis", "claim message id", err)
		} else if !claimed {
			httpkit.JSON(c, http.StatusAccepted, transport.DuplicateResponse{Status: "duplicate"})
			return
		}
	}

	out, err := h.svc.ProcessMessage(ctx, req.PhoneNumber, req.Message)
	if err != nil {
		if messageID != "" && h.dedup != nil {
			if relErr := h.dedup.Release(context.WithoutCancel(ctx), messageID); relErr != nil {
				h.log.CollaboratorFailure("redis", "release message id", relErr)
			}
		}
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.WebhookResponse{Response: out.Reply})
}
