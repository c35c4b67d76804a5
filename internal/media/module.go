// Package media provides the lead audio and speech bounded context module.
package media

import (
	apphttp "sdr_backend/internal/http"
	"sdr_backend/internal/media/handler"
	"sdr_backend/internal/media/service"
	"sdr_backend/platform/logger"
	"sdr_backend/platform/validator"
)

// Module is the media bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the media module from its collaborators.
func NewModule(deps service.Deps, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(deps, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "media"
}

// RegisterRoutes mounts media routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/leads/:contact/audio", m.handler.UploadAudio)
	ctx.Protected.GET("/followups/:id/audio", m.handler.FollowUpAudio)
	ctx.Protected.POST("/tts/generate", m.handler.Speech)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
