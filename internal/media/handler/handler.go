package handler

import (
	"net/http"

	"sdr_backend/internal/media/service"
	"sdr_backend/internal/media/transport"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/httpkit"
	"sdr_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	audioFormField      = "audio_file"
	mimeMPEG            = "audio/mpeg"
)

// Handler handles HTTP requests for lead media.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new media handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// UploadAudio transcribes a lead's voice message and applies extracted fields.
// POST /api/v1/leads/:contact/audio
func (h *Handler) UploadAudio(c *gin.Context) {
	fh, err := c.FormFile(audioFormField)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "audio_file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer func() { _ = f.Close() }()

	res, err := h.svc.ProcessAudio(c.Request.Context(), c.Param("contact"), service.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAudioResponse(res))
}

// FollowUpAudio renders a follow-up message as speech.
// GET /api/v1/followups/:id/audio
func (h *Handler) FollowUpAudio(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid follow-up id")
		return
	}

	audio, err := h.svc.SynthesizeFollowUp(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, mimeMPEG, audio)
}

// Speech renders arbitrary text as speech.
// POST /api/v1/tts/generate
func (h *Handler) Speech(c *gin.Context) {
	var req transport.SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	audio, err := h.svc.SynthesizeText(c.Request.Context(), req.Text)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, mimeMPEG, audio)
}
