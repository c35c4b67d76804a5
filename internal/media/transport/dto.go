package transport

import (
	leadstransport "sdr_backend/internal/leads/transport"
	"sdr_backend/internal/media/service"
)

type AudioResponse struct {
	Message         string                      `json:"message"`
	StoragePath     string                      `json:"storagePath"`
	TranscribedText string                      `json:"transcribedText"`
	UpdatedFields   map[string]any              `json:"updatedFields"`
	Lead            leadstransport.LeadResponse `json:"lead"`
}

type SpeechRequest struct {
	Text string `json:"text" validate:"required,notblank,max=2500"`
}

// ToAudioResponse maps an audio result to its wire form.
func ToAudioResponse(res service.AudioResult) AudioResponse {
	return AudioResponse{
		Message:         "Áudio processado e lead atualizado.",
		StoragePath:     res.StoragePath,
		TranscribedText: res.Transcript,
		UpdatedFields:   res.UpdatedFields,
		Lead:            leadstransport.ToLeadResponse(res.Lead),
	}
}
