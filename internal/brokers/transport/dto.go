package transport

import (
	"time"

	"sdr_backend/internal/brokers/domain"

	"github.com/google/uuid"
)

type BrokerResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	SpecialtyRegion *string   `json:"specialtyRegion"`
	IsDefault       bool      `json:"isDefault"`
	CreatedAt       time.Time `json:"createdAt"`
}

type BrokerListResponse struct {
	Items []BrokerResponse `json:"items"`
}

// ToBrokerResponse maps a broker to its wire form.
func ToBrokerResponse(b domain.Broker) BrokerResponse {
	return BrokerResponse{
		ID:              b.ID,
		Name:            b.Name,
		Email:           b.Email,
		SpecialtyRegion: b.SpecialtyRegion,
		IsDefault:       b.IsDefault,
		CreatedAt:       b.CreatedAt,
	}
}

// ToBrokerList maps brokers to their wire form.
func ToBrokerList(items []domain.Broker) BrokerListResponse {
	out := make([]BrokerResponse, 0, len(items))
	for _, b := range items {
		out = append(out, ToBrokerResponse(b))
	}
	return BrokerListResponse{Items: out}
}
