package transport

import (
	"time"

	"sdr_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	Contact string `json:"contact" validate:"required,notblank,max=64"`
}

// UpdateLeadRequest is a partial update. Omitted keys are untouched and
// explicit nulls clear the stored value.
type UpdateLeadRequest struct {
	Location        domain.Patch[string] `json:"location"`
	PropertyType    domain.Patch[string] `json:"propertyType"`
	Bedrooms        domain.Patch[int]    `json:"bedrooms"`
	ParkingSpots    domain.Patch[int]    `json:"parkingSpots"`
	MinAreaSqm      domain.Patch[int]    `json:"minAreaSqm"`
	InvestmentRange domain.Patch[string] `json:"investmentRange"`
	MoveInDeadline  domain.Patch[string] `json:"moveInDeadline"`
	PaymentMethod   domain.Patch[string] `json:"paymentMethod"`
	Status          domain.Patch[string] `json:"status"`
	IntentLevel     domain.Patch[string] `json:"intentLevel"`
}

// ToDomain converts the request into a domain update.
func (r UpdateLeadRequest) ToDomain() domain.LeadUpdate {
	return domain.LeadUpdate{
		Location:        r.Location,
		PropertyType:    r.PropertyType,
		Bedrooms:        r.Bedrooms,
		ParkingSpots:    r.ParkingSpots,
		MinAreaSqm:      r.MinAreaSqm,
		InvestmentRange: r.InvestmentRange,
		MoveInDeadline:  r.MoveInDeadline,
		PaymentMethod:   r.PaymentMethod,
		Status:          r.Status,
		IntentLevel:     r.IntentLevel,
	}
}

// Response DTOs

type LeadResponse struct {
	ID              uuid.UUID  `json:"id"`
	Contact         string     `json:"contact"`
	Location        *string    `json:"location"`
	PropertyType    *string    `json:"propertyType"`
	Bedrooms        *int       `json:"bedrooms"`
	ParkingSpots    *int       `json:"parkingSpots"`
	MinAreaSqm      *int       `json:"minAreaSqm"`
	InvestmentRange *string    `json:"investmentRange"`
	MoveInDeadline  *string    `json:"moveInDeadline"`
	PaymentMethod   *string    `json:"paymentMethod"`
	Status          string     `json:"status"`
	IntentLevel     *string    `json:"intentLevel"`
	BrokerID        *uuid.UUID `json:"brokerId"`
	HandoffAt       *time.Time `json:"handoffAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateLeadResponse struct {
	Lead    LeadResponse `json:"lead"`
	Created bool         `json:"created"`
}

// ToLeadResponse maps a domain lead to its wire form.
func ToLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:              lead.ID,
		Contact:         lead.Contact,
		Location:        lead.Location,
		PropertyType:    lead.PropertyType,
		Bedrooms:        lead.Bedrooms,
		ParkingSpots:    lead.ParkingSpots,
		MinAreaSqm:      lead.MinAreaSqm,
		InvestmentRange: lead.InvestmentRange,
		MoveInDeadline:  lead.MoveInDeadline,
		PaymentMethod:   lead.PaymentMethod,
		Status:          lead.Status,
		IntentLevel:     lead.IntentLevel,
		BrokerID:        lead.BrokerID,
		HandoffAt:       lead.HandoffAt,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}
