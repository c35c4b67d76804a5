package transport

import (
	brokerstransport "sdr_backend/internal/brokers/transport"
	"sdr_backend/internal/handoff/service"
	leadstransport "sdr_backend/internal/leads/transport"
)

type HandoffResponse struct {
	Lead               leadstransport.LeadResponse     `json:"lead"`
	Broker             brokerstransport.BrokerResponse `json:"broker"`
	Summary            string                          `json:"summary"`
	CancelledFollowUps int                             `json:"cancelledFollowUps"`
}

// ToHandoffResponse maps a handoff result to its wire form.
func ToHandoffResponse(res service.Result) HandoffResponse {
	return HandoffResponse{
		Lead:               leadstransport.ToLeadResponse(res.Lead),
		Broker:             brokerstransport.ToBrokerResponse(res.Broker),
		Summary:            res.Summary,
		CancelledFollowUps: res.CancelledFollowUps,
	}
}
