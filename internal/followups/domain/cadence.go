package domain

import "time"

// CadenceStep is one entry of the follow-up cadence.
type CadenceStep struct {
	OffsetDays int
	Kind       string
	Message    string
}

// Cadence kinds.
const (
	KindReminder         = "reminder"
	KindOpportunityNudge = "opportunity_nudge"
	KindCallOffer        = "call_offer"
	KindSoftClose        = "soft_close"
)

// DefaultCadence is applied to every new lead, in this order.
var DefaultCadence = []CadenceStep{
	{OffsetDays: 1, Kind: KindReminder, Message: "Olá! Só para confirmar se recebeu minha primeira mensagem e se há algo que eu possa ajudar."},
	{OffsetDays: 3, Kind: KindOpportunityNudge, Message: "Olá! Pensando em nossa conversa, encontrei algumas oportunidades que podem lhe interessar. Gostaria de ver os detalhes?"},
	{OffsetDays: 7, Kind: KindCallOffer, Message: "Olá! Que tal agendarmos uma breve chamada para eu entender melhor suas necessidades e apresentar as melhores opções?"},
	{OffsetDays: 14, Kind: KindSoftClose, Message: "Olá! Não quero incomodar. Continuo à sua disposição para quando quiser retomar a busca pelo seu imóvel ideal. Um abraço!"},
}

// ScheduledFor returns the absolute send time for the step relative to now.
func (s CadenceStep) ScheduledFor(now time.Time) time.Time {
	return now.UTC().Add(time.Duration(s.OffsetDays) * 24 * time.Hour)
}
