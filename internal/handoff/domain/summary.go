// Package domain holds the handoff summary and broker routing errors.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	brokers "sdr_backend/internal/brokers/domain"
	leads "sdr_backend/internal/leads/domain"
)

// ErrNoBrokerAvailable is reached via errors.Is when the directory is empty.
var ErrNoBrokerAvailable = errors.New("no broker available")

const (
	summaryTimeLayout = "02/01/2006 15:04"
	notProvided       = "Não informado"
)

// BuildSummary renders the plain-text briefing sent to the assigned broker.
func BuildSummary(lead leads.Lead, broker brokers.Broker, at time.Time) string {
	var b strings.Builder
	b.WriteString("--- NOVO LEAD QUALIFICADO PARA HANDOFF ---\n")
	fmt.Fprintf(&b, "Corretor Designado: %s (%s)\n\n", broker.Name, broker.Email)

	b.WriteString("[Dados do Lead]\n")
	fmt.Fprintf(&b, "- Telefone: %s\n", lead.Contact)
	b.WriteString("- Status: Qualificado para Handoff\n\n")

	b.WriteString("[Preferências]\n")
	fmt.Fprintf(&b, "- Região de Interesse: %s\n", text(lead.Location))
	fmt.Fprintf(&b, "- Tipo de Imóvel: %s\n", text(lead.PropertyType))
	fmt.Fprintf(&b, "- Quartos: %s\n", number(lead.Bedrooms))
	fmt.Fprintf(&b, "- Vagas: %s\n", number(lead.ParkingSpots))
	fmt.Fprintf(&b, "- Área Mínima (m²): %s\n", number(lead.MinAreaSqm))
	fmt.Fprintf(&b, "- Faixa de Investimento: %s\n", text(lead.InvestmentRange))
	fmt.Fprintf(&b, "- Prazo para Mudança: %s\n", text(lead.MoveInDeadline))
	fmt.Fprintf(&b, "- Forma de Pagamento: %s\n", text(lead.PaymentMethod))
	fmt.Fprintf(&b, "- Nível de Intenção: %s\n\n", text(lead.IntentLevel))

	fmt.Fprintf(&b, "Atribuído em: %s\n", at.UTC().Format(summaryTimeLayout))
	b.WriteString("--- FIM DO RESUMO ---\n")
	return b.String()
}

func text(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return notProvided
	}
	return *v
}

func number(v *int) string {
	if v == nil {
		return notProvided
	}
	return strconv.Itoa(*v)
}
