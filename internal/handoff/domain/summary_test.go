package domain

import (
	"strings"
	"testing"
	"time"

	brokers "sdr_backend/internal/brokers/domain"
	leads "sdr_backend/internal/leads/domain"
)

func TestBuildSummary(t *testing.T) {
	location := "Itapema"
	bedrooms := 3
	lead := leads.Lead{Contact: "+5547999887766", Location: &location, Bedrooms: &bedrooms}
	broker := brokers.Broker{Name: "Marcos Andrade", Email: "marcos.andrade@auroraprime.com"}
	at := time.Date(2026, 3, 9, 14, 5, 0, 0, time.UTC)

	got := BuildSummary(lead, broker, at)

	for _, want := range []string{
		"--- NOVO LEAD QUALIFICADO PARA HANDOFF ---",
		"Corretor Designado: Marcos Andrade (marcos.andrade@auroraprime.com)",
		"- Telefone: +5547999887766",
		"- Região de Interesse: Itapema",
		"- Quartos: 3",
		"- Vagas: Não informado",
		"Atribuído em: 09/03/2026 14:05",
		"--- FIM DO RESUMO ---",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\n%s", want, got)
		}
	}
}
