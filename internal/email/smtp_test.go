package email

import (
	"strings"
	"testing"
)

func TestRenderHandoffIncludesSummaryAndLink(t *testing.T) {
	subject, body, err := renderHandoff(Handoff{
		BrokerName:  "Ana Souza",
		Contact:     "+5511999990000",
		Summary:     "Localização: Jardins\nQuartos: 3",
		WhatsAppURL: "https://wa.me/5511999990000",
	}, true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Novo lead qualificado: +5511999990000" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Ana Souza", "Localização: Jardins", "https://wa.me/5511999990000", "QR code"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderHandoffEscapesSummary(t *testing.T) {
	_, body, err := renderHandoff(Handoff{BrokerName: "Bia", Summary: "<script>x</script>"}, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("summary must be HTML-escaped")
	}
	if strings.Contains(body, "QR code") {
		t.Fatal("QR hint must be omitted without attachment")
	}
}
