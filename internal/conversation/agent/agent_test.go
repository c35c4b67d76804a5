package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"sdr_backend/internal/conversation/domain"
	"sdr_backend/platform/ai/gemini"
)

// fakeGenerator decodes a canned model answer the way the Gemini client does.
type fakeGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, _ string, prompt string, out any) error {
	f.lastPrompt = prompt
	if f.err != nil {
		return f.err
	}
	return gemini.DecodeJSON(f.answer, out)
}

func TestConverseParsesReplyAndFields(t *testing.T) {
	gen := &fakeGenerator{answer: "```json\n{\"update_data\": {\"location\": \"Itapema\", \"bedrooms\": \"3 quartos\", \"parking_spots\": null}, \"response_text\": \"Ótimo! Que tipo de imóvel?\"}\n```"}
	turn := domain.Turn{
		Known: map[string]any{"property_type": "apartamento"},
		History: []domain.Message{
			{Role: domain.RoleUser, Content: "Oi"},
			{Role: domain.RoleAssistant, Content: "Olá! Em qual região?"},
			{Role: domain.RoleUser, Content: "Itapema, 3 quartos"},
		},
	}

	reply, err := New(gen).Converse(context.Background(), turn)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if reply.Text != "Ótimo! Que tipo de imóvel?" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !reply.Update.Location.Set || reply.Update.Location.Value != "Itapema" {
		t.Fatalf("location = %+v", reply.Update.Location)
	}
	if !reply.Update.Bedrooms.Set || reply.Update.Bedrooms.Value != 3 {
		t.Fatalf("bedrooms = %+v", reply.Update.Bedrooms)
	}
	if reply.Update.ParkingSpots.Set {
		t.Fatalf("null parking_spots must be treated as not mentioned")
	}
	if !strings.Contains(gen.lastPrompt, "User: Itapema, 3 quartos") || !strings.Contains(gen.lastPrompt, `"property_type":"apartamento"`) {
		t.Fatalf("prompt missing history or known fields:\n%s", gen.lastPrompt)
	}
}

func TestConverseMissingReplyText(t *testing.T) {
	gen := &fakeGenerator{answer: `{"update_data": {}}`}
	reply, err := New(gen).Converse(context.Background(), domain.Turn{})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if reply.Text != domain.UnclearReply {
		t.Fatalf("reply = %q, want unclear fallback", reply.Text)
	}
	if !reply.Update.IsEmpty() {
		t.Fatalf("expected empty update")
	}
}

func TestConverseUnparseable(t *testing.T) {
	gen := &fakeGenerator{answer: "desculpe, não sei"}
	_, err := New(gen).Converse(context.Background(), domain.Turn{})
	if !errors.Is(err, gemini.ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
}

func TestExtractIgnoresStatus(t *testing.T) {
	gen := &fakeGenerator{answer: `{"location": "Florianópolis", "status": "qualifying", "min_area_sqm": 120}`}
	update, err := New(gen).Extract(context.Background(), "quero uma casa em Florianópolis com 120 metros", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if update.Status.Set {
		t.Fatalf("extraction must not set status")
	}
	if update.Location.Value != "Florianópolis" || update.MinAreaSqm.Value != 120 {
		t.Fatalf("update = %+v", update)
	}
}

func TestParseFieldsRejectsHandoffStatus(t *testing.T) {
	raw := map[string]json.RawMessage{
		"status":       json.RawMessage(`"handoff_completed"`),
		"bedrooms":     json.RawMessage(`2.5`),
		"intent_level": json.RawMessage(`"alto"`),
	}
	u := ParseFields(raw)
	if u.Status.Set {
		t.Fatalf("handoff status must be dropped")
	}
	if u.Bedrooms.Set {
		t.Fatalf("fractional bedrooms must be dropped")
	}
	if u.IntentLevel.Value != "alto" {
		t.Fatalf("intent_level = %+v", u.IntentLevel)
	}
}
