// Package agent adapts the Gemini model to the lead qualification flow:
// conversation turns and field extraction return typed results or an error.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sdr_backend/internal/conversation/domain"
	leads "sdr_backend/internal/leads/domain"
)

// Generator produces a JSON answer for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, system, prompt string, out any) error
}

// Agent runs qualification prompts against a Generator.
type Agent struct {
	gen Generator
}

// New creates an agent.
func New(gen Generator) *Agent {
	return &Agent{gen: gen}
}

type turnResponse struct {
	UpdateData   map[string]json.RawMessage `json:"update_data"`
	ResponseText *string                    `json:"response_text"`
}

// Converse answers the last user message in turn.History and returns the
// fields the model picked up from it.
func (a *Agent) Converse(ctx context.Context, turn domain.Turn) (domain.Reply, error) {
	var resp turnResponse
	if err := a.gen.GenerateJSON(ctx, conversationSystemPrompt, conversationPrompt(turn), &resp); err != nil {
		return domain.Reply{}, fmt.Errorf("conversation turn: %w", err)
	}

	text := domain.UnclearReply
	if resp.ResponseText != nil && strings.TrimSpace(*resp.ResponseText) != "" {
		text = strings.TrimSpace(*resp.ResponseText)
	}
	return domain.Reply{Update: ParseFields(resp.UpdateData), Text: text}, nil
}

// Extract pulls qualification fields out of free text such as a transcript.
func (a *Agent) Extract(ctx context.Context, text string, known map[string]any) (leads.LeadUpdate, error) {
	var raw map[string]json.RawMessage
	if err := a.gen.GenerateJSON(ctx, extractionSystemPrompt, extractionPrompt(text, known), &raw); err != nil {
		return leads.LeadUpdate{}, fmt.Errorf("extract fields: %w", err)
	}
	update := ParseFields(raw)
	update.Status = leads.Patch[string]{}
	update.IntentLevel = leads.Patch[string]{}
	return update, nil
}
