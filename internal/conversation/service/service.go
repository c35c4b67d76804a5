// Package service runs inbound conversation turns.
package service

import (
	"context"
	"strings"

	"sdr_backend/internal/conversation/domain"
	"sdr_backend/internal/conversation/ports"
	"sdr_backend/internal/conversation/repository"
	leadsdomain "sdr_backend/internal/leads/domain"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/logger"
)

// DefaultHistoryLimit bounds the log window passed to the model.
const DefaultHistoryLimit = 10

// Outcome is the result of ProcessMessage.
type Outcome struct {
	Lead    leadsdomain.Lead
	Reply   string
	Created bool
	// Applied reports whether extracted fields were written to the lead.
	Applied bool
}

// Service processes inbound messages for leads.
type Service struct {
	repo         repository.Repository
	leads        ports.LeadStore
	model        ports.Conversationalist
	log          *logger.Logger
	historyLimit int
}

// New creates a conversation service. model may be nil, in which case every
// turn answers with the fallback reply.
func New(repo repository.Repository, leads ports.LeadStore, model ports.Conversationalist, historyLimit int, log *logger.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, leads: leads, model: model, log: log, historyLimit: historyLimit}
}

// ProcessMessage records the user message, asks the model for a reply, applies
// any extracted fields and records the reply. Model failures degrade to the
// fallback reply with no fields applied; storage failures are returned.
func (s *Service) ProcessMessage(ctx context.Context, contact, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, apperr.Validation("message is required")
	}

	created, err := s.leads.CreateLead(ctx, contact)
	if err != nil {
		return Outcome{}, err
	}
	lead := created.Lead
	out := Outcome{Lead: lead, Created: created.Created}

	if _, err := s.repo.Append(ctx, lead.ID, domain.RoleUser, text); err != nil {
		return Outcome{}, storageErr("append message", err)
	}

	recent, err := s.repo.Recent(ctx, lead.ID, s.historyLimit)
	if err != nil {
		return Outcome{}, storageErr("load history", err)
	}

	reply := s.converse(ctx, domain.Turn{Known: lead.KnownFields(), History: chronological(recent)}, lead)
	out.Reply = reply.Text

	if !reply.Update.IsEmpty() {
		updated, err := s.leads.UpdateLead(ctx, lead.ID, reply.Update)
		switch {
		case err == nil:
			out.Lead = updated
			out.Applied = true
		case apperr.Is(err, apperr.KindValidation), apperr.Is(err, apperr.KindConflict):
			s.log.Warn("extracted fields rejected", "leadId", lead.ID, "error", err)
		default:
			return Outcome{}, err
		}
	}

	if _, err := s.repo.Append(ctx, lead.ID, domain.RoleAssistant, out.Reply); err != nil {
		return Outcome{}, storageErr("append reply", err)
	}
	return out, nil
}

func (s *Service) converse(ctx context.Context, turn domain.Turn, lead leadsdomain.Lead) domain.Reply {
	if s.model == nil {
		return domain.Reply{Text: domain.FallbackReply}
	}
	reply, err := s.model.Converse(ctx, turn)
	if err != nil {
		s.log.WithContext(ctx).CollaboratorFailure("gemini", "converse", err)
		return domain.Reply{Text: domain.FallbackReply}
	}
	if strings.TrimSpace(reply.Text) == "" {
		reply.Text = domain.UnclearReply
	}
	return reply
}

// chronological reverses a newest-first window.
func chronological(recent []domain.Message) []domain.Message {
	out := make([]domain.Message, len(recent))
	for i, m := range recent {
		out[len(recent)-1-i] = m
	}
	return out
}

// storageErr keeps typed errors and marks everything else as a storage failure.
func storageErr(op string, err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Internal(op+" failed", err).WithOp(op)
}
