// Package email delivers broker notifications over SMTP.
package email

import (
	"context"
)

// Attachment is a file sent along with an email.
type Attachment struct {
	Content  []byte
	FileName string
	MIMEType string
}

// Handoff carries what a broker needs to pick up a lead.
type Handoff struct {
	BrokerEmail string
	BrokerName  string
	Contact     string
	Summary     string
	WhatsAppURL string
}

// Sender delivers notification emails.
type Sender interface {
	SendHandoffEmail(ctx context.Context, handoff Handoff, attachments ...Attachment) error
}

// NoopSender drops every email. Used when SMTP is not configured.
type NoopSender struct{}

// SendHandoffEmail implements Sender.
func (NoopSender) SendHandoffEmail(context.Context, Handoff, ...Attachment) error { return nil }

var _ Sender = NoopSender{}
