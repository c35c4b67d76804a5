// Package notification delivers side effects of domain events, such as the
// broker email sent after a handoff. Domain modules publish events and never
// talk to email providers directly.
package notification

import (
	"bytes"
	"context"
	"fmt"

	"sdr_backend/internal/email"
	"sdr_backend/internal/events"
	"sdr_backend/platform/logger"
	"sdr_backend/platform/phone"

	"github.com/skip2/go-qrcode"
)

const (
	qrCodeSize     = 256
	qrCodeFileName = "whatsapp-lead.png"
)

// Module subscribes to domain events and sends notifications.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// New creates the notification module. A nil sender drops every email.
func New(sender email.Sender, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes the module to the events it handles.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.HandoffCompleted{}.EventName(), events.HandlerFunc(m.handleHandoffCompleted))
}

func (m *Module) handleHandoffCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.HandoffCompleted)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if e.BrokerEmail == "" {
		return nil
	}

	link := WhatsAppLink(e.Contact)
	var attachments []email.Attachment
	if png, err := QRCodePNG(link); err != nil {
		m.log.CollaboratorFailure("qrcode", "encode", err)
	} else {
		attachments = append(attachments, email.Attachment{
			Content:  png,
			FileName: qrCodeFileName,
			MIMEType: "image/png",
		})
	}

	err := m.sender.SendHandoffEmail(ctx, email.Handoff{
		BrokerEmail: e.BrokerEmail,
		BrokerName:  e.BrokerName,
		Contact:     e.Contact,
		Summary:     e.Summary,
		WhatsAppURL: link,
	}, attachments...)
	if err != nil {
		m.log.CollaboratorFailure("smtp", "send_handoff_email", err)
		return err
	}

	m.log.Info("handoff email sent",
		"lead_id", e.LeadID.String(),
		"broker_id", e.BrokerID.String(),
	)
	return nil
}

// WhatsAppLink returns the wa.me deep link for a contact.
func WhatsAppLink(contact string) string {
	return "https://wa.me/" + phone.Digits(contact)
}

// QRCodePNG encodes content as a PNG QR code.
func QRCodePNG(content string) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qrcode: %w", err)
	}
	var png bytes.Buffer
	if err := qr.Write(qrCodeSize, &png); err != nil {
		return nil, fmt.Errorf("qrcode png: %w", err)
	}
	return png.Bytes(), nil
}
