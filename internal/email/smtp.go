package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"sdr_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender with a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTPSender from configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetSMTPFromName(),
		fromEmail: cfg.GetSMTPFromAddress(),
	}
}

// SendHandoffEmail sends the handoff summary to the assigned broker.
func (s *SMTPSender) SendHandoffEmail(ctx context.Context, handoff Handoff, attachments ...Attachment) error {
	subject, body, err := renderHandoff(handoff, len(attachments) > 0)
	if err != nil {
		return err
	}
	return s.send(ctx, handoff.BrokerEmail, subject, body, attachments...)
}

func renderHandoff(handoff Handoff, hasQRCode bool) (string, string, error) {
	subject := fmt.Sprintf(subjectHandoffFmt, handoff.Contact)
	body, err := renderEmailTemplate("handoff.html", handoffEmailData{
		baseEmailData: baseEmailData{
			Title:      subject,
			Heading:    "Novo lead qualificado",
			Subheading: handoff.Contact,
			CTALabel:   "Abrir conversa no WhatsApp",
			CTAURL:     handoff.WhatsAppURL,
		},
		BrokerName: handoff.BrokerName,
		Summary:    handoff.Summary,
		HasQRCode:  hasQRCode,
	})
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
