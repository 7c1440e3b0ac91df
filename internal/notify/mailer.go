package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// Mailer delivers report artifacts as email attachments over SMTP. It
// implements scheduler.Deliverer.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

type MailerConfig struct {
	SMTPHost string
	SMTPPort int
	From     string
	Password string
}

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.From, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) SendWithAttachment(ctx context.Context, recipients []string, subject, body string, attachment []byte, filename string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(attachment))
		return err
	}))

	// gomail has no context support; run the send in a goroutine so the job
	// timeout still applies.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
