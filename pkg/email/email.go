// Package email delivers birthday wishes by mail through one of several
// providers selected by configuration.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"remind-candles/pkg/config"

	"github.com/emersion/go-message/mail"
)

// ErrNotConfigured is returned by NewSender when no provider is selected.
var ErrNotConfigured = errors.New("email provider not configured")

// Message is a single outgoing email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// NewSender builds the provider named by cfg.EmailProvider.
func NewSender(ctx context.Context, cfg *config.Config) (Sender, error) {
	switch cfg.EmailProvider {
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
		}), nil
	case "gmail":
		return NewGmailSender(ctx, GmailConfig{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailSecret,
			RefreshToken: cfg.GmailRefresh,
			From:         cfg.EmailFrom,
			FromName:     cfg.EmailFromName,
		})
	case "emailjs":
		return NewEmailJSSender(EmailJSConfig{
			ServiceID:  cfg.EmailJSService,
			TemplateID: cfg.EmailJSTmpl,
			PublicKey:  cfg.EmailJSPublic,
			PrivateKey: cfg.EmailJSPrivate,
		}), nil
	case "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

// compose renders msg as an RFC 5322 message with text and HTML alternatives.
func compose(from, fromName string, msg Message) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: fromName, Address: from}})
	h.SetAddressList("To", []*mail.Address{{Name: msg.ToName, Address: msg.To}})
	h.SetSubject(msg.Subject)

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create mail writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("create inline writer: %w", err)
	}
	if err := writePart(tw, "text/plain", msg.Text); err != nil {
		return nil, err
	}
	if msg.HTML != "" {
		if err := writePart(tw, "text/html", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(tw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	return w.Close()
}

var wishTemplate = template.Must(template.New("wish").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; background: #fff8e1; padding: 24px;">
  <div style="max-width: 480px; margin: auto; background: #fff; border-radius: 12px; padding: 24px;">
    <h2 style="color: #d4a017;">🎂 Happy Birthday, {{.Name}}!</h2>
    <p style="font-size: 16px; line-height: 1.5;">{{.Message}}</p>
    {{if .Sender}}<p style="color: #888;">From {{.Sender}}</p>{{end}}
  </div>
</body>
</html>`))

// BirthdayWish builds the wish email sent to a birthday person.
func BirthdayWish(to, name, message, sender string) (Message, error) {
	var html bytes.Buffer
	err := wishTemplate.Execute(&html, struct {
		Name, Message, Sender string
	}{name, message, sender})
	if err != nil {
		return Message{}, fmt.Errorf("render wish email: %w", err)
	}

	text := fmt.Sprintf("Hi %s,\n\n%s\n", name, message)
	if sender != "" {
		text += "\n- " + sender + "\n"
	}
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Happy Birthday! 🎉",
		Text:    text,
		HTML:    html.String(),
	}, nil
}
