package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"remind-candles/pkg/config"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBirthdayWishEscapesHTML(t *testing.T) {
	msg, err := BirthdayWish("bob@example.com", "<Bob>", "Have fun & eat cake", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "Happy Birthday! 🎉", msg.Subject)
	assert.Contains(t, msg.Text, "Hi <Bob>,")
	assert.Contains(t, msg.Text, "- Alice")
	assert.Contains(t, msg.HTML, "&lt;Bob&gt;")
	assert.Contains(t, msg.HTML, "Have fun &amp; eat cake")
}

func TestComposeProducesReadableMessage(t *testing.T) {
	raw, err := compose("noreply@example.com", "Remind Candles", Message{
		To:      "bob@example.com",
		ToName:  "Bob",
		Subject: "Happy Birthday! 🎉",
		Text:    "Hi Bob",
		HTML:    "<p>Hi Bob</p>",
	})
	require.NoError(t, err)

	r, err := mail.CreateReader(strings.NewReader(string(raw)))
	require.NoError(t, err)

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Happy Birthday! 🎉", subject)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "bob@example.com", to[0].Address)

	parts := 0
	for {
		p, err := r.NextPart()
		if err != nil {
			break
		}
		if _, ok := p.Header.(*mail.InlineHeader); ok {
			parts++
		}
	}
	assert.Equal(t, 2, parts)
}

func TestEmailJSSender(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	s := NewEmailJSSender(EmailJSConfig{
		ServiceID:  "svc",
		TemplateID: "tmpl",
		PublicKey:  "pub",
		Endpoint:   srv.URL,
	})
	err := s.Send(context.Background(), Message{To: "bob@example.com", ToName: "Bob", Text: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "bob@example.com", got.TemplateParams["to_email"])
	assert.Equal(t, "hi", got.TemplateParams["message"])
}

func TestEmailJSSenderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The Public Key is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewEmailJSSender(EmailJSConfig{ServiceID: "svc", TemplateID: "tmpl", PublicKey: "pub", Endpoint: srv.URL})
	err := s.Send(context.Background(), Message{To: "bob@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	missing := NewEmailJSSender(EmailJSConfig{})
	assert.Error(t, missing.Send(context.Background(), Message{To: "bob@example.com"}))
}

func TestNewSender(t *testing.T) {
	_, err := NewSender(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	s, err := NewSender(context.Background(), &config.Config{EmailProvider: "smtp", SMTPHost: "localhost", SMTPPort: "25"})
	require.NoError(t, err)
	assert.Equal(t, "smtp", s.Name())

	_, err = NewSender(context.Background(), &config.Config{EmailProvider: "gmail"})
	assert.Error(t, err)
}
