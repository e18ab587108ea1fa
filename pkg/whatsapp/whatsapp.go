// Package whatsapp builds click-to-chat links and sends text messages through
// the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const graphBaseURL = "https://graph.facebook.com"

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhoneNumber strips everything but digits, the form wa.me expects.
func FormatPhoneNumber(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// Link returns a click-to-chat URL with a pre-filled message. Spaces are
// encoded as %20, never +.
func Link(phone, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", FormatPhoneNumber(phone), escaped)
}

// PersonalizedMessage prefixes a wish with the recipient's name.
func PersonalizedMessage(name, message string) string {
	return fmt.Sprintf("Hi %s, %s", name, message)
}

type Config struct {
	PhoneNumberID string
	AccessToken   string
	APIVersion    string
	// BaseURL overrides the Graph API host.
	BaseURL string
}

type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v19.0"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = graphBaseURL
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: 15 * time.Second}}
}

// Configured reports whether the client has credentials to send.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.PhoneNumberID != "" && c.cfg.AccessToken != ""
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body       string `json:"body"`
		PreviewURL bool   `json:"preview_url"`
	} `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText sends a plain text message to phone.
func (c *Client) SendText(ctx context.Context, phone, body string) error {
	if !c.Configured() {
		return errors.New("whatsapp cloud api is not configured")
	}
	to := FormatPhoneNumber(phone)
	if to == "" {
		return errors.New("phone number has no digits")
	}

	msg := textMessage{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = body
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", c.cfg.BaseURL, c.cfg.APIVersion, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("whatsapp: %s (code %d)", apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("whatsapp: status %d", resp.StatusCode)
	}
	return nil
}
