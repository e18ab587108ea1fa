package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	From         string
	FromName     string
}

// GmailSender sends through the Gmail API on behalf of the account that
// granted the refresh token.
type GmailSender struct {
	svc      *gmail.Service
	from     string
	fromName string
}

func NewGmailSender(ctx context.Context, cfg GmailConfig) (*GmailSender, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("gmail provider requires client id, client secret and refresh token")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailSender{svc: svc, from: cfg.From, fromName: cfg.FromName}, nil
}

func (s *GmailSender) Name() string { return "gmail" }

func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	raw, err := compose(s.from, s.fromName, msg)
	if err != nil {
		return err
	}

	_, err = s.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}
