package fcm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"remind-candles/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var (
	// ErrNoTokens means the recipient has no active device to push to
	ErrNoTokens = errors.New("no active push tokens")
	// ErrUnavailable means push messaging is not configured
	ErrUnavailable = errors.New("push messaging not configured")
)

// NewApp initializes the Firebase app shared by messaging, auth and firestore.
func NewApp(ctx context.Context, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
	log             *zap.Logger
	// linkBase resolves relative click actions into the https link web push requires
	linkBase string
}

// NewClient creates a new FCM client from an initialized Firebase app
func NewClient(ctx context.Context, app *firebase.App, log *zap.Logger) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log = log.Named("fcm")
	log.Info("client initialized")
	return &Client{
		messagingClient: messagingClient,
		log:             log,
	}, nil
}

// SetLinkBase sets the public https origin of the web app, e.g. https://app.example.com.
func (c *Client) SetLinkBase(base string) {
	c.linkBase = strings.TrimRight(base, "/")
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title string
	Body  string
	Data  map[string]string
	// URL to open when the notification is clicked
	ClickAction string
	// Sound name for clients that play one (soft-chime, birthday-tune, loud-alert)
	Sound string
}

// SendResult summarizes a multicast send.
type SendResult struct {
	SuccessCount int
	FailureCount int
	// InvalidTokens were rejected as unregistered or malformed and should be deleted.
	InvalidTokens []string
}

// SendToDevice sends a push notification to a specific device token
func (c *Client) SendToDevice(ctx context.Context, token string, notification NotificationData) error {
	message := buildMessage(notification, c.linkBase)
	message.Token = token

	response, err := c.messagingClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	c.log.Debug("message sent", zap.String("response", response))
	return nil
}

// SendToDevices sends a push notification to multiple device tokens.
// Per-token failures are reported in the result, not as an error.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, notification NotificationData) (*SendResult, error) {
	if len(tokens) == 0 {
		return &SendResult{}, nil
	}

	base := buildMessage(notification, c.linkBase)
	message := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: base.Notification,
		Data:         base.Data,
		Android:      base.Android,
		APNS:         base.APNS,
		Webpush:      base.Webpush,
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	result := &SendResult{
		SuccessCount: response.SuccessCount,
		FailureCount: response.FailureCount,
	}
	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		if IsInvalidTokenError(resp.Error) {
			result.InvalidTokens = append(result.InvalidTokens, tokens[i])
		}
		c.log.Warn("send to token failed",
			zap.String("token", logger.MaskToken(tokens[i])),
			zap.Error(resp.Error))
	}

	c.log.Info("multicast sent",
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount))
	return result, nil
}

func buildMessage(n NotificationData, linkBase string) *messaging.Message {
	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	if n.ClickAction != "" {
		data["click_action"] = n.ClickAction
	}

	sound := n.Sound
	if sound == "" {
		sound = "default"
	}

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Icon:  "ic_notification",
				Color: "#FFD700",
				Sound: sound,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: sound},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title:              n.Title,
				Body:               n.Body,
				Icon:               "/icons/icon-192x192.png",
				Badge:              "/icons/icon-72x72.png",
				RequireInteraction: true,
			},
		},
	}
	if link := webLink(n.ClickAction, linkBase); link != "" {
		msg.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: link}
	}
	return msg
}

// webLink returns the absolute https URL for a click action, or "" when none
// can be built. FCM rejects the whole message for any other link.
func webLink(action, base string) string {
	if action == "" {
		return ""
	}
	u, err := url.Parse(action)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		if u.Scheme == "https" {
			return u.String()
		}
		return ""
	}
	if !strings.HasPrefix(action, "/") || base == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme != "https" || b.Host == "" {
		return ""
	}
	return b.ResolveReference(u).String()
}

var invalidTokenMarkers = []string{
	"registration-token-not-registered",
	"invalid-registration-token",
}

// IsInvalidTokenError reports whether err means the token will never be
// deliverable again.
func IsInvalidTokenError(err error) bool {
	if err == nil {
		return false
	}
	if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
		return true
	}
	msg := err.Error()
	for _, marker := range invalidTokenMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
