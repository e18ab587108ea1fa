package wishing

import (
	"context"
	"errors"
	"fmt"

	bdomain "remind-candles/internal/birthday/domain"
	"remind-candles/pkg/email"
	"remind-candles/pkg/fcm"
	"remind-candles/pkg/whatsapp"

	"go.uber.org/zap"
)

const (
	ChannelPush     = "push"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// ErrNotApplicable means a channel cannot reach this birthday at all; the chain moves on
var ErrNotApplicable = errors.New("channel not applicable")

// Owner is the user on whose behalf a wish is sent
type Owner struct {
	ID    string
	Name  string
	Email string
}

// Wish is a prepared message for one birthday on one day
type Wish struct {
	Owner    Owner
	Birthday *bdomain.Birthday
	Message  string
	Date     string
}

// Channel delivers a wish one way
type Channel interface {
	Name() string
	Send(ctx context.Context, w Wish) error
}

// Notifier pushes a notification to all of a user's devices
type Notifier interface {
	SendToUser(ctx context.Context, userID string, n fcm.NotificationData) (int, error)
}

// WhatsAppSender sends a text message to a phone number
type WhatsAppSender interface {
	Configured() bool
	SendText(ctx context.Context, phone, body string) error
}

// pushChannel reminds the owner with the wish ready to forward
type pushChannel struct {
	notifier Notifier
}

func NewPushChannel(notifier Notifier) Channel {
	return &pushChannel{notifier: notifier}
}

func (c *pushChannel) Name() string { return ChannelPush }

func (c *pushChannel) Send(ctx context.Context, w Wish) error {
	if c.notifier == nil {
		return ErrNotApplicable
	}

	link, _ := LinkFor(w.Birthday, w.Message)
	_, err := c.notifier.SendToUser(ctx, w.Owner.ID, fcm.NotificationData{
		Title: fmt.Sprintf("🎉 It's %s's birthday!", w.Birthday.Name),
		Body:  w.Message,
		Data: map[string]string{
			"type":        "birthday_wish",
			"birthday_id": w.Birthday.ID,
			"date":        w.Date,
		},
		ClickAction: link.URL,
	})
	if errors.Is(err, fcm.ErrNoTokens) || errors.Is(err, fcm.ErrUnavailable) {
		return ErrNotApplicable
	}
	return err
}

// whatsAppChannel messages the birthday person directly
type whatsAppChannel struct {
	sender WhatsAppSender
}

func NewWhatsAppChannel(sender WhatsAppSender) Channel {
	return &whatsAppChannel{sender: sender}
}

func (c *whatsAppChannel) Name() string { return ChannelWhatsApp }

func (c *whatsAppChannel) Send(ctx context.Context, w Wish) error {
	if c.sender == nil || !c.sender.Configured() || w.Birthday.Phone == "" {
		return ErrNotApplicable
	}
	return c.sender.SendText(ctx, w.Birthday.Phone, whatsapp.PersonalizedMessage(w.Birthday.Name, w.Message))
}

// emailChannel mails the birthday person
type emailChannel struct {
	sender email.Sender
}

func NewEmailChannel(sender email.Sender) Channel {
	return &emailChannel{sender: sender}
}

func (c *emailChannel) Name() string { return ChannelEmail }

func (c *emailChannel) Send(ctx context.Context, w Wish) error {
	if c.sender == nil || w.Birthday.Email == "" {
		return ErrNotApplicable
	}
	msg, err := email.BirthdayWish(w.Birthday.Email, w.Birthday.Name, w.Message, w.Owner.Name)
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, msg)
}

// BuildChannels returns the channels named in order. Unknown names are logged and skipped.
func BuildChannels(order []string, notifier Notifier, wa WhatsAppSender, mail email.Sender, log *zap.Logger) []Channel {
	channels := make([]Channel, 0, len(order))
	for _, name := range order {
		switch name {
		case ChannelPush:
			channels = append(channels, NewPushChannel(notifier))
		case ChannelWhatsApp:
			channels = append(channels, NewWhatsAppChannel(wa))
		case ChannelEmail:
			channels = append(channels, NewEmailChannel(mail))
		default:
			log.Warn("unknown wish channel", zap.String("channel", name))
		}
	}
	return channels
}
