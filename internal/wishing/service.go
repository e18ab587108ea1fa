package wishing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bdomain "remind-candles/internal/birthday/domain"
	wdomain "remind-candles/internal/wish/domain"
	"remind-candles/pkg/metrics"

	"go.uber.org/zap"
)

var (
	// ErrAlreadyWished is returned for a second wish on the same calendar day
	ErrAlreadyWished = errors.New("birthday already wished today")
	// ErrAllChannelsFailed means no channel could deliver the wish
	ErrAllChannelsFailed = errors.New("all wish channels failed")
	// ErrNoApplicableChannel means every channel was skipped, e.g. no tokens, phone or email
	ErrNoApplicableChannel = errors.New("no wish channel applies to this birthday")
)

// WishLibrary is the part of the wish library the service needs
type WishLibrary interface {
	GetWish(userID, id string) (*wdomain.WishTemplate, error)
	DefaultWish(userID string) (*wdomain.WishTemplate, error)
	RecordDelivery(delivery *wdomain.WishDelivery) error
}

// Attempt is the outcome of one channel
type Attempt struct {
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Result describes a finished wish
type Result struct {
	Channel  string    `json:"channel"`
	Message  string    `json:"message"`
	Date     string    `json:"date"`
	Attempts []Attempt `json:"attempts"`
}

// Service sends birthday wishes through a fallback chain of channels
type Service struct {
	channels []Channel
	guard    Guard
	library  WishLibrary
	location *time.Location
	log      *zap.Logger
}

func NewService(channels []Channel, guard Guard, library WishLibrary, loc *time.Location, log *zap.Logger) *Service {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		channels: channels,
		guard:    guard,
		library:  library,
		location: loc,
		log:      log.Named("wishing"),
	}
}

// GuardKey identifies one birthday on one calendar day
func GuardKey(birthdayID string, day time.Time) string {
	return birthdayID + ":" + day.Format(time.DateOnly)
}

// ResolveMessage picks the birthday's custom wish, then its chosen template,
// then the owner's default template, then the built-in wish.
func (s *Service) ResolveMessage(ownerID string, b *bdomain.Birthday) string {
	if msg := strings.TrimSpace(b.CustomWish); msg != "" {
		return msg
	}
	if s.library != nil {
		if b.WishID != "" {
			if w, err := s.library.GetWish(ownerID, b.WishID); err == nil {
				return w.Content
			}
		}
		w, err := s.library.DefaultWish(ownerID)
		if err == nil && w.Content != "" {
			return w.Content
		}
		if err != nil {
			s.log.Warn("default wish lookup failed", zap.String("user_id", ownerID), zap.Error(err))
		}
	}
	return wdomain.DefaultWishMessage
}

// SendBirthdayWish delivers one wish per birthday per calendar day. Channels
// are tried in order; inapplicable ones are skipped and the first success wins.
func (s *Service) SendBirthdayWish(ctx context.Context, owner Owner, b *bdomain.Birthday, now time.Time) (*Result, error) {
	day := now.In(s.location)
	key := GuardKey(b.ID, day)

	claimed, err := s.guard.Claim(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("claim wish guard: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadyWished
	}

	wish := Wish{
		Owner:    owner,
		Birthday: b,
		Message:  s.ResolveMessage(owner.ID, b),
		Date:     day.Format(time.DateOnly),
	}
	result := &Result{Message: wish.Message, Date: wish.Date}
	log := s.log.With(zap.String("user_id", owner.ID), zap.String("birthday_id", b.ID))

	failed := false
	for _, ch := range s.channels {
		err := ch.Send(ctx, wish)
		switch {
		case errors.Is(err, ErrNotApplicable):
			result.Attempts = append(result.Attempts, Attempt{Channel: ch.Name(), Status: string(wdomain.DeliverySkipped)})
			s.record(owner.ID, b.ID, ch.Name(), wdomain.DeliverySkipped, nil, wish.Date)
			continue
		case err != nil:
			failed = true
			log.Warn("wish channel failed", zap.String("channel", ch.Name()), zap.Error(err))
			metrics.ChannelFailures.WithLabelValues(ch.Name()).Inc()
			result.Attempts = append(result.Attempts, Attempt{Channel: ch.Name(), Status: string(wdomain.DeliveryFailed), Error: err.Error()})
			s.record(owner.ID, b.ID, ch.Name(), wdomain.DeliveryFailed, err, wish.Date)
			continue
		}

		metrics.WishesSent.WithLabelValues(ch.Name()).Inc()
		result.Channel = ch.Name()
		result.Attempts = append(result.Attempts, Attempt{Channel: ch.Name(), Status: string(wdomain.DeliverySent)})
		s.record(owner.ID, b.ID, ch.Name(), wdomain.DeliverySent, nil, wish.Date)
		log.Info("birthday wish sent", zap.String("channel", ch.Name()))
		return result, nil
	}

	// Let a later run retry today
	if err := s.guard.Release(ctx, key); err != nil {
		log.Error("release wish guard failed", zap.Error(err))
	}
	if !failed {
		return result, ErrNoApplicableChannel
	}
	return result, ErrAllChannelsFailed
}

// WishLink resolves the message for b and wraps it in a one-tap link
func (s *Service) WishLink(ownerID string, b *bdomain.Birthday) (Link, bool) {
	return LinkFor(b, s.ResolveMessage(ownerID, b))
}

func (s *Service) record(userID, birthdayID, channel string, status wdomain.DeliveryStatus, sendErr error, date string) {
	if s.library == nil {
		return
	}
	delivery := &wdomain.WishDelivery{
		UserID:     userID,
		BirthdayID: birthdayID,
		Channel:    channel,
		Status:     status,
		WishDate:   date,
	}
	if sendErr != nil {
		delivery.Error = sendErr.Error()
	}
	if err := s.library.RecordDelivery(delivery); err != nil {
		s.log.Warn("record wish delivery failed", zap.String("channel", channel), zap.Error(err))
	}
}
