package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	authdomain "remind-candles/internal/auth/domain"
	authrepo "remind-candles/internal/auth/repository"
	bdomain "remind-candles/internal/birthday/domain"
	"remind-candles/internal/notification/domain"
	"remind-candles/internal/notification/repository"
	"remind-candles/internal/wishing"
	"remind-candles/pkg/fcm"
	"remind-candles/pkg/logger"
	"remind-candles/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// checkConcurrency bounds how many users are checked at once
const checkConcurrency = 4

// PushSender delivers a notification to device tokens
type PushSender interface {
	SendToDevices(ctx context.Context, tokens []string, n fcm.NotificationData) (*fcm.SendResult, error)
}

// UserStore is the part of the user repository the check needs
type UserStore interface {
	ListIDs() ([]string, error)
	FindByID(id string) (*authdomain.User, error)
}

// BirthdayStore is the part of the birthday repository the check needs
type BirthdayStore interface {
	FindByID(id string) (*bdomain.Birthday, error)
	FindByUserID(userID string) ([]*bdomain.Birthday, error)
}

// WishDispatcher sends the birthday wish itself
type WishDispatcher interface {
	SendBirthdayWish(ctx context.Context, owner wishing.Owner, b *bdomain.Birthday, now time.Time) (*wishing.Result, error)
}

// BirthdayPerson is who a reminder is about
type BirthdayPerson struct {
	ID        string
	Name      string
	DaysUntil int
	Age       *int
}

// CheckSummary reports what one daily check did
type CheckSummary struct {
	Date           string `json:"date"`
	UsersChecked   int    `json:"users_checked"`
	RemindersDue   int    `json:"reminders_due"`
	WishesDue      int    `json:"wishes_due"`
	EventsFailed   int    `json:"events_failed"`
	DurationMillis int64  `json:"duration_ms"`
}

// Service finds due birthdays, sends reminder pushes and hands birthdays to the wishing service
type Service struct {
	users     UserStore
	birthdays BirthdayStore
	settings  repository.SettingsRepository
	reminders repository.ReminderLogRepository
	tokens    authrepo.PushTokenRepository
	push      PushSender
	wisher    WishDispatcher
	publisher EventPublisher
	location  *time.Location
	now       func() time.Time
	log       *zap.Logger
}

// NewService creates the notification service. push and wisher may be nil.
// Events are handled inline until SetPublisher is called.
func NewService(
	users UserStore,
	birthdays BirthdayStore,
	settings repository.SettingsRepository,
	reminders repository.ReminderLogRepository,
	tokens authrepo.PushTokenRepository,
	push PushSender,
	loc *time.Location,
	log *zap.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		users:     users,
		birthdays: birthdays,
		settings:  settings,
		reminders: reminders,
		tokens:    tokens,
		push:      push,
		location:  loc,
		now:       time.Now,
		log:       log.Named("notification"),
	}
	s.publisher = NewInlinePublisher(s.HandleEvent)
	return s
}

// SetWishDispatcher sets the service used on the birthday itself
func (s *Service) SetWishDispatcher(wisher WishDispatcher) {
	s.wisher = wisher
}

// SetPublisher routes due birthdays through publisher instead of handling them inline
func (s *Service) SetPublisher(publisher EventPublisher) {
	s.publisher = publisher
}

// GetSettings returns the user's settings, or the defaults when none were saved
func (s *Service) GetSettings(userID string) (*domain.NotificationSettings, error) {
	settings, err := s.settings.Get(userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return domain.DefaultSettings(userID), nil
	}
	return settings, nil
}

// UpdateSettings validates and stores the user's settings
func (s *Service) UpdateSettings(settings *domain.NotificationSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.settings.Save(settings)
}

// CheckForBirthdays runs the daily check for every user with notifications enabled
func (s *Service) CheckForBirthdays(ctx context.Context, now time.Time) (*CheckSummary, error) {
	start := time.Now()
	today := bdomain.StartOfDay(now.In(s.location))
	summary := &CheckSummary{Date: today.Format(time.DateOnly)}

	ids, err := s.users.ListIDs()
	if err != nil {
		metrics.BirthdayChecks.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("list users: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for _, userID := range ids {
		g.Go(func() error {
			userSummary, err := s.checkUser(gctx, userID, today)
			if err != nil {
				// One broken user must not stop the others
				s.log.Error("birthday check failed for user", zap.String("user_id", userID), zap.Error(err))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if userSummary.checked {
				summary.UsersChecked++
			}
			summary.RemindersDue += userSummary.reminders
			summary.WishesDue += userSummary.wishes
			summary.EventsFailed += userSummary.failed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.BirthdayChecks.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		metrics.BirthdayChecks.WithLabelValues("canceled").Inc()
		return nil, err
	}

	// Dedupe rows older than a week can no longer match a check
	if err := s.reminders.Prune(now.Add(-7 * 24 * time.Hour)); err != nil {
		s.log.Warn("prune reminder log failed", zap.Error(err))
	}

	summary.DurationMillis = time.Since(start).Milliseconds()
	metrics.BirthdayChecks.WithLabelValues("ok").Inc()
	s.log.Info("birthday check finished",
		zap.String("date", summary.Date),
		zap.Int("users", summary.UsersChecked),
		zap.Int("reminders", summary.RemindersDue),
		zap.Int("wishes", summary.WishesDue),
		zap.Int("failed", summary.EventsFailed))
	return summary, nil
}

// CheckUser runs the daily check for one user, whether or not their reminders are enabled
func (s *Service) CheckUser(ctx context.Context, userID string, now time.Time) (*CheckSummary, error) {
	today := bdomain.StartOfDay(now.In(s.location))
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	settings.Enabled = true

	result, err := s.checkUserWith(ctx, userID, settings, today)
	if err != nil {
		return nil, err
	}
	return &CheckSummary{
		Date:         today.Format(time.DateOnly),
		UsersChecked: 1,
		RemindersDue: result.reminders,
		WishesDue:    result.wishes,
		EventsFailed: result.failed,
	}, nil
}

type userCheck struct {
	checked                   bool
	reminders, wishes, failed int
}

func (s *Service) checkUser(ctx context.Context, userID string, today time.Time) (userCheck, error) {
	var result userCheck

	settings, err := s.GetSettings(userID)
	if err != nil {
		return result, fmt.Errorf("load settings: %w", err)
	}
	if !settings.Enabled {
		return result, nil
	}
	return s.checkUserWith(ctx, userID, settings, today)
}

func (s *Service) checkUserWith(ctx context.Context, userID string, settings *domain.NotificationSettings, today time.Time) (userCheck, error) {
	result := userCheck{checked: true}

	birthdays, err := s.birthdays.FindByUserID(userID)
	if err != nil {
		return result, fmt.Errorf("load birthdays: %w", err)
	}

	date := today.Format(time.DateOnly)
	for _, b := range birthdays {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		days := b.DaysUntil(today)
		event := domain.BirthdayEvent{
			UserID:     userID,
			BirthdayID: b.ID,
			Name:       b.Name,
			DaysUntil:  days,
			Date:       date,
		}
		if age, ok := b.UpcomingAge(today); ok {
			event.Age = &age
		}

		if days == settings.AdvanceDays {
			event.Kind = domain.EventReminder
			result.reminders++
			if err := s.publisher.Publish(ctx, event); err != nil {
				result.failed++
				s.log.Warn("reminder event failed", zap.String("birthday_id", b.ID), zap.Error(err))
			}
		}
		if days == 0 {
			event.Kind = domain.EventWish
			result.wishes++
			if err := s.publisher.Publish(ctx, event); err != nil {
				result.failed++
				s.log.Warn("wish event failed", zap.String("birthday_id", b.ID), zap.Error(err))
			}
		}
	}
	return result, nil
}

// HandleEvent acts on one due birthday. It is safe to call more than once per event.
func (s *Service) HandleEvent(ctx context.Context, event domain.BirthdayEvent) error {
	switch event.Kind {
	case domain.EventReminder:
		return s.handleReminder(ctx, event)
	case domain.EventWish:
		return s.handleWish(ctx, event)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

// HandleReceivedEvent handles an event taken off the bus. Events from an earlier
// day are dropped so a redelivery never reminds or wishes late.
func (s *Service) HandleReceivedEvent(ctx context.Context, event domain.BirthdayEvent) error {
	today := s.now().In(s.location).Format(time.DateOnly)
	if event.Date != today {
		s.log.Info("dropping stale event",
			zap.String("kind", string(event.Kind)),
			zap.String("birthday_id", event.BirthdayID),
			zap.String("date", event.Date),
			zap.String("today", today))
		return nil
	}
	return s.HandleEvent(ctx, event)
}

func (s *Service) handleReminder(ctx context.Context, event domain.BirthdayEvent) error {
	claimed, err := s.reminders.Claim(event.UserID, event.BirthdayID, event.Date)
	if err != nil {
		return fmt.Errorf("claim reminder: %w", err)
	}
	if !claimed {
		s.log.Debug("reminder already sent", zap.String("birthday_id", event.BirthdayID), zap.String("date", event.Date))
		return nil
	}

	err = s.SendBirthdayNotification(ctx, event.UserID, BirthdayPerson{
		ID:        event.BirthdayID,
		Name:      event.Name,
		DaysUntil: event.DaysUntil,
		Age:       event.Age,
	})
	if err != nil {
		if errors.Is(err, fcm.ErrNoTokens) || errors.Is(err, fcm.ErrUnavailable) {
			// Nothing to deliver to; keep the claim so the user is not retried all day
			s.log.Info("reminder skipped", zap.String("user_id", event.UserID), zap.Error(err))
			return nil
		}
		if rerr := s.reminders.Release(event.UserID, event.BirthdayID, event.Date); rerr != nil {
			s.log.Error("release reminder failed", zap.Error(rerr))
		}
		return err
	}
	return nil
}

func (s *Service) handleWish(ctx context.Context, event domain.BirthdayEvent) error {
	if s.wisher == nil {
		return nil
	}

	b, err := s.birthdays.FindByID(event.BirthdayID)
	if err != nil {
		return err
	}
	if b == nil || b.UserID != event.UserID {
		s.log.Info("birthday gone before wish", zap.String("birthday_id", event.BirthdayID))
		return nil
	}

	user, err := s.users.FindByID(event.UserID)
	if err != nil {
		return err
	}
	owner := wishing.Owner{ID: event.UserID}
	if user != nil {
		owner.Name = user.Name
		owner.Email = user.Email
	}

	day, err := time.ParseInLocation(time.DateOnly, event.Date, s.location)
	if err != nil {
		return fmt.Errorf("bad event date %q: %w", event.Date, err)
	}

	_, err = s.wisher.SendBirthdayWish(ctx, owner, b, day)
	switch {
	case errors.Is(err, wishing.ErrAlreadyWished):
		return nil
	case errors.Is(err, wishing.ErrNoApplicableChannel):
		// Retrying cannot help until the contact details change
		s.log.Info("wish skipped", zap.String("birthday_id", b.ID), zap.Error(err))
		return nil
	}
	return err
}

// ReminderText builds the reminder title and body
func ReminderText(person BirthdayPerson) (title, body string) {
	age := ""
	if person.Age != nil {
		age = fmt.Sprintf(" turns %d", *person.Age)
	}

	when := "today"
	switch {
	case person.DaysUntil == 1:
		when = "in 1 day"
	case person.DaysUntil > 1:
		when = fmt.Sprintf("in %d days", person.DaysUntil)
	}
	return "🎂 Birthday Reminder!", fmt.Sprintf("%s%s %s! Time to celebrate! 🎉", person.Name, age, when)
}

// SendBirthdayNotification pushes a reminder about person to all of the user's devices
func (s *Service) SendBirthdayNotification(ctx context.Context, userID string, person BirthdayPerson) error {
	title, body := ReminderText(person)
	_, err := s.SendToUser(ctx, userID, fcm.NotificationData{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":        "birthday_reminder",
			"birthday_id": person.ID,
			"days_until":  fmt.Sprintf("%d", person.DaysUntil),
		},
		ClickAction: "/birthdays/" + person.ID,
	})
	if err != nil {
		return err
	}
	metrics.RemindersSent.Inc()
	return nil
}

// SendTestNotification lets a user confirm their devices receive pushes
func (s *Service) SendTestNotification(ctx context.Context, userID string) (int, error) {
	return s.SendToUser(ctx, userID, fcm.NotificationData{
		Title:       "🔔 Test Notification",
		Body:        "Birthday reminders are working!",
		Data:        map[string]string{"type": "test"},
		ClickAction: "/settings",
	})
}

// SendToUser pushes n to every active token of the user, using the user's sound.
// Tokens rejected as invalid are deleted. It returns the number of devices reached.
func (s *Service) SendToUser(ctx context.Context, userID string, n fcm.NotificationData) (int, error) {
	if s.push == nil {
		return 0, fcm.ErrUnavailable
	}

	tokens, err := s.tokens.GetActiveTokens(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return 0, fcm.ErrNoTokens
	}

	if n.Sound == "" {
		if settings, err := s.GetSettings(userID); err == nil {
			n.Sound = string(settings.Sound)
		}
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	result, err := s.push.SendToDevices(ctx, tokenStrings, n)
	if err != nil {
		return 0, err
	}

	for _, token := range result.InvalidTokens {
		if err := s.tokens.DeleteToken(ctx, userID, token); err != nil {
			s.log.Warn("delete invalid token failed", zap.String("token", logger.MaskToken(token)), zap.Error(err))
			continue
		}
		metrics.InvalidTokensPruned.Inc()
		s.log.Info("deleted invalid token", zap.String("user_id", userID), zap.String("token", logger.MaskToken(token)))
	}

	if result.SuccessCount == 0 {
		return 0, fmt.Errorf("push failed on all %d devices", len(tokenStrings))
	}
	return result.SuccessCount, nil
}
