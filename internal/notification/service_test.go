package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	authdomain "remind-candles/internal/auth/domain"
	authrepo "remind-candles/internal/auth/repository"
	bdomain "remind-candles/internal/birthday/domain"
	brepo "remind-candles/internal/birthday/repository"
	"remind-candles/internal/notification/domain"
	"remind-candles/internal/notification/repository"
	"remind-candles/internal/wishing"
	"remind-candles/pkg/database"
	"remind-candles/pkg/fcm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePush struct {
	mu      sync.Mutex
	invalid map[string]bool
	err     error
	sent    []fcm.NotificationData
	tokens  [][]string
}

func (p *fakePush) SendToDevices(ctx context.Context, tokens []string, n fcm.NotificationData) (*fcm.SendResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.sent = append(p.sent, n)
	p.tokens = append(p.tokens, tokens)

	res := &fcm.SendResult{}
	for _, t := range tokens {
		if p.invalid[t] {
			res.FailureCount++
			res.InvalidTokens = append(res.InvalidTokens, t)
		} else {
			res.SuccessCount++
		}
	}
	return res, nil
}

type fakeWisher struct {
	mu     sync.Mutex
	err    error
	wished []string
	owners []wishing.Owner
	days   []time.Time
}

func (w *fakeWisher) SendBirthdayWish(ctx context.Context, owner wishing.Owner, b *bdomain.Birthday, now time.Time) (*wishing.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wished = append(w.wished, b.Name)
	w.owners = append(w.owners, owner)
	w.days = append(w.days, now)
	if w.err != nil {
		return &wishing.Result{}, w.err
	}
	return &wishing.Result{Channel: wishing.ChannelPush}, nil
}

type fixture struct {
	svc       *Service
	push      *fakePush
	wisher    *fakeWisher
	users     authrepo.UserRepository
	tokens    authrepo.PushTokenRepository
	birthdays brepo.BirthdayRepository
	settings  repository.SettingsRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{}, &authdomain.PushToken{}, &bdomain.Birthday{},
		&domain.NotificationSettings{}, &domain.ReminderLog{},
	))

	f := &fixture{
		push:      &fakePush{invalid: map[string]bool{}},
		wisher:    &fakeWisher{},
		users:     authrepo.NewUserRepository(db),
		tokens:    authrepo.NewPushTokenRepository(db),
		birthdays: brepo.NewGormBirthdayRepository(db),
		settings:  repository.NewGormSettingsRepository(db),
	}
	f.svc = NewService(f.users, f.birthdays, f.settings, repository.NewGormReminderLogRepository(db), f.tokens, f.push, time.UTC, zap.NewNop())
	f.svc.SetWishDispatcher(f.wisher)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, enabled bool, advance int) string {
	t.Helper()
	u := &authdomain.User{Email: email, Name: "Owner " + email, Provider: authdomain.ProviderEmail}
	require.NoError(t, f.users.Create(u))
	s := domain.DefaultSettings(u.ID)
	s.Enabled = enabled
	s.AdvanceDays = advance
	require.NoError(t, f.settings.Save(s))
	require.NoError(t, f.tokens.SaveToken(context.Background(), u.ID, "token-"+email, authdomain.DeviceInfo{Platform: "web"}))
	return u.ID
}

func (f *fixture) addBirthday(t *testing.T, userID, name string, date time.Time, yearKnown bool) *bdomain.Birthday {
	t.Helper()
	b := &bdomain.Birthday{ID: name + "-" + userID, UserID: userID, Name: name, Email: "x@example.com"}
	b.SetBirthDate(date, yearKnown)
	require.NoError(t, f.birthdays.Create(b))
	return b
}

var checkTime = time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

func TestCheckForBirthdays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice@example.com", true, 0)
	bob := f.addUser(t, "bob@example.com", true, 3)
	carol := f.addUser(t, "carol@example.com", false, 0)

	f.addBirthday(t, alice, "Dan", time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), true)
	f.addBirthday(t, alice, "Eve", time.Date(1990, time.March, 18, 0, 0, 0, 0, time.UTC), true)
	f.addBirthday(t, bob, "Fay", time.Date(2000, time.March, 18, 0, 0, 0, 0, time.UTC), true)
	f.addBirthday(t, bob, "Gus", time.Date(2000, time.March, 15, 0, 0, 0, 0, time.UTC), false)
	f.addBirthday(t, carol, "Hal", time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), true)

	summary, err := f.svc.CheckForBirthdays(ctx, checkTime)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", summary.Date)
	assert.Equal(t, 2, summary.UsersChecked)
	assert.Equal(t, 2, summary.RemindersDue)
	assert.Equal(t, 2, summary.WishesDue)
	assert.Zero(t, summary.EventsFailed)

	bodies := map[string]bool{}
	for _, n := range f.push.sent {
		bodies[n.Body] = true
		assert.Equal(t, "🎂 Birthday Reminder!", n.Title)
		assert.Equal(t, "birthday-tune", n.Sound)
	}
	assert.True(t, bodies["Dan turns 35 today! Time to celebrate! 🎉"])
	assert.True(t, bodies["Fay turns 25 in 3 days! Time to celebrate! 🎉"])

	assert.ElementsMatch(t, []string{"Dan", "Gus"}, f.wisher.wished)
	for _, d := range f.wisher.days {
		assert.Equal(t, "2025-03-15", d.Format(time.DateOnly))
	}

	// A second run on the same day does not repeat reminders
	_, err = f.svc.CheckForBirthdays(ctx, checkTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, f.push.sent, 2)
}

func TestSendToUserPrunesInvalidTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.addUser(t, "alice@example.com", true, 0)
	require.NoError(t, f.tokens.SaveToken(ctx, userID, "stale-token", authdomain.DeviceInfo{}))
	f.push.invalid["stale-token"] = true

	reached, err := f.svc.SendTestNotification(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, reached)

	tokens, err := f.tokens.GetActiveTokens(ctx, userID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "token-alice@example.com", tokens[0].Token)
}

func TestSendToUserErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendToUser(ctx, "nobody", fcm.NotificationData{Title: "x"})
	assert.ErrorIs(t, err, fcm.ErrNoTokens)

	userID := f.addUser(t, "alice@example.com", true, 0)
	f.push.invalid["token-alice@example.com"] = true
	_, err = f.svc.SendToUser(ctx, userID, fcm.NotificationData{Title: "x"})
	assert.Error(t, err)

	noPush := NewService(f.users, f.birthdays, f.settings, nil, f.tokens, nil, time.UTC, zap.NewNop())
	_, err = noPush.SendToUser(ctx, userID, fcm.NotificationData{Title: "x"})
	assert.ErrorIs(t, err, fcm.ErrUnavailable)
}

func TestFailedReminderIsRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice@example.com", true, 1)
	f.addBirthday(t, alice, "Dan", time.Date(1990, time.March, 16, 0, 0, 0, 0, time.UTC), true)

	f.push.err = errors.New("fcm unavailable")
	summary, err := f.svc.CheckForBirthdays(ctx, checkTime)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EventsFailed)

	f.push.err = nil
	summary, err = f.svc.CheckForBirthdays(ctx, checkTime)
	require.NoError(t, err)
	assert.Zero(t, summary.EventsFailed)
	require.Len(t, f.push.sent, 1)
	assert.Equal(t, "Dan turns 35 in 1 day! Time to celebrate! 🎉", f.push.sent[0].Body)
}

func TestHandleWishEventUsesOwnerAndEventDate(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", true, 0)
	b := f.addBirthday(t, alice, "Dan", time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), true)

	err := f.svc.HandleEvent(context.Background(), domain.BirthdayEvent{
		Kind: domain.EventWish, UserID: alice, BirthdayID: b.ID, Name: "Dan", Date: "2025-03-15",
	})
	require.NoError(t, err)
	require.Len(t, f.wisher.owners, 1)
	assert.Equal(t, "Owner alice@example.com", f.wisher.owners[0].Name)

	// Deleted birthdays are ignored
	err = f.svc.HandleEvent(context.Background(), domain.BirthdayEvent{
		Kind: domain.EventWish, UserID: alice, BirthdayID: "gone", Date: "2025-03-15",
	})
	require.NoError(t, err)
	assert.Len(t, f.wisher.owners, 1)

	assert.Error(t, f.svc.HandleEvent(context.Background(), domain.BirthdayEvent{Kind: "party"}))
}

func TestHandleWishEventOutcomes(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", true, 0)
	b := f.addBirthday(t, alice, "Dan", time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), true)
	event := domain.BirthdayEvent{Kind: domain.EventWish, UserID: alice, BirthdayID: b.ID, Name: "Dan", Date: "2025-03-15"}

	// Acked: redelivery cannot change the outcome
	f.wisher.err = wishing.ErrNoApplicableChannel
	assert.NoError(t, f.svc.HandleEvent(context.Background(), event))
	f.wisher.err = wishing.ErrAlreadyWished
	assert.NoError(t, f.svc.HandleEvent(context.Background(), event))

	// Retried: a channel may recover
	f.wisher.err = wishing.ErrAllChannelsFailed
	assert.ErrorIs(t, f.svc.HandleEvent(context.Background(), event), wishing.ErrAllChannelsFailed)
}

func TestHandleReceivedEventDropsStaleEvents(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return checkTime.Add(24 * time.Hour) }
	alice := f.addUser(t, "alice@example.com", true, 0)
	b := f.addBirthday(t, alice, "Dan", time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), true)

	err := f.svc.HandleReceivedEvent(context.Background(), domain.BirthdayEvent{
		Kind: domain.EventWish, UserID: alice, BirthdayID: b.ID, Name: "Dan", Date: "2025-03-15",
	})
	require.NoError(t, err)
	assert.Empty(t, f.wisher.wished)

	err = f.svc.HandleReceivedEvent(context.Background(), domain.BirthdayEvent{
		Kind: domain.EventReminder, UserID: alice, BirthdayID: b.ID, Name: "Dan", Date: "2025-03-15",
	})
	require.NoError(t, err)
	assert.Empty(t, f.push.sent)

	// Same-day events still go through
	err = f.svc.HandleReceivedEvent(context.Background(), domain.BirthdayEvent{
		Kind: domain.EventWish, UserID: alice, BirthdayID: b.ID, Name: "Dan", Date: "2025-03-16",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dan"}, f.wisher.wished)
}

func TestSettingsDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	s, err := f.svc.GetSettings("new-user")
	require.NoError(t, err)
	assert.Equal(t, domain.SoundBirthdayTune, s.Sound)
	assert.False(t, s.Enabled)
	assert.Zero(t, s.AdvanceDays)

	s.AdvanceDays = 5
	assert.ErrorIs(t, f.svc.UpdateSettings(s), domain.ErrInvalidSettings)

	s.AdvanceDays = 1
	s.Enabled = true
	require.NoError(t, f.svc.UpdateSettings(s))

	got, err := f.svc.GetSettings("new-user")
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.Equal(t, 1, got.AdvanceDays)
}

func TestReminderText(t *testing.T) {
	age := 30
	_, body := ReminderText(BirthdayPerson{Name: "Ann", Age: &age})
	assert.Equal(t, "Ann turns 30 today! Time to celebrate! 🎉", body)

	_, body = ReminderText(BirthdayPerson{Name: "Ann", DaysUntil: 3})
	assert.Equal(t, "Ann in 3 days! Time to celebrate! 🎉", body)
}
