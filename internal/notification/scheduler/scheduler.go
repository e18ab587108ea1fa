package scheduler

import (
	"context"
	"sync"
	"time"

	"remind-candles/internal/notification"

	"go.uber.org/zap"
)

// Checker runs one birthday check
type Checker interface {
	CheckForBirthdays(ctx context.Context, now time.Time) (*notification.CheckSummary, error)
}

// DailyScheduler runs the birthday check once at start and then every day at a fixed clock time
type DailyScheduler struct {
	checker  Checker
	hour     int
	minute   int
	location *time.Location
	log      *zap.Logger
	now      func() time.Time

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewDailyScheduler creates a new scheduler firing at hour:minute in loc
func NewDailyScheduler(checker Checker, hour, minute int, loc *time.Location, log *zap.Logger) *DailyScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &DailyScheduler{
		checker:  checker,
		hour:     hour,
		minute:   minute,
		location: loc,
		log:      log.Named("scheduler"),
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// NextRun returns the first hour:minute in loc strictly after now
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// Run blocks until ctx is done or Stop is called. The next run is recomputed
// from the wall clock after every check, so it does not drift.
func (s *DailyScheduler) Run(ctx context.Context) error {
	defer close(s.done)

	s.log.Info("starting birthday scheduler",
		zap.String("check_time", time.Date(0, 1, 1, s.hour, s.minute, 0, 0, time.UTC).Format("15:04")),
		zap.String("timezone", s.location.String()))

	// Run immediately on start
	s.check(ctx)

	for {
		next := NextRun(s.now(), s.hour, s.minute, s.location)
		s.log.Debug("next birthday check scheduled", zap.Time("at", next))

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-timer.C:
			s.check(ctx)
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("scheduler stopped")
			return nil
		case <-s.stopChan:
			timer.Stop()
			s.log.Info("scheduler stopped")
			return nil
		}
	}
}

// Start runs the scheduler in the background
func (s *DailyScheduler) Start(ctx context.Context) {
	go func() { _ = s.Run(ctx) }()
}

// Stop ends the loop and waits for an in-flight check to finish
func (s *DailyScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

func (s *DailyScheduler) check(ctx context.Context) {
	if _, err := s.checker.CheckForBirthdays(ctx, s.now()); err != nil {
		s.log.Error("birthday check failed", zap.Error(err))
	}
}
