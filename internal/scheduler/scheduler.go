package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/coursebot/internal/gateway"
	"github.com/example/coursebot/internal/reminder"
	"github.com/example/coursebot/pkg/models"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DefaultCrons are the reminder ticks, 09:00 and 18:30 UTC
var DefaultCrons = []string{"0 9 * * *", "30 18 * * *"}

const releaseTimeout = 5 * time.Second

// Store provides the schedule and the users to remind
type Store interface {
	GetActiveSchedule(ctx context.Context) (*models.Schedule, error)
	ListUserTimezones(ctx context.Context) ([]models.UserTimezone, error)
}

// DeliveryGuard remembers which reminders were already sent
type DeliveryGuard interface {
	ClaimDelivery(ctx context.Context, userID int64, kind, lessonDate string) (bool, error)
	ReleaseDelivery(ctx context.Context, userID int64, kind, lessonDate string) error
}

// Sender delivers reminder texts
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, opts ...gateway.Option) error
}

// Config controls reminder ticks
type Config struct {
	Crons     []string
	SendDelay time.Duration
}

// Report summarises one tick
type Report struct {
	Due     int
	Sent    int
	Skipped int // already delivered by an earlier tick
	Failed  int
}

// Scheduler manages scheduled reminder ticks
type Scheduler struct {
	scheduler *gocron.Scheduler
	engine    *reminder.Engine
	store     Store
	guard     DeliveryGuard
	sender    Sender
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler instance. A nil guard disables deduplication,
// so every tick inside a window sends again.
func New(engine *reminder.Engine, store Store, guard DeliveryGuard, sender Sender, cfg Config, logger *zap.Logger) *Scheduler {
	if len(cfg.Crons) == 0 {
		cfg.Crons = DefaultCrons
	}
	s := gocron.NewScheduler(time.UTC)
	// a tick that fires while another is still sending is dropped, not queued
	s.SetMaxConcurrentJobs(1, gocron.RescheduleMode)

	return &Scheduler{
		scheduler: s,
		engine:    engine,
		store:     store,
		guard:     guard,
		sender:    sender,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers one job per cron expression and begins running them.
// Stopping the scheduler or cancelling ctx aborts an in-flight tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, expr := range s.cfg.Crons {
		if _, err := s.scheduler.Cron(expr).Do(s.tick); err != nil {
			s.cancel()
			return fmt.Errorf("failed to schedule reminders at %q: %w", expr, err)
		}
	}

	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started", zap.Strings("crons", s.cfg.Crons))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
}

// Jobs returns the number of registered ticks
func (s *Scheduler) Jobs() int {
	return s.scheduler.Len()
}

func (s *Scheduler) tick() {
	report, err := s.RunOnce(s.ctx, s.now())
	switch {
	case errors.Is(err, reminder.ErrScheduleConfig):
		s.logger.Warn("schedule is misconfigured, skipping reminders", zap.Error(err))
	case err != nil:
		s.logger.Error("reminder tick failed", zap.Error(err))
	default:
		s.logger.Info("reminder tick finished",
			zap.Int("due", report.Due),
			zap.Int("sent", report.Sent),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)
	}
}

// RunOnce evaluates the schedule at now and sends every due reminder
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (Report, error) {
	var report Report

	schedule, err := s.store.GetActiveSchedule(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load schedule: %w", err)
	}
	if schedule == nil {
		s.logger.Debug("no schedule configured")
		return report, nil
	}

	users, err := s.store.ListUserTimezones(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load users: %w", err)
	}

	due, err := s.engine.Due(schedule, now, users)
	if err != nil {
		return report, err
	}
	report.Due = len(due)

	for i, n := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		log := s.logger.With(
			zap.Int64("user_id", n.UserID),
			zap.Stringer("kind", n.Kind),
			zap.String("lesson_date", n.LessonDate),
		)

		if s.guard != nil {
			claimed, err := s.guard.ClaimDelivery(ctx, n.UserID, n.Kind.String(), n.LessonDate)
			if err != nil {
				log.Error("failed to claim reminder", zap.Error(err))
				report.Failed++
				continue
			}
			if !claimed {
				report.Skipped++
				continue
			}
		}

		if err := s.sender.SendText(ctx, n.UserID, Message(n)); err != nil {
			log.Warn("failed to send reminder", zap.Error(err))
			report.Failed++
			if s.guard != nil {
				if err := s.release(ctx, n); err != nil {
					log.Error("failed to release reminder claim", zap.Error(err))
				}
			}
			continue
		}
		report.Sent++

		if i < len(due)-1 {
			if err := sleep(ctx, s.cfg.SendDelay); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

// release drops the claim of an unsent reminder. It outlives ctx so that a
// send aborted by shutdown can still be retried after a restart.
func (s *Scheduler) release(ctx context.Context, n reminder.Notification) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	return s.guard.ReleaseDelivery(ctx, n.UserID, n.Kind.String(), n.LessonDate)
}

// Message renders the reminder text for a notification
func Message(n reminder.Notification) string {
	switch n.Kind {
	case reminder.OneDayBefore:
		return fmt.Sprintf("📢 Не забудьте! Завтра в %s (по вашему времени) начнётся занятие по курсу изучения Библии.", n.LocalTime)
	default:
		return fmt.Sprintf("📢 Не забудьте! Сегодня в %s (по вашему времени) начнётся занятие по курсу изучения Библии.", n.LocalTime)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
