package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/coursebot/internal/bot"
	"github.com/example/coursebot/internal/broadcast"
	"github.com/example/coursebot/internal/config"
	"github.com/example/coursebot/internal/database"
	"github.com/example/coursebot/internal/dialog"
	"github.com/example/coursebot/internal/gateway"
	"github.com/example/coursebot/internal/reminder"
	"github.com/example/coursebot/internal/scheduler"
	"github.com/example/coursebot/internal/timezone"
)

// App owns every long-lived component
type App struct {
	cfg       config.Config
	log       *zap.Logger
	db        *database.DB
	states    dialog.Store
	api       *tgbotapi.BotAPI
	bot       *bot.Bot
	scheduler *scheduler.Scheduler
	httpSrv   *http.Server
}

// New connects to the database and the Bot API and wires the components together
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.SeedDefaultSchedule(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	store := database.NewStore(db)

	var states dialog.Store = dialog.NewMemoryStore(cfg.DialogTTL)
	if cfg.RedisURL != "" {
		rs, err := dialog.NewRedisStore(ctx, cfg.RedisURL, cfg.DialogTTL)
		if err != nil {
			db.Close()
			return nil, err
		}
		states = rs
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		closeStates(states)
		db.Close()
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = false
	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	gw := gateway.NewTelegram(api)
	engine := reminder.NewEngine(cfg.FallbackLocation())

	var guard scheduler.DeliveryGuard
	if cfg.ReminderDedup {
		guard = store
	}
	sched := scheduler.New(engine, store, guard, gw, scheduler.Config{
		Crons:     cfg.ReminderCrons,
		SendDelay: cfg.SendDelay,
	}, log.Named("scheduler"))

	b := bot.New(gw, store, states,
		timezone.NewResolver(),
		broadcast.NewDispatcher(gw, cfg.SendDelay, log.Named("broadcast")),
		engine.Tokens(),
		bot.Config{
			AdminID:          cfg.AdminID,
			SupportUsername:  cfg.SupportUsername,
			FAQPath:          cfg.FAQPath,
			FallbackTimezone: cfg.FallbackTimezone,
		},
		log.Named("bot"),
	)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewRouter(store, log.Named("http")),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{
		cfg:       cfg,
		log:       log,
		db:        db,
		states:    states,
		api:       api,
		bot:       b,
		scheduler: sched,
		httpSrv:   srv,
	}, nil
}

// Run serves until SIGINT/SIGTERM or a component fails, then shuts down in reverse order
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("starting course bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Bool("reminder_dedup", a.cfg.ReminderDedup),
		zap.Bool("redis_state", a.cfg.RedisURL != ""),
	)

	if err := a.scheduler.Start(ctx); err != nil {
		a.close()
		return err
	}
	a.log.Info("reminder jobs registered", zap.Int("jobs", a.scheduler.Jobs()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpSrv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := a.api.GetUpdatesChan(u)

		a.bot.Poll(gctx, updates)
		a.api.StopReceivingUpdates()

		if gctx.Err() == nil {
			return errors.New("telegram updates channel closed")
		}
		return nil
	})

	err := g.Wait()
	a.log.Info("shutting down")
	a.close()
	return err
}

func (a *App) close() {
	a.scheduler.Stop()
	a.bot.Wait()
	closeStates(a.states)
	if err := a.db.Close(); err != nil {
		a.log.Warn("database close error", zap.Error(err))
	}
}

func closeStates(s dialog.Store) {
	if c, ok := s.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}
