package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"inkflow/internal/clock"
	"inkflow/internal/config"
	"inkflow/internal/database"
	"inkflow/internal/logging"
	"inkflow/internal/queue"
	"inkflow/internal/reminder"
	"inkflow/internal/repository"
	"inkflow/internal/service"
)

// app holds everything a command needs
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	logs    *logging.Result
	db      *database.DB
	clock   clock.Clock
	cardsDB *repository.CardRepository
	boxesDB *repository.SettingsRepository
	reviews *repository.ReviewRepository

	cards     *service.CardService
	boxes     *service.BoxService
	review    *service.ReviewService
	analytics *service.AnalyticsService
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if v.GetBool(FlagVerbose) {
		cfg.LogLevel = "debug"
	}

	logs, err := logging.Setup(cfg)
	if err != nil {
		return nil, err
	}
	logger := logs.Logger

	db, err := database.Open(cfg)
	if err != nil {
		logs.Close()
		return nil, err
	}
	if err := db.RunMigrations(ctx, logger); err != nil {
		db.Close()
		logs.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		logs:    logs,
		db:      db,
		clock:   clock.System(),
		cardsDB: repository.NewCardRepository(db),
		boxesDB: repository.NewSettingsRepository(db),
		reviews: repository.NewReviewRepository(db),
	}
	a.cards = service.NewCardService(a.cardsDB, a.boxesDB, a.clock, logger)
	a.boxes = service.NewBoxService(a.boxesDB)
	a.review = service.NewReviewService(a.cardsDB, a.boxesDB, a.reviews, a.clock, queue.NewBuilder(nil), logger)
	a.analytics = service.NewAnalyticsService(a.cardsDB, a.boxesDB, a.reviews, a.clock, time.Local)
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.logs != nil {
		a.logs.Close()
	}
}

func (a *app) reminderChecker(ctx context.Context) (*reminder.Checker, error) {
	notifier, err := reminder.NewNotifier(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	recipients := []reminder.Recipient{{UserID: a.cfg.UserID, Email: a.cfg.ReminderEmail}}
	window := reminder.Window{StartHour: a.cfg.ReminderStartHour, EndHour: a.cfg.ReminderEndHour}
	return reminder.NewChecker(a.cardsDB, notifier, recipients, window, a.clock, time.Local, a.logger), nil
}
