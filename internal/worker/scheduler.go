package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
	"github.com/rocketscienceinc/tictactoe-league/internal/service"
)

const (
	averageMovesJob = "average-moves"
	settlementsJob  = "settlements"
	remindersJob    = "reminders"

	jobTimeout = time.Minute
)

type league interface {
	RefreshAverageMoves(ctx context.Context) (string, error)
	SettlePending(ctx context.Context) (int, error)
	PlayersWithActiveGames(ctx context.Context) ([]*entity.Player, error)
}

type Config struct {
	// AverageMovesInterval - also paces the sweep over interrupted settlements.
	AverageMovesInterval time.Duration
	// ReminderInterval - zero or negative disables reminders.
	ReminderInterval time.Duration
}

// Scheduler - background jobs keeping the cached average fresh, finishing interrupted settlements and reminding players about open games.
type Scheduler struct {
	logger    *slog.Logger
	config    Config
	scheduler gocron.Scheduler

	averageJob gocron.Job

	league   league
	notifier service.Notifier
}

func New(logger *slog.Logger, config Config) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		logger:    logger.With("component", "scheduler"),
		config:    config,
		scheduler: scheduler,
	}, nil
}

// Register - adds the jobs. Called once the game manager exists, since the manager itself triggers refreshes.
func (that *Scheduler) Register(manager league, notifier service.Notifier) error {
	that.league = manager
	that.notifier = notifier

	job, err := that.scheduler.NewJob(
		gocron.DurationJob(that.config.AverageMovesInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			_ = that.RefreshAverageMoves(ctx)
		}),
		gocron.WithName(averageMovesJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register %s job: %w", averageMovesJob, err)
	}
	that.averageJob = job

	if _, err = that.scheduler.NewJob(
		gocron.DurationJob(that.config.AverageMovesInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			_ = that.SettlePending(ctx)
		}),
		gocron.WithName(settlementsJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("failed to register %s job: %w", settlementsJob, err)
	}

	if that.config.ReminderInterval <= 0 {
		that.logger.Info("reminders disabled")
		return nil
	}

	if _, err = that.scheduler.NewJob(
		gocron.DurationJob(that.config.ReminderInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			that.SendReminders(ctx)
		}),
		gocron.WithName(remindersJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("failed to register %s job: %w", remindersJob, err)
	}

	return nil
}

func (that *Scheduler) Start() {
	that.scheduler.Start()
	that.logger.Info("scheduler started", "jobs", len(that.scheduler.Jobs()))
}

func (that *Scheduler) Shutdown() error {
	if err := that.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}

	return nil
}

// TriggerAverageMovesRefresh - runs the average job out of schedule. Never blocks the caller on the job itself.
func (that *Scheduler) TriggerAverageMovesRefresh() {
	if that.averageJob == nil {
		return
	}

	if err := that.averageJob.RunNow(); err != nil {
		that.logger.Warn("failed to trigger average moves refresh", "error", err)
	}
}

func (that *Scheduler) RefreshAverageMoves(ctx context.Context) error {
	log := that.logger.With("method", "RefreshAverageMoves")

	message, err := that.league.RefreshAverageMoves(ctx)
	if err != nil {
		log.Error("failed to refresh average moves", "error", err)
		return err
	}

	log.Debug("average moves cached", "message", message)

	return nil
}

// SettlePending - completes games whose profile and score bookkeeping was interrupted.
func (that *Scheduler) SettlePending(ctx context.Context) error {
	log := that.logger.With("method", "SettlePending")

	settled, err := that.league.SettlePending(ctx)
	if settled > 0 {
		log.Info("settlements resumed", "games", settled)
	}

	if err != nil {
		log.Error("failed to settle pending games", "error", err)
		return err
	}

	return nil
}

// SendReminders - one reminder per player with an email and an unfinished game. Returns how many went out.
func (that *Scheduler) SendReminders(ctx context.Context) int {
	log := that.logger.With("method", "SendReminders")

	players, err := that.league.PlayersWithActiveGames(ctx)
	if err != nil {
		log.Error("failed to list players with active games", "error", err)
		return 0
	}

	var sent int
	for _, player := range players {
		if player.Email == "" {
			continue
		}

		if err = that.notifier.SendReminder(ctx, player.Email, player.Name); err != nil {
			log.Error("failed to send reminder", "player", player.Name, "error", err)
			continue
		}

		sent++
	}

	log.Info("reminders sent", "sent", sent, "players", len(players))

	return sent
}
