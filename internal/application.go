package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-league/internal/config"
	"github.com/rocketscienceinc/tictactoe-league/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-league/internal/repository"
	"github.com/rocketscienceinc/tictactoe-league/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-league/internal/service"
	"github.com/rocketscienceinc/tictactoe-league/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-league/internal/worker"
	"github.com/rocketscienceinc/tictactoe-league/transport/rest"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	players repository.PlayerRepository
	games   repository.GameRepository
	scores  repository.ScoreRepository
	stats   repository.StatsRepository

	closers []io.Closer
}

func (that *repositories) Close(log *slog.Logger) {
	for _, closer := range that.closers {
		if err := closer.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}
}

// RunApp - runs the application until SIGINT/SIGTERM or a server failure.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	repos, err := openRepositories(ctx, conf)
	if err != nil {
		return err
	}
	defer repos.Close(log)

	scheduler, err := worker.New(logger, worker.Config{
		AverageMovesInterval: conf.Jobs.AverageMovesInterval,
		ReminderInterval:     conf.Jobs.ReminderInterval,
	})
	if err != nil {
		return err
	}

	promMetrics := metrics.New()

	manager := usecase.NewGameManager(logger, repos.players, repos.games, repos.scores, repos.stats,
		usecase.WithRefreshTrigger(scheduler),
		usecase.WithRecorder(promMetrics),
	)

	if err = scheduler.Register(manager, newNotifier(logger, conf.Mail)); err != nil {
		return err
	}

	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Error("could not stop scheduler", "error", err)
		}
	}()

	server := rest.New(logger, conf.HTTPPort, rest.NewRouter(logger, manager, promMetrics))

	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- server.Start()
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("received signal, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

func openRepositories(ctx context.Context, conf *config.Config) (*repositories, error) {
	repos := &repositories{}

	var redisStorage *storage.RedisStorage
	if conf.UsesRedis() {
		var err error
		redisStorage, err = storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}
		repos.closers = append(repos.closers, redisStorage)
	}

	switch conf.Storage.Driver {
	case config.DriverRedis:
		repos.players = repository.NewPlayerRepository(redisStorage.Connection)
		repos.games = repository.NewGameRepository(redisStorage.Connection)
		repos.stats = repository.NewStatsRepository(redisStorage.Connection)
	default:
		repos.players = repository.NewMemoryPlayerRepository()
		repos.games = repository.NewMemoryGameRepository()
		repos.stats = repository.NewMemoryStatsRepository()
	}

	switch conf.Storage.ScoreLedger {
	case config.DriverRedis:
		repos.scores = repository.NewScoreRepository(redisStorage.Connection)
	case config.DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.Storage.SQLitePath)
		if err != nil {
			repos.Close(slog.Default())
			return nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}
		repos.closers = append(repos.closers, sqliteStorage)

		if err = sqliteStorage.Init(ctx); err != nil {
			repos.Close(slog.Default())
			return nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		repos.scores = repository.NewSQLiteScoreRepository(sqliteStorage.Connection)
	default:
		repos.scores = repository.NewMemoryScoreRepository()
	}

	return repos, nil
}

// newNotifier - SMTP when a mail host is configured, log output otherwise.
func newNotifier(logger *slog.Logger, conf config.Mail) service.Notifier {
	if conf.Host == "" {
		return service.NewLogNotifier(logger)
	}

	return service.NewSMTPNotifier(logger, conf.Host, conf.Port, conf.Username, conf.Password, conf.From)
}
