package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/connectfour-backend/internal/config"
	"github.com/rocketscienceinc/connectfour-backend/internal/matchmaker"
	"github.com/rocketscienceinc/connectfour-backend/internal/registry"
	"github.com/rocketscienceinc/connectfour-backend/internal/repository"
	"github.com/rocketscienceinc/connectfour-backend/internal/repository/storage"
	"github.com/rocketscienceinc/connectfour-backend/internal/usecase"
	"github.com/rocketscienceinc/connectfour-backend/transport/rest"
	"github.com/rocketscienceinc/connectfour-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, closeStats, err := newStatisticsRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStats()

	if err = stats.ResetPlayersActive(ctx); err != nil {
		log.Warn("could not reset active players", "error", err)
	}

	settleDelay := conf.SettleDelay
	if settleDelay <= 0 {
		settleDelay = usecase.DefaultSettleDelay
	}

	manager := usecase.NewSessionManager(
		logger,
		registry.New(),
		matchmaker.New(conf.BoardSize, !conf.LegacyMoves),
		stats,
		quartz.NewReal(),
		settleDelay,
	)
	defer manager.Shutdown()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, stats).Start(ctx, conf.HTTPPort); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}

		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort,
			"boardSize", conf.BoardSize, "settleDelay", settleDelay, "legacyMoves", conf.LegacyMoves)
		if wsErr := websocket.New(logger, manager).Start(ctx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("Application context canceled, shutting down")

		return nil
	})

	return group.Wait()
}

// newStatisticsRepository picks the Redis backed counters when enabled and
// falls back to in-process ones otherwise.
func newStatisticsRepository(
	ctx context.Context,
	log *slog.Logger,
	conf *config.Config,
) (repository.StatisticsRepository, func(), error) {
	if !conf.Redis.Enabled {
		log.Info("Using in-memory statistics")
		return repository.NewMemoryStatisticsRepository(), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Using redis statistics", "addr", redisAddrString)

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewStatisticsRepository(redisStorage.Connection), closeFn, nil
}
