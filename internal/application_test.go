package application

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectfour-backend/internal/config"
	"github.com/rocketscienceinc/connectfour-backend/testing/suite"
)

func TestNewStatisticsRepository(t *testing.T) {
	t.Run("Memory when redis is disabled", func(t *testing.T) {
		ctx := context.Background()
		log := slog.New(slog.NewTextHandler(io.Discard, nil))

		// When
		stats, closeFn, err := newStatisticsRepository(ctx, log, &config.Config{})

		// Then
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, stats.IncrGamesStarted(ctx))
		got, err := stats.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.GamesStarted)
	})

	t.Run("Redis when enabled", func(t *testing.T) {
		ctx, st := suite.New(t)

		host, port, err := net.SplitHostPort(st.RedisAddr)
		require.NoError(t, err)

		conf := &config.Config{Redis: config.Redis{Enabled: true, Host: host, Port: port}}

		// When
		stats, closeFn, err := newStatisticsRepository(ctx, st.Logger, conf)

		// Then: counters land in the shared redis hash
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, stats.IncrTilesPlaced(ctx))
		tiles, err := st.Storage.HGet(ctx, "statistics", "tiles_placed").Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(1), tiles)
	})

	t.Run("Unreachable redis", func(t *testing.T) {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		conf := &config.Config{Redis: config.Redis{Enabled: true, Host: "127.0.0.1", Port: "1"}}

		_, _, err := newStatisticsRepository(context.Background(), log, conf)

		require.Error(t, err)
	})
}
