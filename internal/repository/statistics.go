package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	statisticsKey = "statistics"

	fieldPlayersActive = "players_active"
	fieldGamesStarted  = "games_started"
	fieldTilesPlaced   = "tiles_placed"
)

type StatisticsRepository interface {
	AddPlayersActive(ctx context.Context, delta int64) error
	IncrGamesStarted(ctx context.Context) error
	IncrTilesPlaced(ctx context.Context) error
	ResetPlayersActive(ctx context.Context) error
	Get(ctx context.Context) (*entity.Statistics, error)
}

type dbStatistics struct {
	client *redis.Client
}

// NewStatisticsRepository keeps the counters in a redis hash so that game and
// tile totals outlive the process.
func NewStatisticsRepository(client *redis.Client) StatisticsRepository {
	return &dbStatistics{
		client: client,
	}
}

func (that *dbStatistics) incr(ctx context.Context, field string, delta int64) error {
	if err := that.client.HIncrBy(ctx, statisticsKey, field, delta).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}

	return nil
}

func (that *dbStatistics) AddPlayersActive(ctx context.Context, delta int64) error {
	return that.incr(ctx, fieldPlayersActive, delta)
}

func (that *dbStatistics) IncrGamesStarted(ctx context.Context) error {
	return that.incr(ctx, fieldGamesStarted, 1)
}

func (that *dbStatistics) IncrTilesPlaced(ctx context.Context) error {
	return that.incr(ctx, fieldTilesPlaced, 1)
}

// ResetPlayersActive zeroes the live player count left over from a previous run.
func (that *dbStatistics) ResetPlayersActive(ctx context.Context) error {
	if err := that.client.HSet(ctx, statisticsKey, fieldPlayersActive, 0).Err(); err != nil {
		return fmt.Errorf("failed to reset %s: %w", fieldPlayersActive, err)
	}

	return nil
}

func (that *dbStatistics) Get(ctx context.Context) (*entity.Statistics, error) {
	var stats entity.Statistics

	if err := that.client.HGetAll(ctx, statisticsKey).Scan(&stats); err != nil {
		return &entity.Statistics{}, fmt.Errorf("failed to get statistics: %w", err)
	}

	return &stats, nil
}
