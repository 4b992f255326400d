package repository

import (
	"context"
	"sync/atomic"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type memStatistics struct {
	playersActive atomic.Int64
	gamesStarted  atomic.Int64
	tilesPlaced   atomic.Int64
}

// NewMemoryStatisticsRepository keeps the counters for the life of the process.
func NewMemoryStatisticsRepository() StatisticsRepository {
	return &memStatistics{}
}

func (that *memStatistics) AddPlayersActive(_ context.Context, delta int64) error {
	that.playersActive.Add(delta)
	return nil
}

func (that *memStatistics) IncrGamesStarted(_ context.Context) error {
	that.gamesStarted.Add(1)
	return nil
}

func (that *memStatistics) IncrTilesPlaced(_ context.Context) error {
	that.tilesPlaced.Add(1)
	return nil
}

func (that *memStatistics) ResetPlayersActive(_ context.Context) error {
	that.playersActive.Store(0)
	return nil
}

func (that *memStatistics) Get(_ context.Context) (*entity.Statistics, error) {
	return &entity.Statistics{
		PlayersActive: that.playersActive.Load(),
		GamesStarted:  that.gamesStarted.Load(),
		TilesPlaced:   that.tilesPlaced.Load(),
	}, nil
}
