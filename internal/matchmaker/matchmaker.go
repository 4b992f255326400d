package matchmaker

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// Matchmaker holds the single open game that waits for its second player.
type Matchmaker struct {
	mu        sync.Mutex
	open      *entity.Game
	boardSize int
	strict    bool
	newID     func() string
}

type Option func(*Matchmaker)

// WithIDGenerator replaces the uuid based game id generator.
func WithIDGenerator(gen func() string) Option {
	return func(that *Matchmaker) {
		that.newID = gen
	}
}

func New(boardSize int, strict bool, opts ...Option) *Matchmaker {
	that := &Matchmaker{
		boardSize: boardSize,
		strict:    strict,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(that)
	}

	that.open = that.newGame()

	return that
}

func (that *Matchmaker) newGame() *entity.Game {
	return entity.NewGame(that.newID(), that.boardSize, that.strict)
}

// Join seats playerID in the open game. When that fills the game it is
// returned with paired set and a fresh open game replaces it.
func (that *Matchmaker) Join(playerID string) (*entity.Game, bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	full, err := that.open.AddPlayer(playerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to join open game %s: %w", that.open.ID, err)
	}

	if !full {
		return that.open, false, nil
	}

	game := that.open
	that.open = that.newGame()

	return game, true, nil
}

// LeaveIfWaiting resets the open game when playerID is its only occupant.
func (that *Matchmaker) LeaveIfWaiting(playerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.open.Status() != entity.StatusWaiting {
		return false
	}

	if blueID, _ := that.open.Players(); blueID != playerID {
		return false
	}

	that.open.RemoveFirstPlayer()

	return true
}

// Waiting returns the player sitting in the open game, if any.
func (that *Matchmaker) Waiting() (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.open.Status() != entity.StatusWaiting {
		return "", false
	}

	blueID, _ := that.open.Players()

	return blueID, true
}
