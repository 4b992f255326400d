package entity

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

type Status string

const (
	StatusEmpty      Status = "empty"
	StatusWaiting    Status = "waiting"
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
)

// Game is one two-player session. Blue is the first joiner and moves first.
type Game struct {
	ID     string
	Strict bool

	board  *Board
	blueID string
	redID  string
	turn   Color
	status Status
	moves  int
}

func NewGame(id string, boardSize int, strict bool) *Game {
	return &Game{
		ID:     id,
		Strict: strict,
		board:  NewBoard(boardSize),
		turn:   ColorBlue,
		status: StatusEmpty,
	}
}

// AddPlayer seats a player and reports whether the game is now full.
func (that *Game) AddPlayer(playerID string) (bool, error) {
	switch that.status {
	case StatusEmpty:
		that.blueID = playerID
		that.status = StatusWaiting

		return false, nil
	case StatusWaiting:
		that.redID = playerID
		that.status = StatusActive

		return true, nil
	case StatusTerminated:
		return false, apperror.ErrSessionTerminated
	default:
		return false, fmt.Errorf("%w: game %s", apperror.ErrSessionAlreadyFull, that.ID)
	}
}

// RemoveFirstPlayer empties the blue seat of a game that is still waiting.
func (that *Game) RemoveFirstPlayer() {
	if that.status != StatusWaiting {
		return
	}

	that.blueID = ""
	that.status = StatusEmpty
}

func (that *Game) Players() (string, string) {
	return that.blueID, that.redID
}

func (that *Game) ColorOf(playerID string) Color {
	switch {
	case playerID == "":
		return ColorNone
	case playerID == that.blueID:
		return ColorBlue
	case playerID == that.redID:
		return ColorRed
	default:
		return ColorNone
	}
}

func (that *Game) Status() Status {
	return that.status
}

func (that *Game) Turn() Color {
	return that.turn
}

func (that *Game) Moves() int {
	return that.moves
}

func (that *Game) Board() *Board {
	return that.board
}

func (that *Game) IsTerminated() bool {
	return that.status == StatusTerminated
}

func (that *Game) Terminate() {
	that.status = StatusTerminated
}

// PlaceTile puts a tile on the board and reports whether color has won.
// A winning move terminates the game.
func (that *Game) PlaceTile(index int, color Color) (bool, error) {
	if err := that.validateMove(index, color); err != nil {
		return false, err
	}

	if err := that.board.Place(index, color); err != nil {
		return false, fmt.Errorf("failed to place tile: %w", err)
	}

	that.moves++
	that.turn = color.Opponent()

	won := that.board.CheckWin(color)
	if won {
		that.status = StatusTerminated
	}

	return won, nil
}

func (that *Game) validateMove(index int, color Color) error {
	if that.status == StatusTerminated {
		return apperror.ErrSessionTerminated
	}

	cell, err := that.board.Cell(index)
	if err != nil {
		return err
	}

	if cell != ColorNone {
		return fmt.Errorf("%w: index %d", apperror.ErrCellOccupied, index)
	}

	if !that.Strict {
		return nil
	}

	if that.status != StatusActive || color != that.turn {
		return apperror.ErrNotYourTurn
	}

	if !that.board.Supported(index) {
		return fmt.Errorf("%w: index %d", apperror.ErrIllegalPlacement, index)
	}

	return nil
}
