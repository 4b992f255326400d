package apperror

import "errors"

var (
	ErrIndexOutOfRange    = errors.New("cell index out of range")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrSessionAlreadyFull = errors.New("session already has two players")
	ErrSessionTerminated  = errors.New("session is terminated")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrWrongColor         = errors.New("color does not belong to player")
	ErrIllegalPlacement   = errors.New("tile must rest on the bottom row or another tile")
	ErrNotPaired          = errors.New("connection is not paired")
)
