package entity

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

type Color string

const (
	ColorNone Color = ""
	ColorBlue Color = "blue"
	ColorRed  Color = "red"
)

const (
	DefaultBoardSize = 7
	WinLength        = 4
)

// directions are the run vectors checked for a win: horizontal, both diagonals and vertical.
var directions = [4][2]int{
	{0, 1},
	{1, 1},
	{1, 0},
	{1, -1},
}

func (that Color) IsValid() bool {
	return that == ColorBlue || that == ColorRed
}

// Opponent returns the other player's color.
func (that Color) Opponent() Color {
	switch that {
	case ColorBlue:
		return ColorRed
	case ColorRed:
		return ColorBlue
	default:
		return ColorNone
	}
}

// Board is a square grid addressed row-major, row 0 at the top.
type Board struct {
	size  int
	cells []Color
}

func NewBoard(size int) *Board {
	if size < WinLength {
		size = DefaultBoardSize
	}

	return &Board{
		size:  size,
		cells: make([]Color, size*size),
	}
}

func (that *Board) Size() int {
	return that.size
}

func (that *Board) inRange(index int) bool {
	return index >= 0 && index < len(that.cells)
}

// Place writes color into the cell at index. It does not check occupancy.
func (that *Board) Place(index int, color Color) error {
	if !that.inRange(index) {
		return fmt.Errorf("%w: index %d", apperror.ErrIndexOutOfRange, index)
	}

	that.cells[index] = color

	return nil
}

func (that *Board) Cell(index int) (Color, error) {
	if !that.inRange(index) {
		return ColorNone, fmt.Errorf("%w: index %d", apperror.ErrIndexOutOfRange, index)
	}

	return that.cells[index], nil
}

func (that *Board) IsEmpty(index int) bool {
	return that.inRange(index) && that.cells[index] == ColorNone
}

// Supported reports whether a tile dropped at index would rest there:
// it is on the bottom row or the cell below it is filled.
func (that *Board) Supported(index int) bool {
	if !that.inRange(index) {
		return false
	}

	below := index + that.size
	if below >= len(that.cells) {
		return true
	}

	return that.cells[below] != ColorNone
}

func (that *Board) Full() bool {
	for _, cell := range that.cells {
		if cell == ColorNone {
			return false
		}
	}

	return true
}

// CheckWin reports whether color holds WinLength contiguous cells in any direction.
func (that *Board) CheckWin(color Color) bool {
	if color == ColorNone {
		return false
	}

	for _, dir := range directions {
		dy, dx := dir[0], dir[1]

		for y := range that.size {
			for x := range that.size {
				if that.runFrom(y, x, dy, dx, color) {
					return true
				}
			}
		}
	}

	return false
}

func (that *Board) runFrom(y, x, dy, dx int, color Color) bool {
	endY, endX := y+(WinLength-1)*dy, x+(WinLength-1)*dx
	if endY < 0 || endY >= that.size || endX < 0 || endX >= that.size {
		return false
	}

	for step := range WinLength {
		if that.cells[(y+step*dy)*that.size+x+step*dx] != color {
			return false
		}
	}

	return true
}
