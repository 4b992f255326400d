package entity

import (
	"testing"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardWith(t *testing.T, size int, color Color, indexes ...int) *Board {
	t.Helper()

	board := NewBoard(size)
	for _, index := range indexes {
		require.NoError(t, board.Place(index, color))
	}

	return board
}

func TestBoard_Place(t *testing.T) {
	t.Run("Writes the color into the addressed cell", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard(DefaultBoardSize)

		// When: a tile is placed at row 2, column 3
		err := board.Place(2*DefaultBoardSize+3, ColorRed)

		// Then: the cell holds the color
		require.NoError(t, err)
		cell, err := board.Cell(17)
		require.NoError(t, err)
		assert.Equal(t, ColorRed, cell)
	})

	t.Run("Rejects an index past the last cell", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard(DefaultBoardSize)

		// When: placing past the end
		err := board.Place(49, ColorBlue)

		// Then: ErrIndexOutOfRange is returned and nothing changed
		require.ErrorIs(t, err, apperror.ErrIndexOutOfRange)
		for index := range 49 {
			assert.True(t, board.IsEmpty(index))
		}
	})

	t.Run("Rejects a negative index", func(t *testing.T) {
		board := NewBoard(DefaultBoardSize)

		err := board.Place(-1, ColorBlue)

		require.ErrorIs(t, err, apperror.ErrIndexOutOfRange)
	})

	t.Run("Falls back to the default size below the win length", func(t *testing.T) {
		board := NewBoard(3)

		assert.Equal(t, DefaultBoardSize, board.Size())
	})
}

func TestBoard_CheckWin(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		indexes []int
		want    bool
	}{
		{name: "horizontal on the top row", size: 7, indexes: []int{0, 1, 2, 3}, want: true},
		{name: "horizontal touching the right edge", size: 7, indexes: []int{45, 46, 47, 48}, want: true},
		{name: "vertical", size: 7, indexes: []int{3, 10, 17, 24}, want: true},
		{name: "down-right diagonal", size: 7, indexes: []int{0, 8, 16, 24}, want: true},
		{name: "down-left diagonal", size: 7, indexes: []int{6, 12, 18, 24}, want: true},
		{name: "down-left diagonal at the bottom", size: 7, indexes: []int{24, 30, 36, 42}, want: true},
		{name: "three in a row", size: 7, indexes: []int{0, 1, 2}, want: false},
		{name: "row does not wrap to the next line", size: 7, indexes: []int{5, 6, 7, 8}, want: false},
		{name: "diagonal does not wrap", size: 7, indexes: []int{5, 13, 21, 29}, want: false},
		{name: "gap breaks the run", size: 7, indexes: []int{0, 1, 2, 4, 5, 6}, want: false},
		{name: "larger board vertical", size: 10, indexes: []int{9, 19, 29, 39}, want: true},
		{name: "smallest board anti-diagonal", size: 4, indexes: []int{3, 6, 9, 12}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a board holding blue tiles at the listed indexes
			board := boardWith(t, tt.size, ColorBlue, tt.indexes...)

			// When: checking for a blue win
			won := board.CheckWin(ColorBlue)

			// Then: the result matches and red never wins
			assert.Equal(t, tt.want, won)
			assert.False(t, board.CheckWin(ColorRed))
		})
	}

	t.Run("Mixed colors do not form a run", func(t *testing.T) {
		// Given: a row alternating blue and red
		board := boardWith(t, 7, ColorBlue, 0, 2)
		require.NoError(t, board.Place(1, ColorRed))
		require.NoError(t, board.Place(3, ColorRed))

		// Then: nobody has won
		assert.False(t, board.CheckWin(ColorBlue))
		assert.False(t, board.CheckWin(ColorRed))
	})

	t.Run("Empty color never wins", func(t *testing.T) {
		board := NewBoard(7)

		assert.False(t, board.CheckWin(ColorNone))
	})
}

func TestBoard_Supported(t *testing.T) {
	// Given: a board with one tile at the bottom of column 0
	board := boardWith(t, 7, ColorRed, 42)

	// Then: the bottom row and the cell above the tile are supported
	assert.True(t, board.Supported(43))
	assert.True(t, board.Supported(35))

	// And: a floating cell and an out of range index are not
	assert.False(t, board.Supported(36))
	assert.False(t, board.Supported(49))
}

func TestBoard_Full(t *testing.T) {
	board := NewBoard(4)
	assert.False(t, board.Full())

	for index := range 16 {
		require.NoError(t, board.Place(index, ColorBlue))
	}

	assert.True(t, board.Full())
}

func TestColor_Opponent(t *testing.T) {
	assert.Equal(t, ColorRed, ColorBlue.Opponent())
	assert.Equal(t, ColorBlue, ColorRed.Opponent())
	assert.Equal(t, ColorNone, ColorNone.Opponent())
	assert.False(t, Color("green").IsValid())
}
