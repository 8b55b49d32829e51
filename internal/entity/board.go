package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
)

type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

const BoardSize = 9

// ParseMark - converts a wire value into a player mark.
func ParseMark(value string) (Mark, error) {
	switch mark := Mark(value); mark {
	case MarkX, MarkO:
		return mark, nil
	default:
		return MarkEmpty, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, value)
	}
}

func (that Mark) IsPlayer() bool {
	return that == MarkX || that == MarkO
}

// Opponent - returns the other player's mark.
func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkEmpty
	}
}

// Board - 3x3 grid in row-major order, cell 3*row+column.
type Board [BoardSize]Mark

func (that *Board) Reset() {
	*that = Board{}
}

// Set - places mark on an empty cell.
func (that *Board) Set(index int, mark Mark) error {
	if index < 0 || index >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidIndex, index)
	}

	if !mark.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if that[index] != MarkEmpty {
		return fmt.Errorf("%w: cell %d holds %s", apperror.ErrCellOccupied, index, that[index])
	}

	that[index] = mark

	return nil
}

func (that *Board) IsEmpty(index int) bool {
	if index < 0 || index >= BoardSize {
		return false
	}

	return that[index] == MarkEmpty
}

// WinningMarkAndPattern - returns the mark holding a complete line and the line itself.
func (that *Board) WinningMarkAndPattern() (Mark, WinPattern, bool) {
	for _, pattern := range WinPatterns {
		cells := pattern.Cells()
		a, b, c := that[cells[0]], that[cells[1]], that[cells[2]]
		if a != MarkEmpty && a == b && b == c {
			return a, pattern, true
		}
	}

	return MarkEmpty, 0, false
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == MarkEmpty {
			return false
		}
	}

	return true
}

func (that *Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == MarkEmpty {
			cells = append(cells, i)
		}
	}

	return cells
}

// Masks - returns the cells held by own and by the opponent as 9-bit masks.
func (that *Board) Masks(own Mark) (uint16, uint16) {
	var ownMask, opponentMask uint16

	for i, cell := range that {
		switch cell {
		case MarkEmpty:
		case own:
			ownMask |= 1 << i
		default:
			opponentMask |= 1 << i
		}
	}

	return ownMask, opponentMask
}

func (that Board) String() string {
	var sb strings.Builder

	for i, cell := range that {
		if cell == MarkEmpty {
			sb.WriteByte('.')
		} else {
			sb.WriteString(string(cell))
		}

		if i%3 == 2 && i != BoardSize-1 {
			sb.WriteByte('/')
		}
	}

	return sb.String()
}
