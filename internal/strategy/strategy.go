// Package strategy holds the interchangeable move policies used by bot clients.
package strategy

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

const (
	NameFirstEmpty   = "first-empty"
	NameBitmask      = "bitmask"
	NameRulePriority = "rule-priority"
	NameRandom       = "random"
)

// MoveChooser - picks the next cell to play. Implementations never return an occupied cell.
type MoveChooser interface {
	ChooseMove(board entity.Board, own entity.Mark) (int, error)
}

// Rand - entropy source for the random fallbacks.
type Rand interface {
	Intn(n int) int
}

// New - returns the move chooser registered under name.
func New(name string, rnd Rand) (MoveChooser, error) {
	switch name {
	case NameFirstEmpty:
		return NewFirstEmpty(), nil
	case NameBitmask:
		return NewBitmask(), nil
	case NameRulePriority:
		return NewRulePriority(rnd), nil
	case NameRandom:
		return NewRandom(rnd), nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownStrategy, name)
	}
}

// Names - all registered move chooser names.
func Names() []string {
	return []string{NameFirstEmpty, NameBitmask, NameRulePriority, NameRandom}
}

type firstEmpty struct{}

func NewFirstEmpty() MoveChooser {
	return firstEmpty{}
}

func (firstEmpty) ChooseMove(board entity.Board, _ entity.Mark) (int, error) {
	return firstEmptyCell(&board)
}

func firstEmptyCell(board *entity.Board) (int, error) {
	for i := range entity.BoardSize {
		if board.IsEmpty(i) {
			return i, nil
		}
	}

	return 0, apperror.ErrNoEmptyCells
}
