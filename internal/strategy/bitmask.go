package strategy

import (
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

type bitmask struct{}

// NewBitmask - chooser that looks for a completing or blocking cell using cell masks.
func NewBitmask() MoveChooser {
	return bitmask{}
}

func (bitmask) ChooseMove(board entity.Board, own entity.Mark) (int, error) {
	ownMask, opponentMask := board.Masks(own)

	if cell, ok := completingCell(&board, ownMask); ok {
		return cell, nil
	}

	if cell, ok := completingCell(&board, opponentMask); ok {
		return cell, nil
	}

	return firstEmptyCell(&board)
}

// completingCell - first empty cell that turns mask into a full winning line.
func completingCell(board *entity.Board, mask uint16) (int, bool) {
	for i := range entity.BoardSize {
		if !board.IsEmpty(i) {
			continue
		}

		candidate := mask | 1<<i
		for _, pattern := range entity.WinPatterns {
			goal := uint16(pattern)
			if candidate&goal == goal {
				return i, true
			}
		}
	}

	return 0, false
}
