package strategy

import (
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

var corners = [4]int{0, 2, 6, 8}

type rulePriority struct {
	rnd Rand
}

// NewRulePriority - chooser that wins, then blocks, then takes a corner, then plays at random.
func NewRulePriority(rnd Rand) MoveChooser {
	return &rulePriority{rnd: orDefault(rnd)}
}

func (that *rulePriority) ChooseMove(board entity.Board, own entity.Mark) (int, error) {
	if cell, ok := lineGap(&board, own); ok {
		return cell, nil
	}

	if cell, ok := lineGap(&board, own.Opponent()); ok {
		return cell, nil
	}

	for _, corner := range corners {
		if board.IsEmpty(corner) {
			return corner, nil
		}
	}

	empty := board.EmptyCells()
	if len(empty) == 0 {
		return 0, apperror.ErrNoEmptyCells
	}

	return empty[that.rnd.Intn(len(empty))], nil
}

// lineGap - the empty cell of a pattern whose other two cells hold mark.
func lineGap(board *entity.Board, mark entity.Mark) (int, bool) {
	if !mark.IsPlayer() {
		return 0, false
	}

	for _, pattern := range entity.WinPatterns {
		held, gap, gaps := 0, 0, 0

		for _, cell := range pattern.Cells() {
			switch board[cell] {
			case mark:
				held++
			case entity.MarkEmpty:
				gap = cell
				gaps++
			}
		}

		if held == 2 && gaps == 1 {
			return gap, true
		}
	}

	return 0, false
}
