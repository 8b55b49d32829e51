package strategy

import (
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

type randomBot struct {
	rnd Rand
}

// NewRandom - chooser that plays a uniformly random empty cell.
func NewRandom(rnd Rand) MoveChooser {
	return &randomBot{rnd: orDefault(rnd)}
}

func (that *randomBot) ChooseMove(board entity.Board, _ entity.Mark) (int, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return 0, apperror.ErrNoEmptyCells
	}

	return availableCells[that.rnd.Intn(len(availableCells))], nil
}

func orDefault(rnd Rand) Rand {
	if rnd != nil {
		return rnd
	}

	return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
}
