package session

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseAwaitingTournament
	PhaseAwaitingTurn
	PhaseMyTurn
	PhaseGameEnded
)

func (that Phase) String() string {
	switch that {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseAwaitingTournament:
		return "awaiting-tournament"
	case PhaseAwaitingTurn:
		return "awaiting-turn"
	case PhaseMyTurn:
		return "my-turn"
	case PhaseGameEnded:
		return "game-ended"
	default:
		return "unknown"
	}
}

// Session - state of the single tournament session of this process.
type Session struct {
	Phase    Phase
	GameID   int
	HasGame  bool
	Mark     entity.Mark
	IsMyTurn bool
	Board    entity.Board
}

// Sender - outbound half of the transport. Sends are fire-and-forget.
type Sender interface {
	Send(ctx context.Context, data []byte) error
}

// Presenter - receives everything a user or an operator should see.
type Presenter interface {
	// Connected and Disconnected close their event sequence; nothing else follows for the same input.
	Connected(url string)
	Disconnected(url string, err error)
	TournamentStatus(text string)
	Status(text string)
	ResetBoard()
	GameStarted(gameID int)
	CellMarked(index int, mark entity.Mark)
	YourTurn(mark entity.Mark)
	TurnPassed()
	GameOver(winner entity.Mark, pattern entity.WinPattern)
	DrawWinLine(pattern entity.WinPattern)
	ShowScores(rows []entity.ScoreRow)
	HideScores()
	Diagnostic(text string)
}

// Recorder - stores finished games.
type Recorder interface {
	SaveGame(ctx context.Context, record *entity.GameRecord) error
}
