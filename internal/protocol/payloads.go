package protocol

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

type Illegal struct {
	Reason string `json:"reason"`
}

type ScoreRow struct {
	ID    ID      `json:"id"`
	Score float64 `json:"score"`
}

type TournamentEnded struct {
	Rows []ScoreRow `json:"rows"`
}

func (that TournamentEnded) ScoreRows() []entity.ScoreRow {
	rows := make([]entity.ScoreRow, 0, len(that.Rows))
	for _, row := range that.Rows {
		rows = append(rows, entity.ScoreRow{ID: string(row.ID), Score: row.Score})
	}

	return rows
}

type PlayerJoined struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type PlayerDropped struct {
	ID ID `json:"id"`
}

type GameStarted struct {
	ID *GameID `json:"id"`
}

func (that GameStarted) Validate() error {
	if that.ID == nil {
		return fmt.Errorf("%w: game-started without id", apperror.ErrMalformedMessage)
	}

	return nil
}

type YourTurn struct {
	Mark string `json:"mark"`
}

func (that YourTurn) ParseMark() (entity.Mark, error) {
	mark, err := entity.ParseMark(that.Mark)
	if err != nil {
		return entity.MarkEmpty, fmt.Errorf("%w: your-turn: %w", apperror.ErrMalformedMessage, err)
	}

	return mark, nil
}

type MoveAccepted struct {
	Mark      string `json:"mark"`
	CellIndex *int   `json:"cellIndex"`
}

func (that MoveAccepted) Parse() (entity.Mark, int, error) {
	mark, err := entity.ParseMark(that.Mark)
	if err != nil {
		return entity.MarkEmpty, 0, fmt.Errorf("%w: move-accepted: %w", apperror.ErrMalformedMessage, err)
	}

	if that.CellIndex == nil {
		return entity.MarkEmpty, 0, fmt.Errorf("%w: move-accepted without cellIndex", apperror.ErrMalformedMessage)
	}

	return mark, *that.CellIndex, nil
}

type GameEnded struct {
	WinningMark    *string `json:"winningMark"`
	WinningPattern *int    `json:"winningPattern"`
}

// Result - winner and line; an empty winner means stalemate.
func (that GameEnded) Result() (entity.Mark, entity.WinPattern, error) {
	if that.WinningMark == nil || *that.WinningMark == "" {
		return entity.MarkEmpty, 0, nil
	}

	mark, err := entity.ParseMark(*that.WinningMark)
	if err != nil {
		return entity.MarkEmpty, 0, fmt.Errorf("%w: game-ended: %w", apperror.ErrMalformedMessage, err)
	}

	var pattern entity.WinPattern
	if that.WinningPattern != nil {
		pattern = entity.WinPattern(*that.WinningPattern)
	}

	return mark, pattern, nil
}

// Hello - identification sent in reply to the server's hello.
type Hello struct {
	Type       string `json:"type"`
	ClientType string `json:"clientType"`
	Name       string `json:"name,omitempty"`
}

func NewHello(clientType, name string) Hello {
	return Hello{Type: TypeHello, ClientType: clientType, Name: name}
}

type Move struct {
	Type      string `json:"type"`
	ID        int    `json:"id"`
	CellIndex int    `json:"cellIndex"`
}

func NewMove(gameID, cellIndex int) Move {
	return Move{Type: TypeMove, ID: gameID, CellIndex: cellIndex}
}
