package entity

import "time"

const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomeStalemate = "stalemate"
)

// MoveRecord - an accepted move as echoed by the server.
type MoveRecord struct {
	Mark      Mark `json:"mark"`
	CellIndex int  `json:"cell_index"`
}

// GameRecord - history of one finished game from this client's point of view.
type GameRecord struct {
	GameID     int          `json:"game_id"`
	ClientID   string       `json:"client_id"`
	Player     string       `json:"player"`
	Mark       Mark         `json:"mark,omitempty"`
	Winner     Mark         `json:"winner,omitempty"`
	Pattern    WinPattern   `json:"pattern,omitempty"`
	Outcome    string       `json:"outcome"`
	Moves      []MoveRecord `json:"moves"`
	Board      Board        `json:"board"`
	FinishedAt time.Time    `json:"finished_at"`
}

// DetermineOutcome - result of the game for the player holding own.
func DetermineOutcome(own, winner Mark) string {
	switch {
	case winner == MarkEmpty:
		return OutcomeStalemate
	case winner == own:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}
