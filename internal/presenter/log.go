// Package presenter renders session output for headless clients.
package presenter

import (
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

// Log - writes every presentation event as a structured log record.
type Log struct {
	logger *slog.Logger
	board  entity.Board
	status string
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "presenter")}
}

// Board - the board as it was last rendered.
func (that *Log) Board() entity.Board {
	return that.board
}

// LastStatus - the most recent status line.
func (that *Log) LastStatus() string {
	return that.status
}

func (that *Log) Connected(url string) {
	that.logger.Info("connected", "url", url)
}

func (that *Log) Disconnected(url string, err error) {
	if err != nil {
		that.logger.Warn("disconnected", "url", url, "error", err)
		return
	}

	that.logger.Info("disconnected", "url", url)
}

func (that *Log) TournamentStatus(text string) {
	that.logger.Info(text)
}

func (that *Log) Status(text string) {
	that.status = text
	that.logger.Debug("status", "text", text)
}

func (that *Log) ResetBoard() {
	that.board.Reset()
}

func (that *Log) GameStarted(gameID int) {
	that.logger.Info("game started", "game_id", gameID)
}

func (that *Log) CellMarked(index int, mark entity.Mark) {
	if index >= 0 && index < entity.BoardSize {
		that.board[index] = mark
	}

	that.logger.Debug("cell marked", "cell", index, "mark", mark, "board", that.board.String())
}

func (that *Log) YourTurn(mark entity.Mark) {
	that.logger.Debug("your turn", "mark", mark, "board", that.board.String())
}

func (that *Log) TurnPassed() {}

func (that *Log) GameOver(winner entity.Mark, pattern entity.WinPattern) {
	if winner == entity.MarkEmpty {
		that.logger.Info("game over", "result", "stalemate", "board", that.board.String())
		return
	}

	that.logger.Info("game over", "winner", winner, "pattern", pattern.Cells(), "board", that.board.String())
}

func (that *Log) DrawWinLine(_ entity.WinPattern) {}

func (that *Log) ShowScores(rows []entity.ScoreRow) {
	for i, row := range rows {
		that.logger.Info("score", "rank", i+1, "name", row.Name, "id", row.ID, "score", row.Score)
	}
}

func (that *Log) HideScores() {}

func (that *Log) Diagnostic(text string) {
	that.logger.Warn("diagnostic", "text", text)
}
