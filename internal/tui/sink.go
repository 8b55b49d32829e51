package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

type connectedMsg struct{ url string }

type disconnectedMsg struct {
	url string
	err error
}

type tournamentStatusMsg struct{ text string }

type statusMsg struct{ text string }

type resetBoardMsg struct{}

type gameStartedMsg struct{ gameID int }

type cellMarkedMsg struct {
	index int
	mark  entity.Mark
}

type yourTurnMsg struct{ mark entity.Mark }

type turnPassedMsg struct{}

type gameOverMsg struct {
	winner  entity.Mark
	pattern entity.WinPattern
}

type winLineMsg struct{ pattern entity.WinPattern }

type showScoresMsg struct{ rows []entity.ScoreRow }

type hideScoresMsg struct{}

type diagnosticMsg struct{ text string }

// Sink - forwards presentation events into a running tea.Program.
type Sink struct {
	send func(tea.Msg)
}

// NewSink - send is usually (*tea.Program).Send.
func NewSink(send func(tea.Msg)) *Sink {
	return &Sink{send: send}
}

func (that *Sink) Connected(url string) { that.send(connectedMsg{url: url}) }

func (that *Sink) Disconnected(url string, err error) {
	that.send(disconnectedMsg{url: url, err: err})
}

func (that *Sink) TournamentStatus(text string) { that.send(tournamentStatusMsg{text: text}) }

func (that *Sink) Status(text string) { that.send(statusMsg{text: text}) }

func (that *Sink) ResetBoard() { that.send(resetBoardMsg{}) }

func (that *Sink) GameStarted(gameID int) { that.send(gameStartedMsg{gameID: gameID}) }

func (that *Sink) CellMarked(index int, mark entity.Mark) {
	that.send(cellMarkedMsg{index: index, mark: mark})
}

func (that *Sink) YourTurn(mark entity.Mark) { that.send(yourTurnMsg{mark: mark}) }

func (that *Sink) TurnPassed() { that.send(turnPassedMsg{}) }

func (that *Sink) GameOver(winner entity.Mark, pattern entity.WinPattern) {
	that.send(gameOverMsg{winner: winner, pattern: pattern})
}

func (that *Sink) DrawWinLine(pattern entity.WinPattern) { that.send(winLineMsg{pattern: pattern}) }

func (that *Sink) ShowScores(rows []entity.ScoreRow) {
	that.send(showScoresMsg{rows: append([]entity.ScoreRow(nil), rows...)})
}

func (that *Sink) HideScores() { that.send(hideScoresMsg{}) }

func (that *Sink) Diagnostic(text string) { that.send(diagnosticMsg{text: text}) }
