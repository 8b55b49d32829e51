// Package tui is the terminal front end for human players and observers.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

const (
	tournamentWaitDelay = time.Second
	turnWaitDelay       = 1500 * time.Millisecond
	notConnectedDelay   = 3500 * time.Millisecond
	leaveDelay          = time.Second
)

// Mover - the session side of user input.
type Mover interface {
	SubmitMove(ctx context.Context, cell int) error
	Leave() error
}

type deferredTarget int

const (
	targetTournament deferredTarget = iota
	targetStatus
)

// deferredMsg applies text only if nothing replaced the line since it was scheduled.
type deferredMsg struct {
	target deferredTarget
	gen    int
	text   string
}

type moveResultMsg struct{ err error }

type leaveMsg struct{}

type leftMsg struct{ err error }

type Options struct {
	Role string
	Name string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx   context.Context
	mover Mover
	keys  KeyMap

	role   string
	name   string
	width  int
	height int

	connected bool
	url       string

	tournamentStatus string
	status           string
	tournamentGen    int
	statusGen        int

	board    entity.Board
	cursor   int
	gameID   int
	hasGame  bool
	mark     entity.Mark
	yourTurn bool
	winLine  entity.WinPattern

	scores     []entity.ScoreRow
	showScores bool
}

func New(ctx context.Context, mover Mover, opts Options) Model {
	role := opts.Role
	if role == "" {
		role = entity.RolePlayer
	}

	return Model{
		ctx:              ctx,
		mover:            mover,
		keys:             DefaultKeyMap(),
		role:             role,
		name:             opts.Name,
		tournamentStatus: "Not connected",
		cursor:           4,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		m.connected = true
		m.url = msg.url
		return m, m.deferTournament(tournamentWaitDelay, "Waiting for tournament...")

	case disconnectedMsg:
		m.connected = false
		m.yourTurn = false
		m.showScores = false
		m.hasGame = false

		text := "Disconnected from " + msg.url
		if msg.err != nil {
			text = fmt.Sprintf("Disconnected from %s: %v", msg.url, msg.err)
		}

		m.setTournamentStatus(text)

		return m, m.deferTournament(notConnectedDelay, "Not connected")

	case tournamentStatusMsg:
		m.setTournamentStatus(msg.text)

	case statusMsg:
		m.setStatus(msg.text)

	case resetBoardMsg:
		m.board.Reset()
		m.winLine = 0
		m.yourTurn = false

	case gameStartedMsg:
		m.gameID = msg.gameID
		m.hasGame = true
		return m, m.deferStatus(turnWaitDelay, "Waiting for turn...")

	case cellMarkedMsg:
		if msg.index >= 0 && msg.index < entity.BoardSize {
			m.board[msg.index] = msg.mark
		}

	case yourTurnMsg:
		m.statusGen++
		m.mark = msg.mark
		m.yourTurn = true

	case turnPassedMsg:
		m.yourTurn = false

	case gameOverMsg:
		m.yourTurn = false

	case winLineMsg:
		m.winLine = msg.pattern

	case showScoresMsg:
		m.scores = msg.rows
		m.showScores = true

	case hideScoresMsg:
		m.showScores = false

	case diagnosticMsg:
		m.setTournamentStatus(msg.text)

	case deferredMsg:
		m.applyDeferred(msg)

	case moveResultMsg:
		if msg.err != nil {
			m.setStatus(describeMoveError(msg.err))
		}

	case leaveMsg:
		mover := m.mover
		return m, func() tea.Msg {
			return leftMsg{err: mover.Leave()}
		}

	case leftMsg:
		if msg.err != nil && !errors.Is(msg.err, apperror.ErrNotConnected) {
			m.setTournamentStatus("Failed to leave: " + msg.err.Error())
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Leave):
		if !m.connected {
			return m, nil
		}

		m.setTournamentStatus("Leaving tournament...")

		return m, tea.Tick(leaveDelay, func(time.Time) tea.Msg { return leaveMsg{} })

	case key.Matches(msg, m.keys.Up):
		if m.cursor >= 3 {
			m.cursor -= 3
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < 6 {
			m.cursor += 3
		}

	case key.Matches(msg, m.keys.Left):
		if m.cursor%3 > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Right):
		if m.cursor%3 < 2 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Play):
		return m, m.play(m.cursor)

	default:
		for i, binding := range m.keys.Cells {
			if key.Matches(msg, binding) {
				m.cursor = i
				return m, m.play(i)
			}
		}
	}

	return m, nil
}

// play - submits cell when the board accepts input; the session validates the rest.
func (m Model) play(cell int) tea.Cmd {
	if m.role != entity.RolePlayer || !m.yourTurn {
		return nil
	}

	ctx, mover := m.ctx, m.mover

	return func() tea.Msg {
		return moveResultMsg{err: mover.SubmitMove(ctx, cell)}
	}
}

func (m *Model) setTournamentStatus(text string) {
	m.tournamentGen++
	m.tournamentStatus = text
}

func (m *Model) setStatus(text string) {
	m.statusGen++
	m.status = text
}

func (m Model) deferTournament(delay time.Duration, text string) tea.Cmd {
	return deferText(delay, deferredMsg{target: targetTournament, gen: m.tournamentGen, text: text})
}

func (m Model) deferStatus(delay time.Duration, text string) tea.Cmd {
	return deferText(delay, deferredMsg{target: targetStatus, gen: m.statusGen, text: text})
}

func deferText(delay time.Duration, msg deferredMsg) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return msg })
}

func (m *Model) applyDeferred(msg deferredMsg) {
	switch msg.target {
	case targetTournament:
		if msg.gen == m.tournamentGen {
			m.tournamentStatus = msg.text
		}
	case targetStatus:
		if msg.gen == m.statusGen {
			m.status = msg.text
		}
	}
}

func describeMoveError(err error) string {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied):
		return "That cell is taken, pick another"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, apperror.ErrObserver):
		return "Observers cannot play"
	case errors.Is(err, apperror.ErrNotConnected):
		return "Not connected"
	default:
		return "Move failed: " + err.Error()
	}
}
