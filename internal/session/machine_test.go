package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnectionReset = errors.New("connection reset by peer")

type fixture struct {
	ctx       context.Context
	machine   *Machine
	sender    *fakeSender
	presenter *fakePresenter
	recorder  *fakeRecorder
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &fakeSender{}
	presenter := &fakePresenter{}
	recorder := &fakeRecorder{}

	if opts.Recorder == nil {
		opts.Recorder = recorder
	}

	machine := New(logger, sender, presenter, opts)
	machine.Connecting("ws://localhost:8080")
	machine.Opened(context.Background())

	return &fixture{
		ctx:       context.Background(),
		machine:   machine,
		sender:    sender,
		presenter: presenter,
		recorder:  recorder,
	}
}

func (that *fixture) receive(t *testing.T, raw string) {
	t.Helper()

	require.NoError(t, that.machine.HandleMessage(that.ctx, []byte(raw)))
}

func TestMachine_Opened(t *testing.T) {
	// Given: a freshly connected player
	f := newFixture(t, Options{Name: "SlykBot"})

	// Then: the client waits for a tournament on an empty board
	state := f.machine.Session()
	assert.Equal(t, PhaseAwaitingTournament, state.Phase)
	assert.Equal(t, entity.Board{}, state.Board)
	assert.Contains(t, f.presenter.events, "connected ws://localhost:8080")
	assert.Contains(t, f.presenter.events, "reset-board")
}

func TestMachine_Hello(t *testing.T) {
	t.Run("Player replies with its configured name", func(t *testing.T) {
		f := newFixture(t, Options{Name: "SlykBotV2"})

		f.receive(t, `{"type":"hello"}`)

		require.Len(t, f.sender.sent, 1)
		assert.JSONEq(t, `{"type":"hello","clientType":"player","name":"SlykBotV2"}`, string(f.sender.sent[0]))
	})

	t.Run("Player without a name gets one from the list", func(t *testing.T) {
		f := newFixture(t, Options{Rand: rand.New(rand.NewSource(3))}) //nolint: gosec // it's ok

		f.receive(t, `{"type":"hello"}`)

		sent := f.sender.decoded(t)
		require.Len(t, sent, 1)
		assert.Contains(t, entity.RandomNames, sent[0]["name"])
		assert.Equal(t, sent[0]["name"], f.machine.Name())
	})

	t.Run("Observer does not send a name", func(t *testing.T) {
		f := newFixture(t, Options{Role: entity.RoleObserver, Name: "ignored"})

		f.receive(t, `{"type":"hello"}`)

		require.Len(t, f.sender.sent, 1)
		assert.JSONEq(t, `{"type":"hello","clientType":"observer"}`, string(f.sender.sent[0]))
	})
}

func TestMachine_YourTurn(t *testing.T) {
	t.Run("Human player waits for a submitted move", func(t *testing.T) {
		// Given: a human player in game 7
		f := newFixture(t, Options{Name: "Garfield"})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":7}`)

		// When: the server says it's our turn
		f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"X"}`)

		// Then: the turn is ours and nothing is sent yet
		state := f.machine.Session()
		assert.True(t, state.IsMyTurn)
		assert.Equal(t, PhaseMyTurn, state.Phase)
		assert.Equal(t, entity.MarkX, state.Mark)
		assert.Empty(t, f.sender.sent)

		// When: the player picks the center
		require.NoError(t, f.machine.SubmitMove(f.ctx, 4))

		// Then: exactly one move for game 7 goes out and the turn passes
		require.Len(t, f.sender.sent, 1)
		assert.JSONEq(t, `{"type":"tic-tac-toe:move","id":7,"cellIndex":4}`, string(f.sender.sent[0]))
		assert.False(t, f.machine.Session().IsMyTurn)
		assert.Equal(t, PhaseAwaitingTurn, f.machine.Session().Phase)
		assert.Equal(t, entity.Board{}, f.machine.Session().Board)
	})

	t.Run("Bot answers with exactly one move on an empty cell", func(t *testing.T) {
		// Given: a bot with the rule-priority chooser in game 7 with one accepted move
		rnd := rand.New(rand.NewSource(1)) //nolint: gosec // it's ok
		f := newFixture(t, Options{Name: "TicTacAIV1", Chooser: strategy.NewRulePriority(rnd)})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":7}`)
		f.receive(t, `{"type":"tic-tac-toe:move-accepted","mark":"O","cellIndex":0}`)

		// When: the server says it's our turn
		f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"X"}`)

		// Then: one move for game 7 on a free corner is sent
		sent := f.sender.decoded(t)
		require.Len(t, sent, 1)
		assert.Equal(t, "tic-tac-toe:move", sent[0]["type"])
		assert.InDelta(t, 7, sent[0]["id"], 0)
		assert.InDelta(t, 2, sent[0]["cellIndex"], 0)

		state := f.machine.Session()
		assert.False(t, state.IsMyTurn)
		assert.Equal(t, PhaseAwaitingTurn, state.Phase)
		assert.Contains(t, f.presenter.events, "status Waiting for turn...")
	})

	t.Run("Turn outside of a game is a desync", func(t *testing.T) {
		f := newFixture(t, Options{Chooser: strategy.NewFirstEmpty()})

		err := f.machine.HandleMessage(f.ctx, []byte(`{"type":"tic-tac-toe:your-turn","mark":"X"}`))

		require.ErrorIs(t, err, apperror.ErrDesync)
		assert.Empty(t, f.sender.sent)
	})

	t.Run("Send failure keeps the turn", func(t *testing.T) {
		f := newFixture(t, Options{Chooser: strategy.NewFirstEmpty()})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":3}`)
		f.sender.err = errConnectionReset

		err := f.machine.HandleMessage(f.ctx, []byte(`{"type":"tic-tac-toe:your-turn","mark":"O"}`))

		require.ErrorIs(t, err, errConnectionReset)
		assert.True(t, f.machine.Session().IsMyTurn)
	})
}

func TestMachine_SubmitMove(t *testing.T) {
	f := newFixture(t, Options{Name: "Snoopy"})
	f.receive(t, `{"type":"tic-tac-toe:game-started","id":1}`)

	t.Run("Not your turn", func(t *testing.T) {
		assert.ErrorIs(t, f.machine.SubmitMove(f.ctx, 0), apperror.ErrNotYourTurn)
	})

	f.receive(t, `{"type":"tic-tac-toe:move-accepted","mark":"X","cellIndex":4}`)
	f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"O"}`)

	t.Run("Occupied cell", func(t *testing.T) {
		assert.ErrorIs(t, f.machine.SubmitMove(f.ctx, 4), apperror.ErrCellOccupied)
	})

	t.Run("Out of range cell", func(t *testing.T) {
		assert.ErrorIs(t, f.machine.SubmitMove(f.ctx, 9), apperror.ErrInvalidIndex)
	})

	t.Run("Observer", func(t *testing.T) {
		observer := newFixture(t, Options{Role: entity.RoleObserver})

		assert.ErrorIs(t, observer.machine.SubmitMove(observer.ctx, 0), apperror.ErrObserver)
	})

	assert.Empty(t, f.sender.sent)
	assert.True(t, f.machine.Session().IsMyTurn)
}

func TestMachine_MoveAccepted(t *testing.T) {
	t.Run("Board reflects exactly the accepted moves", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":2}`)

		for i, cell := range []int{4, 0, 8, 2} {
			mark := entity.MarkX
			if i%2 == 1 {
				mark = entity.MarkO
			}
			f.receive(t, fmt.Sprintf(`{"type":"tic-tac-toe:move-accepted","mark":%q,"cellIndex":%d}`, mark, cell))
		}

		expected := entity.Board{entity.MarkO, "", entity.MarkO, "", entity.MarkX, "", "", "", entity.MarkX}
		assert.Equal(t, expected, f.machine.Session().Board)
		assert.Contains(t, f.presenter.events, "cell 8 X")
	})

	t.Run("Occupied cell is reported as desync", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":2}`)
		f.receive(t, `{"type":"tic-tac-toe:move-accepted","mark":"X","cellIndex":4}`)

		err := f.machine.HandleMessage(f.ctx, []byte(`{"type":"tic-tac-toe:move-accepted","mark":"O","cellIndex":4}`))

		require.ErrorIs(t, err, apperror.ErrDesync)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.MarkX, f.machine.Session().Board[4])
	})

	t.Run("Out of range cell is reported as desync", func(t *testing.T) {
		f := newFixture(t, Options{})

		err := f.machine.HandleMessage(f.ctx, []byte(`{"type":"tic-tac-toe:move-accepted","mark":"O","cellIndex":12}`))

		require.ErrorIs(t, err, apperror.ErrDesync)
		require.ErrorIs(t, err, apperror.ErrInvalidIndex)
	})
}

func TestMachine_GameEnded(t *testing.T) {
	t.Run("Stalemate has no win line", func(t *testing.T) {
		// Given: a full drawn game
		f := newFixture(t, Options{Name: "Doc Brown"})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":9}`)
		f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"X"}`)
		for i, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
			mark := "X"
			if i%2 == 1 {
				mark = "O"
			}
			f.receive(t, fmt.Sprintf(`{"type":"tic-tac-toe:move-accepted","mark":%q,"cellIndex":%d}`, mark, cell))
		}

		// When: the server ends the game without a winner
		f.receive(t, `{"type":"tic-tac-toe:game-ended","winningMark":null}`)

		// Then: a stalemate is reported and no line is drawn
		assert.Equal(t, []gameOver{{winner: entity.MarkEmpty}}, f.presenter.gameOvers)
		assert.Empty(t, f.presenter.winLines)
		assert.Contains(t, f.presenter.events, "status Game ended: Stalemate!")
		assert.Equal(t, PhaseAwaitingTournament, f.machine.Session().Phase)

		// Then: the game is recorded once
		require.Len(t, f.recorder.saved, 1)
		record := f.recorder.saved[0]
		assert.Equal(t, 9, record.GameID)
		assert.Equal(t, entity.OutcomeStalemate, record.Outcome)
		assert.Len(t, record.Moves, 9)
		assert.True(t, record.Board.IsFull())
	})

	t.Run("Winner with pattern draws the line", func(t *testing.T) {
		f := newFixture(t, Options{Name: "Marty McFly"})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":4}`)
		f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"X"}`)

		f.receive(t, `{"type":"tic-tac-toe:game-ended","winningMark":"O","winningPattern":7}`)

		assert.Equal(t, []entity.WinPattern{7}, f.presenter.winLines)
		assert.Equal(t, []gameOver{{winner: entity.MarkO, pattern: 7}}, f.presenter.gameOvers)
		assert.Contains(t, f.presenter.events, "status Game ended: O wins!")

		require.Len(t, f.recorder.saved, 1)
		assert.Equal(t, entity.OutcomeLoss, f.recorder.saved[0].Outcome)
		assert.Equal(t, entity.WinPattern(7), f.recorder.saved[0].Pattern)
	})

	t.Run("Winner without a valid pattern is reported without a line", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":4}`)

		f.receive(t, `{"type":"tic-tac-toe:game-ended","winningMark":"X","winningPattern":3}`)

		assert.Empty(t, f.presenter.winLines)
		assert.Len(t, f.presenter.gameOvers, 1)
	})

	t.Run("Recorder failure does not break the session", func(t *testing.T) {
		failing := &fakeRecorder{err: errConnectionReset}
		f := newFixture(t, Options{Recorder: failing})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":4}`)

		f.receive(t, `{"type":"tic-tac-toe:game-ended","winningMark":null}`)

		assert.Equal(t, PhaseAwaitingTournament, f.machine.Session().Phase)
	})
}

func TestMachine_UnknownMessage(t *testing.T) {
	// Given: a player in the middle of a game
	f := newFixture(t, Options{})
	f.receive(t, `{"type":"tic-tac-toe:game-started","id":5}`)
	f.receive(t, `{"type":"tic-tac-toe:move-accepted","mark":"X","cellIndex":4}`)
	before := f.machine.Session()

	// When: an unknown message arrives
	f.receive(t, `{"type":"chess:check","square":"e4"}`)

	// Then: nothing changes and exactly one diagnostic is produced
	assert.Equal(t, before, f.machine.Session())
	assert.Equal(t, []string{"Received unknown message type: chess:check"}, f.presenter.diagnostics)
	assert.Empty(t, f.sender.sent)
}

func TestMachine_MalformedMessage(t *testing.T) {
	f := newFixture(t, Options{})
	f.receive(t, `{"type":"tic-tac-toe:game-started","id":5}`)
	before := f.machine.Session()

	for _, raw := range []string{
		`{"type":`,
		`{"id":5}`,
		`{"type":"tic-tac-toe:game-started"}`,
		`{"type":"tic-tac-toe:your-turn","mark":"Z"}`,
		`{"type":"tic-tac-toe:move-accepted","mark":"X"}`,
		`{"type":"illegal","reason":42}`,
	} {
		err := f.machine.HandleMessage(f.ctx, []byte(raw))

		assert.ErrorIs(t, err, apperror.ErrMalformedMessage, raw)
	}

	assert.Equal(t, before, f.machine.Session())
	assert.Empty(t, f.presenter.diagnostics)
}

func TestMachine_Illegal(t *testing.T) {
	f := newFixture(t, Options{Chooser: strategy.NewFirstEmpty()})
	f.receive(t, `{"type":"tic-tac-toe:game-started","id":5}`)
	f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"X"}`)
	before := f.machine.Session()

	f.receive(t, `{"type":"illegal","reason":"Not your turn"}`)

	assert.Equal(t, before, f.machine.Session())
	assert.Contains(t, f.presenter.events, "status Illegal move: Not your turn")
	assert.Len(t, f.sender.sent, 1, "no automatic retry")
}

func TestMachine_Tournament(t *testing.T) {
	t.Run("Observer ignores games and sees named scores", func(t *testing.T) {
		// Given: an observer that saw two players join
		f := newFixture(t, Options{Role: entity.RoleObserver})
		f.receive(t, `{"type":"tournament-started"}`)
		f.receive(t, `{"type":"player-count","count":2}`)
		f.receive(t, `{"type":"player-joined","id":1,"name":"SlykBotV1"}`)
		f.receive(t, `{"type":"player-joined","id":2,"name":"TicTacAIV1"}`)
		f.receive(t, `{"type":"player-dropped","id":2}`)

		// When: games are played and the tournament ends
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":1}`)
		f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"X"}`)
		f.receive(t, `{"type":"tournament-ended","rows":[{"id":1,"score":2},{"id":2,"score":1}]}`)

		// Then: game messages did not touch the session and scores carry names
		assert.False(t, f.machine.Session().HasGame)
		assert.Empty(t, f.sender.sent)
		require.Len(t, f.presenter.scores, 1)
		assert.Equal(t, []entity.ScoreRow{{ID: "1", Name: "SlykBotV1", Score: 2}, {ID: "2", Name: "2", Score: 1}}, f.presenter.scores[0])
	})

	t.Run("Player does not show scores and resets the board", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.receive(t, `{"type":"tic-tac-toe:game-started","id":1}`)
		f.receive(t, `{"type":"tic-tac-toe:move-accepted","mark":"X","cellIndex":4}`)

		f.receive(t, `{"type":"tournament-ended","rows":[{"id":1,"score":2}]}`)

		assert.Empty(t, f.presenter.scores)
		assert.Equal(t, entity.Board{}, f.machine.Session().Board)
		assert.Equal(t, PhaseAwaitingTournament, f.machine.Session().Phase)
		assert.Contains(t, f.presenter.events, "tournament Tournament ended!")
	})
}

func TestMachine_Closed(t *testing.T) {
	// Given: a player in the middle of its turn
	f := newFixture(t, Options{})
	f.receive(t, `{"type":"tic-tac-toe:game-started","id":5}`)
	f.receive(t, `{"type":"tic-tac-toe:move-accepted","mark":"O","cellIndex":4}`)
	f.receive(t, `{"type":"tic-tac-toe:your-turn","mark":"X"}`)

	// When: the connection drops
	f.machine.Closed(f.ctx, errConnectionReset)

	// Then: the session is cleared
	assert.Equal(t, Session{Phase: PhaseDisconnected}, f.machine.Session())
	assert.Contains(t, f.presenter.events, "disconnected ws://localhost:8080 connection reset by peer")
	assert.ErrorIs(t, f.machine.SubmitMove(f.ctx, 0), apperror.ErrNotYourTurn)
}

type fakeSender struct {
	sent [][]byte
	err  error
}

func (that *fakeSender) Send(_ context.Context, data []byte) error {
	if that.err != nil {
		return that.err
	}

	that.sent = append(that.sent, data)

	return nil
}

func (that *fakeSender) decoded(t *testing.T) []map[string]any {
	t.Helper()

	messages := make([]map[string]any, 0, len(that.sent))
	for _, data := range that.sent {
		var message map[string]any
		require.NoError(t, json.Unmarshal(data, &message))
		messages = append(messages, message)
	}

	return messages
}

type gameOver struct {
	winner  entity.Mark
	pattern entity.WinPattern
}

type fakePresenter struct {
	events      []string
	diagnostics []string
	winLines    []entity.WinPattern
	gameOvers   []gameOver
	scores      [][]entity.ScoreRow
}

func (that *fakePresenter) Connected(url string) {
	that.events = append(that.events, "connected "+url)
}

func (that *fakePresenter) Disconnected(url string, err error) {
	event := "disconnected " + url
	if err != nil {
		event += " " + err.Error()
	}
	that.events = append(that.events, event)
}

func (that *fakePresenter) TournamentStatus(text string) {
	that.events = append(that.events, "tournament "+text)
}

func (that *fakePresenter) Status(text string) {
	that.events = append(that.events, "status "+text)
}

func (that *fakePresenter) ResetBoard() {
	that.events = append(that.events, "reset-board")
}

func (that *fakePresenter) GameStarted(gameID int) {
	that.events = append(that.events, fmt.Sprintf("game-started %d", gameID))
}

func (that *fakePresenter) CellMarked(index int, mark entity.Mark) {
	that.events = append(that.events, fmt.Sprintf("cell %d %s", index, mark))
}

func (that *fakePresenter) YourTurn(mark entity.Mark) {
	that.events = append(that.events, "your-turn "+string(mark))
}

func (that *fakePresenter) TurnPassed() {
	that.events = append(that.events, "turn-passed")
}

func (that *fakePresenter) GameOver(winner entity.Mark, pattern entity.WinPattern) {
	that.gameOvers = append(that.gameOvers, gameOver{winner: winner, pattern: pattern})
}

func (that *fakePresenter) DrawWinLine(pattern entity.WinPattern) {
	that.winLines = append(that.winLines, pattern)
}

func (that *fakePresenter) ShowScores(rows []entity.ScoreRow) {
	that.scores = append(that.scores, rows)
}

func (that *fakePresenter) HideScores() {
	that.events = append(that.events, "hide-scores")
}

func (that *fakePresenter) Diagnostic(text string) {
	that.diagnostics = append(that.diagnostics, text)
}

type fakeRecorder struct {
	saved []*entity.GameRecord
	err   error
}

func (that *fakeRecorder) SaveGame(_ context.Context, record *entity.GameRecord) error {
	if that.err != nil {
		return that.err
	}

	that.saved = append(that.saved, record)

	return nil
}

func TestMachine_ReportError(t *testing.T) {
	f := newFixture(t, Options{})

	f.machine.ReportError(fmt.Errorf("failed to decode message: %w", apperror.ErrMalformedMessage))

	assert.Equal(t, []string{"failed to decode message: malformed message"}, f.presenter.diagnostics)
}
