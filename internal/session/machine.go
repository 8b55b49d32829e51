package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/strategy"
)

const statusWaitingForTurn = "Waiting for turn..."

type Options struct {
	Role     string
	Name     string
	ClientID string

	// Chooser plays on behalf of the client. Nil means moves come from SubmitMove.
	Chooser  strategy.MoveChooser
	Recorder Recorder
	Rand     *rand.Rand
}

// Machine - client side of the tournament protocol. Not safe for concurrent use:
// every input must come from the same goroutine, in arrival order.
type Machine struct {
	logger    *slog.Logger
	sender    Sender
	presenter Presenter
	chooser   strategy.MoveChooser
	recorder  Recorder
	rnd       *rand.Rand

	role     string
	name     string
	clientID string
	url      string

	session Session
	roster  entity.Roster
	moves   []entity.MoveRecord

	handlers map[string]func(ctx context.Context, msg *protocol.Envelope) error
}

func New(logger *slog.Logger, sender Sender, presenter Presenter, opts Options) *Machine {
	role := opts.Role
	if role == "" {
		role = entity.RolePlayer
	}

	machine := &Machine{
		logger:    logger.With("component", "session"),
		sender:    sender,
		presenter: presenter,
		chooser:   opts.Chooser,
		recorder:  opts.Recorder,
		rnd:       opts.Rand,
		role:      role,
		name:      opts.Name,
		clientID:  opts.ClientID,
		roster:    entity.Roster{},
	}

	machine.handlers = map[string]func(context.Context, *protocol.Envelope) error{
		protocol.TypeHello:             machine.handleHello,
		protocol.TypeIllegal:           machine.handleIllegal,
		protocol.TypeTournamentStarted: machine.handleTournamentStarted,
		protocol.TypeTournamentEnded:   machine.handleTournamentEnded,
		protocol.TypePlayerCount:       machine.handlePlayerCount,
		protocol.TypePlayerJoined:      machine.handlePlayerJoined,
		protocol.TypePlayerDropped:     machine.handlePlayerDropped,
		protocol.TypeGameStarted:       machine.playerOnly(machine.handleGameStarted),
		protocol.TypeYourTurn:          machine.playerOnly(machine.handleYourTurn),
		protocol.TypeMoveAccepted:      machine.playerOnly(machine.handleMoveAccepted),
		protocol.TypeGameEnded:         machine.playerOnly(machine.handleGameEnded),
	}

	return machine
}

// Session - returns a copy of the current session state.
func (that *Machine) Session() Session {
	return that.session
}

func (that *Machine) Roster() entity.Roster {
	return that.roster
}

// Name - display name announced to the server.
func (that *Machine) Name() string {
	return that.name
}

func (that *Machine) IsObserver() bool {
	return that.role == entity.RoleObserver
}

// Connecting - the transport started dialing url.
func (that *Machine) Connecting(url string) {
	that.url = url
	that.roster = entity.Roster{}
	that.setPhase(PhaseConnecting)
	that.presenter.TournamentStatus("Connecting to " + url)
}

// Opened - the transport is connected.
func (that *Machine) Opened(_ context.Context) {
	that.setPhase(PhaseAwaitingTournament)
	that.resetGame()

	that.presenter.TournamentStatus("Connected to " + that.url)
	that.presenter.Status("Waiting for game to start...")
	that.presenter.ResetBoard()
	that.presenter.Connected(that.url)
}

// Closed - the transport is gone, err is nil for an orderly close.
func (that *Machine) Closed(_ context.Context, err error) {
	log := that.logger.With("method", "Closed")

	if err != nil {
		log.Warn("connection lost", "url", that.url, "error", err)
	} else {
		log.Info("connection closed", "url", that.url)
	}

	that.setPhase(PhaseDisconnected)
	that.session = Session{Phase: PhaseDisconnected}
	that.moves = nil

	that.presenter.HideScores()
	that.presenter.Disconnected(that.url, err)
}

// HandleMessage - decodes one inbound frame and applies it to the session.
func (that *Machine) HandleMessage(ctx context.Context, data []byte) error {
	msg, err := protocol.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	that.logger.Debug("received message", "type", msg.Type, "phase", that.session.Phase.String())

	handler, ok := that.handlers[msg.Type]
	if !ok {
		that.logger.Warn("unknown message type", "type", msg.Type)
		that.presenter.Diagnostic("Received unknown message type: " + msg.Type)

		return nil
	}

	if err = handler(ctx, msg); err != nil {
		return fmt.Errorf("failed to handle %s: %w", msg.Type, err)
	}

	return nil
}

// ReportError - surfaces an input that could not be applied to the session.
func (that *Machine) ReportError(err error) {
	that.logger.Error("failed to apply input", "phase", that.session.Phase.String(), "error", err)
	that.presenter.Diagnostic(err.Error())
}

// SubmitMove - plays cell on behalf of a human player.
func (that *Machine) SubmitMove(ctx context.Context, cell int) error {
	if that.IsObserver() {
		return apperror.ErrObserver
	}

	if !that.session.IsMyTurn {
		return apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= entity.BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidIndex, cell)
	}

	if !that.session.Board.IsEmpty(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return that.sendMove(ctx, cell)
}

func (that *Machine) handleHello(ctx context.Context, _ *protocol.Envelope) error {
	var name string

	if !that.IsObserver() {
		if that.name == "" {
			that.name = entity.PickRandomName(that.rnd)
		}
		name = that.name
	}

	that.logger.Info("identifying", "role", that.role, "name", name, "client_id", that.clientID)

	return that.send(ctx, protocol.NewHello(that.role, name))
}

func (that *Machine) handleIllegal(_ context.Context, msg *protocol.Envelope) error {
	var payload protocol.Illegal
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	that.logger.Warn("server rejected message", "reason", payload.Reason)
	that.presenter.Status("Illegal move: " + payload.Reason)

	return nil
}

func (that *Machine) handleTournamentStarted(_ context.Context, _ *protocol.Envelope) error {
	that.presenter.TournamentStatus("Tournament started! Waiting for game...")
	that.presenter.HideScores()

	return nil
}

func (that *Machine) handleTournamentEnded(_ context.Context, msg *protocol.Envelope) error {
	var payload protocol.TournamentEnded
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	that.resetGame()
	that.setPhase(PhaseAwaitingTournament)

	that.presenter.TournamentStatus("Tournament ended!")
	that.presenter.ResetBoard()

	if that.IsObserver() && payload.Rows != nil {
		that.presenter.ShowScores(that.roster.ResolveScores(payload.ScoreRows()))
	}

	return nil
}

func (that *Machine) handlePlayerCount(_ context.Context, _ *protocol.Envelope) error {
	return nil
}

func (that *Machine) handlePlayerJoined(_ context.Context, msg *protocol.Envelope) error {
	var payload protocol.PlayerJoined
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	that.roster.Join(entity.Player{ID: string(payload.ID), Name: payload.Name})

	return nil
}

func (that *Machine) handlePlayerDropped(_ context.Context, msg *protocol.Envelope) error {
	var payload protocol.PlayerDropped
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	that.roster.Drop(string(payload.ID))

	return nil
}

func (that *Machine) handleGameStarted(_ context.Context, msg *protocol.Envelope) error {
	var payload protocol.GameStarted
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	that.resetGame()
	that.session.GameID = int(*payload.ID)
	that.session.HasGame = true
	that.setPhase(PhaseAwaitingTurn)

	that.presenter.TournamentStatus(fmt.Sprintf("Game %d started!", that.session.GameID))
	that.presenter.ResetBoard()
	that.presenter.GameStarted(that.session.GameID)

	return nil
}

func (that *Machine) handleYourTurn(ctx context.Context, msg *protocol.Envelope) error {
	var payload protocol.YourTurn
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	mark, err := payload.ParseMark()
	if err != nil {
		return err
	}

	if !that.session.HasGame {
		return fmt.Errorf("%w: turn offered outside of a game", apperror.ErrDesync)
	}

	that.session.Mark = mark
	that.session.IsMyTurn = true
	that.setPhase(PhaseMyTurn)

	that.presenter.Status(fmt.Sprintf("Your turn! You are %s", mark))
	that.presenter.YourTurn(mark)

	if that.chooser == nil {
		return nil
	}

	cell, err := that.chooser.ChooseMove(that.session.Board, mark)
	if err != nil {
		return fmt.Errorf("failed to choose move: %w", err)
	}

	return that.sendMove(ctx, cell)
}

func (that *Machine) handleMoveAccepted(_ context.Context, msg *protocol.Envelope) error {
	var payload protocol.MoveAccepted
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	mark, cell, err := payload.Parse()
	if err != nil {
		return err
	}

	if err = that.session.Board.Set(cell, mark); err != nil {
		return fmt.Errorf("%w: %s to cell %d: %w", apperror.ErrDesync, mark, cell, err)
	}

	that.moves = append(that.moves, entity.MoveRecord{Mark: mark, CellIndex: cell})

	that.logger.Debug("move accepted", "mark", mark, "cell", cell, "board", that.session.Board.String())
	that.presenter.CellMarked(cell, mark)
	that.presenter.Status("Move accepted. Waiting for turn...")

	return nil
}

func (that *Machine) handleGameEnded(ctx context.Context, msg *protocol.Envelope) error {
	var payload protocol.GameEnded
	if err := msg.Bind(&payload); err != nil {
		return err
	}

	winner, pattern, err := payload.Result()
	if err != nil {
		return err
	}

	that.session.IsMyTurn = false
	that.setPhase(PhaseGameEnded)

	var result string
	if winner == entity.MarkEmpty {
		result = "Stalemate!"
	} else {
		result = string(winner) + " wins!"
		if pattern.IsValid() {
			that.presenter.DrawWinLine(pattern)
		} else {
			that.logger.Warn("winner reported without a valid pattern", "winner", winner, "pattern", int(pattern))
		}
	}

	that.presenter.GameOver(winner, pattern)
	that.presenter.Status("Game ended: " + result)

	that.record(ctx, winner, pattern)
	that.setPhase(PhaseAwaitingTournament)

	return nil
}

// playerOnly - game messages are meaningless to observers.
func (that *Machine) playerOnly(handler func(context.Context, *protocol.Envelope) error) func(context.Context, *protocol.Envelope) error {
	return func(ctx context.Context, msg *protocol.Envelope) error {
		if that.IsObserver() {
			return nil
		}

		return handler(ctx, msg)
	}
}

func (that *Machine) sendMove(ctx context.Context, cell int) error {
	if err := that.send(ctx, protocol.NewMove(that.session.GameID, cell)); err != nil {
		return err
	}

	that.logger.Info("move sent", "game_id", that.session.GameID, "mark", that.session.Mark, "cell", cell)

	that.session.IsMyTurn = false
	that.setPhase(PhaseAwaitingTurn)

	that.presenter.Status(statusWaitingForTurn)
	that.presenter.TurnPassed()

	return nil
}

func (that *Machine) send(ctx context.Context, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err = that.sender.Send(ctx, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (that *Machine) record(ctx context.Context, winner entity.Mark, pattern entity.WinPattern) {
	if that.recorder == nil || !that.session.HasGame {
		return
	}

	log := that.logger.With("method", "record", "game_id", that.session.GameID)

	record := &entity.GameRecord{
		GameID:     that.session.GameID,
		ClientID:   that.clientID,
		Player:     that.name,
		Mark:       that.session.Mark,
		Winner:     winner,
		Outcome:    entity.DetermineOutcome(that.session.Mark, winner),
		Moves:      append([]entity.MoveRecord(nil), that.moves...),
		Board:      that.session.Board,
		FinishedAt: time.Now().UTC(),
	}

	if winner != entity.MarkEmpty {
		record.Pattern = pattern
	}

	if err := that.recorder.SaveGame(ctx, record); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("game not recorded, shutting down")
			return
		}

		log.Error("failed to record game", "error", err)
	}
}

func (that *Machine) resetGame() {
	that.session.Board.Reset()
	that.session.IsMyTurn = false
	that.moves = nil
}

func (that *Machine) setPhase(phase Phase) {
	if that.session.Phase == phase {
		return
	}

	that.logger.Debug("phase changed", "from", that.session.Phase.String(), "to", phase.String())
	that.session.Phase = phase
}
