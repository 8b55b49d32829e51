// Package client runs one tournament session over one connection.
//
// Transport callbacks and user moves arrive on different goroutines; the client
// queues them and feeds the session machine from a single goroutine, strictly in
// arrival order.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
)

const eventBuffer = 64

// Conn - an open message channel. ReadMessage returns io.EOF after an orderly close.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(ctx context.Context, data []byte) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

type DialFunc func(ctx context.Context, url string) (Conn, error)

func (that DialFunc) Dial(ctx context.Context, url string) (Conn, error) {
	return that(ctx, url)
}

// Machine - the session state machine driven by the client.
type Machine interface {
	Connecting(url string)
	Opened(ctx context.Context)
	Closed(ctx context.Context, err error)
	HandleMessage(ctx context.Context, data []byte) error
	SubmitMove(ctx context.Context, cell int) error
	ReportError(err error)
}

type eventKind int

const (
	eventMessage eventKind = iota
	eventClosed
	eventMove
)

type event struct {
	kind   eventKind
	data   []byte
	err    error
	cell   int
	result chan error
}

type Client struct {
	logger *slog.Logger
	dialer Dialer
	url    string

	events chan event
	done   chan struct{}

	mu      sync.Mutex
	conn    Conn
	leaving bool
}

func New(logger *slog.Logger, dialer Dialer, url string) *Client {
	return &Client{
		logger: logger.With("component", "client"),
		dialer: dialer,
		url:    url,
		events: make(chan event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Run - connects and drives machine until the connection ends or ctx is canceled.
// A nil error means the session ended by an orderly close. Run may be called once.
func (that *Client) Run(ctx context.Context, machine Machine) error {
	log := that.logger.With("method", "Run", "url", that.url)
	defer close(that.done)

	machine.Connecting(that.url)

	conn, err := that.dialer.Dial(ctx, that.url)
	if err != nil {
		machine.Closed(ctx, err)
		return fmt.Errorf("failed to connect to %s: %w", that.url, err)
	}

	that.mu.Lock()
	that.conn = conn
	that.mu.Unlock()

	log.Info("connected")
	machine.Opened(ctx)

	go that.readLoop(conn)

	for {
		select {
		case <-ctx.Done():
			that.closeConn()
			machine.Closed(ctx, nil)
			return ctx.Err()

		case ev := <-that.events:
			switch ev.kind {
			case eventMessage:
				if err = machine.HandleMessage(ctx, ev.data); err != nil {
					machine.ReportError(err)
				}

			case eventMove:
				ev.result <- machine.SubmitMove(ctx, ev.cell)

			case eventClosed:
				that.mu.Lock()
				that.conn = nil
				that.mu.Unlock()

				machine.Closed(ctx, ev.err)

				if ev.err != nil {
					return fmt.Errorf("connection to %s lost: %w", that.url, ev.err)
				}

				return nil
			}
		}
	}
}

// Send - writes one message on the open connection.
func (that *Client) Send(ctx context.Context, data []byte) error {
	that.mu.Lock()
	conn := that.conn
	that.mu.Unlock()

	if conn == nil {
		return apperror.ErrNotConnected
	}

	that.logger.Debug("sending message", "message", string(data))

	if err := conn.WriteMessage(ctx, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// SubmitMove - queues a move chosen by a user and waits for the session to take it.
func (that *Client) SubmitMove(ctx context.Context, cell int) error {
	result := make(chan error, 1)

	select {
	case that.events <- event{kind: eventMove, cell: cell, result: result}:
	case <-that.done:
		return apperror.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-that.done:
		return apperror.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Leave - closes the connection; Run returns once the close is observed.
func (that *Client) Leave() error {
	that.mu.Lock()
	that.leaving = true
	that.mu.Unlock()

	return that.closeConn()
}

func (that *Client) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			that.push(event{kind: eventClosed, err: that.closeReason(err)})
			return
		}

		if !that.push(event{kind: eventMessage, data: data}) {
			return
		}
	}
}

func (that *Client) push(ev event) bool {
	select {
	case that.events <- ev:
		return true
	case <-that.done:
		return false
	}
}

func (that *Client) closeReason(err error) error {
	that.mu.Lock()
	leaving := that.leaving
	that.mu.Unlock()

	if leaving || errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

func (that *Client) closeConn() error {
	that.mu.Lock()
	conn := that.conn
	that.mu.Unlock()

	if conn == nil {
		return apperror.ErrNotConnected
	}

	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
