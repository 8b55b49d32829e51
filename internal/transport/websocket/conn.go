package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWriteTimeout     = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	closeGracePeriod        = time.Second
)

type Options struct {
	WriteTimeout time.Duration
	// PingInterval of zero disables keepalive pings and the read deadline.
	PingInterval time.Duration
	Header       http.Header
}

type Dialer struct {
	logger *slog.Logger
	dialer *websocket.Dialer
	opts   Options
}

func NewDialer(logger *slog.Logger, opts Options) *Dialer {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	return &Dialer{
		logger: logger.With("component", "websocket"),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		opts: opts,
	}
}

// Dial - opens a text-message connection to url.
func (that *Dialer) Dial(ctx context.Context, url string) (*Conn, error) {
	log := that.logger.With("method", "Dial", "url", url)

	ws, resp, err := that.dialer.DialContext(ctx, url, that.opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	pingCtx, cancel := context.WithCancel(context.Background())

	conn := &Conn{
		logger:       log,
		ws:           ws,
		writeTimeout: that.opts.WriteTimeout,
		cancelPing:   cancel,
	}

	if that.opts.PingInterval > 0 {
		pongTimeout := 2 * that.opts.PingInterval

		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongTimeout))
		})

		if err = ws.SetReadDeadline(time.Now().Add(pongTimeout)); err != nil {
			cancel()
			ws.Close()
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}

		go conn.pingLoop(pingCtx, that.opts.PingInterval)
	}

	log.Debug("connection established")

	return conn, nil
}

// Conn - a gorilla connection with serialised writes.
type Conn struct {
	logger       *slog.Logger
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu    sync.Mutex
	cancelPing context.CancelFunc
	closeOnce  sync.Once
	closeErr   error
}

// ReadMessage - blocks for the next data message. Returns io.EOF once the peer closes normally.
func (that *Conn) ReadMessage() ([]byte, error) {
	_, data, err := that.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	return data, nil
}

// WriteMessage - writes one text message, bounded by the write timeout and ctx deadline.
func (that *Conn) WriteMessage(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(that.writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.ws.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Close - sends a normal close frame and releases the connection. Safe to call more than once.
func (that *Conn) Close() error {
	that.closeOnce.Do(func() {
		that.cancelPing()

		that.writeMu.Lock()
		err := that.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod),
		)
		that.writeMu.Unlock()

		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			that.logger.Debug("failed to send close frame", "error", err)
		}

		that.closeErr = that.ws.Close()
	})

	return that.closeErr
}

func (that *Conn) pingLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.writeMu.Lock()
			err := that.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(that.writeTimeout))
			that.writeMu.Unlock()

			if err != nil {
				that.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
