// Package protocol describes the JSON messages exchanged with the tournament server.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
)

const (
	TypeHello             = "hello"
	TypeIllegal           = "illegal"
	TypeTournamentStarted = "tournament-started"
	TypeTournamentEnded   = "tournament-ended"
	TypePlayerCount       = "player-count"
	TypePlayerJoined      = "player-joined"
	TypePlayerDropped     = "player-dropped"
	TypeGameStarted       = "tic-tac-toe:game-started"
	TypeYourTurn          = "tic-tac-toe:your-turn"
	TypeMoveAccepted      = "tic-tac-toe:move-accepted"
	TypeGameEnded         = "tic-tac-toe:game-ended"
	TypeMove              = "tic-tac-toe:move"
)

// Envelope - inbound message with its type decoded and the rest kept raw.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// Decode - parses a text frame. The type field is mandatory.
func Decode(data []byte) (*Envelope, error) {
	var envelope Envelope

	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	if envelope.Type == "" {
		return nil, fmt.Errorf("%w: missing type", apperror.ErrMalformedMessage)
	}

	envelope.Raw = data

	return &envelope, nil
}

// Bind - unmarshals the payload of the message into v.
func (that *Envelope) Bind(v any) error {
	if err := json.Unmarshal(that.Raw, v); err != nil {
		return fmt.Errorf("%w: %s: %w", apperror.ErrMalformedMessage, that.Type, err)
	}

	return nil
}

// ID - identifier the server may send either as a JSON string or as a number.
type ID string

func (that *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*that = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*that = ID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}

	*that = ID(number.String())

	return nil
}

// GameID - numeric game identifier; numeric strings are accepted too.
type GameID int

func (that *GameID) UnmarshalJSON(data []byte) error {
	var id ID
	if err := id.UnmarshalJSON(data); err != nil {
		return err
	}

	value, err := strconv.Atoi(string(id))
	if err != nil {
		return fmt.Errorf("game id %q is not an integer: %w", id, err)
	}

	*that = GameID(value)

	return nil
}
