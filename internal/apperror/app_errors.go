package apperror

import "errors"

var (
	ErrInvalidIndex     = errors.New("invalid cell index")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidMark      = errors.New("invalid mark")
	ErrNoEmptyCells     = errors.New("no empty cells left")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrObserver         = errors.New("observers can't make moves")
	ErrNotConnected     = errors.New("not connected")
	ErrMalformedMessage = errors.New("malformed message")
	ErrDesync           = errors.New("board out of sync with server")
	ErrUnknownStrategy  = errors.New("unknown move strategy")
	ErrGameNotFound     = errors.New("game not found")
	ErrInvalidConfig    = errors.New("invalid config")
)
