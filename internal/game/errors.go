// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the rejection reason of a user-facing error.
// Kinds are stable strings so the transport layer can forward them to
// clients verbatim.
type ErrorKind string

const (
	ErrGameNotFound          ErrorKind = "game_not_found"
	ErrGameFull              ErrorKind = "game_full"
	ErrDuplicateName         ErrorKind = "duplicate_name"
	ErrNotHost               ErrorKind = "not_host"
	ErrNotEnoughPlayers      ErrorKind = "not_enough_players"
	ErrInvalidPhase          ErrorKind = "invalid_phase"
	ErrInvalidPlayerCount    ErrorKind = "invalid_player_count"
	ErrCardNotInHand         ErrorKind = "card_not_in_hand"
	ErrChopsticksUnavailable ErrorKind = "chopsticks_unavailable"
	ErrInvalidSecondCard     ErrorKind = "invalid_second_card"
	ErrRoundNotComplete      ErrorKind = "round_not_complete"
	ErrUnknownPlayer         ErrorKind = "unknown_player"
	ErrGameOver              ErrorKind = "game_over"
)

// UserError is a synchronous rejection of a bad command: wrong phase,
// unauthorized action, invalid card reference. State is untouched and
// the error is surfaced only to the offending caller.
type UserError struct {
	Kind    ErrorKind
	Message string
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewUserError builds a rejection of the given kind. Exposed so the
// transport layer can reject malformed input with the same error shape
// the engine uses.
func NewUserError(kind ErrorKind, msg string) *UserError {
	return &UserError{Kind: kind, Message: msg}
}

func newUserError(kind ErrorKind, msg string) *UserError {
	return NewUserError(kind, msg)
}

// AsUserError unwraps err into a *UserError if it is one.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IntegrityError indicates a violated engine invariant (card count
// drift, duplicate card IDs, negative hand size). It is a core defect,
// not caller error; the session is terminated when one surfaces.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string {
	return "integrity: " + e.Message
}

func newIntegrityError(format string, args ...interface{}) *IntegrityError {
	return &IntegrityError{Message: fmt.Sprintf(format, args...)}
}

// AsIntegrityError unwraps err into an *IntegrityError if it is one.
func AsIntegrityError(err error) (*IntegrityError, bool) {
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
