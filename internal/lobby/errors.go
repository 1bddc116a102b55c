// internal/lobby/errors.go
package lobby

import "errors"

// Error taxonomy for the engine. Conflict is internal only: the seat
// coordinator absorbs it in its retry loop and never surfaces it to callers.
// Everything else is terminal for the single request that received it; no
// surfaced error implies a partial mutation.
var (
	ErrLobbyNotFound     = errors.New("lobby not found")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrConflict          = errors.New("seat precondition no longer holds")
	ErrNoSeatsAvailable  = errors.New("no seats available")
	ErrLobbyClosed       = errors.New("lobby no longer accepts changes")
	ErrInvalidMaxSeats   = errors.New("maxSeats must be a positive integer")
	ErrUnknownLobbyField = errors.New("unknown lobby field")
)
