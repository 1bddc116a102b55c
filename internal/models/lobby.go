// internal/models/lobby.go
package models

import "github.com/google/uuid"

// LobbyStatus is the lifecycle state of a lobby. OPEN lobbies accept seat
// claims and ready toggles; STARTED and CLOSED are terminal for writes.
type LobbyStatus string

const (
	StatusOpen    LobbyStatus = "open"
	StatusStarted LobbyStatus = "started"
	StatusClosed  LobbyStatus = "closed"
)

// Lobby is the top-level lobby document. AllReady is a cached projection of
// the occupied seats' ready flags; it is recomputed by the engine and never
// set directly by clients.
type Lobby struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name,omitempty"`
	MaxSeats int         `json:"maxSeats"`
	AllReady bool        `json:"allReady"`
	Status   LobbyStatus `json:"status"`
}

// Seat is one addressable slot within a lobby. Every index 0..MaxSeats-1
// exists from lobby creation on; unoccupied seats are placeholders, never
// absent. Color and Score are seeded defaults carried for the client.
type Seat struct {
	Index    int    `json:"seatIndex"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Score    int    `json:"score"`
	Occupied bool   `json:"occupied"`
	Ready    bool   `json:"ready"`
}

// LobbyView is the full-lobby snapshot fanned out to subscribers. Version is
// a per-lobby counter incremented on every committed mutation, so a single
// subscriber always observes strictly increasing versions.
type LobbyView struct {
	Lobby   Lobby  `json:"lobby"`
	Seats   []Seat `json:"seats"`
	Version int64  `json:"version"`
}
