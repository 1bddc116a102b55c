// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/StephensSpace/game-lobby-service/internal/lobby"
)

// LobbyServer bundles the engine facade with the logger the handlers share.
// One instance per process, injected into every handler closure.
type LobbyServer struct {
	Manager *lobby.Manager
	Logger  *logrus.Logger
}

// NewLobbyServer wires a LobbyServer around an existing Manager.
func NewLobbyServer(m *lobby.Manager, logger *logrus.Logger) *LobbyServer {
	return &LobbyServer{Manager: m, Logger: logger}
}

// PingHandler responds with a trivial liveness body.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// writeJSON encodes v with the proper content type.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps the engine's error taxonomy onto HTTP status codes.
// Conflict never reaches this point; the seat coordinator absorbs it.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lobby.ErrLobbyNotFound), errors.Is(err, lobby.ErrSeatNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, lobby.ErrNoSeatsAvailable), errors.Is(err, lobby.ErrLobbyClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, lobby.ErrInvalidMaxSeats), errors.Is(err, lobby.ErrUnknownLobbyField):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
