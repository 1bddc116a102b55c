// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// lobbyRef is the request shape shared by every operation that targets one
// lobby; op-specific fields ride alongside it.
type lobbyRef struct {
	LobbyID uuid.UUID `json:"lobbyId"`
}

// CreateLobbyHandler builds a fresh lobby with maxSeats empty placeholder
// seats and returns it.
func CreateLobbyHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			MaxSeats int    `json:"maxSeats"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad lobby request payload", http.StatusBadRequest)
			return
		}

		lb, err := s.Manager.CreateLobby(r.Context(), req.Name, req.MaxSeats)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, lb)
	}
}

// JoinLobbyHandler claims the first free seat for the caller and returns its
// index. A full lobby answers 409; callers are expected to stop, not retry.
func JoinLobbyHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			lobbyRef
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad join payload", http.StatusBadRequest)
			return
		}

		idx, err := s.Manager.JoinLobby(req.LobbyID, req.Name)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"seatIndex": idx})
	}
}

// ReadyHandler toggles one occupied seat's ready flag.
func ReadyHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			lobbyRef
			SeatIndex int  `json:"seatIndex"`
			Ready     bool `json:"ready"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad ready payload", http.StatusBadRequest)
			return
		}

		if err := s.Manager.SetReady(req.LobbyID, req.SeatIndex, req.Ready); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// RenameSeatHandler updates a seat's occupant name.
func RenameSeatHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			lobbyRef
			SeatIndex int    `json:"seatIndex"`
			Name      string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad rename payload", http.StatusBadRequest)
			return
		}

		if err := s.Manager.RenameSeat(req.LobbyID, req.SeatIndex, req.Name); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// RenameLobbyHandler updates the lobby's display name.
func RenameLobbyHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			lobbyRef
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad rename payload", http.StatusBadRequest)
			return
		}

		if err := s.Manager.RenameLobby(req.LobbyID, req.Name); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// StartLobbyHandler flips the lobby to STARTED. What happens in the game
// afterwards is the consuming application's business.
func StartLobbyHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lobbyRef
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad start payload", http.StatusBadRequest)
			return
		}

		if err := s.Manager.StartLobby(r.Context(), req.LobbyID); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// CloseLobbyHandler closes the lobby. Closing twice still acks.
func CloseLobbyHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lobbyRef
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad close payload", http.StatusBadRequest)
			return
		}

		if err := s.Manager.CloseLobby(r.Context(), req.LobbyID); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// ViewLobbyHandler returns one self-consistent snapshot of a lobby.
func ViewLobbyHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "invalid lobby id", http.StatusBadRequest)
			return
		}

		view, err := s.Manager.GetView(id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// ListLobbiesHandler returns the top-level fields of every lobby in memory.
func ListLobbiesHandler(s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Manager.ListLobbies())
	}
}
