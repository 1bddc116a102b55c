// internal/lobby/ready.go
package lobby

import (
	"github.com/google/uuid"

	"github.com/StephensSpace/game-lobby-service/internal/models"
)

// recomputeReady recalculates the lobby's collective-ready flag and writes it
// back through the store. It reads a single self-consistent snapshot (never
// per-seat reads, which could observe a torn state across seats changing
// mid-scan), filters to occupied seats, and derives:
//
//	allReady = at least one occupied seat AND every occupied seat is ready
//
// The computation is a pure function of the snapshot, so duplicate or
// out-of-order invocations are harmless and need no serialization of their
// own. Triggered after every successful ready toggle.
func recomputeReady(store *Store, lobbyID uuid.UUID) error {
	view, err := store.View(lobbyID)
	if err != nil {
		return err
	}
	return store.MutateLobbyField(lobbyID, FieldAllReady, allReady(view.Seats))
}

func allReady(seats []models.Seat) bool {
	occupied := 0
	for _, seat := range seats {
		if !seat.Occupied {
			continue
		}
		occupied++
		if !seat.Ready {
			return false
		}
	}
	return occupied > 0
}
