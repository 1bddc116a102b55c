// internal/lobby/seats.go
package lobby

import (
	"errors"

	"github.com/google/uuid"
)

// claimFirstFreeSeat resolves one join request into a unique seat index.
//
// Many simultaneous joins race for the same small seat set, so a plain
// read-then-write would lose updates. Instead: read the current seat
// snapshot, scan ascending for the first unoccupied seat, and attempt a CAS
// claim (expected occupied=false). Losing the race yields ErrConflict; the
// loop then re-reads and continues scanning from the NEXT index onward rather
// than restarting at zero, which guarantees progress under contention. Seats
// never free up behind the scan (there is no seat release), so forward-only
// rescanning cannot miss a claimable seat. The whole loop is bounded by
// maxSeats attempts; exhausting it means the lobby filled up.
func claimFirstFreeSeat(store *Store, lobbyID uuid.UUID, requestedName string) (int, error) {
	seats, err := store.Seats(lobbyID)
	if err != nil {
		return 0, err
	}

	next := 0
	occupied := true
	patch := SeatPatch{Occupied: &occupied}
	if requestedName != "" {
		// A blank request keeps the seat's seeded placeholder name.
		patch.Name = &requestedName
	}
	expectFree := false

	for attempt := 0; attempt < len(seats); attempt++ {
		idx := -1
		for i := next; i < len(seats); i++ {
			if !seats[i].Occupied {
				idx = i
				break
			}
		}
		if idx == -1 {
			return 0, ErrNoSeatsAvailable
		}

		err := store.MutateSeat(lobbyID, idx, &expectFree, patch)
		if errors.Is(err, ErrConflict) {
			// Another claim won this seat between our read and the CAS.
			next = idx + 1
			if seats, err = store.Seats(lobbyID); err != nil {
				return 0, err
			}
			continue
		}
		if err != nil {
			return 0, err
		}
		return idx, nil
	}
	return 0, ErrNoSeatsAvailable
}
