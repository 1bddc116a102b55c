// internal/lobby/ready_test.go
package lobby

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestAllReadyEmptyLobbyIsFalse(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 4)

	if err := recomputeReady(m.store, lb.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	got, _ := m.store.GetLobby(lb.ID)
	if got.AllReady {
		t.Fatal("lobby with zero occupied seats reported allReady")
	}
}

func TestAllReadyTruthTable(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 4)

	for _, name := range []string{"A", "B", "C"} {
		if _, err := m.JoinLobby(lb.ID, name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}

	// 3 occupied, 2 ready.
	mustReady(t, m, lb.ID, 0, true)
	mustReady(t, m, lb.ID, 1, true)
	got, _ := m.store.GetLobby(lb.ID)
	if got.AllReady {
		t.Fatal("allReady true with an occupied seat still unready")
	}

	// All 3 ready.
	mustReady(t, m, lb.ID, 2, true)
	got, _ = m.store.GetLobby(lb.ID)
	if !got.AllReady {
		t.Fatal("allReady false with every occupied seat ready")
	}

	// One toggles back.
	mustReady(t, m, lb.ID, 1, false)
	got, _ = m.store.GetLobby(lb.ID)
	if got.AllReady {
		t.Fatal("allReady stayed true after a seat went unready")
	}
}

func TestRecomputeReadyIdempotent(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 2)

	if _, err := m.JoinLobby(lb.ID, "solo"); err != nil {
		t.Fatalf("join: %v", err)
	}
	mustReady(t, m, lb.ID, 0, true)

	first, _ := m.store.GetLobby(lb.ID)
	if err := recomputeReady(m.store, lb.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	second, _ := m.store.GetLobby(lb.ID)
	if first.AllReady != second.AllReady {
		t.Fatalf("recompute not idempotent: %v then %v", first.AllReady, second.AllReady)
	}
}

func mustReady(t *testing.T, m *Manager, lobbyID uuid.UUID, seat int, ready bool) {
	t.Helper()
	if err := m.SetReady(lobbyID, seat, ready); err != nil {
		t.Fatalf("SetReady(%d, %v): %v", seat, ready, err)
	}
}
