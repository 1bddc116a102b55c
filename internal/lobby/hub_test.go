// internal/lobby/hub_test.go
package lobby

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/StephensSpace/game-lobby-service/internal/models"
)

func recvView(t *testing.T, sub *Subscription) models.LobbyView {
	t.Helper()
	select {
	case view, ok := <-sub.Updates():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return view
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for push")
	}
	return models.LobbyView{}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 4)

	sub, err := m.SubscribeLobby(lb.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	snap := recvView(t, sub)
	if len(snap.Seats) != 4 {
		t.Fatalf("initial snapshot has %d seats", len(snap.Seats))
	}
	for i, seat := range snap.Seats {
		if seat.Occupied {
			t.Errorf("seat %d occupied in fresh snapshot", i)
		}
	}
	if snap.Version != 0 {
		t.Fatalf("fresh snapshot version = %d", snap.Version)
	}
}

func TestOnePushPerJoinInCommitOrder(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 4)

	sub, err := m.SubscribeLobby(lb.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	recvView(t, sub) // initial snapshot

	for i := 0; i < 4; i++ {
		if _, err := m.JoinLobby(lb.ID, fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}

	// Exactly one push per join, versions strictly increasing, occupancy
	// growing one seat at a time.
	for i := 0; i < 4; i++ {
		view := recvView(t, sub)
		if view.Version != int64(i+1) {
			t.Fatalf("push %d has version %d", i, view.Version)
		}
		occupied := 0
		for _, seat := range view.Seats {
			if seat.Occupied {
				occupied++
			}
		}
		if occupied != i+1 {
			t.Fatalf("push %d shows %d occupied seats", i, occupied)
		}
	}

	select {
	case view := <-sub.Updates():
		t.Fatalf("unexpected extra push: version %d", view.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribersOfOtherLobbiesUnaffected(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.CreateLobby(context.Background(), "a", 2)
	b, _ := m.CreateLobby(context.Background(), "b", 2)

	subB, err := m.SubscribeLobby(b.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subB.Unsubscribe()
	recvView(t, subB)

	if _, err := m.JoinLobby(a.ID, "x"); err != nil {
		t.Fatalf("join: %v", err)
	}

	select {
	case view := <-subB.Updates():
		t.Fatalf("lobby b subscriber got lobby %s push", view.Lobby.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseDeliversFinalPushThenTearsDown(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 2)

	sub, err := m.SubscribeLobby(lb.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	recvView(t, sub)

	if err := m.CloseLobby(context.Background(), lb.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	final := recvView(t, sub)
	if final.Lobby.Status != models.StatusClosed {
		t.Fatalf("final push status = %s", final.Lobby.Status)
	}

	select {
	case _, ok := <-sub.Updates():
		if ok {
			t.Fatal("push after teardown")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after teardown")
	}

	if n := m.hub.NumSubscribers(lb.ID); n != 0 {
		t.Fatalf("%d subscribers left after teardown", n)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 2)

	sub, err := m.SubscribeLobby(lb.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat

	if err := m.CloseLobby(context.Background(), lb.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	sub.Unsubscribe() // and safe after teardown
}

func TestSlowSubscriberDropped(t *testing.T) {
	m := newTestManager(t)
	lb, _ := m.CreateLobby(context.Background(), "", 2)

	sub, err := m.SubscribeLobby(lb.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Never drain: the initial snapshot plus subscriberBuffer-1 renames fill
	// the channel, so later commits must drop the subscriber.
	for i := 0; i < subscriberBuffer+8; i++ {
		if err := m.RenameLobby(lb.ID, fmt.Sprintf("v%d", i)); err != nil {
			t.Fatalf("rename %d: %v", i, err)
		}
	}

	if n := m.hub.NumSubscribers(lb.ID); n != 0 {
		t.Fatalf("slow subscriber still registered (%d)", n)
	}

	// The channel still drains its buffered backlog, then reports closed.
	last := int64(-1)
	for view := range sub.Updates() {
		if view.Version <= last {
			t.Fatalf("delivery out of order: %d after %d", view.Version, last)
		}
		last = view.Version
	}
}
