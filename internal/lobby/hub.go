// internal/lobby/hub.go
package lobby

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/StephensSpace/game-lobby-service/internal/models"
)

// subscriberBuffer bounds how far a subscriber may fall behind before the hub
// drops it. A dropped subscriber must resubscribe for a fresh snapshot; no
// gap-filling log is kept.
const subscriberBuffer = 16

// Hub tracks the interested subscribers per lobby and pushes every committed
// full-lobby view to them. It is wired as the store's commit hook, so for a
// single subscriber delivery order always matches per-lobby commit order.
// No ordering is guaranteed across different lobbies.
type Hub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[*Subscription]struct{}
	logger *logrus.Logger
}

// Subscription is one client's live handle on a lobby. The channel returned
// by Updates is closed when the subscription ends, whether by Unsubscribe,
// by lobby teardown, or by the hub dropping a subscriber that stopped
// draining.
type Subscription struct {
	hub     *Hub
	lobbyID uuid.UUID
	ch      chan models.LobbyView
	closed  bool // guarded by hub.mu
}

// NewHub initializes an empty Hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Attach registers a new subscriber and enqueues the given snapshot as its
// first delivery. The manager calls this under the lobby's document lock
// (Store.WithView), so no mutation can commit between the snapshot and the
// registration: the subscriber's very next push is the mutation after its
// snapshot, never a skipped or duplicated one.
func (h *Hub) Attach(view models.LobbyView) *Subscription {
	sub := &Subscription{
		hub:     h,
		lobbyID: view.Lobby.ID,
		ch:      make(chan models.LobbyView, subscriberBuffer),
	}
	sub.ch <- view

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.lobbyID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[sub.lobbyID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish fans view out to every subscriber of its lobby. Sends never block:
// a subscriber whose buffer is full is dropped on the spot; a slow client
// reconnects for a fresh snapshot instead of stalling the lobby.
func (h *Hub) Publish(view models.LobbyView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[view.Lobby.ID] {
		select {
		case sub.ch <- view:
		default:
			h.logger.WithFields(logrus.Fields{
				"lobby":   view.Lobby.ID,
				"version": view.Version,
			}).Warn("subscriber not draining, dropping")
			h.removeLocked(sub)
		}
	}
}

// TearDown closes every subscription of the given lobby and forgets the
// lobby's subscriber set. Buffered views (notably the final closed-status
// push) are still drained by the subscribers before their channels report
// closed.
func (h *Hub) TearDown(lobbyID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[lobbyID] {
		h.removeLocked(sub)
	}
	delete(h.subs, lobbyID)
}

// NumSubscribers reports how many live subscriptions a lobby has.
func (h *Hub) NumSubscribers(lobbyID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[lobbyID])
}

func (h *Hub) removeLocked(sub *Subscription) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)
	if set, ok := h.subs[sub.lobbyID]; ok {
		delete(set, sub)
	}
}

// Updates is the stream of full-lobby views for this subscription, in commit
// order. The channel closes when the subscription ends.
func (s *Subscription) Updates() <-chan models.LobbyView {
	return s.ch
}

// LobbyID reports which lobby this subscription watches.
func (s *Subscription) LobbyID() uuid.UUID {
	return s.lobbyID
}

// Unsubscribe detaches immediately. It is idempotent: calling it repeatedly,
// or on a handle the hub already tore down, is safe. An in-flight push that
// was already buffered is not recalled; clients tolerate one late message.
func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.removeLocked(s)
}
