// internal/lobby/manager.go
package lobby

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/StephensSpace/game-lobby-service/internal/models"
)

// Lifecycle event names published to the event queue.
const (
	EventLobbyCreated = "lobby_created"
	EventLobbyStarted = "lobby_started"
	EventLobbyClosed  = "lobby_closed"
)

// Archiver persists a final lobby snapshot once the lobby closes. The
// in-memory store stays authoritative; archiving is best-effort.
type Archiver interface {
	ArchiveLobby(ctx context.Context, view models.LobbyView) error
}

// EventPublisher pushes lifecycle events for downstream consumers.
type EventPublisher interface {
	PublishLobbyEvent(ctx context.Context, event string, lobbyID uuid.UUID) error
}

// Manager owns the lobby lifecycle and fronts the whole engine: it wires one
// Store and one Hub together and exposes the operations the transport layer
// calls. One Manager per process; it is passed by handle to whoever needs it,
// never reached through a global.
type Manager struct {
	store    *Store
	hub      *Hub
	logger   *logrus.Logger
	archiver Archiver
	events   EventPublisher
}

// NewManager builds a Manager with a fresh store and hub. The hub is
// installed as the store's commit hook so every committed mutation fans out
// in commit order.
func NewManager(logger *logrus.Logger) *Manager {
	store := NewStore()
	hub := NewHub(logger)
	store.OnCommit(hub.Publish)
	return &Manager{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// WithArchiver attaches a close-time archiver.
func (m *Manager) WithArchiver(a Archiver) *Manager {
	m.archiver = a
	return m
}

// WithEvents attaches a lifecycle event publisher.
func (m *Manager) WithEvents(p EventPublisher) *Manager {
	m.events = p
	return m
}

// CreateLobby seeds a new OPEN lobby with maxSeats empty placeholders and
// returns it once seeding completed.
func (m *Manager) CreateLobby(ctx context.Context, name string, maxSeats int) (models.Lobby, error) {
	lb, err := m.store.CreateLobby(name, maxSeats)
	if err != nil {
		return models.Lobby{}, err
	}
	m.logger.WithFields(logrus.Fields{"lobby": lb.ID, "maxSeats": maxSeats}).Info("lobby created")
	m.publishEvent(ctx, EventLobbyCreated, lb.ID)
	return lb, nil
}

// JoinLobby claims the first free seat for the caller. The lifecycle check
// runs before the seat scan so a closed lobby reports ErrLobbyClosed even
// when seats would otherwise remain free. ErrNoSeatsAvailable is final for
// this request; callers must not retry it automatically.
func (m *Manager) JoinLobby(lobbyID uuid.UUID, displayName string) (int, error) {
	lb, err := m.store.GetLobby(lobbyID)
	if err != nil {
		return 0, err
	}
	if lb.Status != models.StatusOpen {
		return 0, ErrLobbyClosed
	}

	idx, err := claimFirstFreeSeat(m.store, lobbyID, displayName)
	if err != nil {
		return 0, err
	}
	m.logger.WithFields(logrus.Fields{"lobby": lobbyID, "seat": idx, "name": displayName}).Info("seat claimed")
	return idx, nil
}

// SetReady toggles one occupied seat's ready flag, then recomputes the
// lobby's allReady projection. The underlying write is a CAS expecting the
// seat to be occupied; a CAS miss here means the seat has no occupant, which
// surfaces as ErrSeatNotFound rather than leaking the internal conflict.
func (m *Manager) SetReady(lobbyID uuid.UUID, seatIndex int, ready bool) error {
	occupied := true
	err := m.store.MutateSeat(lobbyID, seatIndex, &occupied, SeatPatch{Ready: &ready})
	if errors.Is(err, ErrConflict) {
		return ErrSeatNotFound
	}
	if err != nil {
		return err
	}
	if err := recomputeReady(m.store, lobbyID); err != nil {
		return err
	}
	return nil
}

// RenameSeat updates a seat's occupant name. Renames are existence-checked
// only; they carry no occupancy precondition and stay allowed after start.
func (m *Manager) RenameSeat(lobbyID uuid.UUID, seatIndex int, name string) error {
	return m.store.MutateSeat(lobbyID, seatIndex, nil, SeatPatch{Name: &name})
}

// RenameLobby updates the lobby's display name.
func (m *Manager) RenameLobby(lobbyID uuid.UUID, name string) error {
	return m.store.MutateLobbyField(lobbyID, FieldName, name)
}

// StartLobby marks the lobby STARTED. The transition is terminal as far as
// this engine is concerned; what a started game does next belongs to the
// consuming application. Starting an already started lobby is a no-op ack.
func (m *Manager) StartLobby(ctx context.Context, lobbyID uuid.UUID) error {
	lb, err := m.store.GetLobby(lobbyID)
	if err != nil {
		return err
	}
	switch lb.Status {
	case models.StatusStarted:
		return nil
	case models.StatusClosed:
		return ErrLobbyClosed
	}

	if err := m.store.MutateLobbyField(lobbyID, FieldStatus, models.StatusStarted); err != nil {
		return err
	}
	m.logger.WithField("lobby", lobbyID).Info("lobby started")
	m.publishEvent(ctx, EventLobbyStarted, lobbyID)
	return nil
}

// CloseLobby marks the lobby CLOSED, lets the final closed-status push reach
// every subscriber, then tears the lobby's subscription set down. Closing an
// already closed lobby acks without a second push.
func (m *Manager) CloseLobby(ctx context.Context, lobbyID uuid.UUID) error {
	lb, err := m.store.GetLobby(lobbyID)
	if err != nil {
		return err
	}
	if lb.Status == models.StatusClosed {
		return nil
	}

	if err := m.store.MutateLobbyField(lobbyID, FieldStatus, models.StatusClosed); err != nil {
		return err
	}
	m.hub.TearDown(lobbyID)
	m.logger.WithField("lobby", lobbyID).Info("lobby closed")

	if m.archiver != nil {
		view, err := m.store.View(lobbyID)
		if err == nil {
			if err := m.archiver.ArchiveLobby(ctx, view); err != nil {
				m.logger.WithField("lobby", lobbyID).Warnf("archive failed: %v", err)
			}
		}
	}
	m.publishEvent(ctx, EventLobbyClosed, lobbyID)
	return nil
}

// SubscribeLobby attaches a new subscriber. The initial snapshot is enqueued
// before any later mutation can fan out, so the stream starts with the
// current state and continues with one view per committed mutation.
func (m *Manager) SubscribeLobby(lobbyID uuid.UUID) (*Subscription, error) {
	var sub *Subscription
	err := m.store.WithView(lobbyID, func(view models.LobbyView) {
		sub = m.hub.Attach(view)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetView returns one self-consistent snapshot of a lobby.
func (m *Manager) GetView(lobbyID uuid.UUID) (models.LobbyView, error) {
	return m.store.View(lobbyID)
}

// ListLobbies returns the top-level fields of every lobby in the store.
func (m *Manager) ListLobbies() []models.Lobby {
	return m.store.ListLobbies()
}

func (m *Manager) publishEvent(ctx context.Context, event string, lobbyID uuid.UUID) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishLobbyEvent(ctx, event, lobbyID); err != nil {
		m.logger.WithFields(logrus.Fields{"lobby": lobbyID, "event": event}).Warnf("event publish failed: %v", err)
	}
}
