// internal/lobby/store.go
package lobby

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/StephensSpace/game-lobby-service/internal/models"
)

// seatColors mirrors the default palette seeded for the four starter slots in
// the original lobby template; lobbies with more seats cycle through it.
var seatColors = []string{"red", "blue", "green", "purple"}

// CommitFunc receives the full-lobby view of every committed mutation. The
// store invokes it while still holding the lobby's document lock, so for a
// given lobby the hook observes views in exactly commit order. The hook must
// not call back into the store.
type CommitFunc func(view models.LobbyView)

// Store is the authoritative in-memory table of lobby documents. Each lobby
// and its fixed-length seat array form one document; mutations are atomic per
// document and seat claims are compare-and-swap on the occupied flag.
type Store struct {
	mu       sync.Mutex
	lobbies  map[uuid.UUID]*document
	onCommit CommitFunc
}

type document struct {
	mu      sync.Mutex
	lobby   models.Lobby
	seats   []models.Seat
	version int64
}

// NewStore initializes an empty Store.
func NewStore() *Store {
	return &Store{
		lobbies: make(map[uuid.UUID]*document),
	}
}

// OnCommit registers the commit hook. Wire this before the store is shared
// with callers; it is not safe to swap while mutations are in flight.
func (s *Store) OnCommit(fn CommitFunc) {
	s.onCommit = fn
}

// CreateLobby allocates a new lobby document and seeds maxSeats empty seat
// placeholders named Player1..PlayerN. The lobby starts OPEN with a fresh id.
func (s *Store) CreateLobby(name string, maxSeats int) (models.Lobby, error) {
	if maxSeats <= 0 {
		return models.Lobby{}, ErrInvalidMaxSeats
	}

	lb := models.Lobby{
		ID:       uuid.New(),
		Name:     name,
		MaxSeats: maxSeats,
		Status:   models.StatusOpen,
	}
	seats := make([]models.Seat, maxSeats)
	for i := range seats {
		seats[i] = models.Seat{
			Index: i,
			Name:  fmt.Sprintf("Player%d", i+1),
			Color: seatColors[i%len(seatColors)],
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lb.ID] = &document{lobby: lb, seats: seats}
	return lb, nil
}

// GetLobby returns the lobby's top-level fields.
func (s *Store) GetLobby(id uuid.UUID) (models.Lobby, error) {
	doc, err := s.doc(id)
	if err != nil {
		return models.Lobby{}, err
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.lobby, nil
}

// Seats returns the lobby's ordered seat array. The result always has
// exactly maxSeats entries; unoccupied slots are explicit placeholders.
func (s *Store) Seats(id uuid.UUID) ([]models.Seat, error) {
	doc, err := s.doc(id)
	if err != nil {
		return nil, err
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return copySeats(doc.seats), nil
}

// View returns one self-consistent snapshot of the lobby and all its seats.
func (s *Store) View(id uuid.UUID) (models.LobbyView, error) {
	doc, err := s.doc(id)
	if err != nil {
		return models.LobbyView{}, err
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.viewLocked(), nil
}

// WithView runs fn with a snapshot of the lobby while holding the document
// lock, guaranteeing no mutation commits between taking the snapshot and fn
// returning. Used to attach subscribers without a snapshot/registration gap.
func (s *Store) WithView(id uuid.UUID, fn func(view models.LobbyView)) error {
	doc, err := s.doc(id)
	if err != nil {
		return err
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	fn(doc.viewLocked())
	return nil
}

// ListLobbies returns a copy of every lobby's top-level fields.
func (s *Store) ListLobbies() []models.Lobby {
	s.mu.Lock()
	docs := make([]*document, 0, len(s.lobbies))
	for _, doc := range s.lobbies {
		docs = append(docs, doc)
	}
	s.mu.Unlock()

	out := make([]models.Lobby, 0, len(docs))
	for _, doc := range docs {
		doc.mu.Lock()
		out = append(out, doc.lobby)
		doc.mu.Unlock()
	}
	return out
}

// SeatPatch carries the seat fields a mutation wants to change. Nil fields
// are left untouched.
type SeatPatch struct {
	Name     *string
	Occupied *bool
	Ready    *bool
}

// MutateSeat applies patch to one seat. When expectedOccupied is non-nil the
// write is a compare-and-swap: it fails with ErrConflict if the seat's
// occupied flag no longer matches, and with ErrLobbyClosed if the lobby has
// left the OPEN state (claims and ready toggles are write-gated on lifecycle;
// plain existence-checked updates such as renames are not). The caller must
// re-read and retry or abort on ErrConflict.
func (s *Store) MutateSeat(id uuid.UUID, seatIndex int, expectedOccupied *bool, patch SeatPatch) error {
	doc, err := s.doc(id)
	if err != nil {
		return err
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	if seatIndex < 0 || seatIndex >= len(doc.seats) {
		return ErrSeatNotFound
	}
	if expectedOccupied != nil {
		if doc.lobby.Status != models.StatusOpen {
			return ErrLobbyClosed
		}
		if doc.seats[seatIndex].Occupied != *expectedOccupied {
			return ErrConflict
		}
	}

	seat := &doc.seats[seatIndex]
	if patch.Name != nil {
		seat.Name = *patch.Name
	}
	if patch.Occupied != nil {
		seat.Occupied = *patch.Occupied
	}
	if patch.Ready != nil {
		seat.Ready = *patch.Ready
	}

	doc.commitLocked(s.onCommit)
	return nil
}

// Lobby field names accepted by MutateLobbyField.
const (
	FieldName     = "name"
	FieldAllReady = "allReady"
	FieldStatus   = "status"
)

// MutateLobbyField updates a single top-level lobby field. The value's type
// must match the field; anything else is ErrUnknownLobbyField.
func (s *Store) MutateLobbyField(id uuid.UUID, field string, value any) error {
	doc, err := s.doc(id)
	if err != nil {
		return err
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	switch field {
	case FieldName:
		v, ok := value.(string)
		if !ok {
			return ErrUnknownLobbyField
		}
		doc.lobby.Name = v
	case FieldAllReady:
		v, ok := value.(bool)
		if !ok {
			return ErrUnknownLobbyField
		}
		doc.lobby.AllReady = v
	case FieldStatus:
		v, ok := value.(models.LobbyStatus)
		if !ok {
			return ErrUnknownLobbyField
		}
		doc.lobby.Status = v
	default:
		return ErrUnknownLobbyField
	}

	doc.commitLocked(s.onCommit)
	return nil
}

func (s *Store) doc(id uuid.UUID) (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.lobbies[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return doc, nil
}

// commitLocked bumps the document version and hands the resulting view to the
// commit hook. Caller holds doc.mu, which is what keeps hook invocations in
// commit order per lobby.
func (d *document) commitLocked(fn CommitFunc) {
	d.version++
	if fn != nil {
		fn(d.viewLocked())
	}
}

func (d *document) viewLocked() models.LobbyView {
	return models.LobbyView{
		Lobby:   d.lobby,
		Seats:   copySeats(d.seats),
		Version: d.version,
	}
}

func copySeats(seats []models.Seat) []models.Seat {
	out := make([]models.Seat, len(seats))
	copy(out, seats)
	return out
}
