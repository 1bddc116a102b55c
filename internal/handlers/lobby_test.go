// internal/handlers/lobby_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/StephensSpace/game-lobby-service/internal/lobby"
	"github.com/StephensSpace/game-lobby-service/internal/models"
)

func newTestServer(t *testing.T) *LobbyServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLobbyServer(lobby.NewManager(logger), logger)
}

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestLobbyCreate checks that /lobby/create builds a lobby with seeded seat
// placeholders.
func TestLobbyCreate(t *testing.T) {
	s := newTestServer(t)

	w := post(t, CreateLobbyHandler(s), `{"name":"friday","maxSeats":4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var lb models.Lobby
	if err := json.Unmarshal(w.Body.Bytes(), &lb); err != nil {
		t.Fatalf("failed to decode lobby: %v", err)
	}
	if lb.ID == uuid.Nil {
		t.Fatal("lobby has no ID")
	}
	if lb.MaxSeats != 4 || lb.Status != models.StatusOpen {
		t.Fatalf("unexpected lobby: %+v", lb)
	}

	view, err := s.Manager.GetView(lb.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Seats) != 4 {
		t.Fatalf("expected 4 seeded seats, got %d", len(view.Seats))
	}
}

func TestLobbyCreateRejectsBadPayload(t *testing.T) {
	s := newTestServer(t)

	if w := post(t, CreateLobbyHandler(s), `not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: got %d", w.Code)
	}
	if w := post(t, CreateLobbyHandler(s), `{"maxSeats":0}`); w.Code != http.StatusBadRequest {
		t.Fatalf("maxSeats=0: got %d", w.Code)
	}
}

func TestJoinUntilFull(t *testing.T) {
	s := newTestServer(t)
	lb, err := s.Manager.CreateLobby(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for want := 0; want < 2; want++ {
		w := post(t, JoinLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"name":"p%d"}`, lb.ID, want))
		if w.Code != http.StatusOK {
			t.Fatalf("join %d: got %d: %s", want, w.Code, w.Body.String())
		}
		var resp struct {
			SeatIndex int `json:"seatIndex"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.SeatIndex != want {
			t.Fatalf("seatIndex = %d, want %d", resp.SeatIndex, want)
		}
	}

	if w := post(t, JoinLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"name":"late"}`, lb.ID)); w.Code != http.StatusConflict {
		t.Fatalf("full lobby join: got %d", w.Code)
	}
}

func TestJoinUnknownLobby(t *testing.T) {
	s := newTestServer(t)
	w := post(t, JoinLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"name":"x"}`, uuid.New()))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown lobby join: got %d", w.Code)
	}
}

func TestReadyAndCloseFlow(t *testing.T) {
	s := newTestServer(t)
	lb, _ := s.Manager.CreateLobby(context.Background(), "", 2)

	post(t, JoinLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"name":"a"}`, lb.ID))

	if w := post(t, ReadyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"seatIndex":0,"ready":true}`, lb.ID)); w.Code != http.StatusOK {
		t.Fatalf("ready: got %d: %s", w.Code, w.Body.String())
	}
	// Ready on an unoccupied seat is a 404, not a conflict.
	if w := post(t, ReadyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"seatIndex":1,"ready":true}`, lb.ID)); w.Code != http.StatusNotFound {
		t.Fatalf("ready on empty seat: got %d", w.Code)
	}

	view, _ := s.Manager.GetView(lb.ID)
	if !view.Lobby.AllReady {
		t.Fatal("single occupied+ready seat should make allReady true")
	}

	if w := post(t, CloseLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q}`, lb.ID)); w.Code != http.StatusOK {
		t.Fatalf("close: got %d", w.Code)
	}
	// Idempotent close.
	if w := post(t, CloseLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q}`, lb.ID)); w.Code != http.StatusOK {
		t.Fatalf("second close: got %d", w.Code)
	}
	// Closed beats full/free seat reporting.
	if w := post(t, JoinLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"name":"b"}`, lb.ID)); w.Code != http.StatusConflict {
		t.Fatalf("join after close: got %d", w.Code)
	}
}

func TestRenameHandlers(t *testing.T) {
	s := newTestServer(t)
	lb, _ := s.Manager.CreateLobby(context.Background(), "", 2)
	post(t, JoinLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"name":"old"}`, lb.ID))

	if w := post(t, RenameSeatHandler(s), fmt.Sprintf(`{"lobbyId":%q,"seatIndex":0,"name":"new"}`, lb.ID)); w.Code != http.StatusOK {
		t.Fatalf("rename seat: got %d", w.Code)
	}
	if w := post(t, RenameLobbyHandler(s), fmt.Sprintf(`{"lobbyId":%q,"name":"renamed"}`, lb.ID)); w.Code != http.StatusOK {
		t.Fatalf("rename lobby: got %d", w.Code)
	}

	view, _ := s.Manager.GetView(lb.ID)
	if view.Seats[0].Name != "new" || view.Lobby.Name != "renamed" {
		t.Fatalf("renames not applied: %+v", view)
	}
}

func TestViewAndListHandlers(t *testing.T) {
	s := newTestServer(t)
	lb, _ := s.Manager.CreateLobby(context.Background(), "listed", 3)

	req := httptest.NewRequest("GET", "/lobby/view?id="+lb.ID.String(), nil)
	w := httptest.NewRecorder()
	ViewLobbyHandler(s).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("view: got %d", w.Code)
	}
	var view models.LobbyView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Seats) != 3 {
		t.Fatalf("view has %d seats", len(view.Seats))
	}

	req = httptest.NewRequest("GET", "/lobby/list", nil)
	w = httptest.NewRecorder()
	ListLobbiesHandler(s).ServeHTTP(w, req)
	var lobbies []models.Lobby
	if err := json.Unmarshal(w.Body.Bytes(), &lobbies); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(lobbies) != 1 || lobbies[0].Name != "listed" {
		t.Fatalf("unexpected list: %+v", lobbies)
	}
}
