// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/StephensSpace/game-lobby-service/internal/lobby"
	"github.com/StephensSpace/game-lobby-service/internal/middleware"
)

// wsClient is one socket's session state: the seat it claimed over this
// socket (if any) and a small channel for direct acks/errors so that all
// writes funnel through the single write pump.
type wsClient struct {
	seatIndex int // -1 until a join succeeds on this socket
	direct    chan map[string]interface{}
}

// writeDirect pushes a message onto the client's direct channel
// non-blockingly. Dropped messages are logged; the state stream is
// unaffected.
func (c *wsClient) writeDirect(logger *logrus.Logger, msg map[string]interface{}) {
	select {
	case c.direct <- msg:
	default:
		msgType, _ := msg["type"].(string)
		logger.Warnf("direct channel full, dropped message type '%s'", msgType)
	}
}

func (c *wsClient) writeError(logger *logrus.Logger, msg string) {
	c.writeDirect(logger, map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}

// LobbyWSHandler upgrades /lobby/ws/{id} to a WebSocket, subscribes the
// connection to the lobby, and streams full-lobby views in commit order. The
// first frame is always the current snapshot. Clients may also send
// join/ready/unready/rename/leave actions on the same socket; every action
// routes through the engine facade, so the invariants hold regardless of
// transport.
func LobbyWSHandler(logger *logrus.Logger, s *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/lobby/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing lobby_id", http.StatusBadRequest)
			return
		}
		lobbyID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid lobby_id", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "lobby" {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}

		sub, err := s.Manager.SubscribeLobby(lobbyID)
		if err != nil {
			c.Close(InvalidLobbyIDError, "lobby does not exist")
			return
		}
		defer sub.Unsubscribe()

		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := &wsClient{
			seatIndex: -1,
			direct:    make(chan map[string]interface{}, 8),
		}

		go writePump(ctx, c, sub, client, logger)

		err = readPump(ctx, c, s, lobbyID, client, logger)
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, err)
	}
}

// readPump handles incoming action frames until the socket closes or the
// client leaves. It never writes to the socket itself; acks and errors go
// through the client's direct channel.
func readPump(ctx context.Context, c *websocket.Conn, s *LobbyServer, lobbyID uuid.UUID, client *wsClient, logger *logrus.Logger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(msg, &packet); err != nil {
			client.writeError(logger, "invalid JSON format")
			continue
		}

		action, _ := packet["type"].(string)
		switch action {
		case "join":
			name, _ := packet["name"].(string)
			idx, err := s.Manager.JoinLobby(lobbyID, name)
			if err != nil {
				client.writeError(logger, err.Error())
				continue
			}
			client.seatIndex = idx
			client.writeDirect(logger, map[string]interface{}{
				"type":      "seat_claimed",
				"seatIndex": idx,
			})

		case "ready", "unready":
			seat := seatFromPacket(packet, client.seatIndex)
			if err := s.Manager.SetReady(lobbyID, seat, action == "ready"); err != nil {
				client.writeError(logger, err.Error())
			}

		case "rename":
			seat := seatFromPacket(packet, client.seatIndex)
			name, _ := packet["name"].(string)
			if err := s.Manager.RenameSeat(lobbyID, seat, name); err != nil {
				client.writeError(logger, err.Error())
			}

		case "leave":
			// Detaches the subscription only; claimed seats are never freed.
			return nil

		default:
			client.writeError(logger, "unknown action type: "+action)
		}
	}
}

// writePump is the socket's only writer. It interleaves the subscription's
// state stream, direct acks, and keepalive pings. When the state stream
// closes (lobby teardown or the hub dropped us for not draining) it closes
// the socket; the client resubscribes for a fresh snapshot.
func writePump(ctx context.Context, c *websocket.Conn, sub *lobby.Subscription, client *wsClient, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case view, ok := <-sub.Updates():
			if !ok {
				c.Close(LobbyTornDownError, "subscription ended")
				return
			}
			if err := writeFrame(ctx, c, map[string]interface{}{
				"type":    "lobby_state",
				"lobby":   view.Lobby,
				"seats":   view.Seats,
				"version": view.Version,
			}); err != nil {
				logger.Warnf("failed to write lobby state: %v", err)
				return
			}

		case msg := <-client.direct:
			if err := writeFrame(ctx, c, msg); err != nil {
				logger.Warnf("failed to write direct message: %v", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed, assuming disconnect: %v", err)
				return
			}
		}
	}
}

func writeFrame(ctx context.Context, c *websocket.Conn, msg map[string]interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}

// seatFromPacket reads seatIndex from the packet, falling back to the seat
// this socket claimed. JSON numbers decode as float64.
func seatFromPacket(packet map[string]interface{}, fallback int) int {
	if v, ok := packet["seatIndex"].(float64); ok {
		return int(v)
	}
	return fallback
}
