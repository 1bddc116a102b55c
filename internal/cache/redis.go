// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for lobby lifecycle events.
var DefaultQueueName = "lobby_events"

// LobbyEventRecord is the envelope pushed onto the event queue. Downstream
// consumers (dashboards, cleanup jobs) read these; the engine itself never
// reads them back.
type LobbyEventRecord struct {
	Event     string    `json:"event"`
	LobbyID   uuid.UUID `json:"lobby_id"`
	Timestamp int64     `json:"timestamp"`
}

// Publisher wraps a Redis client and the queue lifecycle events go to.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// ConnectRedis initializes a Publisher from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
//   - LOBBY_EVENT_QUEUE (optional, defaults to DefaultQueueName)
func ConnectRedis() (*Publisher, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{
		rdb:   rdb,
		queue: getEnv("LOBBY_EVENT_QUEUE", DefaultQueueName),
	}, nil
}

// PublishLobbyEvent serializes the event to JSON, then pushes it onto the
// queue. This does not block the calling logic beyond a quick network send.
func (p *Publisher) PublishLobbyEvent(ctx context.Context, event string, lobbyID uuid.UUID) error {
	record := LobbyEventRecord{
		Event:     event,
		LobbyID:   lobbyID,
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal LobbyEventRecord: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
