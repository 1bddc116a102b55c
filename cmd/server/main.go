// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/StephensSpace/game-lobby-service/internal/cache"
	"github.com/StephensSpace/game-lobby-service/internal/database"
	"github.com/StephensSpace/game-lobby-service/internal/handlers"
	"github.com/StephensSpace/game-lobby-service/internal/lobby"
	"github.com/StephensSpace/game-lobby-service/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	manager := lobby.NewManager(logger)

	// Postgres archive and Redis event queue are optional attachments; the
	// engine itself is fully in-memory.
	if os.Getenv("PG_HOST") != "" {
		pool, err := database.Connect(context.Background())
		if err != nil {
			log.Fatalf("postgres connect failed: %v", err)
		}
		defer pool.Close()

		archive := database.NewArchive(pool)
		if err := archive.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("archive schema failed: %v", err)
		}
		manager.WithArchiver(archive)
		logger.Info("lobby archive enabled")
	}
	if os.Getenv("REDIS_ADDR") != "" {
		publisher, err := cache.ConnectRedis()
		if err != nil {
			log.Fatalf("redis connect failed: %v", err)
		}
		defer publisher.Close()

		manager.WithEvents(publisher)
		logger.Info("lobby event queue enabled")
	}

	srv := handlers.NewLobbyServer(manager, logger)

	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.PingHandler)

	mux.Handle("/lobby/create", logged(handlers.CreateLobbyHandler(srv)))
	mux.Handle("/lobby/join", logged(handlers.JoinLobbyHandler(srv)))
	mux.Handle("/lobby/ready", logged(handlers.ReadyHandler(srv)))
	mux.Handle("/lobby/rename", logged(handlers.RenameSeatHandler(srv)))
	mux.Handle("/lobby/name", logged(handlers.RenameLobbyHandler(srv)))
	mux.Handle("/lobby/start", logged(handlers.StartLobbyHandler(srv)))
	mux.Handle("/lobby/close", logged(handlers.CloseLobbyHandler(srv)))
	mux.Handle("/lobby/view", logged(handlers.ViewLobbyHandler(srv)))
	mux.Handle("/lobby/list", logged(handlers.ListLobbiesHandler(srv)))

	// Not wrapped in LogMiddleware: the status recorder would hide the
	// Hijacker the websocket upgrade needs. WS connects log in the handler.
	mux.Handle("/lobby/ws/", handlers.LobbyWSHandler(logger, srv))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
