package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/StephensSpace/game-lobby-service/internal/models"
)

// Archive persists the final snapshot of closed lobbies. The live engine is
// purely in-memory; these rows exist for history and analytics, never as a
// read path back into the engine.
type Archive struct {
	db *pgxpool.Pool
}

// NewArchive wraps an existing pool.
func NewArchive(db *pgxpool.Pool) *Archive {
	return &Archive{db: db}
}

// EnsureSchema creates the archive tables if they do not exist yet.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	q := `
	CREATE TABLE IF NOT EXISTS lobby_archive (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		max_seats INT NOT NULL,
		all_ready BOOLEAN NOT NULL,
		status TEXT NOT NULL,
		final_version BIGINT NOT NULL,
		closed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS seat_archive (
		lobby_id UUID NOT NULL REFERENCES lobby_archive(id) ON DELETE CASCADE,
		seat_index INT NOT NULL,
		occupant_name TEXT NOT NULL,
		color TEXT NOT NULL,
		score INT NOT NULL,
		occupied BOOLEAN NOT NULL,
		ready BOOLEAN NOT NULL,
		PRIMARY KEY (lobby_id, seat_index)
	);
	`
	_, err := a.db.Exec(ctx, q)
	return err
}

// ArchiveLobby writes the lobby row and all of its seat rows in one
// transaction. Re-archiving the same lobby id is a no-op.
func (a *Archive) ArchiveLobby(ctx context.Context, view models.LobbyView) error {
	lobbyQ := `
	INSERT INTO lobby_archive (id, name, max_seats, all_ready, status, final_version)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
	`
	seatQ := `
	INSERT INTO seat_archive (lobby_id, seat_index, occupant_name, color, score, occupied, ready)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (lobby_id, seat_index) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, a.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, lobbyQ,
			view.Lobby.ID,
			view.Lobby.Name,
			view.Lobby.MaxSeats,
			view.Lobby.AllReady,
			string(view.Lobby.Status),
			view.Version,
		)
		if err != nil {
			return err
		}
		for _, seat := range view.Seats {
			if _, err := tx.Exec(ctx, seatQ,
				view.Lobby.ID,
				seat.Index,
				seat.Name,
				seat.Color,
				seat.Score,
				seat.Occupied,
				seat.Ready,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
