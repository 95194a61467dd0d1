// Package store implements the durable room record over Postgres and the
// best-effort presence mirror over Redis.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gitlab.com/sketchdeck/services/board/internal/room"
	"gitlab.com/sketchdeck/services/board/internal/shape"
)

// RoomStore persists each room's two shape sequences as jsonb, keyed by the
// canonical room id. It implements room.Store.
type RoomStore struct {
	db *sql.DB
}

func NewRoomStore(db *sql.DB) *RoomStore {
	return &RoomStore{db: db}
}

// EnsureSchema creates the rooms table and the legacy chats table (kept so
// clear can purge historical message rows written by earlier protocol
// variants).
func (s *RoomStore) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS rooms (
			id            TEXT PRIMARY KEY,
			admin_id      TEXT NOT NULL,
			shapes        JSONB NOT NULL DEFAULT '[]',
			undone_shapes JSONB NOT NULL DEFAULT '[]',
			created_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS chats (
			id         SERIAL PRIMARY KEY,
			room_id    TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			message    TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_chats_room_id ON chats (room_id);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure room schema: %w", err)
	}
	return nil
}

// Load reads the stored shape sequences for a room. A missing row is
// room.ErrNotFound; malformed jsonb is reported as an error so the caller
// can fall back to empty state.
func (s *RoomStore) Load(ctx context.Context, roomID string) ([]shape.Shape, []shape.Shape, error) {
	var shapesRaw, undoneRaw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT shapes, undone_shapes FROM rooms WHERE id = $1`,
		roomID,
	).Scan(&shapesRaw, &undoneRaw)
	if err == sql.ErrNoRows {
		return nil, nil, room.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}

	var shapes, undone []shape.Shape
	if err := json.Unmarshal(shapesRaw, &shapes); err != nil {
		return nil, nil, fmt.Errorf("malformed shapes for room %s: %w", roomID, err)
	}
	if err := json.Unmarshal(undoneRaw, &undone); err != nil {
		return nil, nil, fmt.Errorf("malformed undone shapes for room %s: %w", roomID, err)
	}
	return shapes, undone, nil
}

// Save upserts the room record. The owner id is only written on creation;
// updates never reassign ownership.
func (s *RoomStore) Save(ctx context.Context, roomID, ownerID string, shapes, undone []shape.Shape) error {
	if shapes == nil {
		shapes = []shape.Shape{}
	}
	if undone == nil {
		undone = []shape.Shape{}
	}
	shapesRaw, err := json.Marshal(shapes)
	if err != nil {
		return fmt.Errorf("failed to encode shapes: %w", err)
	}
	undoneRaw, err := json.Marshal(undone)
	if err != nil {
		return fmt.Errorf("failed to encode undone shapes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, admin_id, shapes, undone_shapes, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET shapes = EXCLUDED.shapes,
		    undone_shapes = EXCLUDED.undone_shapes,
		    updated_at = EXCLUDED.updated_at
	`, roomID, ownerID, shapesRaw, undoneRaw, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save room %s: %w", roomID, err)
	}
	return nil
}

// PurgeChatHistory deletes legacy historical message rows for a room.
func (s *RoomStore) PurgeChatHistory(ctx context.Context, roomID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("failed to purge chat rows for room %s: %w", roomID, err)
	}
	return nil
}
