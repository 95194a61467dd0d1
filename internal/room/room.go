// Package room holds the authoritative per-room shape log, its undo buffer,
// and the durable-persistence path. The Manager is the sole mutator of room
// state; the hub's event loop guarantees one message is fully handled before
// the next, so mutations here never observe a torn write.
package room

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"gitlab.com/sketchdeck/services/board/internal/shape"
)

// ErrNotFound is returned by Store.Load when no durable record exists for
// the room id.
var ErrNotFound = errors.New("room not found")

// Store is the durable room record, keyed by canonical room id. Save is
// create-if-absent: the owner id is only used on first creation.
// PurgeChatHistory removes legacy per-message rows for the room.
type Store interface {
	Load(ctx context.Context, roomID string) (shapes, undone []shape.Shape, err error)
	Save(ctx context.Context, roomID, ownerID string, shapes, undone []shape.Shape) error
	PurgeChatHistory(ctx context.Context, roomID string) error
}

// State is the in-memory authoritative state of one room. Shapes is the
// ordered log; Undone is the redo buffer. Neither is ever mutated outside
// this package.
type State struct {
	id      string
	ownerID string
	shapes  []shape.Shape
	undone  []shape.Shape
	writer  *writer
}

// Manager owns every resident room. Rooms are created lazily on first join,
// hydrated from the durable record, and stay resident for the server's
// lifetime.
type Manager struct {
	store Store
	mu    sync.Mutex
	rooms map[string]*State
}

func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		rooms: make(map[string]*State),
	}
}

// CanonicalID normalizes a wire room id to the string key used everywhere.
func CanonicalID(roomID string) string {
	return strings.TrimSpace(roomID)
}

// Get returns the resident state for the room, hydrating it from the durable
// record on first access. Absent or malformed records hydrate as empty.
func (m *Manager) Get(ctx context.Context, roomID string) *State {
	key := CanonicalID(roomID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.rooms[key]; ok {
		return st
	}

	st := &State{id: key, writer: newWriter(key, m.store)}
	shapes, undone, err := m.store.Load(ctx, key)
	switch {
	case err == nil:
		st.shapes = shapes
		st.undone = undone
	case errors.Is(err, ErrNotFound):
		// First join for this room: start empty.
	default:
		log.Printf("[Room] Failed to hydrate room %s, starting empty: %v", key, err)
	}

	m.rooms[key] = st
	return st
}

// Close stops every room's persistence writer, waiting for in-flight writes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.rooms {
		st.writer.stop()
	}
}

// ID returns the canonical room id.
func (st *State) ID() string { return st.id }

// Shapes returns a deep copy of the current shape log.
func (st *State) Shapes() []shape.Shape { return shape.CloneAll(st.shapes) }

// UndoneLen reports the redo-buffer depth.
func (st *State) UndoneLen() int { return len(st.undone) }

// Append commits a new shape submitted by userID. A fresh edit invalidates
// any pending redo, so the undone buffer is cleared. The submitting user
// becomes the room's owner of record if the room has none yet.
func (st *State) Append(s shape.Shape, userID string) []shape.Shape {
	if st.ownerID == "" {
		st.ownerID = userID
	}
	st.shapes = append(st.shapes, s.Clone())
	st.undone = nil
	st.persist()
	return st.Shapes()
}

// Undo moves the newest shape onto the redo buffer. It reports false,
// leaving state untouched and persisting nothing, when the log is empty.
func (st *State) Undo() ([]shape.Shape, bool) {
	if len(st.shapes) == 0 {
		return nil, false
	}
	last := st.shapes[len(st.shapes)-1]
	st.shapes = st.shapes[:len(st.shapes)-1]
	st.undone = append(st.undone, last)
	st.persist()
	return st.Shapes(), true
}

// Redo restores the newest undone shape. No-op when the buffer is empty.
func (st *State) Redo() ([]shape.Shape, bool) {
	if len(st.undone) == 0 {
		return nil, false
	}
	restored := st.undone[len(st.undone)-1]
	st.undone = st.undone[:len(st.undone)-1]
	st.shapes = append(st.shapes, restored)
	st.persist()
	return st.Shapes(), true
}

// Clear empties both sequences. Deletion of legacy historical message rows
// is best-effort: failures are logged and never abort the clear.
func (st *State) Clear(ctx context.Context) []shape.Shape {
	if err := st.writer.store.PurgeChatHistory(ctx, st.id); err != nil {
		log.Printf("[Room] Failed to purge legacy chat rows for room %s: %v", st.id, err)
	}
	st.shapes = nil
	st.undone = nil
	st.persist()
	return st.Shapes()
}

// DeleteByID removes the shape with the given stable id. Unknown ids are
// silently ignored with no persistence and no broadcast.
func (st *State) DeleteByID(shapeID string) ([]shape.Shape, bool) {
	for i, s := range st.shapes {
		if s.ID == shapeID {
			return st.deleteAt(i)
		}
	}
	return nil, false
}

// DeleteIndex removes the shape at the given position. Out-of-range indexes
// are silently ignored.
func (st *State) DeleteIndex(index int) ([]shape.Shape, bool) {
	if index < 0 || index >= len(st.shapes) {
		return nil, false
	}
	return st.deleteAt(index)
}

func (st *State) deleteAt(i int) ([]shape.Shape, bool) {
	st.shapes = append(st.shapes[:i], st.shapes[i+1:]...)
	st.persist()
	return st.Shapes(), true
}

func (st *State) persist() {
	st.writer.enqueue(snapshot{
		ownerID: st.ownerID,
		shapes:  shape.CloneAll(st.shapes),
		undone:  shape.CloneAll(st.undone),
	})
}
