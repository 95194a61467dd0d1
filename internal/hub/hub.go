// Package hub owns the live connection registry and the single-threaded
// message dispatch loop. One message is fully handled, including its
// synchronous in-memory room mutation and broadcast, before the next is
// dequeued, so two edits never interleave mid-mutation.
package hub

import (
	"context"
	"log"
	"time"

	"gitlab.com/sketchdeck/services/board/internal/room"
	"gitlab.com/sketchdeck/services/board/internal/shape"
	"gitlab.com/sketchdeck/services/board/internal/store"
	"gitlab.com/sketchdeck/services/board/internal/wire"
)

const opTimeout = 5 * time.Second

type packet struct {
	conn *Conn
	data []byte
}

// Hub is the server context object: every registry lives here, created at
// startup and torn down at shutdown, never as package-level state.
type Hub struct {
	rooms    *room.Manager
	presence *store.Presence

	register   chan *Conn
	unregister chan *Conn
	inbound    chan packet
	quit       chan struct{}
	done       chan struct{}

	conns map[*Conn]bool
}

func New(rooms *room.Manager, presence *store.Presence) *Hub {
	return &Hub{
		rooms:      rooms,
		presence:   presence,
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		inbound:    make(chan packet, 256),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		conns:      make(map[*Conn]bool),
	}
}

// Run drives the event loop until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case conn := <-h.register:
			h.conns[conn] = true
			log.Printf("[Hub] Connection %s registered for user %s", conn.ID, conn.UserID)
		case conn := <-h.unregister:
			h.drop(conn)
		case p := <-h.inbound:
			h.handle(p)
		case <-h.quit:
			for conn := range h.conns {
				h.drop(conn)
			}
			return
		}
	}
}

// Stop terminates the event loop and closes every connection's send channel.
func (h *Hub) Stop() {
	close(h.quit)
	<-h.done
}

func (h *Hub) drop(conn *Conn) {
	if _, ok := h.conns[conn]; !ok {
		return
	}
	delete(h.conns, conn)
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	for roomID := range conn.rooms {
		h.presence.Leave(ctx, roomID, conn.UserID)
	}
	close(conn.Send)
	log.Printf("[Hub] Connection %s unregistered", conn.ID)
}

func (h *Hub) handle(p packet) {
	env, err := wire.DecodeEnvelope(p.data)
	if err != nil {
		h.sendError(p.conn, "Invalid JSON format")
		return
	}

	switch env.Type {
	case wire.TypeJoinRoom:
		h.handleJoin(p.conn, env)
	case wire.TypeLeaveRoom:
		h.handleLeave(p.conn, env)
	case wire.TypeChat:
		h.handleChat(p.conn, env)
	case wire.TypeUndo:
		h.handleUndo(p.conn, env)
	case wire.TypeRedo:
		h.handleRedo(p.conn, env)
	case wire.TypeClear:
		h.handleClear(p.conn, env)
	case wire.TypeDeleteShape:
		h.handleDeleteShape(p.conn, env)
	default:
		h.sendError(p.conn, "Message type is unknown")
	}
}

func (h *Hub) handleJoin(conn *Conn, env wire.Envelope) {
	if env.RoomID == "" {
		h.sendError(conn, "Invalid room ID")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	st := h.rooms.Get(ctx, env.RoomID)
	conn.rooms[st.ID()] = true
	h.presence.Join(ctx, st.ID(), conn.UserID)

	// The joiner receives the current state directly; there is no
	// historical undo/redo replay.
	data, err := wire.EncodeSync(st.ID(), st.Shapes())
	if err != nil {
		log.Printf("[Hub] Failed to encode sync for room %s: %v", st.ID(), err)
		return
	}
	h.send(conn, data)
}

func (h *Hub) handleLeave(conn *Conn, env wire.Envelope) {
	if env.RoomID == "" {
		h.sendError(conn, "Invalid room ID")
		return
	}
	key := room.CanonicalID(env.RoomID)
	delete(conn.rooms, key)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	h.presence.Leave(ctx, key, conn.UserID)
}

func (h *Hub) handleChat(conn *Conn, env wire.Envelope) {
	if env.RoomID == "" {
		h.sendError(conn, "Invalid room ID")
		return
	}
	sh, err := wire.ParseChatPayload(env.Message)
	if err != nil {
		h.sendError(conn, "Invalid message format")
		return
	}
	if sh.ID == "" {
		sh.ID = shape.NewID()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	st := h.rooms.Get(ctx, env.RoomID)
	shapes := st.Append(sh, conn.UserID)
	h.broadcast(st.ID(), shapes)
}

func (h *Hub) handleUndo(conn *Conn, env wire.Envelope) {
	if env.RoomID == "" {
		h.sendError(conn, "Invalid room ID")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	st := h.rooms.Get(ctx, env.RoomID)
	if shapes, ok := st.Undo(); ok {
		h.broadcast(st.ID(), shapes)
	}
}

func (h *Hub) handleRedo(conn *Conn, env wire.Envelope) {
	if env.RoomID == "" {
		h.sendError(conn, "Invalid room ID")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	st := h.rooms.Get(ctx, env.RoomID)
	if shapes, ok := st.Redo(); ok {
		h.broadcast(st.ID(), shapes)
	}
}

func (h *Hub) handleClear(conn *Conn, env wire.Envelope) {
	if env.RoomID == "" {
		h.sendError(conn, "Invalid room ID")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	st := h.rooms.Get(ctx, env.RoomID)
	shapes := st.Clear(ctx)
	h.broadcast(st.ID(), shapes)
}

func (h *Hub) handleDeleteShape(conn *Conn, env wire.Envelope) {
	if env.RoomID == "" {
		h.sendError(conn, "Invalid room ID")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	st := h.rooms.Get(ctx, env.RoomID)

	var (
		shapes []shape.Shape
		ok     bool
	)
	switch {
	case env.ShapeID != "":
		shapes, ok = st.DeleteByID(env.ShapeID)
	case env.Index != nil:
		shapes, ok = st.DeleteIndex(*env.Index)
	}
	// Unknown ids and out-of-range indexes are ignored silently: no reply,
	// no broadcast.
	if ok {
		h.broadcast(st.ID(), shapes)
	}
}

// broadcast fans the authoritative shape list out to every connection whose
// joined-room set contains this room, including the originator.
func (h *Hub) broadcast(roomID string, shapes []shape.Shape) {
	data, err := wire.EncodeSync(roomID, shapes)
	if err != nil {
		log.Printf("[Hub] Failed to encode sync for room %s: %v", roomID, err)
		return
	}
	for conn := range h.conns {
		if !conn.rooms[roomID] {
			continue
		}
		h.send(conn, data)
	}
}

// send enqueues a frame, dropping the connection if its buffer is full.
func (h *Hub) send(conn *Conn, data []byte) {
	select {
	case conn.Send <- data:
	default:
		close(conn.Send)
		delete(h.conns, conn)
	}
}

func (h *Hub) sendError(conn *Conn, message string) {
	data, err := wire.EncodeError(message)
	if err != nil {
		log.Printf("[Hub] Failed to encode error frame: %v", err)
		return
	}
	h.send(conn, data)
}
