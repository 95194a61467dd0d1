package room

import (
	"context"
	"log"
	"time"

	"gitlab.com/sketchdeck/services/board/internal/shape"
)

const writeTimeout = 10 * time.Second

type snapshot struct {
	ownerID string
	shapes  []shape.Shape
	undone  []shape.Shape
}

// writer serializes durable writes for one room: at most one write is in
// flight, and a snapshot queued while a write is running is superseded by
// any newer one. The durable record may lag memory but can never rewind,
// which closes the out-of-order-write race of naive fire-and-forget
// persistence.
type writer struct {
	roomID string
	store  Store
	queue  chan snapshot
	quit   chan struct{}
	done   chan struct{}
}

func newWriter(roomID string, store Store) *writer {
	w := &writer{
		roomID: roomID,
		store:  store,
		queue:  make(chan snapshot, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue replaces any not-yet-issued snapshot with this newer one.
func (w *writer) enqueue(s snapshot) {
	for {
		select {
		case w.queue <- s:
			return
		default:
			select {
			case <-w.queue:
			default:
			}
		}
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case s := <-w.queue:
			w.write(s)
		case <-w.quit:
			// Flush the final pending snapshot, if any.
			select {
			case s := <-w.queue:
				w.write(s)
			default:
			}
			return
		}
	}
}

func (w *writer) write(s snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := w.store.Save(ctx, w.roomID, s.ownerID, s.shapes, s.undone); err != nil {
		// Persistence is best-effort durability under an in-memory source
		// of truth; live broadcasts already went out.
		log.Printf("[Room] Failed to persist room %s: %v", w.roomID, err)
	}
}

func (w *writer) stop() {
	close(w.quit)
	<-w.done
}
