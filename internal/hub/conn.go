package hub

import (
	"log"

	"github.com/gorilla/websocket"
)

// Conn is one live authenticated websocket connection: the socket, the
// verified user id, and the set of rooms it has joined. The rooms set is
// only touched by the hub's event loop.
type Conn struct {
	ID     string
	UserID string
	sock   *websocket.Conn
	Send   chan []byte
	rooms  map[string]bool
}

// readPump forwards every frame to the hub's inbound queue and unregisters
// the connection when the socket closes.
func (c *Conn) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.sock.Close()
	}()
	for {
		_, message, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Hub] Read error on connection %s: %v", c.ID, err)
			}
			break
		}
		h.inbound <- packet{conn: c, data: message}
	}
}

// writePump drains the Send channel onto the socket.
func (c *Conn) writePump() {
	defer c.sock.Close()
	for message := range c.Send {
		w, err := c.sock.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.sock.WriteMessage(websocket.CloseMessage, []byte{})
}
