// Package wsclient is the room synchronization channel from the client's
// side: a single socket carrying all traffic for every room the client has
// joined.
package wsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"gitlab.com/sketchdeck/services/board/internal/shape"
	"gitlab.com/sketchdeck/services/board/internal/wire"
)

// Client wraps one authenticated websocket connection. Writes are
// serialized with a mutex; reads happen on the Listen goroutine.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// OnSync is invoked with every authoritative full-state broadcast.
	// The receiver must adopt the list wholesale.
	OnSync func(roomID string, shapes []shape.Shape)

	// OnError is invoked for protocol-level error frames.
	OnError func(message string)
}

// Dial connects to the server, carrying the bearer token as a query
// parameter on the connection URI.
func Dial(ctx context.Context, rawURL, token string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", u.Host, err)
	}
	return &Client{conn: conn}, nil
}

// Listen reads frames until the context is cancelled or the connection
// closes, dispatching sync and error frames to the registered callbacks.
func (c *Client) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read failed: %w", err)
		}
		in, err := wire.DecodeInbound(data)
		if err != nil {
			continue
		}
		switch in.Type {
		case wire.TypeSync:
			if c.OnSync != nil {
				c.OnSync(in.RoomID, in.Shapes)
			}
		case wire.TypeError:
			if c.OnError != nil {
				c.OnError(in.Message)
			}
		}
	}
}

// Close closes the socket; registry cleanup on the server is triggered by
// the disconnect.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) write(env wire.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// JoinRoom subscribes this connection to a room's broadcasts. The server
// answers with a sync of the current shape list.
func (c *Client) JoinRoom(roomID string) error {
	return c.write(wire.Envelope{Type: wire.TypeJoinRoom, RoomID: roomID})
}

// LeaveRoom unsubscribes from a room. No broadcast results.
func (c *Client) LeaveRoom(roomID string) error {
	return c.write(wire.Envelope{Type: wire.TypeLeaveRoom, RoomID: roomID})
}

// Chat submits a committed shape.
func (c *Client) Chat(roomID string, s shape.Shape) error {
	payload, err := wire.EncodeChatPayload(s)
	if err != nil {
		return err
	}
	return c.write(wire.Envelope{Type: wire.TypeChat, RoomID: roomID, Message: payload})
}

// Undo asks the room to move its newest shape onto the redo buffer.
func (c *Client) Undo(roomID string) error {
	return c.write(wire.Envelope{Type: wire.TypeUndo, RoomID: roomID})
}

// Redo asks the room to restore its newest undone shape.
func (c *Client) Redo(roomID string) error {
	return c.write(wire.Envelope{Type: wire.TypeRedo, RoomID: roomID})
}

// Clear empties the room.
func (c *Client) Clear(roomID string) error {
	return c.write(wire.Envelope{Type: wire.TypeClear, RoomID: roomID})
}

// DeleteShape removes one shape, identified primarily by its stable id with
// the positional index as a fallback for older servers.
func (c *Client) DeleteShape(roomID, shapeID string, index int) error {
	return c.write(wire.Envelope{
		Type:    wire.TypeDeleteShape,
		RoomID:  roomID,
		ShapeID: shapeID,
		Index:   &index,
	})
}
