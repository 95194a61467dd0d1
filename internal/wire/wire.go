// Package wire defines the JSON frame format of the room synchronization
// channel. One JSON object per websocket frame; every client-to-server
// message carries a roomId, and the only server-to-client frames are full
// sync replacements and error replies.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"gitlab.com/sketchdeck/services/board/internal/shape"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrMissingShape = errors.New("chat payload is missing a shape")
)

// MessageType enumerates the protocol message kinds.
type MessageType string

const (
	TypeJoinRoom    MessageType = "join_room"
	TypeLeaveRoom   MessageType = "leave_room"
	TypeChat        MessageType = "chat"
	TypeUndo        MessageType = "undo"
	TypeRedo        MessageType = "redo"
	TypeClear       MessageType = "clear"
	TypeDeleteShape MessageType = "delete_shape"
	TypeSync        MessageType = "sync"
	TypeError       MessageType = "error"
)

// Envelope is a client-to-server frame. Index and ShapeID are only set on
// delete_shape; ShapeID is preferred and Index is the positional fallback.
type Envelope struct {
	Type    MessageType `json:"type"`
	RoomID  string      `json:"roomId,omitempty"`
	Message string      `json:"message,omitempty"`
	Index   *int        `json:"index,omitempty"`
	ShapeID string      `json:"shapeId,omitempty"`
}

// Sync is the authoritative full-state broadcast. Shapes is always present,
// serializing as [] for an empty room rather than null.
type Sync struct {
	Type   MessageType   `json:"type"`
	RoomID string        `json:"roomId"`
	Shapes []shape.Shape `json:"shapes"`
}

// ErrorFrame is an error reply to the offending connection only.
type ErrorFrame struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// Inbound is the client-side view of a server frame.
type Inbound struct {
	Type    MessageType   `json:"type"`
	RoomID  string        `json:"roomId,omitempty"`
	Shapes  []shape.Shape `json:"shapes,omitempty"`
	Message string        `json:"message,omitempty"`
}

// chatPayload is the nested JSON carried in a chat message's Message field.
type chatPayload struct {
	Shape *shape.Shape `json:"shape"`
}

// DecodeEnvelope parses a client frame. Invalid JSON or a missing type tag
// is a malformed message; an unrecognized type is left for the dispatcher.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// DecodeInbound parses a server frame on the client side.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return in, nil
}

// ParseChatPayload extracts and validates the shape from a chat message's
// stringified payload. The shape is rejected here, at the protocol boundary,
// if its variant is unknown or its geometry is invalid.
func ParseChatPayload(message string) (shape.Shape, error) {
	var payload chatPayload
	if err := json.Unmarshal([]byte(message), &payload); err != nil {
		return shape.Shape{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Shape == nil {
		return shape.Shape{}, ErrMissingShape
	}
	if err := payload.Shape.Validate(); err != nil {
		return shape.Shape{}, err
	}
	return *payload.Shape, nil
}

// EncodeChatPayload builds the stringified {shape} payload for a chat frame.
func EncodeChatPayload(s shape.Shape) (string, error) {
	data, err := json.Marshal(chatPayload{Shape: &s})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat payload: %w", err)
	}
	return string(data), nil
}

// EncodeSync marshals a sync frame, never emitting a null shape list.
func EncodeSync(roomID string, shapes []shape.Shape) ([]byte, error) {
	if shapes == nil {
		shapes = []shape.Shape{}
	}
	return json.Marshal(Sync{Type: TypeSync, RoomID: roomID, Shapes: shapes})
}

// EncodeError marshals an error frame.
func EncodeError(message string) ([]byte, error) {
	return json.Marshal(ErrorFrame{Type: TypeError, Message: message})
}
