package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/sketchdeck/services/board/internal/shape"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"join_room","roomId":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeJoinRoom, env.Type)
	assert.Equal(t, "r1", env.RoomID)

	_, err = DecodeEnvelope([]byte(`{bad json`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeEnvelope([]byte(`{"roomId":"r1"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestChatPayloadRoundTrip(t *testing.T) {
	s := shape.RectBetween(shape.Point{X: 1, Y: 2}, shape.Point{X: 5, Y: 7})

	payload, err := EncodeChatPayload(s)
	require.NoError(t, err)

	got, err := ParseChatPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, shape.TypeRect, got.Type)
	assert.Equal(t, 4.0, got.Width)
}

func TestParseChatPayloadRejections(t *testing.T) {
	_, err := ParseChatPayload(`not json`)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseChatPayload(`{"somethingElse":1}`)
	assert.ErrorIs(t, err, ErrMissingShape)

	_, err = ParseChatPayload(`{"shape":{"type":"star"}}`)
	assert.ErrorIs(t, err, shape.ErrUnknownType)
}

func TestEncodeSyncNeverNull(t *testing.T) {
	data, err := EncodeSync("r1", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"sync","roomId":"r1","shapes":[]}`, string(data))
}

func TestInboundDecode(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"sync","roomId":"r1","shapes":[{"type":"rect","x":1,"y":1,"width":2,"height":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSync, in.Type)
	require.Len(t, in.Shapes, 1)
	assert.Equal(t, shape.TypeRect, in.Shapes[0].Type)

	in, err = DecodeInbound([]byte(`{"type":"error","message":"Invalid JSON format"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeError, in.Type)
	assert.Equal(t, "Invalid JSON format", in.Message)
}
