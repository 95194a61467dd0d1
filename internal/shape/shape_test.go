package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitFormulas(t *testing.T) {
	anchor := Point{X: 10, Y: 20}
	end := Point{X: 50, Y: 60}

	t.Run("rect keeps anchor and signed span", func(t *testing.T) {
		r := RectBetween(end, anchor)
		assert.Equal(t, 50.0, r.X)
		assert.Equal(t, 60.0, r.Y)
		assert.Equal(t, -40.0, r.Width)
		assert.Equal(t, -40.0, r.Height)
	})

	t.Run("ellipse centers on the midpoint", func(t *testing.T) {
		e := EllipseBetween(anchor, end)
		assert.Equal(t, 30.0, e.CenterX)
		assert.Equal(t, 40.0, e.CenterY)
		assert.Equal(t, 20.0, e.RadiusX)
		assert.Equal(t, 20.0, e.RadiusY)
	})

	t.Run("triangle apex at horizontal midpoint", func(t *testing.T) {
		tri := TriangleBetween(anchor, end)
		require.Len(t, tri.Points, 3)
		assert.Equal(t, Point{X: 30, Y: 20}, tri.Points[0])
		assert.Equal(t, Point{X: 10, Y: 60}, tri.Points[1])
		assert.Equal(t, Point{X: 50, Y: 60}, tri.Points[2])
	})

	t.Run("rhombus vertices at bounding-box edge midpoints", func(t *testing.T) {
		rh := RhombusBetween(anchor, end)
		require.Len(t, rh.Points, 4)
		assert.Equal(t, Point{X: 30, Y: 20}, rh.Points[0])
		assert.Equal(t, Point{X: 10, Y: 40}, rh.Points[1])
		assert.Equal(t, Point{X: 30, Y: 60}, rh.Points[2])
		assert.Equal(t, Point{X: 50, Y: 40}, rh.Points[3])
	})

	t.Run("every constructor assigns a stable id", func(t *testing.T) {
		shapes := []Shape{
			NewPencil([]Point{anchor}),
			RectBetween(anchor, end),
			EllipseBetween(anchor, end),
			TriangleBetween(anchor, end),
			RhombusBetween(anchor, end),
			LineBetween(anchor, end),
			ArrowBetween(anchor, end),
		}
		seen := map[string]bool{}
		for _, s := range shapes {
			require.NotEmpty(t, s.ID)
			assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
			seen[s.ID] = true
			assert.NoError(t, s.Validate())
		}
	})
}

func TestPathSamples(t *testing.T) {
	samples := PathSamples(Point{X: 0, Y: 0}, Point{X: 12, Y: 0}, 4)
	require.Len(t, samples, 4)
	assert.Equal(t, Point{X: 0, Y: 0}, samples[0])
	assert.Equal(t, Point{X: 12, Y: 0}, samples[3])

	// Zero-length path still yields the destination.
	same := PathSamples(Point{X: 5, Y: 5}, Point{X: 5, Y: 5}, 4)
	require.Len(t, same, 1)
	assert.Equal(t, Point{X: 5, Y: 5}, same[0])
}

func TestDecodeRejectsUnknownVariant(t *testing.T) {
	_, err := Decode([]byte(`{"type":"hexagon","points":[{"x":1,"y":2}]}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeValidatesGeometry(t *testing.T) {
	_, err := Decode([]byte(`{"type":"triangle","points":[{"x":1,"y":2}]}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = Decode([]byte(`{"type":"line","start":{"x":0,"y":0}}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	s, err := Decode([]byte(`{"type":"rect","x":10,"y":10,"width":50,"height":50}`))
	require.NoError(t, err)
	assert.Equal(t, TypeRect, s.Type)
}

func TestCloneIsDeep(t *testing.T) {
	original := NewPencil([]Point{{X: 1, Y: 1}, {X: 2, Y: 2}})
	clone := original.Clone()
	clone.Points[0].X = 99

	assert.Equal(t, 1.0, original.Points[0].X)
}
