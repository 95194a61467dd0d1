package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/sketchdeck/services/board/internal/shape"
)

// recorderChannel captures outbound protocol traffic.
type recorderChannel struct {
	chats   []shape.Shape
	undos   int
	redos   int
	clears  int
	deletes []string
}

func (r *recorderChannel) Chat(_ string, s shape.Shape) error {
	r.chats = append(r.chats, s)
	return nil
}
func (r *recorderChannel) Undo(string) error  { r.undos++; return nil }
func (r *recorderChannel) Redo(string) error  { r.redos++; return nil }
func (r *recorderChannel) Clear(string) error { r.clears++; return nil }
func (r *recorderChannel) DeleteShape(_, shapeID string, _ int) error {
	r.deletes = append(r.deletes, shapeID)
	return nil
}

func newTestGame() (*Game, *recorderChannel) {
	ch := &recorderChannel{}
	return NewGame("r1", ch, 200, 200), ch
}

func TestRectGestureCommitsOnPointerUp(t *testing.T) {
	g, ch := newTestGame()
	g.SetTool(ToolRect)

	g.PointerDown(10, 10)
	g.PointerMove(40, 30)
	assert.Empty(t, ch.chats, "no commit while the gesture is active")

	g.PointerUp(60, 60)
	require.Len(t, ch.chats, 1)

	committed := ch.chats[0]
	assert.Equal(t, shape.TypeRect, committed.Type)
	assert.Equal(t, 10.0, committed.X)
	assert.Equal(t, 50.0, committed.Width)
	assert.Equal(t, 50.0, committed.Height)
	require.Len(t, g.Shapes(), 1)
}

func TestPencilGestureBuffersPoints(t *testing.T) {
	g, ch := newTestGame()
	g.SetTool(ToolPencil)

	g.PointerDown(0, 0)
	g.PointerMove(5, 5)
	g.PointerMove(10, 10)
	g.PointerUp(10, 10)

	require.Len(t, ch.chats, 1)
	stroke := ch.chats[0]
	assert.Equal(t, shape.TypePencil, stroke.Type)
	assert.Equal(t, []shape.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10}}, stroke.Points)
}

func TestPointerMoveIgnoredWhenIdle(t *testing.T) {
	g, ch := newTestGame()
	g.SetTool(ToolRect)

	g.PointerMove(40, 40)
	g.PointerUp(40, 40)
	assert.Empty(t, ch.chats)
	assert.Empty(t, g.Shapes())
}

func TestCommitClearsLocalRedoBuffer(t *testing.T) {
	g, _ := newTestGame()
	g.SetTool(ToolRect)

	g.PointerDown(10, 10)
	g.PointerUp(60, 60)
	g.Undo()
	require.Equal(t, 1, g.UndoneLen())

	g.PointerDown(10, 10)
	g.PointerUp(30, 30)
	assert.Equal(t, 0, g.UndoneLen())
}

func TestEraserRemovesTopmostHitOnly(t *testing.T) {
	g, ch := newTestGame()

	bottom := shape.RectBetween(shape.Point{X: 0, Y: 0}, shape.Point{X: 100, Y: 100})
	top := shape.RectBetween(shape.Point{X: 20, Y: 20}, shape.Point{X: 80, Y: 80})
	g.ApplySync([]shape.Shape{bottom, top})

	g.SetTool(ToolEraser)
	g.PointerDown(50, 50)
	g.PointerUp(50, 50)

	require.Len(t, ch.deletes, 1)
	assert.Equal(t, top.ID, ch.deletes[0])
	require.Len(t, g.Shapes(), 1)
	assert.Equal(t, bottom.ID, g.Shapes()[0].ID)
	assert.Empty(t, ch.chats, "eraser never commits a shape")
}

func TestEraserInterpolatesFastMoves(t *testing.T) {
	g, ch := newTestGame()

	// A small rect in the middle of a long eraser sweep: the pointer jumps
	// straight over it in one move event.
	target := shape.RectBetween(shape.Point{X: 48, Y: 0}, shape.Point{X: 52, Y: 4})
	g.ApplySync([]shape.Shape{target})

	g.SetTool(ToolEraser)
	g.PointerDown(0, 2)
	g.PointerMove(100, 2)
	g.PointerUp(100, 2)

	require.Len(t, ch.deletes, 1)
	assert.Equal(t, target.ID, ch.deletes[0])
	assert.Empty(t, g.Shapes())
}

func TestZoomScalesCapturedCoordinates(t *testing.T) {
	g, ch := newTestGame()
	g.SetTool(ToolRect)
	g.Zoom(2)
	require.Equal(t, 2.0, g.Scale())

	g.PointerDown(20, 20)
	g.PointerUp(60, 60)

	require.Len(t, ch.chats, 1)
	// Screen coordinates are divided by the scale before being stored.
	assert.Equal(t, 10.0, ch.chats[0].X)
	assert.Equal(t, 20.0, ch.chats[0].Width)

	g.ResetZoom()
	assert.Equal(t, 1.0, g.Scale())
}

func TestApplySyncIsIdempotent(t *testing.T) {
	g, _ := newTestGame()
	payload := []shape.Shape{
		shape.RectBetween(shape.Point{X: 0, Y: 0}, shape.Point{X: 10, Y: 10}),
	}

	g.ApplySync(payload)
	first := g.Shapes()
	g.ApplySync(payload)

	assert.Equal(t, first, g.Shapes())
}

func TestSyncReplacesOptimisticMirrorWholesale(t *testing.T) {
	g, _ := newTestGame()
	g.SetTool(ToolRect)
	g.PointerDown(10, 10)
	g.PointerUp(60, 60)
	require.Len(t, g.Shapes(), 1)

	// Authoritative state wins, even when it disagrees with local edits.
	g.ApplySync(nil)
	assert.Empty(t, g.Shapes())
}

func TestOptimisticUndoRedo(t *testing.T) {
	g, ch := newTestGame()
	g.SetTool(ToolLine)
	g.PointerDown(0, 0)
	g.PointerUp(50, 50)

	g.Undo()
	assert.Empty(t, g.Shapes())
	assert.Equal(t, 1, ch.undos)

	g.Redo()
	assert.Len(t, g.Shapes(), 1)
	assert.Equal(t, 1, ch.redos)

	// Undo on an empty mirror sends nothing.
	g.ApplySync(nil)
	g.Undo()
	assert.Equal(t, 1, ch.undos)
}

func TestClearAll(t *testing.T) {
	g, ch := newTestGame()
	g.SetTool(ToolCircle)
	g.PointerDown(0, 0)
	g.PointerUp(40, 40)
	g.Undo()

	g.ClearAll()
	assert.Empty(t, g.Shapes())
	assert.Equal(t, 0, g.UndoneLen())
	assert.Equal(t, 1, ch.clears)
}
