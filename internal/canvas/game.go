// Package canvas implements the client side of the whiteboard: the drawing
// gesture state machine, the local history mirrors with optimistic
// undo/redo, and the deterministic renderer.
package canvas

import (
	"image"
	"log"

	"gitlab.com/sketchdeck/services/board/internal/shape"
)

// eraseSpacing is the distance between interpolated erase samples, so a
// fast-moving pointer cannot skip over shapes between two move events.
const eraseSpacing = 4.0

// Tool selects what a pointer gesture produces.
type Tool string

const (
	ToolPencil   Tool = "pencil"
	ToolRect     Tool = "rect"
	ToolCircle   Tool = "circle"
	ToolTriangle Tool = "triangle"
	ToolRhombus  Tool = "rhombus"
	ToolLine     Tool = "line"
	ToolArrow    Tool = "arrow"
	ToolEraser   Tool = "eraser"
)

// Channel carries this client's edits to the room. Implemented by the
// websocket client; tests substitute a recorder.
type Channel interface {
	Chat(roomID string, s shape.Shape) error
	Undo(roomID string) error
	Redo(roomID string) error
	Clear(roomID string) error
	DeleteShape(roomID, shapeID string, index int) error
}

// Game is one open canvas session: the local mirror of the room's shape
// list, the active tool and zoom scale, and the transient gesture fields.
// All methods run on the single client goroutine; cross-client effects
// arrive exclusively through ApplySync.
type Game struct {
	roomID   string
	ch       Channel
	renderer *Renderer
	frame    image.Image

	shapes []shape.Shape
	undone []shape.Shape

	tool  Tool
	scale float64

	pressed   bool
	erasing   bool
	anchor    shape.Point
	pencil    []shape.Point
	lastErase shape.Point
}

func NewGame(roomID string, ch Channel, width, height int) *Game {
	g := &Game{
		roomID:   roomID,
		ch:       ch,
		renderer: NewRenderer(width, height),
		tool:     ToolPencil,
		scale:    1,
	}
	g.redraw(nil)
	return g
}

// SetTool selects the active tool. Changing tools mid-gesture is not a
// supported interaction; the next pointer-down picks up the new tool.
func (g *Game) SetTool(tool Tool) { g.tool = tool }

// Scale returns the current zoom scale for the UI's zoom readout.
func (g *Game) Scale() float64 { return g.scale }

// Zoom multiplies the zoom scale and redraws. Shape geometry is unchanged:
// the scale is applied only at render time.
func (g *Game) Zoom(factor float64) {
	g.scale *= factor
	g.redraw(nil)
}

// ResetZoom restores 1:1 rendering.
func (g *Game) ResetZoom() {
	g.scale = 1
	g.redraw(nil)
}

// Frame returns the most recent raster.
func (g *Game) Frame() image.Image { return g.frame }

// Shapes returns a copy of the local mirror.
func (g *Game) Shapes() []shape.Shape { return shape.CloneAll(g.shapes) }

// UndoneLen reports the local redo-buffer depth.
func (g *Game) UndoneLen() int { return len(g.undone) }

// PointerDown starts a gesture. Pointer coordinates are in screen space and
// are divided by the zoom scale before being stored.
func (g *Game) PointerDown(x, y float64) {
	world := g.toWorld(x, y)
	g.pressed = true
	g.anchor = world

	switch g.tool {
	case ToolPencil:
		g.pencil = []shape.Point{world}
	case ToolEraser:
		// Erase applies immediately and incrementally; no shape preview
		// ever starts for this gesture.
		g.erasing = true
		g.eraseAt(world)
		g.lastErase = world
	}
}

// PointerMove advances an active gesture.
func (g *Game) PointerMove(x, y float64) {
	if !g.pressed {
		return
	}
	cur := g.toWorld(x, y)

	if g.erasing {
		for _, p := range shape.PathSamples(g.lastErase, cur, eraseSpacing) {
			g.eraseAt(p)
		}
		g.lastErase = cur
		return
	}

	if g.tool == ToolPencil {
		g.pencil = append(g.pencil, cur)
		preview := shape.Shape{Type: shape.TypePencil, Points: g.pencil}
		g.redraw(&preview)
		return
	}

	// Live preview uses the same formulas as commit, so the committed
	// shape is exactly what the user last saw.
	preview := commitShape(g.tool, g.anchor, cur, nil)
	g.redraw(&preview)
}

// PointerUp ends the gesture, committing a shape for every tool but the
// eraser, whose erasure was already applied incrementally.
func (g *Game) PointerUp(x, y float64) {
	if !g.pressed {
		return
	}
	g.pressed = false
	cur := g.toWorld(x, y)

	if g.erasing {
		g.erasing = false
		g.redraw(nil)
		return
	}

	sh := commitShape(g.tool, g.anchor, cur, g.pencil)
	g.pencil = nil

	// Optimistic append: the next authoritative sync replaces the mirror
	// wholesale, bounding any divergence by one round trip.
	g.shapes = append(g.shapes, sh)
	g.undone = nil
	if err := g.ch.Chat(g.roomID, sh); err != nil {
		log.Printf("[Canvas] Failed to send shape: %v", err)
	}
	g.redraw(nil)
}

// Undo pops the newest local shape onto the redo stack and asks the server
// to do the same. No-op on an empty mirror.
func (g *Game) Undo() {
	if len(g.shapes) == 0 {
		return
	}
	last := g.shapes[len(g.shapes)-1]
	g.shapes = g.shapes[:len(g.shapes)-1]
	g.undone = append(g.undone, last)
	if err := g.ch.Undo(g.roomID); err != nil {
		log.Printf("[Canvas] Failed to send undo: %v", err)
	}
	g.redraw(nil)
}

// Redo restores the newest locally undone shape and notifies the server.
func (g *Game) Redo() {
	if len(g.undone) == 0 {
		return
	}
	restored := g.undone[len(g.undone)-1]
	g.undone = g.undone[:len(g.undone)-1]
	g.shapes = append(g.shapes, restored)
	if err := g.ch.Redo(g.roomID); err != nil {
		log.Printf("[Canvas] Failed to send redo: %v", err)
	}
	g.redraw(nil)
}

// ClearAll empties both local stacks and asks the server to clear the room.
func (g *Game) ClearAll() {
	g.shapes = nil
	g.undone = nil
	if err := g.ch.Clear(g.roomID); err != nil {
		log.Printf("[Canvas] Failed to send clear: %v", err)
	}
	g.redraw(nil)
}

// ApplySync adopts the authoritative shape list verbatim, discarding the
// local mirror. Applying the same payload twice is a no-op.
func (g *Game) ApplySync(shapes []shape.Shape) {
	g.shapes = shape.CloneAll(shapes)
	g.redraw(nil)
}

func (g *Game) toWorld(x, y float64) shape.Point {
	return shape.Point{X: x / g.scale, Y: y / g.scale}
}

// eraseAt removes the topmost shape hit at the point, if any, and tells the
// server which shape was deleted.
func (g *Game) eraseAt(p shape.Point) {
	for i := len(g.shapes) - 1; i >= 0; i-- {
		if !g.shapes[i].HitTest(p) {
			continue
		}
		removed := g.shapes[i]
		g.shapes = append(g.shapes[:i], g.shapes[i+1:]...)
		if err := g.ch.DeleteShape(g.roomID, removed.ID, i); err != nil {
			log.Printf("[Canvas] Failed to send delete: %v", err)
		}
		g.redraw(nil)
		return
	}
}

func (g *Game) redraw(preview *shape.Shape) {
	shapes := g.shapes
	if preview != nil {
		shapes = append(shape.CloneAll(g.shapes), *preview)
	}
	g.frame = g.renderer.Render(shapes, g.scale)
}

// commitShape applies the fixed geometry rule for the tool to the gesture's
// anchor and end points.
func commitShape(tool Tool, anchor, end shape.Point, pencil []shape.Point) shape.Shape {
	switch tool {
	case ToolPencil:
		return shape.NewPencil(pencil)
	case ToolRect:
		return shape.RectBetween(anchor, end)
	case ToolCircle:
		return shape.EllipseBetween(anchor, end)
	case ToolTriangle:
		return shape.TriangleBetween(anchor, end)
	case ToolRhombus:
		return shape.RhombusBetween(anchor, end)
	case ToolArrow:
		return shape.ArrowBetween(anchor, end)
	default:
		return shape.LineBetween(anchor, end)
	}
}
