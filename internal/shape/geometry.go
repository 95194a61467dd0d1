package shape

import "math"

// Constructors below implement the fixed commit formulas used both for the
// final committed shape and for the live preview during a drag, so preview
// and commit can never disagree.

// NewPencil builds a freehand stroke from the captured point buffer.
func NewPencil(points []Point) Shape {
	return Shape{
		ID:     NewID(),
		Type:   TypePencil,
		Points: append([]Point(nil), points...),
	}
}

// RectBetween builds a rectangle anchored at the gesture origin. Width and
// height may be negative when the drag moved leftward or upward.
func RectBetween(anchor, end Point) Shape {
	return Shape{
		ID:     NewID(),
		Type:   TypeRect,
		X:      anchor.X,
		Y:      anchor.Y,
		Width:  end.X - anchor.X,
		Height: end.Y - anchor.Y,
	}
}

// EllipseBetween builds an ellipse centered at the midpoint of the drag with
// half the absolute per-axis span as radii.
func EllipseBetween(anchor, end Point) Shape {
	return Shape{
		ID:      NewID(),
		Type:    TypeCircle,
		CenterX: (anchor.X + end.X) / 2,
		CenterY: (anchor.Y + end.Y) / 2,
		RadiusX: math.Abs(end.X-anchor.X) / 2,
		RadiusY: math.Abs(end.Y-anchor.Y) / 2,
	}
}

// TriangleBetween builds a triangle with its apex at the horizontal midpoint
// at the anchor's y, and base corners at (anchor.x, end.y) and (end.x, end.y).
func TriangleBetween(anchor, end Point) Shape {
	midX := (anchor.X + end.X) / 2
	return Shape{
		ID:   NewID(),
		Type: TypeTriangle,
		Points: []Point{
			{X: midX, Y: anchor.Y},
			{X: anchor.X, Y: end.Y},
			{X: end.X, Y: end.Y},
		},
	}
}

// RhombusBetween builds a diamond whose vertices sit at the midpoints of the
// drag's bounding-box edges, ordered top, left, bottom, right.
func RhombusBetween(anchor, end Point) Shape {
	midX := (anchor.X + end.X) / 2
	midY := (anchor.Y + end.Y) / 2
	return Shape{
		ID:   NewID(),
		Type: TypeRhombus,
		Points: []Point{
			{X: midX, Y: anchor.Y},
			{X: anchor.X, Y: midY},
			{X: midX, Y: end.Y},
			{X: end.X, Y: midY},
		},
	}
}

// LineBetween builds a straight segment.
func LineBetween(anchor, end Point) Shape {
	return Shape{
		ID:    NewID(),
		Type:  TypeLine,
		Start: &Point{X: anchor.X, Y: anchor.Y},
		End:   &Point{X: end.X, Y: end.Y},
	}
}

// ArrowBetween builds a segment rendered with an arrow head at the end.
func ArrowBetween(anchor, end Point) Shape {
	s := LineBetween(anchor, end)
	s.Type = TypeArrow
	return s
}

// PathSamples returns evenly spaced points from a to b (inclusive of both
// endpoints) at the given spacing. Used by the eraser so fast pointer moves
// do not skip over shapes between two events.
func PathSamples(a, b Point, spacing float64) []Point {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 || spacing <= 0 {
		return []Point{b}
	}
	steps := int(math.Ceil(dist / spacing))
	points := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		points = append(points, Point{X: a.X + t*dx, Y: a.Y + t*dy})
	}
	return points
}
