package shape

const (
	// pencilHitRadius is how close (in world units) a query point must be
	// to any sample of a freehand stroke to count as a hit.
	pencilHitRadius = 5.0

	// segmentTolerance is the perpendicular-distance tolerance for line
	// and arrow hits.
	segmentTolerance = 5.0
)

// HitTest reports whether the point falls within or near the shape. It is
// side-effect-free and is called once per interpolated sample along an erase
// gesture, so it must stay cheap.
func (s Shape) HitTest(p Point) bool {
	switch s.Type {
	case TypePencil:
		for _, sp := range s.Points {
			dx := p.X - sp.X
			dy := p.Y - sp.Y
			if dx*dx+dy*dy <= pencilHitRadius*pencilHitRadius {
				return true
			}
		}
		return false

	case TypeRect:
		x0, x1 := s.X, s.X+s.Width
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		y0, y1 := s.Y, s.Y+s.Height
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		return p.X >= x0 && p.X <= x1 && p.Y >= y0 && p.Y <= y1

	case TypeCircle:
		if s.RadiusX == 0 || s.RadiusY == 0 {
			return false
		}
		dx := p.X - s.CenterX
		dy := p.Y - s.CenterY
		return (dx*dx)/(s.RadiusX*s.RadiusX)+(dy*dy)/(s.RadiusY*s.RadiusY) <= 1

	case TypeTriangle, TypeRhombus:
		return pointInPolygon(p, s.Points)

	case TypeLine, TypeArrow:
		if s.Start == nil || s.End == nil {
			return false
		}
		return pointNearSegment(p, *s.Start, *s.End, segmentTolerance)
	}
	return false
}

// pointInPolygon applies the even-odd ray-casting rule over the vertex list.
func pointInPolygon(p Point, vertices []Point) bool {
	inside := false
	for i, j := 0, len(vertices)-1; i < len(vertices); j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// pointNearSegment reports whether p lies within tol of segment ab, clamping
// the projection parameter to [0,1] so the endpoints are handled.
func pointNearSegment(p, a, b Point, tol float64) bool {
	cx := b.X - a.X
	cy := b.Y - a.Y
	lenSq := cx*cx + cy*cy

	t := 0.0
	if lenSq != 0 {
		t = ((p.X-a.X)*cx + (p.Y-a.Y)*cy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}

	nx := a.X + t*cx
	ny := a.Y + t*cy
	dx := p.X - nx
	dy := p.Y - ny
	return dx*dx+dy*dy <= tol*tol
}
