package canvas

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"gitlab.com/sketchdeck/services/board/internal/shape"
)

const arrowHeadLen = 10.0

// Renderer produces a deterministic raster of a shape sequence: clear to
// the background, then replay every shape in order with a fixed stroke.
// Shape coordinates are stored in unscaled world space; the zoom scale is
// applied as a single rendering-time transform, so zoom changes never
// rewrite geometry.
type Renderer struct {
	width  int
	height int
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Render performs a full redraw. There is no incremental or dirty-region
// path: cost is O(total shapes), paid on every mutation.
func (r *Renderer) Render(shapes []shape.Shape, scale float64) image.Image {
	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.Scale(scale, scale)
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(1)

	for _, s := range shapes {
		drawShape(dc, s)
	}
	return dc.Image()
}

func drawShape(dc *gg.Context, s shape.Shape) {
	switch s.Type {
	case shape.TypePencil:
		if len(s.Points) == 0 {
			return
		}
		dc.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()

	case shape.TypeRect:
		dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
		dc.Stroke()

	case shape.TypeCircle:
		dc.DrawEllipse(s.CenterX, s.CenterY, s.RadiusX, s.RadiusY)
		dc.Stroke()

	case shape.TypeTriangle, shape.TypeRhombus:
		if len(s.Points) == 0 {
			return
		}
		dc.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.Stroke()

	case shape.TypeLine:
		if s.Start == nil || s.End == nil {
			return
		}
		dc.DrawLine(s.Start.X, s.Start.Y, s.End.X, s.End.Y)
		dc.Stroke()

	case shape.TypeArrow:
		if s.Start == nil || s.End == nil {
			return
		}
		drawArrow(dc, *s.Start, *s.End)
	}
}

func drawArrow(dc *gg.Context, start, end shape.Point) {
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)

	dc.MoveTo(start.X, start.Y)
	dc.LineTo(end.X, end.Y)
	dc.LineTo(
		end.X-arrowHeadLen*math.Cos(angle-math.Pi/6),
		end.Y-arrowHeadLen*math.Sin(angle-math.Pi/6),
	)
	dc.MoveTo(end.X, end.Y)
	dc.LineTo(
		end.X-arrowHeadLen*math.Cos(angle+math.Pi/6),
		end.Y-arrowHeadLen*math.Sin(angle+math.Pi/6),
	)
	dc.Stroke()
}
