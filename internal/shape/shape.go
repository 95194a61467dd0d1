// Package shape defines the closed set of drawable primitives shared by the
// client canvas, the wire protocol, and the server-side room state machine.
package shape

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUnknownType is returned when a payload carries a shape type
	// outside the closed variant set.
	ErrUnknownType = errors.New("unknown shape type")

	// ErrInvalidGeometry is returned when a shape's fields do not satisfy
	// its variant's geometry contract.
	ErrInvalidGeometry = errors.New("invalid shape geometry")
)

// Type tags a shape variant on the wire.
type Type string

const (
	TypePencil   Type = "pencil"
	TypeRect     Type = "rect"
	TypeCircle   Type = "circle"
	TypeTriangle Type = "triangle"
	TypeRhombus  Type = "rhombus"
	TypeLine     Type = "line"
	TypeArrow    Type = "arrow"
)

// Point is a coordinate in unscaled world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is a tagged variant. Which fields are meaningful depends on Type:
// pencil/triangle/rhombus use Points, rect uses X/Y/Width/Height, circle
// uses CenterX/CenterY/RadiusX/RadiusY, line/arrow use Start/End.
//
// Geometry is immutable once committed; edits are modeled as remove+add.
// ID is assigned at creation time and identifies the shape across
// delete/undo bookkeeping.
type Shape struct {
	ID   string `json:"id,omitempty"`
	Type Type   `json:"type"`

	Points []Point `json:"points,omitempty"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	RadiusX float64 `json:"radiusX,omitempty"`
	RadiusY float64 `json:"radiusY,omitempty"`

	Start *Point `json:"start,omitempty"`
	End   *Point `json:"end,omitempty"`
}

// NewID returns a fresh stable shape identifier.
func NewID() string {
	return uuid.New().String()
}

// Validate checks the variant tag and its geometry contract. Unrecognized
// variants are rejected here, at the protocol boundary, rather than at
// render time.
func (s Shape) Validate() error {
	switch s.Type {
	case TypePencil:
		if len(s.Points) == 0 {
			return fmt.Errorf("%w: pencil requires at least one point", ErrInvalidGeometry)
		}
	case TypeRect:
		// Width/height may be negative (drawn leftward/upward).
	case TypeCircle:
		if s.RadiusX < 0 || s.RadiusY < 0 {
			return fmt.Errorf("%w: circle radii must be non-negative", ErrInvalidGeometry)
		}
	case TypeTriangle:
		if len(s.Points) != 3 {
			return fmt.Errorf("%w: triangle requires exactly 3 points, got %d", ErrInvalidGeometry, len(s.Points))
		}
	case TypeRhombus:
		if len(s.Points) != 4 {
			return fmt.Errorf("%w: rhombus requires exactly 4 points, got %d", ErrInvalidGeometry, len(s.Points))
		}
	case TypeLine, TypeArrow:
		if s.Start == nil || s.End == nil {
			return fmt.Errorf("%w: %s requires start and end", ErrInvalidGeometry, s.Type)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
	}
	return nil
}

// Decode parses and validates a single shape object.
func Decode(data []byte) (Shape, error) {
	var s Shape
	if err := json.Unmarshal(data, &s); err != nil {
		return Shape{}, fmt.Errorf("failed to decode shape: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Shape{}, err
	}
	return s, nil
}

// Clone returns a deep copy, so callers can snapshot shape lists without
// aliasing point buffers.
func (s Shape) Clone() Shape {
	out := s
	if s.Points != nil {
		out.Points = append([]Point(nil), s.Points...)
	}
	if s.Start != nil {
		start := *s.Start
		out.Start = &start
	}
	if s.End != nil {
		end := *s.End
		out.End = &end
	}
	return out
}

// CloneAll deep-copies a shape list. The result is never nil so an empty
// list serializes as [] rather than null.
func CloneAll(shapes []Shape) []Shape {
	out := make([]Shape, 0, len(shapes))
	for _, s := range shapes {
		out = append(out, s.Clone())
	}
	return out
}
