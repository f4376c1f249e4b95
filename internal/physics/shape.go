package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind discriminates the Shape variants.
type Kind uint8

const (
	KindCircle Kind = iota
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindBox:
		return "box"
	default:
		return "unknown"
	}
}

// Shape is a circle or an oriented box.
//
// Circles use Radius. Boxes use HalfExtents (X along the box's local X axis,
// Y along its local Z axis) and Angle in radians around the world Y axis.
type Shape struct {
	Kind        Kind
	Radius      float64
	HalfExtents mgl64.Vec2
	Angle       float64
}

// Circle returns a circle shape.
func Circle(radius float64) Shape {
	return Shape{Kind: KindCircle, Radius: radius}
}

// Box returns an oriented box shape from its half extents and angle.
func Box(halfX, halfZ, angle float64) Shape {
	return Shape{Kind: KindBox, HalfExtents: mgl64.Vec2{halfX, halfZ}, Angle: angle}
}

// IsBox reports whether the shape is tested as a box. A box whose secondary
// extent is zero degenerates to a circle of radius HalfExtents.X.
func (s Shape) IsBox() bool {
	return s.Kind == KindBox && s.HalfExtents[1] != 0
}

// CircleRadius returns the radius used when the shape is tested as a circle.
func (s Shape) CircleRadius() float64 {
	if s.Kind == KindBox {
		return s.HalfExtents[0]
	}
	return s.Radius
}

// BoundingRadius returns the radius of the smallest circle around the shape.
// The grid requires this to stay within one cell size.
func (s Shape) BoundingRadius() float64 {
	if s.IsBox() {
		return math.Hypot(s.HalfExtents[0], s.HalfExtents[1])
	}
	return s.CircleRadius()
}

// Corners returns the four box corners in world space, counter-clockwise.
// Circles return the zero array.
func (s Shape) Corners(center mgl64.Vec3) [4]mgl64.Vec3 {
	var out [4]mgl64.Vec3
	if !s.IsBox() {
		return out
	}
	rot := mgl64.Rotate2D(s.Angle)
	c := Planar(center)
	hx, hz := s.HalfExtents[0], s.HalfExtents[1]
	local := [4]mgl64.Vec2{{-hx, -hz}, {hx, -hz}, {hx, hz}, {-hx, hz}}
	for i, p := range local {
		out[i] = Lift(c.Add(rot.Mul2x1(p)))
	}
	return out
}
