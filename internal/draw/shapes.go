package draw

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/physics"
)

// circleSegments is the polygon resolution used for circles.
const circleSegments = 16

// Viewport maps a rectangle of the XZ plane, centred on Center, to canvas
// space. World +Z points up on screen.
type Viewport struct {
	Center        mgl64.Vec3
	Width, Height float64
}

// ToCanvas converts a world position to a logical canvas point.
func (v Viewport) ToCanvas(p mgl64.Vec3) Point {
	return Point{
		X: p[0] - (v.Center[0] - v.Width/2),
		Y: (v.Center[2] + v.Height/2) - p[2],
	}
}

// Visible reports whether a shape with the given bounding radius at p can
// appear inside the viewport.
func (v Viewport) Visible(p mgl64.Vec3, radius float64) bool {
	return math.Abs(p[0]-v.Center[0]) <= v.Width/2+radius &&
		math.Abs(p[2]-v.Center[2]) <= v.Height/2+radius
}

// DrawShape rasterises s placed at pos. Filled shapes are drawn solid,
// otherwise only the outline.
func (c *Canvas) DrawShape(v Viewport, pos mgl64.Vec3, s physics.Shape, filled bool) {
	if !v.Visible(pos, s.BoundingRadius()) {
		return
	}
	if s.IsBox() {
		corners := s.Corners(pos)
		pts := c.outline[:0]
		for _, p := range corners {
			pts = append(pts, v.ToCanvas(p))
		}
		c.outline = pts
		c.DrawPolygon(pts, filled)
		return
	}
	c.DrawCircle(v.ToCanvas(pos), s.CircleRadius(), filled)
}

// DrawCircle draws a circle of radius r (logical units) around center.
// Circles smaller than a pixel become a single dot.
func (c *Canvas) DrawCircle(center Point, r float64, filled bool) {
	if r*c.scaleX < 1 && r*c.scaleY < 1 {
		c.Plot(center)
		return
	}
	c.outline = CirclePoints(c.outline[:0], center, r, circleSegments)
	c.DrawPolygon(c.outline, filled)
}

// CirclePoints appends n points on a circle to dst.
func CirclePoints(dst []Point, center Point, r float64, n int) []Point {
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		dst = append(dst, Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)})
	}
	return dst
}
