package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact describes an overlap between two shapes. Normal is a unit planar
// vector pointing from the first shape toward the second; Depth is how far
// they interpenetrate along it.
type Contact struct {
	Normal mgl64.Vec3
	Depth  float64
}

// Overlap tests two shapes placed at pa and pb. The returned normal always
// points from a toward b.
func Overlap(pa mgl64.Vec3, a Shape, pb mgl64.Vec3, b Shape) (Contact, bool) {
	boxA, boxB := a.IsBox(), b.IsBox()
	switch {
	case !boxA && !boxB:
		return CircleCircle(Planar(pa), a.CircleRadius(), Planar(pb), b.CircleRadius())
	case boxA && boxB:
		return BoxBox(Planar(pa), a.HalfExtents, a.Angle, Planar(pb), b.HalfExtents, b.Angle)
	case boxA:
		return BoxCircle(Planar(pa), a.HalfExtents, a.Angle, Planar(pb), b.CircleRadius())
	default:
		c, ok := BoxCircle(Planar(pb), b.HalfExtents, b.Angle, Planar(pa), a.CircleRadius())
		if ok {
			c.Normal = c.Normal.Mul(-1)
		}
		return c, ok
	}
}

// CircleCircle tests two circles. Coincident centres report no contact
// because there is no usable normal.
func CircleCircle(pa mgl64.Vec2, ra float64, pb mgl64.Vec2, rb float64) (Contact, bool) {
	d := pb.Sub(pa)
	distSq := d.Dot(d)
	minDist := ra + rb
	if distSq >= minDist*minDist {
		return Contact{}, false
	}

	dist := math.Sqrt(distSq)
	if dist < Epsilon {
		return Contact{}, false
	}

	return Contact{
		Normal: Lift(d.Mul(1 / dist)),
		Depth:  minDist - dist,
	}, true
}

// BoxBox runs a separating-axis test over the two local axes of each box.
// The contact normal is the axis of least overlap, oriented from a to b.
func BoxBox(pa, halfA mgl64.Vec2, angleA float64, pb, halfB mgl64.Vec2, angleB float64) (Contact, bool) {
	rotA := mgl64.Rotate2D(angleA)
	rotB := mgl64.Rotate2D(angleB)
	axes := [4]mgl64.Vec2{rotA.Col(0), rotA.Col(1), rotB.Col(0), rotB.Col(1)}

	d := pb.Sub(pa)
	minOverlap := math.MaxFloat64
	var best mgl64.Vec2

	for _, axis := range axes {
		projA := math.Abs(rotA.Col(0).Dot(axis))*halfA[0] + math.Abs(rotA.Col(1).Dot(axis))*halfA[1]
		projB := math.Abs(rotB.Col(0).Dot(axis))*halfB[0] + math.Abs(rotB.Col(1).Dot(axis))*halfB[1]

		overlap := projA + projB - math.Abs(d.Dot(axis))
		if overlap <= 0 {
			return Contact{}, false
		}
		if overlap < minOverlap {
			minOverlap = overlap
			best = axis
		}
	}

	if d.Dot(best) < 0 {
		best = best.Mul(-1)
	}
	return Contact{Normal: Lift(best), Depth: minOverlap}, true
}

// BoxCircle tests an oriented box against a circle. The normal points from
// the box toward the circle.
func BoxCircle(boxPos, half mgl64.Vec2, angle float64, circlePos mgl64.Vec2, radius float64) (Contact, bool) {
	toLocal := mgl64.Rotate2D(-angle)
	toWorld := toLocal.Transpose()

	local := toLocal.Mul2x1(circlePos.Sub(boxPos))
	closest := mgl64.Vec2{
		mgl64.Clamp(local[0], -half[0], half[0]),
		mgl64.Clamp(local[1], -half[1], half[1]),
	}

	diff := local.Sub(closest)
	distSq := diff.Dot(diff)
	if distSq > radius*radius {
		return Contact{}, false
	}

	// Centre outside the box: push along closest point -> centre.
	if distSq > Epsilon {
		dist := math.Sqrt(distSq)
		return Contact{
			Normal: Lift(toWorld.Mul2x1(diff.Mul(1 / dist))),
			Depth:  radius - dist,
		}, true
	}

	// Centre inside (or on) the box.
	dir := circlePos.Sub(boxPos)
	if lenSq := dir.Dot(dir); lenSq > Epsilon {
		toEdge := math.Min(half[0]-math.Abs(local[0]), half[1]-math.Abs(local[1]))
		return Contact{
			Normal: Lift(dir.Mul(1 / math.Sqrt(lenSq))),
			Depth:  radius + toEdge,
		}, true
	}

	return Contact{
		Normal: Lift(toWorld.Col(0)),
		Depth:  radius + math.Min(half[0], half[1]),
	}, true
}
