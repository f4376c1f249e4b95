// Package physics provides planar vector helpers, layer masks, the broad-phase
// spatial grid and the narrow-phase overlap tests.
//
// All shapes live on the XZ plane. Positions are carried as mgl64.Vec3 with
// the Y component pinned to zero so callers can hand positions straight to a
// 3D host without conversion.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the threshold under which a length (or squared length) is
// treated as zero.
const Epsilon = 1e-6

// Planar returns the (X, Z) components of v.
func Planar(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v[0], v[2]}
}

// Lift places a planar point back on the XZ plane.
func Lift(p mgl64.Vec2) mgl64.Vec3 {
	return mgl64.Vec3{p[0], 0, p[1]}
}

// Flatten zeroes the Y component of v.
func Flatten(v mgl64.Vec3) mgl64.Vec3 {
	v[1] = 0
	return v
}

// Distance calculates the planar distance between two points.
func Distance(a, b mgl64.Vec3) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// DistanceSquared calculates the squared planar distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b mgl64.Vec3) float64 {
	dx := b[0] - a[0]
	dz := b[2] - a[2]
	return dx*dx + dz*dz
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(p, center mgl64.Vec3, radius float64) bool {
	return DistanceSquared(p, center) <= radius*radius
}

// Direction returns the unit planar vector from a to b, or the zero vector
// when the points coincide.
func Direction(a, b mgl64.Vec3) mgl64.Vec3 {
	d := Flatten(b.Sub(a))
	l := d.Len()
	if l < Epsilon {
		return mgl64.Vec3{}
	}
	return d.Mul(1 / l)
}
