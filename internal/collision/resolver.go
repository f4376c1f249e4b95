package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/physics"
)

// Resolver runs the narrow phase for one slot against its grid neighbours,
// records interacting pairs and accumulates positional corrections.
//
// It only reads shape attributes; the accumulator and the pair set are its
// sole outputs, so resolveSlot may run for many slots in parallel.
type Resolver struct {
	store          *Store
	grid           *physics.SpatialGrid
	pairs          *PairSet
	softening      float64
	priorityFactor float64
}

// resolveSlot tests index against every neighbour with a greater slot, so
// each unordered pair is handled exactly once.
func (r *Resolver) resolveSlot(index int32) {
	cell := r.grid.CellOf(r.store.positions[index])
	r.grid.QueryAround(cell, func(other int32) bool {
		if other > index {
			r.checkPair(index, other)
		}
		return false
	})
}

func (r *Resolver) checkPair(a, b int32) {
	s := r.store
	canCollide := physics.CanPair(s.layers[a], s.collisionMasks[a], s.layers[b], s.collisionMasks[b])
	canInteract := physics.CanPair(s.layers[a], s.interactionMasks[a], s.layers[b], s.interactionMasks[b])
	if !canCollide && !canInteract {
		return
	}

	posA := s.positions[a].Add(s.deltas.Load(a))
	posB := s.positions[b].Add(s.deltas.Load(b))
	contact, ok := physics.Overlap(posA, s.shapes[a], posB, s.shapes[b])
	if !ok {
		return
	}

	if canInteract {
		r.pairs.Add(Pair{A: a, B: b})
	}
	if !canCollide {
		return
	}

	r.respond(a, b, contact)
}

// respond applies the trigger, kinematic and priority rules to a blocking
// contact whose normal points from a to b.
func (r *Resolver) respond(a, b int32, c physics.Contact) {
	s := r.store
	if s.triggers[a] || s.triggers[b] {
		return
	}

	kinA, kinB := s.kinematics[a], s.kinematics[b]
	switch {
	case kinA && kinB:
		return
	case kinA:
		s.deltas.Add(b, c.Normal.Mul(c.Depth))
		return
	case kinB:
		s.deltas.Add(a, c.Normal.Mul(-c.Depth))
		return
	}

	correction := c.Normal.Mul(c.Depth * r.softening)
	prioA, prioB := s.priorities[a], s.priorities[b]

	switch {
	case prioA == prioB:
		// The shape moving into the contact backs off; otherwise the other
		// one is pushed along the normal.
		if movingInto(s.velocities[a], c.Normal) {
			s.deltas.Add(a, correction.Mul(-1))
		} else {
			s.deltas.Add(b, correction)
		}
	case prioA > prioB:
		s.deltas.Add(b, correction.Mul(r.priorityFactor))
	default:
		s.deltas.Add(a, correction.Mul(-r.priorityFactor))
	}
}

func movingInto(velocity, normal mgl64.Vec3) bool {
	lenSq := velocity.Dot(velocity)
	if lenSq <= physics.Epsilon {
		return false
	}
	return velocity.Dot(normal) > 0
}
