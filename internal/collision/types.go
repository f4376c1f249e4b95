// Package collision tracks a dense set of planar shapes, resolves blocking
// overlaps by positional correction and reports overlap lifecycle events.
package collision

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/physics"
)

// ErrUnknownID is returned when an identity is not (or no longer) registered.
var ErrUnknownID = errors.New("collision: unknown identity")

// ID is the stable external handle of a shape. Zero is never issued.
type ID uint64

// NoID is the zero identity.
const NoID ID = 0

// Descriptor carries the initial attributes of a shape.
type Descriptor struct {
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3 // displacement per tick
	Shape           physics.Shape
	Layer           physics.Layer
	CollisionMask   physics.Layer
	InteractionMask physics.Layer
	Trigger         bool
	Kinematic       bool
	Priority        int
}

// ShapeState is a copy of one shape's attributes, used by renderers.
type ShapeState struct {
	ID        ID
	Position  mgl64.Vec3
	Velocity  mgl64.Vec3
	Shape     physics.Shape
	Layer     physics.Layer
	Trigger   bool
	Kinematic bool
	Priority  int
}

// Pair is an unordered pair of slots stored with A < B.
type Pair struct {
	A, B int32
}

// MakePair orders two slots into a Pair.
func MakePair(i, j int32) Pair {
	if i > j {
		i, j = j, i
	}
	return Pair{A: i, B: j}
}

// Has reports whether slot is a member of the pair.
func (p Pair) Has(slot int32) bool {
	return p.A == slot || p.B == slot
}

func (p Pair) key() uint64 {
	return uint64(uint32(p.A))<<32 | uint64(uint32(p.B))
}

// Phase is the lifecycle stage of an overlap.
type Phase uint8

const (
	PhaseBegin Phase = iota
	PhaseContinue
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "begin"
	case PhaseContinue:
		return "continue"
	case PhaseEnd:
		return "end"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Event is one overlap notification addressed to Self.
type Event struct {
	Phase Phase
	Self  ID
	Other ID
}
