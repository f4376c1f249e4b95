package object

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/physics"
)

const ChaserRadius = 0.5

// Chaser steers toward the nearest player, or toward the origin when no
// player is connected.
type Chaser struct {
	Body
	Speed float64 // units per second
}

// NewChaser registers a chaser at pos.
func NewChaser(w *collision.World, pos mgl64.Vec3, speed float64) *Chaser {
	return &Chaser{
		Body: newBody(w, collision.Descriptor{
			Position:        pos,
			Shape:           physics.Circle(ChaserRadius),
			Layer:           physics.LayerEnemy,
			CollisionMask:   physics.LayerEveryone,
			InteractionMask: physics.LayerPlayer | physics.LayerSensor,
		}),
		Speed: speed,
	}
}

// Update retargets the chaser. A chaser whose shape is gone is dropped.
func (c *Chaser) Update(ctx UpdateContext) (bool, error) {
	pos, ok := c.Position()
	if !ok {
		return true, nil
	}
	target, _ := nearest(pos, ctx.Targets)
	return false, c.steer(target.Sub(pos), c.Speed, ctx.Delta)
}
