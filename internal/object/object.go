// Package object holds the demo actors that drive a collision world through
// its public API.
package object

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/physics"
)

// Spawner accepts actors created during an update. They join after the
// current update pass.
type Spawner interface {
	Spawn(a Actor)
}

// UpdateContext is what an actor sees once per server tick.
type UpdateContext struct {
	Delta   time.Duration
	World   *collision.World
	Targets []mgl64.Vec3 // player positions
	Spawner Spawner
}

// Actor is a simulated entity owning one or more shapes.
type Actor interface {
	// Update steers the actor. Returning true removes it from the server.
	Update(ctx UpdateContext) (remove bool, err error)
}

// Body is the handle to one registered shape.
type Body struct {
	id    collision.ID
	world *collision.World
}

func newBody(w *collision.World, d collision.Descriptor) Body {
	return Body{id: w.Register(d), world: w}
}

func (b Body) ID() collision.ID {
	return b.id
}

// Position returns the current position; false once the shape is gone.
func (b Body) Position() (mgl64.Vec3, bool) {
	return b.world.GetPosition(b.id)
}

// Remove unregisters the shape at the end of the next tick.
func (b Body) Remove() error {
	return b.world.Unregister(b.id)
}

// steer sets a velocity of speed units per second along dir, converted to
// a per-tick displacement.
func (b Body) steer(dir mgl64.Vec3, speed float64, dt time.Duration) error {
	v := mgl64.Vec3{}
	if dir.Len() > physics.Epsilon {
		v = dir.Normalize().Mul(speed * dt.Seconds())
	}
	return b.world.SetVelocity(b.id, v)
}

// Contacts is a Listener that tracks which shapes currently overlap its
// owner. Shapes removed while overlapping get no End event, so Prune drops
// identities the world no longer knows.
type Contacts struct {
	mu  sync.Mutex
	ids map[collision.ID]struct{}
}

func NewContacts() *Contacts {
	return &Contacts{ids: make(map[collision.ID]struct{})}
}

func (c *Contacts) OnOverlapBegin(_, other collision.ID)    { c.add(other) }
func (c *Contacts) OnOverlapContinue(_, other collision.ID) { c.add(other) }

func (c *Contacts) OnOverlapEnd(_, other collision.ID) {
	c.mu.Lock()
	delete(c.ids, other)
	c.mu.Unlock()
}

func (c *Contacts) add(id collision.ID) {
	c.mu.Lock()
	c.ids[id] = struct{}{}
	c.mu.Unlock()
}

// Len returns the number of tracked contacts.
func (c *Contacts) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// Prune forgets contacts that are no longer registered in w.
func (c *Contacts) Prune(w *collision.World) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.ids {
		if _, ok := w.GetPosition(id); !ok {
			delete(c.ids, id)
		}
	}
}

// nearest returns the target closest to p.
func nearest(p mgl64.Vec3, targets []mgl64.Vec3) (mgl64.Vec3, bool) {
	best, bestDist := mgl64.Vec3{}, -1.0
	for _, t := range targets {
		if d := physics.DistanceSquared(p, t); bestDist < 0 || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist >= 0
}

// DrawState draws one shape in the style of its layer: players and crates
// solid, enemies and sensors as outlines.
func DrawState(c *draw.Canvas, v draw.Viewport, st collision.ShapeState) {
	filled := st.Layer.Has(physics.LayerPlayer) || st.Kinematic
	if st.Trigger {
		filled = false
	}
	c.DrawShape(v, st.Position, st.Shape, filled)
}
