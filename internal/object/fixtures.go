package object

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/physics"
)

// Crate is an immovable oriented box. Everything that touches it is pushed
// out by the full depth.
type Crate struct {
	Body
}

// NewCrate registers a kinematic box with the given half extents and angle
// in radians.
func NewCrate(w *collision.World, pos mgl64.Vec3, halfX, halfZ, angle float64) *Crate {
	return &Crate{Body: newBody(w, collision.Descriptor{
		Position:        pos,
		Shape:           physics.Box(halfX, halfZ, angle),
		Layer:           physics.LayerWall,
		CollisionMask:   physics.LayerEveryone,
		InteractionMask: physics.LayerNone,
		Kinematic:       true,
	})}
}

func (c *Crate) Update(UpdateContext) (bool, error) {
	return false, nil
}

// Sensor is a trigger circle counting the shapes inside it.
type Sensor struct {
	Body
	contacts *Contacts
}

// NewSensor registers a trigger circle of radius r.
func NewSensor(w *collision.World, pos mgl64.Vec3, r float64) *Sensor {
	s := &Sensor{
		Body: newBody(w, collision.Descriptor{
			Position:        pos,
			Shape:           physics.Circle(r),
			Layer:           physics.LayerSensor,
			CollisionMask:   physics.LayerEveryone,
			InteractionMask: physics.LayerPlayer | physics.LayerEnemy,
			Trigger:         true,
			Kinematic:       true,
		}),
		contacts: NewContacts(),
	}
	w.Subscribe(s.id, s.contacts)
	return s
}

// Occupants returns how many shapes are inside the sensor.
func (s *Sensor) Occupants() int {
	return s.contacts.Len()
}

func (s *Sensor) Update(ctx UpdateContext) (bool, error) {
	s.contacts.Prune(ctx.World)
	return false, nil
}
