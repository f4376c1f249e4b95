package object

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/input"
	"github.com/tomz197/swarm/internal/physics"
)

const (
	PlayerRadius   = 0.5
	PlayerPriority = 10
)

// Player is a user-controlled circle. It outranks the swarm, so chasers
// yield to it.
type Player struct {
	Body
	Username string
	OwnerID  int
	Speed    float64 // units per second
	Input    input.Input

	contacts *Contacts
	sub      collision.Subscription
}

// NewPlayer registers a player at pos.
func NewPlayer(w *collision.World, pos mgl64.Vec3, speed float64) *Player {
	p := &Player{
		Body: newBody(w, collision.Descriptor{
			Position:        pos,
			Shape:           physics.Circle(PlayerRadius),
			Layer:           physics.LayerPlayer,
			CollisionMask:   physics.LayerEveryone,
			InteractionMask: physics.LayerEnemy | physics.LayerSensor,
			Priority:        PlayerPriority,
		}),
		Speed:    speed,
		contacts: NewContacts(),
	}
	p.sub = w.Subscribe(p.id, p.contacts)
	return p
}

// Touching returns how many chasers and sensors overlap the player.
func (p *Player) Touching() int {
	return p.contacts.Len()
}

// Update moves the player along the held arrow keys.
func (p *Player) Update(ctx UpdateContext) (bool, error) {
	p.contacts.Prune(ctx.World)
	return false, p.steer(p.Input.Direction(), p.Speed, ctx.Delta)
}

// Remove unregisters the player and drops its subscription.
func (p *Player) Remove() error {
	p.sub.Cancel()
	return p.Body.Remove()
}
