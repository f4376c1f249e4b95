package server

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/object"
)

// Snapshot is an immutable view of the simulation after one tick. Readers
// must not modify it.
type Snapshot struct {
	Tick    uint64
	Shapes  []collision.ShapeState
	Players []PlayerView
	Sensors []SensorView
	Stats   collision.Stats
	Clients int
}

// PlayerView describes one connected player.
type PlayerView struct {
	ClientID int
	Username string
	ID       collision.ID
	Position mgl64.Vec3
	Touching int
}

// SensorView describes one trigger sensor.
type SensorView struct {
	ID        collision.ID
	Position  mgl64.Vec3
	Occupants int
}

// Player returns the view of the player owned by clientID.
func (s *Snapshot) Player(clientID int) (PlayerView, bool) {
	for _, p := range s.Players {
		if p.ClientID == clientID {
			return p, true
		}
	}
	return PlayerView{}, false
}

// worldState is the actor bookkeeping owned by the server loop.
type worldState struct {
	actors  []object.Actor
	toSpawn []object.Actor
	sensors []*object.Sensor
}

// Spawn queues an actor to join after the current update pass.
func (w *worldState) Spawn(a object.Actor) {
	w.toSpawn = append(w.toSpawn, a)
}

// add registers an actor immediately.
func (w *worldState) add(a object.Actor) {
	w.actors = append(w.actors, a)
	if s, ok := a.(*object.Sensor); ok {
		w.sensors = append(w.sensors, s)
	}
}

// flushSpawned moves queued actors into the live list.
func (w *worldState) flushSpawned() {
	for _, a := range w.toSpawn {
		w.add(a)
	}
	clear(w.toSpawn)
	w.toSpawn = w.toSpawn[:0]
}
