package object

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/config"
)

// Swarm keeps the chaser population at a target level.
type Swarm struct {
	target int
	extent float64
	speed  float64
	rng    *rand.Rand
	live   []*Chaser
}

// NewSwarm creates a spawner for cfg.Enemies chasers.
func NewSwarm(cfg config.Demo, rng *rand.Rand) *Swarm {
	return &Swarm{
		target: max(cfg.Enemies, 0),
		extent: cfg.SpawnExtent,
		speed:  cfg.EnemySpeed,
		rng:    rng,
	}
}

// Live returns the number of chasers the swarm is tracking.
func (s *Swarm) Live() int {
	return len(s.live)
}

// Update forgets chasers whose shape is gone and spawns replacements at
// random points of the spawn square.
func (s *Swarm) Update(ctx UpdateContext) (bool, error) {
	kept := s.live[:0]
	for _, c := range s.live {
		if _, ok := c.Position(); ok {
			kept = append(kept, c)
		}
	}
	clear(s.live[len(kept):])
	s.live = kept

	for len(s.live) < s.target {
		c := NewChaser(ctx.World, s.randomPoint(), s.speed)
		s.live = append(s.live, c)
		ctx.Spawner.Spawn(c)
	}
	return false, nil
}

func (s *Swarm) randomPoint() mgl64.Vec3 {
	return mgl64.Vec3{
		(s.rng.Float64()*2 - 1) * s.extent,
		0,
		(s.rng.Float64()*2 - 1) * s.extent,
	}
}

// Scatter registers the static fixtures of the demo: crates on a ring
// around the origin and sensors inside it. Both stay within the default
// grid cell size.
func Scatter(w *collision.World, cfg config.Demo, rng *rand.Rand) []Actor {
	actors := make([]Actor, 0, cfg.Crates+cfg.Sensors)
	ring := cfg.SpawnExtent * 0.6
	for i := 0; i < cfg.Crates; i++ {
		a := 2 * math.Pi * float64(i) / float64(cfg.Crates)
		pos := mgl64.Vec3{ring * math.Cos(a), 0, ring * math.Sin(a)}
		actors = append(actors, NewCrate(w, pos, 0.3+rng.Float64()*0.2, 0.2+rng.Float64()*0.2, a))
	}
	for i := 0; i < cfg.Sensors; i++ {
		a := 2*math.Pi*float64(i)/float64(cfg.Sensors) + math.Pi/4
		pos := mgl64.Vec3{ring * 0.5 * math.Cos(a), 0, ring * 0.5 * math.Sin(a)}
		actors = append(actors, NewSensor(w, pos, 1))
	}
	return actors
}
