package object

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/config"
	"github.com/tomz197/swarm/internal/input"
)

type collector struct {
	actors []Actor
}

func (c *collector) Spawn(a Actor) {
	c.actors = append(c.actors, a)
}

func newWorld() *collision.World {
	cfg := config.DefaultEngine()
	cfg.Capacity = 16
	return collision.NewWorld(cfg)
}

func requirePos(t *testing.T, want mgl64.Vec3, b Body) {
	t.Helper()
	got, ok := b.Position()
	require.True(t, ok)
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-9, "position %v", got)
	}
}

func TestChaser(t *testing.T) {
	w := newWorld()
	c := NewChaser(w, mgl64.Vec3{5, 0, 0}, 5)
	ctx := UpdateContext{
		Delta:   100 * time.Millisecond,
		World:   w,
		Targets: []mgl64.Vec3{{-10, 0, 0}, {0, 0, 3}},
	}

	remove, err := c.Update(ctx)
	require.NoError(t, err)
	require.False(t, remove)
	w.Tick()
	step := mgl64.Vec3{-5, 0, 3}.Normalize().Mul(0.5)
	requirePos(t, mgl64.Vec3{5, 0, 0}.Add(step), c.Body)

	require.NoError(t, c.Remove())
	w.Tick()
	remove, err = c.Update(ctx)
	require.NoError(t, err)
	require.True(t, remove)
}

func TestChaserHeadsToOriginWithoutPlayers(t *testing.T) {
	w := newWorld()
	c := NewChaser(w, mgl64.Vec3{0, 0, 4}, 10)
	_, err := c.Update(UpdateContext{Delta: 100 * time.Millisecond, World: w})
	require.NoError(t, err)
	w.Tick()
	requirePos(t, mgl64.Vec3{0, 0, 3}, c.Body)
}

func TestPlayer(t *testing.T) {
	w := newWorld()
	p := NewPlayer(w, mgl64.Vec3{}, 10)
	p.Input = input.Input{Right: true, Up: true}

	_, err := p.Update(UpdateContext{Delta: 100 * time.Millisecond, World: w})
	require.NoError(t, err)
	w.Tick()
	d := 1 / mgl64.Vec3{1, 0, 1}.Len()
	requirePos(t, mgl64.Vec3{d, 0, d}, p.Body)

	t.Run("Touching Chasers", func(t *testing.T) {
		pos, _ := p.Position()
		NewChaser(w, pos.Add(mgl64.Vec3{0.6, 0, 0}), 0)
		p.Input = input.Input{}
		_, err := p.Update(UpdateContext{Delta: 100 * time.Millisecond, World: w})
		require.NoError(t, err)
		w.Tick()
		require.Equal(t, 1, p.Touching())
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, p.Remove())
		w.Tick()
		_, ok := p.Position()
		require.False(t, ok)
	})
}

func TestCratePushesPlayerOut(t *testing.T) {
	w := newWorld()
	NewCrate(w, mgl64.Vec3{}, 0.5, 0.5, 0)
	p := NewPlayer(w, mgl64.Vec3{0.8, 0, 0}, 10)

	w.Tick()
	requirePos(t, mgl64.Vec3{1, 0, 0}, p.Body)
}

func TestSensorCountsOccupants(t *testing.T) {
	w := newWorld()
	s := NewSensor(w, mgl64.Vec3{}, 1)
	c := NewChaser(w, mgl64.Vec3{0.5, 0, 0}, 0)

	w.Tick()
	require.Equal(t, 1, s.Occupants())
	requirePos(t, mgl64.Vec3{0.5, 0, 0}, c.Body)

	require.NoError(t, c.Remove())
	w.Tick()
	require.Equal(t, 1, s.Occupants())
	_, err := s.Update(UpdateContext{World: w})
	require.NoError(t, err)
	require.Zero(t, s.Occupants())
}

func TestSwarm(t *testing.T) {
	w := newWorld()
	cfg := config.Default().Demo
	cfg.Enemies = 5
	cfg.SpawnExtent = 10
	sw := NewSwarm(cfg, rand.New(rand.NewSource(1)))
	spawned := &collector{}
	ctx := UpdateContext{World: w, Spawner: spawned}

	_, err := sw.Update(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, sw.Live())
	require.Len(t, spawned.actors, 5)
	require.Equal(t, 5, w.Len())

	for _, a := range spawned.actors {
		pos, ok := a.(*Chaser).Position()
		require.True(t, ok)
		require.LessOrEqual(t, pos[0], 10.0)
		require.GreaterOrEqual(t, pos[2], -10.0)
	}

	require.NoError(t, spawned.actors[0].(*Chaser).Remove())
	w.Tick()
	_, err = sw.Update(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, sw.Live())
	require.Len(t, spawned.actors, 6)
}

func TestScatter(t *testing.T) {
	w := newWorld()
	cfg := config.Default().Demo
	cfg.Crates, cfg.Sensors = 6, 2
	actors := Scatter(w, cfg, rand.New(rand.NewSource(1)))
	require.Len(t, actors, 8)
	require.Equal(t, 8, w.Len())

	for _, a := range actors {
		remove, err := a.Update(UpdateContext{World: w})
		require.NoError(t, err)
		require.False(t, remove)
	}
}
