package server

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/swarm/internal/collision"
	"github.com/tomz197/swarm/internal/physics"
)

func TestNewFrame(t *testing.T) {
	snap := &Snapshot{
		Tick: 7,
		Shapes: []collision.ShapeState{
			{ID: 1, Position: mgl64.Vec3{1, 0, 2}, Shape: physics.Circle(0.5), Layer: physics.LayerEnemy},
			{ID: 2, Position: mgl64.Vec3{-3, 0, 4}, Shape: physics.Box(0.4, 0.2, 1), Layer: physics.LayerWall},
			{ID: 3, Position: mgl64.Vec3{}, Shape: physics.Box(0.7, 0, 0), Layer: physics.LayerSensor, Trigger: true},
		},
		Players: []PlayerView{{ClientID: 1, Username: "alice", Position: mgl64.Vec3{5, 0, 6}, Touching: 2}},
		Sensors: []SensorView{{Position: mgl64.Vec3{0, 0, 1}, Occupants: 3}},
		Stats:   collision.Stats{Pairs: 4},
		Clients: 1,
	}

	f := NewFrame(snap)
	require.Equal(t, uint64(7), f.Tick)
	require.Equal(t, 4, f.Pairs)
	require.Equal(t, FrameShape{ID: 1, X: 1, Z: 2, Kind: "circle", Role: "enemy", Radius: 0.5}, f.Shapes[0])
	require.Equal(t, FrameShape{ID: 2, X: -3, Z: 4, Kind: "box", Role: "wall", HalfX: 0.4, HalfZ: 0.2, Angle: 1}, f.Shapes[1])

	t.Run("Degenerate Box Is A Circle", func(t *testing.T) {
		require.Equal(t, "circle", f.Shapes[2].Kind)
		require.Equal(t, 0.7, f.Shapes[2].Radius)
		require.True(t, f.Shapes[2].Trigger)
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(f)
		require.NoError(t, err)
		require.Contains(t, string(data), `"players":[{"username":"alice","x":5,"z":6,"touching":2}]`)
		require.Contains(t, string(data), `"sensors":[{"x":0,"z":1,"occupants":3}]`)
	})
}
