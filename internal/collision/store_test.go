package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/swarm/internal/physics"
)

func circleAt(x, z, r float64) Descriptor {
	return Descriptor{
		Position:        mgl64.Vec3{x, 0, z},
		Shape:           physics.Circle(r),
		Layer:           physics.LayerEveryone,
		CollisionMask:   physics.LayerEveryone,
		InteractionMask: physics.LayerEveryone,
	}
}

func boxAt(x, z, hx, hz, angle float64) Descriptor {
	d := circleAt(x, z, 0)
	d.Shape = physics.Box(hx, hz, angle)
	return d
}

func TestStore(t *testing.T) {
	t.Run("Add Assigns Dense Slots", func(t *testing.T) {
		s := NewStore(4)
		seen := map[ID]bool{}
		for i := 0; i < 5; i++ {
			id, slot, _ := s.Add(circleAt(float64(i), 0, 0.5))
			require.Equal(t, int32(i), slot)
			require.NotEqual(t, NoID, id)
			require.False(t, seen[id])
			seen[id] = true

			got, ok := s.Slot(id)
			require.True(t, ok)
			require.Equal(t, slot, got)
			require.Equal(t, id, s.IDAt(slot))
		}
		require.Equal(t, 5, s.Len())
	})

	t.Run("Capacity Doubles", func(t *testing.T) {
		s := NewStore(16)
		require.Equal(t, 16, s.Capacity())
		grewAt := -1
		for i := 0; i < 17; i++ {
			if _, _, grown := s.Add(circleAt(0, 0, 0.1)); grown {
				grewAt = i
			}
		}
		require.Equal(t, 16, grewAt)
		require.Equal(t, 32, s.Capacity())
	})

	t.Run("Add Flattens Y", func(t *testing.T) {
		s := NewStore(4)
		d := circleAt(1, 2, 0.5)
		d.Position[1] = 7
		d.Velocity = mgl64.Vec3{1, 3, 1}
		id, slot, _ := s.Add(d)
		require.Equal(t, mgl64.Vec3{1, 0, 2}, s.Position(slot))

		got, err := s.Descriptor(id)
		require.NoError(t, err)
		require.Equal(t, mgl64.Vec3{1, 0, 1}, got.Velocity)
	})

	t.Run("Swap Remove Moves Last Slot", func(t *testing.T) {
		s := NewStore(4)
		a, _, _ := s.Add(circleAt(0, 0, 0.5))
		b, _, _ := s.Add(circleAt(1, 0, 0.5))
		c, _, _ := s.Add(circleAt(2, 0, 0.25))
		s.deltas.Add(2, mgl64.Vec3{0.5, 0, 0})

		moved, ok := s.swapRemove(0)
		require.True(t, ok)
		require.Equal(t, int32(2), moved)
		require.Equal(t, 2, s.Len())

		_, ok = s.Slot(a)
		require.False(t, ok)

		slot, ok := s.Slot(c)
		require.True(t, ok)
		require.Equal(t, int32(0), slot)
		require.Equal(t, mgl64.Vec3{2, 0, 0}, s.Position(0))
		require.Equal(t, 0.25, s.State(0).Shape.Radius)
		require.Equal(t, mgl64.Vec3{0.5, 0, 0}, s.deltas.Load(0))

		slot, ok = s.Slot(b)
		require.True(t, ok)
		require.Equal(t, int32(1), slot)
	})

	t.Run("Swap Remove Last Slot", func(t *testing.T) {
		s := NewStore(4)
		s.Add(circleAt(0, 0, 0.5))
		b, _, _ := s.Add(circleAt(1, 0, 0.5))

		_, ok := s.swapRemove(1)
		require.False(t, ok)
		require.Equal(t, 1, s.Len())
		_, ok = s.Slot(b)
		require.False(t, ok)
	})

	t.Run("Setters", func(t *testing.T) {
		s := NewStore(4)
		id, slot, _ := s.Add(circleAt(0, 0, 0.5))

		require.NoError(t, s.SetVelocity(id, mgl64.Vec3{1, 1, 0}))
		require.NoError(t, s.SetPosition(id, mgl64.Vec3{4, 4, 4}))
		require.NoError(t, s.SetPriority(id, 3))
		require.NoError(t, s.SetTrigger(id, true))
		require.NoError(t, s.SetKinematic(id, true))
		require.NoError(t, s.SetLayers(id, physics.LayerEnemy, physics.LayerPlayer, physics.LayerSensor))

		st := s.State(slot)
		require.Equal(t, mgl64.Vec3{1, 0, 0}, st.Velocity)
		require.Equal(t, mgl64.Vec3{4, 0, 4}, st.Position)
		require.Equal(t, 3, st.Priority)
		require.True(t, st.Trigger)
		require.True(t, st.Kinematic)
		require.Equal(t, physics.LayerEnemy, st.Layer)

		d, err := s.Descriptor(id)
		require.NoError(t, err)
		require.Equal(t, physics.LayerPlayer, d.CollisionMask)
		require.Equal(t, physics.LayerSensor, d.InteractionMask)
	})

	t.Run("Unknown Identity", func(t *testing.T) {
		s := NewStore(4)
		require.ErrorIs(t, s.SetVelocity(42, mgl64.Vec3{}), ErrUnknownID)
		require.ErrorIs(t, s.SetPosition(42, mgl64.Vec3{}), ErrUnknownID)
		require.ErrorIs(t, s.SetPriority(42, 1), ErrUnknownID)
		require.ErrorIs(t, s.SetTrigger(42, true), ErrUnknownID)
		require.ErrorIs(t, s.SetKinematic(42, true), ErrUnknownID)
		require.ErrorIs(t, s.SetLayers(42, 0, 0, 0), ErrUnknownID)
		_, err := s.Descriptor(42)
		require.ErrorIs(t, err, ErrUnknownID)
	})
}

func TestAccumulator(t *testing.T) {
	var a Accumulator
	a.grow(4)
	a.push()
	a.push()

	a.Add(1, mgl64.Vec3{0.25, 9, -0.5})
	a.Add(1, mgl64.Vec3{0.25, 9, -0.5})
	require.Equal(t, mgl64.Vec3{0.5, 0, -1}, a.Load(1))
	require.Equal(t, mgl64.Vec3{}, a.Load(0))

	require.Equal(t, mgl64.Vec3{0.5, 0, -1}, a.Take(1))
	require.Equal(t, mgl64.Vec3{}, a.Load(1))
}
