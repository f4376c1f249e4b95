package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func TestCircleCircle(t *testing.T) {
	t.Run("Overlapping", func(t *testing.T) {
		c, ok := Overlap(mgl64.Vec3{0, 0, 0}, Circle(0.5), mgl64.Vec3{0.9, 0, 0}, Circle(0.5))
		require.True(t, ok)
		require.InDelta(t, 0.1, c.Depth, 1e-9)
		require.InDelta(t, 1.0, c.Normal[0], 1e-9)
		require.InDelta(t, 0.0, c.Normal[2], 1e-9)
	})

	t.Run("Swapped Arguments Flip Normal", func(t *testing.T) {
		c, ok := Overlap(mgl64.Vec3{0.9, 0, 0}, Circle(0.5), mgl64.Vec3{0, 0, 0}, Circle(0.5))
		require.True(t, ok)
		require.InDelta(t, -1.0, c.Normal[0], 1e-9)
		require.InDelta(t, 0.1, c.Depth, 1e-9)
	})

	t.Run("Separated", func(t *testing.T) {
		_, ok := Overlap(mgl64.Vec3{0, 0, 0}, Circle(0.5), mgl64.Vec3{1.01, 0, 0}, Circle(0.5))
		require.False(t, ok)
	})

	t.Run("Touching Is Not Overlapping", func(t *testing.T) {
		_, ok := Overlap(mgl64.Vec3{0, 0, 0}, Circle(0.5), mgl64.Vec3{1, 0, 0}, Circle(0.5))
		require.False(t, ok)
	})

	t.Run("Coincident Centres", func(t *testing.T) {
		_, ok := Overlap(mgl64.Vec3{3, 0, 3}, Circle(0.5), mgl64.Vec3{3, 0, 3}, Circle(0.25))
		require.False(t, ok)
	})

	t.Run("Uses Z Not Y", func(t *testing.T) {
		c, ok := Overlap(mgl64.Vec3{0, 0, 0}, Circle(0.5), mgl64.Vec3{0, 5, 0.6}, Circle(0.5))
		require.True(t, ok)
		require.InDelta(t, 1.0, c.Normal[2], 1e-9)
		require.Equal(t, 0.0, c.Normal[1])
	})
}

func TestBoxCircle(t *testing.T) {
	box := Box(1, 1, 0)

	t.Run("Circle Outside Face", func(t *testing.T) {
		c, ok := Overlap(mgl64.Vec3{0, 0, 0}, box, mgl64.Vec3{1.2, 0, 0}, Circle(0.5))
		require.True(t, ok)
		require.InDelta(t, 0.3, c.Depth, 1e-9)
		require.InDelta(t, 1.0, c.Normal[0], 1e-9)
		require.InDelta(t, 0.0, c.Normal[2], 1e-9)
	})

	t.Run("Circle First Points Toward Box", func(t *testing.T) {
		c, ok := Overlap(mgl64.Vec3{1.2, 0, 0}, Circle(0.5), mgl64.Vec3{0, 0, 0}, box)
		require.True(t, ok)
		require.InDelta(t, -1.0, c.Normal[0], 1e-9)
		require.InDelta(t, 0.3, c.Depth, 1e-9)
	})

	t.Run("Circle Too Far", func(t *testing.T) {
		_, ok := Overlap(mgl64.Vec3{0, 0, 0}, box, mgl64.Vec3{1.6, 0, 0}, Circle(0.5))
		require.False(t, ok)
	})

	t.Run("Corner Region", func(t *testing.T) {
		_, ok := BoxCircle(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 1}, 0, mgl64.Vec2{1.4, 1.4}, 0.5)
		require.False(t, ok)

		c, ok := BoxCircle(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 1}, 0, mgl64.Vec2{1.3, 1.3}, 0.5)
		require.True(t, ok)
		require.InDelta(t, math.Sqrt2/2, c.Normal[0], 1e-9)
		require.InDelta(t, math.Sqrt2/2, c.Normal[2], 1e-9)
		require.InDelta(t, 0.5-0.3*math.Sqrt2, c.Depth, 1e-9)
	})

	t.Run("Centre Inside Box", func(t *testing.T) {
		c, ok := BoxCircle(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 1}, 0, mgl64.Vec2{0.5, 0}, 0.25)
		require.True(t, ok)
		require.InDelta(t, 1.0, c.Normal[0], 1e-9)
		require.InDelta(t, 0.75, c.Depth, 1e-9)
	})

	t.Run("Centre On Box Centre", func(t *testing.T) {
		c, ok := BoxCircle(mgl64.Vec2{2, 2}, mgl64.Vec2{1, 0.5}, math.Pi/2, mgl64.Vec2{2, 2}, 0.25)
		require.True(t, ok)
		require.InDelta(t, 0.0, c.Normal[0], 1e-9)
		require.InDelta(t, 1.0, c.Normal[2], 1e-9)
		require.InDelta(t, 0.75, c.Depth, 1e-9)
	})

	t.Run("Rotated Box", func(t *testing.T) {
		// A box rotated 90 degrees swaps its extents on the world axes.
		c, ok := BoxCircle(mgl64.Vec2{0, 0}, mgl64.Vec2{2, 0.5}, math.Pi/2, mgl64.Vec2{0.8, 0}, 0.5)
		require.True(t, ok)
		require.InDelta(t, 1.0, c.Normal[0], 1e-9)
		require.InDelta(t, 0.2, c.Depth, 1e-9)
	})
}

func TestBoxBox(t *testing.T) {
	t.Run("Axis Aligned Overlap", func(t *testing.T) {
		c, ok := Overlap(mgl64.Vec3{0, 0, 0}, Box(1, 1, 0), mgl64.Vec3{1.5, 0, 0.2}, Box(1, 1, 0))
		require.True(t, ok)
		require.InDelta(t, 0.5, c.Depth, 1e-9)
		require.InDelta(t, 1.0, c.Normal[0], 1e-9)
	})

	t.Run("Normal Points Toward Second Box", func(t *testing.T) {
		c, ok := Overlap(mgl64.Vec3{0, 0, 0}, Box(1, 1, 0), mgl64.Vec3{0.1, 0, -1.8}, Box(1, 1, 0))
		require.True(t, ok)
		require.InDelta(t, 0.2, c.Depth, 1e-9)
		require.InDelta(t, -1.0, c.Normal[2], 1e-9)
	})

	t.Run("Separated", func(t *testing.T) {
		_, ok := Overlap(mgl64.Vec3{0, 0, 0}, Box(1, 1, 0), mgl64.Vec3{2.0, 0, 0}, Box(1, 1, 0))
		require.False(t, ok)
	})

	t.Run("Rotated Separation Axis", func(t *testing.T) {
		// A diamond whose corner would reach an axis-aligned box only if it
		// were not rotated.
		_, ok := Overlap(mgl64.Vec3{0, 0, 0}, Box(0.5, 0.5, 0), mgl64.Vec3{1.2, 0, 1.2}, Box(0.5, 0.5, math.Pi/4))
		require.False(t, ok)

		c, ok := Overlap(mgl64.Vec3{0, 0, 0}, Box(0.5, 0.5, 0), mgl64.Vec3{1.1, 0, 0}, Box(0.5, 0.5, math.Pi/4))
		require.True(t, ok)
		require.InDelta(t, 0.5+0.5*math.Sqrt2-1.1, c.Depth, 1e-9)
		require.Greater(t, c.Normal[0], 0.0)
	})
}

func TestDegenerateBoxIsCircle(t *testing.T) {
	flat := Box(0.5, 0, 0)
	require.False(t, flat.IsBox())
	require.Equal(t, 0.5, flat.CircleRadius())

	c, ok := Overlap(mgl64.Vec3{0, 0, 0}, flat, mgl64.Vec3{0.9, 0, 0}, Circle(0.5))
	require.True(t, ok)
	require.InDelta(t, 0.1, c.Depth, 1e-9)
}

func TestCorners(t *testing.T) {
	corners := Box(1, 0.5, 0).Corners(mgl64.Vec3{2, 0, 3})
	require.InDelta(t, 1.0, corners[0][0], 1e-9)
	require.InDelta(t, 2.5, corners[0][2], 1e-9)
	require.InDelta(t, 3.0, corners[2][0], 1e-9)
	require.InDelta(t, 3.5, corners[2][2], 1e-9)

	require.Equal(t, [4]mgl64.Vec3{}, Circle(1).Corners(mgl64.Vec3{1, 0, 1}))
}
