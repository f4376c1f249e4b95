package physics

import (
	"sort"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func collectAround(g *SpatialGrid, c Cell) []int32 {
	var out []int32
	g.QueryAround(c, func(slot int32) bool {
		out = append(out, slot)
		return false
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestSpatialGrid(t *testing.T) {
	t.Run("CellOf Floors Negative Coordinates", func(t *testing.T) {
		g := NewSpatialGrid(1, 4, 16)
		require.Equal(t, Cell{X: 0, Z: 0}, g.CellOf(mgl64.Vec3{0.5, 7, 0.99}))
		require.Equal(t, Cell{X: -1, Z: -2}, g.CellOf(mgl64.Vec3{-0.5, 0, -1.5}))
		require.Equal(t, Cell{X: 2, Z: -1}, g.CellOf(mgl64.Vec3{2, 0, -0.0001}))
	})

	t.Run("CellOf Honours Cell Size", func(t *testing.T) {
		g := NewSpatialGrid(2.5, 4, 16)
		require.Equal(t, Cell{X: 1, Z: -1}, g.CellOf(mgl64.Vec3{2.6, 0, -0.1}))
		require.Equal(t, 2.5, g.CellSize())
	})

	t.Run("QueryAround Covers 3x3", func(t *testing.T) {
		g := NewSpatialGrid(1, 8, 16)
		slot := int32(0)
		for x := int32(-2); x <= 2; x++ {
			for z := int32(-2); z <= 2; z++ {
				g.Insert(Cell{X: x, Z: z}, slot)
				slot++
			}
		}

		got := collectAround(g, Cell{})
		require.Len(t, got, 9)
		// Slots of cells with |x|<=1 and |z|<=1 in insertion order.
		require.Equal(t, []int32{6, 7, 8, 11, 12, 13, 16, 17, 18}, got)
	})

	t.Run("QueryAround Stops Early", func(t *testing.T) {
		g := NewSpatialGrid(1, 8, 16)
		for i := int32(0); i < 5; i++ {
			g.Insert(Cell{}, i)
		}
		calls := 0
		g.QueryAround(Cell{}, func(int32) bool {
			calls++
			return true
		})
		require.Equal(t, 1, calls)
	})

	t.Run("Clear Keeps Nothing Visible", func(t *testing.T) {
		g := NewSpatialGrid(1, 8, 16)
		g.Insert(Cell{X: 1, Z: 1}, 3)
		g.Insert(Cell{X: 5, Z: 5}, 4)
		require.Equal(t, 2, g.Len())

		g.Clear()
		require.Equal(t, 0, g.Len())
		require.Empty(t, collectAround(g, Cell{X: 1, Z: 1}))

		// A second clear drops the now empty cells entirely.
		g.Clear()
		require.Nil(t, g.Items(Cell{X: 1, Z: 1}))
	})

	t.Run("Concurrent Insert", func(t *testing.T) {
		g := NewSpatialGrid(1, 4, 16)
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					g.Insert(Cell{X: int32(i % 3), Z: 0}, int32(w*100+i))
				}
			}(w)
		}
		wg.Wait()

		total := len(g.Items(Cell{X: 0})) + len(g.Items(Cell{X: 1})) + len(g.Items(Cell{X: 2}))
		require.Equal(t, 800, total)
	})

	t.Run("Reserve Doubles And Keeps Cells", func(t *testing.T) {
		g := NewSpatialGrid(1, 4, 8)
		g.Insert(Cell{X: 9}, 1)
		require.False(t, g.Reserve(8))
		require.True(t, g.Reserve(20))
		require.Equal(t, 32, g.Capacity())
		require.Equal(t, []int32{1}, g.Items(Cell{X: 9}))
	})
}

func TestCanPairIsSymmetric(t *testing.T) {
	layers := []Layer{LayerNone, LayerPlayer, LayerEnemy, LayerWall, LayerSensor, LayerPlayer | LayerEnemy, LayerEveryone}
	for _, la := range layers {
		for _, ma := range layers {
			for _, lb := range layers {
				for _, mb := range layers {
					require.Equal(t, CanPair(la, ma, lb, mb), CanPair(lb, mb, la, ma))
				}
			}
		}
	}

	require.True(t, CanPair(LayerPlayer, LayerEnemy, LayerEnemy, LayerPlayer))
	require.False(t, CanPair(LayerPlayer, LayerEnemy, LayerEnemy, LayerWall))
}

func TestParseLayer(t *testing.T) {
	l, err := ParseLayer("player | Enemy")
	require.NoError(t, err)
	require.Equal(t, LayerPlayer|LayerEnemy, l)
	require.True(t, l.Has(LayerEnemy))
	require.False(t, l.Has(LayerWall))

	l, err = ParseLayer("")
	require.NoError(t, err)
	require.Equal(t, LayerNone, l)

	_, err = ParseLayer("player|ghost")
	require.Error(t, err)
}
