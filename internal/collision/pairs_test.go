package collision

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairSet(t *testing.T) {
	t.Run("MakePair Orders Slots", func(t *testing.T) {
		require.Equal(t, Pair{A: 2, B: 7}, MakePair(7, 2))
		require.Equal(t, Pair{A: 2, B: 7}, MakePair(2, 7))
		require.True(t, MakePair(7, 2).Has(7))
		require.False(t, MakePair(7, 2).Has(3))
	})

	t.Run("Concurrent Add", func(t *testing.T) {
		s := NewPairSet(8, 64)
		var wg sync.WaitGroup
		for g := int32(0); g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := int32(0); i < 100; i++ {
					s.Add(MakePair(g, 100+i))
					s.Add(MakePair(100+i, g))
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 800, s.Len())
		require.True(t, s.Has(Pair{A: 3, B: 150}))
	})

	t.Run("Purge", func(t *testing.T) {
		s := NewPairSet(4, 16)
		s.Add(MakePair(0, 1))
		s.Add(MakePair(1, 2))
		s.Add(MakePair(2, 3))

		require.Equal(t, 2, s.Purge(1))
		require.Equal(t, 1, s.Len())
		require.True(t, s.Has(MakePair(2, 3)))
	})

	t.Run("Relocate", func(t *testing.T) {
		s := NewPairSet(4, 16)
		s.Add(MakePair(0, 5))
		s.Add(MakePair(3, 5))
		s.Add(MakePair(0, 3))

		s.Relocate(5, 1)
		require.Equal(t, 3, s.Len())
		require.True(t, s.Has(Pair{A: 0, B: 1}))
		require.True(t, s.Has(Pair{A: 1, B: 3}))
		require.True(t, s.Has(Pair{A: 0, B: 3}))
		require.False(t, s.Has(Pair{A: 3, B: 5}))
	})

	t.Run("Reserve Keeps Pairs", func(t *testing.T) {
		s := NewPairSet(4, 8)
		s.Add(MakePair(1, 2))
		require.False(t, s.Reserve(8))
		require.True(t, s.Reserve(20))
		require.Equal(t, 32, s.Capacity())
		require.True(t, s.Has(MakePair(1, 2)))
	})

	t.Run("Clear", func(t *testing.T) {
		s := NewPairSet(4, 8)
		s.Add(MakePair(1, 2))
		s.Clear()
		require.Zero(t, s.Len())
	})
}

func TestTracker(t *testing.T) {
	collect := func(tr *Tracker) map[Pair]Phase {
		got := map[Pair]Phase{}
		tr.Diff(func(p Pair, phase Phase) {
			got[p] = phase
		})
		return got
	}

	tr := NewTracker(4, 16)
	tr.Current().Add(MakePair(0, 1))
	tr.Current().Add(MakePair(1, 2))
	require.Equal(t, map[Pair]Phase{
		{A: 0, B: 1}: PhaseBegin,
		{A: 1, B: 2}: PhaseBegin,
	}, collect(tr))
	tr.Swap()
	require.Zero(t, tr.Current().Len())
	require.Equal(t, 2, tr.Previous().Len())

	tr.Current().Add(MakePair(0, 1))
	tr.Current().Add(MakePair(2, 3))
	require.Equal(t, map[Pair]Phase{
		{A: 0, B: 1}: PhaseContinue,
		{A: 2, B: 3}: PhaseBegin,
		{A: 1, B: 2}: PhaseEnd,
	}, collect(tr))
	tr.Swap()

	t.Run("Purge Silences End", func(t *testing.T) {
		tr.Purge(3)
		require.Equal(t, map[Pair]Phase{
			{A: 0, B: 1}: PhaseEnd,
		}, collect(tr))
	})

	t.Run("Relocate Keeps Continuity", func(t *testing.T) {
		tr.Relocate(1, 4)
		tr.Current().Add(MakePair(0, 4))
		require.Equal(t, map[Pair]Phase{
			{A: 0, B: 4}: PhaseContinue,
		}, collect(tr))
	})

	t.Run("Phase Names", func(t *testing.T) {
		require.Equal(t, "begin", PhaseBegin.String())
		require.Equal(t, "continue", PhaseContinue.String())
		require.Equal(t, "end", PhaseEnd.String())
		require.Equal(t, "phase(9)", Phase(9).String())
	})
}
