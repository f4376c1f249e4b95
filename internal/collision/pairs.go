package collision

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// PairSet is a set of overlapping pairs that tolerates concurrent Add calls.
// Pairs are spread over mutex-guarded shards chosen by hashing the pair.
type PairSet struct {
	shards   []pairShard
	mask     uint64
	capacity int
}

type pairShard struct {
	mu  sync.Mutex
	set map[Pair]struct{}
}

// NewPairSet creates a set with the given shard count (rounded up to a power
// of two) sized for capacity pairs.
func NewPairSet(shards, capacity int) *PairSet {
	if shards <= 0 {
		shards = 32
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	if capacity < n {
		capacity = n
	}
	s := &PairSet{
		shards:   make([]pairShard, n),
		mask:     uint64(n - 1),
		capacity: capacity,
	}
	for i := range s.shards {
		s.shards[i].set = make(map[Pair]struct{}, capacity/n)
	}
	return s
}

// Capacity returns the pair count the shards are sized for.
func (s *PairSet) Capacity() int {
	return s.capacity
}

// Add records p. Safe for concurrent use.
func (s *PairSet) Add(p Pair) {
	sh := s.shard(p)
	sh.mu.Lock()
	sh.set[p] = struct{}{}
	sh.mu.Unlock()
}

// Has reports whether p is in the set.
func (s *PairSet) Has(p Pair) bool {
	sh := s.shard(p)
	sh.mu.Lock()
	_, ok := sh.set[p]
	sh.mu.Unlock()
	return ok
}

// Len returns the number of pairs.
func (s *PairSet) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.set)
		sh.mu.Unlock()
	}
	return n
}

// Range calls fn for every pair until fn returns false. The set must not be
// modified while ranging.
func (s *PairSet) Range(fn func(Pair) bool) {
	for i := range s.shards {
		for p := range s.shards[i].set {
			if !fn(p) {
				return
			}
		}
	}
}

// Clear removes every pair, keeping the allocated maps.
func (s *PairSet) Clear() {
	for i := range s.shards {
		clear(s.shards[i].set)
	}
}

// Purge removes every pair that references slot and returns how many were
// removed.
func (s *PairSet) Purge(slot int32) int {
	removed := 0
	for i := range s.shards {
		set := s.shards[i].set
		for p := range set {
			if p.Has(slot) {
				delete(set, p)
				removed++
			}
		}
	}
	return removed
}

// Relocate rewrites every pair that references from so that it references
// to instead. Used after a swap-remove moved a shape to a new slot.
func (s *PairSet) Relocate(from, to int32) {
	var moved []Pair
	for i := range s.shards {
		set := s.shards[i].set
		for p := range set {
			if !p.Has(from) {
				continue
			}
			delete(set, p)
			other := p.A
			if other == from {
				other = p.B
			}
			moved = append(moved, MakePair(other, to))
		}
	}
	for _, p := range moved {
		s.shard(p).set[p] = struct{}{}
	}
}

// Reserve doubles the capacity until it fits n pairs, rebuilding the shard
// maps. It reports whether a reallocation happened.
func (s *PairSet) Reserve(n int) bool {
	if n <= s.capacity {
		return false
	}
	for s.capacity < n {
		s.capacity *= 2
	}
	per := s.capacity / len(s.shards)
	for i := range s.shards {
		old := s.shards[i].set
		set := make(map[Pair]struct{}, per)
		for p := range old {
			set[p] = struct{}{}
		}
		s.shards[i].set = set
	}
	return true
}

func (s *PairSet) shard(p Pair) *pairShard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], p.key())
	return &s.shards[xxhash.Sum64(buf[:])&s.mask]
}

// Tracker double-buffers the pair sets of consecutive ticks and derives
// lifecycle phases from them.
type Tracker struct {
	prev *PairSet
	cur  *PairSet
}

// NewTracker creates a tracker whose two generations use the given shard
// count and capacity.
func NewTracker(shards, capacity int) *Tracker {
	return &Tracker{
		prev: NewPairSet(shards, capacity),
		cur:  NewPairSet(shards, capacity),
	}
}

// Current returns the set being filled for this tick.
func (t *Tracker) Current() *PairSet {
	return t.cur
}

// Previous returns the set recorded during the last tick.
func (t *Tracker) Previous() *PairSet {
	return t.prev
}

// Diff calls fn with PhaseBegin or PhaseContinue for each pair of the
// current generation and with PhaseEnd for each pair only present in the
// previous one.
func (t *Tracker) Diff(fn func(Pair, Phase)) {
	t.cur.Range(func(p Pair) bool {
		if t.prev.Has(p) {
			fn(p, PhaseContinue)
		} else {
			fn(p, PhaseBegin)
		}
		return true
	})
	t.prev.Range(func(p Pair) bool {
		if !t.cur.Has(p) {
			fn(p, PhaseEnd)
		}
		return true
	})
}

// Swap makes the current generation the previous one and hands out an
// empty set for the next tick.
func (t *Tracker) Swap() {
	t.prev, t.cur = t.cur, t.prev
	t.cur.Clear()
}

// Purge drops pairs that reference slot from both generations.
func (t *Tracker) Purge(slot int32) int {
	return t.prev.Purge(slot) + t.cur.Purge(slot)
}

// Relocate re-keys pairs of both generations from one slot to another.
func (t *Tracker) Relocate(from, to int32) {
	t.prev.Relocate(from, to)
	t.cur.Relocate(from, to)
}

// Reserve grows both generations to fit n pairs.
func (t *Tracker) Reserve(n int) bool {
	a := t.prev.Reserve(n)
	b := t.cur.Reserve(n)
	return a || b
}
