package collision

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/swarm/internal/config"
	"github.com/tomz197/swarm/internal/physics"
)

// minChunk keeps tiny worlds from paying goroutine overhead per slot.
const minChunk = 128

// World owns the shape store, the spatial grid and the pair tracker, and
// runs the per-tick pipeline:
//
//	integrate -> rebuild index -> narrow phase -> apply deltas ->
//	diff pairs -> dispatch -> deferred removals
//
// All methods are safe for concurrent use. Tick calls listeners without
// holding the world lock, so listeners may call back into the World; they
// must not call Tick.
type World struct {
	tickMu sync.Mutex
	mu     sync.Mutex

	store     *Store
	grid      *physics.SpatialGrid
	tracker   *Tracker
	resolver  Resolver
	listeners *Listeners

	removals   []ID
	removalSet map[ID]struct{}
	events     []Event

	workers       int
	pairsPerShape int
	ticks         uint64
	log           *zap.Logger
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithWorkers overrides the number of parallel workers per stage.
func WithWorkers(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.workers = n
		}
	}
}

// Stats summarises the world after the last tick.
type Stats struct {
	Shapes   int
	Capacity int
	Pairs    int
	Cells    int
	Pending  int
	Ticks    uint64
}

// NewWorld creates an empty world.
func NewWorld(cfg config.Engine, opts ...Option) *World {
	def := config.DefaultEngine()
	if cfg.CellSize <= 0 {
		cfg.CellSize = def.CellSize
	}
	if cfg.Softening <= 0 {
		cfg.Softening = def.Softening
	}
	if cfg.PriorityFactor <= 0 {
		cfg.PriorityFactor = def.PriorityFactor
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.Shards <= 0 {
		cfg.Shards = def.Shards
	}
	if cfg.PairsPerShape <= 0 {
		cfg.PairsPerShape = def.PairsPerShape
	}

	store := NewStore(cfg.Capacity)
	w := &World{
		store:         store,
		grid:          physics.NewSpatialGrid(cfg.CellSize, cfg.Shards, store.Capacity()),
		tracker:       NewTracker(cfg.Shards, store.Capacity()*cfg.PairsPerShape),
		listeners:     NewListeners(),
		removalSet:    make(map[ID]struct{}),
		workers:       cfg.Workers,
		pairsPerShape: cfg.PairsPerShape,
		log:           zap.NewNop(),
	}
	w.resolver = Resolver{
		store:          w.store,
		grid:           w.grid,
		softening:      cfg.Softening,
		priorityFactor: cfg.PriorityFactor,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Register adds a shape and returns its identity. The shape takes part in
// the next tick.
func (w *World) Register(d Descriptor) ID {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, _, grown := w.store.Add(d)
	if grown {
		capacity := w.store.Capacity()
		w.grid.Reserve(capacity)
		w.tracker.Reserve(capacity * w.pairsPerShape)
		w.log.Debug("grew collision storage", zap.Int("capacity", capacity))
	}
	if r := d.Shape.BoundingRadius(); r > w.grid.CellSize() {
		w.log.Debug("shape larger than grid cell",
			zap.Uint64("id", uint64(id)),
			zap.Float64("radius", r),
			zap.Float64("cell_size", w.grid.CellSize()))
	}
	return id
}

// Unregister queues id for removal at the end of the current or next tick.
// Unknown or already queued identities are reported with ErrUnknownID.
func (w *World) Unregister(id ID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.store.Slot(id); !ok {
		return w.unknown("unregister", id)
	}
	if _, queued := w.removalSet[id]; queued {
		return w.unknown("unregister", id)
	}
	w.removalSet[id] = struct{}{}
	w.removals = append(w.removals, id)
	return nil
}

func (w *World) SetVelocity(id ID, v mgl64.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.check("set_velocity", id, w.store.SetVelocity(id, v))
}

func (w *World) SetPosition(id ID, p mgl64.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.check("set_position", id, w.store.SetPosition(id, p))
}

func (w *World) SetPriority(id ID, priority int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.check("set_priority", id, w.store.SetPriority(id, priority))
}

func (w *World) SetTrigger(id ID, trigger bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.check("set_trigger", id, w.store.SetTrigger(id, trigger))
}

func (w *World) SetKinematic(id ID, kinematic bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.check("set_kinematic", id, w.store.SetKinematic(id, kinematic))
}

func (w *World) SetLayers(id ID, layer, collisionMask, interactionMask physics.Layer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.check("set_layers", id, w.store.SetLayers(id, layer, collisionMask, interactionMask))
}

// GetPosition returns the current position of id.
func (w *World) GetPosition(id ID) (mgl64.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	slot, ok := w.store.Slot(id)
	if !ok {
		w.unknown("get_position", id)
		return mgl64.Vec3{}, false
	}
	return w.store.Position(slot), true
}

// Descriptor returns the current attributes of id.
func (w *World) Descriptor(id ID) (Descriptor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.store.Descriptor(id)
	return d, w.check("descriptor", id, err)
}

// Len returns the number of live shapes, including ones queued for removal.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Len()
}

// Stats returns counters describing the world.
func (w *World) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Shapes:   w.store.Len(),
		Capacity: w.store.Capacity(),
		Pairs:    w.tracker.Previous().Len(),
		Cells:    w.grid.Len(),
		Pending:  len(w.removals),
		Ticks:    w.ticks,
	}
}

// Snapshot appends a copy of every shape's state to dst.
func (w *World) Snapshot(dst []ShapeState) []ShapeState {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := int32(w.store.Len())
	for slot := int32(0); slot < n; slot++ {
		dst = append(dst, w.store.State(slot))
	}
	return dst
}

// Subscribe registers l for overlap events addressed to id.
func (w *World) Subscribe(id ID, l Listener) Subscription {
	return w.listeners.Subscribe(id, l)
}

// NewGroup creates a listener group bound to this world.
func (w *World) NewGroup(l Listener) *Group {
	return NewGroup(w.listeners, l)
}

// Tick runs one full pipeline. When it returns, all corrections are applied,
// all events are dispatched and queued removals are done.
func (w *World) Tick() {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	w.mu.Lock()
	n := w.store.Len()
	w.integrate(n)
	w.rebuildIndex(n)
	w.narrowPhase(n)
	w.applyDeltas(n)
	events := w.diffPairs(w.events[:0])
	w.ticks++
	w.mu.Unlock()

	for _, ev := range events {
		w.listeners.Notify(ev)
	}
	w.events = events[:0]

	w.mu.Lock()
	w.tracker.Swap()
	w.processRemovals()
	w.mu.Unlock()
}

func (w *World) integrate(n int) {
	s := w.store
	w.parallel(n, func(slot int32) {
		s.positions[slot] = physics.Flatten(s.positions[slot].Add(s.velocities[slot]))
	})
}

func (w *World) rebuildIndex(n int) {
	w.grid.Clear()
	s := w.store
	w.parallel(n, func(slot int32) {
		w.grid.Insert(w.grid.CellOf(s.positions[slot]), slot)
	})
}

func (w *World) narrowPhase(n int) {
	w.resolver.pairs = w.tracker.Current()
	w.parallel(n, w.resolver.resolveSlot)
}

func (w *World) applyDeltas(n int) {
	s := w.store
	w.parallel(n, func(slot int32) {
		s.positions[slot] = s.positions[slot].Add(s.deltas.Take(slot))
	})
}

// diffPairs turns the pair generations into events, both members of a pair
// back to back.
func (w *World) diffPairs(dst []Event) []Event {
	ids := w.store.ids
	w.tracker.Diff(func(p Pair, phase Phase) {
		a, b := ids[p.A], ids[p.B]
		dst = append(dst,
			Event{Phase: phase, Self: a, Other: b},
			Event{Phase: phase, Self: b, Other: a},
		)
	})
	return dst
}

func (w *World) processRemovals() {
	for _, id := range w.removals {
		slot, ok := w.store.Slot(id)
		if !ok {
			w.unknown("remove", id)
			continue
		}
		purged := w.tracker.Purge(slot)
		if moved, ok := w.store.swapRemove(slot); ok {
			w.tracker.Relocate(moved, slot)
		}
		w.listeners.Forget(id)
		w.log.Debug("removed shape",
			zap.Uint64("id", uint64(id)),
			zap.Int32("slot", slot),
			zap.Int("purged_pairs", purged))
	}
	w.removals = w.removals[:0]
	clear(w.removalSet)
}

// parallel splits [0, n) into contiguous chunks, runs fn for every slot and
// waits for all chunks.
func (w *World) parallel(n int, fn func(slot int32)) {
	if n == 0 {
		return
	}
	chunk := (n + w.workers - 1) / w.workers
	if chunk < minChunk {
		chunk = minChunk
	}
	if chunk >= n {
		for i := 0; i < n; i++ {
			fn(int32(i))
		}
		return
	}

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				fn(int32(i))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (w *World) check(op string, id ID, err error) error {
	if err == nil {
		return nil
	}
	return w.unknown(op, id)
}

func (w *World) unknown(op string, id ID) error {
	w.log.Debug("unknown identity", zap.String("op", op), zap.Uint64("id", uint64(id)))
	return ErrUnknownID
}
