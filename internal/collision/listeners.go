package collision

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Listener receives overlap lifecycle notifications for one shape.
type Listener interface {
	OnOverlapBegin(self, other ID)
	OnOverlapContinue(self, other ID)
	OnOverlapEnd(self, other ID)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Begin    func(self, other ID)
	Continue func(self, other ID)
	End      func(self, other ID)
}

func (f ListenerFuncs) OnOverlapBegin(self, other ID) {
	if f.Begin != nil {
		f.Begin(self, other)
	}
}

func (f ListenerFuncs) OnOverlapContinue(self, other ID) {
	if f.Continue != nil {
		f.Continue(self, other)
	}
}

func (f ListenerFuncs) OnOverlapEnd(self, other ID) {
	if f.End != nil {
		f.End(self, other)
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	ID     uuid.UUID
	cancel func()
}

// Cancel stops delivery to the subscribed listener. Safe to call twice.
func (s Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Listeners is the subscription table keyed by shape identity.
type Listeners struct {
	mu   sync.RWMutex
	byID map[ID]map[uuid.UUID]Listener
}

// NewListeners creates an empty table.
func NewListeners() *Listeners {
	return &Listeners{byID: make(map[ID]map[uuid.UUID]Listener)}
}

// Subscribe registers l for events addressed to id.
func (t *Listeners) Subscribe(id ID, l Listener) Subscription {
	key := uuid.New()

	t.mu.Lock()
	subs, ok := t.byID[id]
	if !ok {
		subs = make(map[uuid.UUID]Listener, 1)
		t.byID[id] = subs
	}
	subs[key] = l
	t.mu.Unlock()

	return Subscription{
		ID: key,
		cancel: func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if subs, ok := t.byID[id]; ok {
				delete(subs, key)
				if len(subs) == 0 {
					delete(t.byID, id)
				}
			}
		},
	}
}

// Forget drops every listener of id.
func (t *Listeners) Forget(id ID) {
	t.mu.Lock()
	delete(t.byID, id)
	t.mu.Unlock()
}

// Count returns how many listeners are subscribed to id.
func (t *Listeners) Count(id ID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID[id])
}

// Notify delivers ev to every listener of ev.Self. The table lock is not
// held while listeners run, so they may subscribe or cancel.
func (t *Listeners) Notify(ev Event) {
	t.mu.RLock()
	subs := t.byID[ev.Self]
	if len(subs) == 0 {
		t.mu.RUnlock()
		return
	}
	targets := make([]Listener, 0, len(subs))
	for _, l := range subs {
		targets = append(targets, l)
	}
	t.mu.RUnlock()

	for _, l := range targets {
		switch ev.Phase {
		case PhaseBegin:
			l.OnOverlapBegin(ev.Self, ev.Other)
		case PhaseContinue:
			l.OnOverlapContinue(ev.Self, ev.Other)
		case PhaseEnd:
			l.OnOverlapEnd(ev.Self, ev.Other)
		}
	}
}

// Group forwards the events of several shapes to one listener, the way a
// compound body owns several colliders. Overlaps between two members of the
// same group are not forwarded.
type Group struct {
	mu       sync.Mutex
	listener Listener
	members  map[ID]Subscription
	table    *Listeners
}

// NewGroup creates a group delivering to l through the given table.
func NewGroup(table *Listeners, l Listener) *Group {
	return &Group{
		listener: l,
		members:  make(map[ID]Subscription),
		table:    table,
	}
}

// Add makes id a member of the group.
func (g *Group) Add(id ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.members[id]; ok {
		return
	}
	g.members[id] = g.table.Subscribe(id, ListenerFuncs{
		Begin:    g.forward(PhaseBegin),
		Continue: g.forward(PhaseContinue),
		End:      g.forward(PhaseEnd),
	})
}

// Remove drops id from the group.
func (g *Group) Remove(id ID) {
	g.mu.Lock()
	sub, ok := g.members[id]
	delete(g.members, id)
	g.mu.Unlock()
	if ok {
		sub.Cancel()
	}
}

// Has reports whether id belongs to the group.
func (g *Group) Has(id ID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.members[id]
	return ok
}

// Close cancels every member subscription.
func (g *Group) Close() {
	g.mu.Lock()
	members := g.members
	g.members = make(map[ID]Subscription)
	g.mu.Unlock()
	for _, sub := range members {
		sub.Cancel()
	}
}

func (g *Group) forward(phase Phase) func(self, other ID) {
	return func(self, other ID) {
		if g.Has(other) {
			return
		}
		switch phase {
		case PhaseBegin:
			g.listener.OnOverlapBegin(self, other)
		case PhaseContinue:
			g.listener.OnOverlapContinue(self, other)
		case PhaseEnd:
			g.listener.OnOverlapEnd(self, other)
		}
	}
}

// Queue is a Listener that buffers events on a channel for a subscriber
// that drains them once per tick. Events that do not fit are dropped and
// counted.
type Queue struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewQueue creates a queue holding up to size events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{ch: make(chan Event, size)}
}

// C returns the receive side of the queue.
func (q *Queue) C() <-chan Event {
	return q.ch
}

// Dropped returns how many events did not fit in the buffer.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Drain returns every buffered event without blocking.
func (q *Queue) Drain(dst []Event) []Event {
	for {
		select {
		case ev := <-q.ch:
			dst = append(dst, ev)
		default:
			return dst
		}
	}
}

func (q *Queue) push(ev Event) {
	select {
	case q.ch <- ev:
	default:
		q.dropped.Add(1)
	}
}

func (q *Queue) OnOverlapBegin(self, other ID) {
	q.push(Event{Phase: PhaseBegin, Self: self, Other: other})
}

func (q *Queue) OnOverlapContinue(self, other ID) {
	q.push(Event{Phase: PhaseContinue, Self: self, Other: other})
}

func (q *Queue) OnOverlapEnd(self, other ID) {
	q.push(Event{Phase: PhaseEnd, Self: self, Other: other})
}
