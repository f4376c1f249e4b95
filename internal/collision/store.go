package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/swarm/internal/physics"
)

const minStoreCapacity = 16

// Store keeps shape attributes in parallel slices indexed by slot.
// Slots are dense in [0, Len()); removing a slot moves the last live slot
// into the hole and updates that shape's identity mapping.
//
// Store is not safe for concurrent mutation. During a tick the attribute
// slices are only read, except the displacement accumulator.
type Store struct {
	ids              []ID
	positions        []mgl64.Vec3
	velocities       []mgl64.Vec3
	shapes           []physics.Shape
	layers           []physics.Layer
	collisionMasks   []physics.Layer
	interactionMasks []physics.Layer
	triggers         []bool
	kinematics       []bool
	priorities       []int
	deltas           Accumulator

	slotOf   map[ID]int32
	nextID   ID
	capacity int
}

// NewStore creates a store with room for capacity shapes.
func NewStore(capacity int) *Store {
	if capacity < minStoreCapacity {
		capacity = minStoreCapacity
	}
	s := &Store{
		slotOf: make(map[ID]int32, capacity),
	}
	s.reserve(capacity)
	return s
}

// Len returns the number of live shapes.
func (s *Store) Len() int {
	return len(s.ids)
}

// Capacity returns the number of shapes that fit before the next doubling.
func (s *Store) Capacity() int {
	return s.capacity
}

// Add appends a shape to every attribute slice and returns its identity and
// slot. grown reports whether the backing slices had to double.
func (s *Store) Add(d Descriptor) (id ID, slot int32, grown bool) {
	if len(s.ids) == s.capacity {
		s.reserve(s.capacity * 2)
		grown = true
	}

	s.nextID++
	id = s.nextID
	slot = int32(len(s.ids))

	s.ids = append(s.ids, id)
	s.positions = append(s.positions, physics.Flatten(d.Position))
	s.velocities = append(s.velocities, physics.Flatten(d.Velocity))
	s.shapes = append(s.shapes, d.Shape)
	s.layers = append(s.layers, d.Layer)
	s.collisionMasks = append(s.collisionMasks, d.CollisionMask)
	s.interactionMasks = append(s.interactionMasks, d.InteractionMask)
	s.triggers = append(s.triggers, d.Trigger)
	s.kinematics = append(s.kinematics, d.Kinematic)
	s.priorities = append(s.priorities, d.Priority)
	s.deltas.push()
	s.slotOf[id] = slot

	return id, slot, grown
}

// Slot returns the current slot of id.
func (s *Store) Slot(id ID) (int32, bool) {
	slot, ok := s.slotOf[id]
	return slot, ok
}

// IDAt returns the identity living in slot.
func (s *Store) IDAt(slot int32) ID {
	return s.ids[slot]
}

// Position returns the position of slot.
func (s *Store) Position(slot int32) mgl64.Vec3 {
	return s.positions[slot]
}

// State copies the attributes of slot.
func (s *Store) State(slot int32) ShapeState {
	return ShapeState{
		ID:        s.ids[slot],
		Position:  s.positions[slot],
		Velocity:  s.velocities[slot],
		Shape:     s.shapes[slot],
		Layer:     s.layers[slot],
		Trigger:   s.triggers[slot],
		Kinematic: s.kinematics[slot],
		Priority:  s.priorities[slot],
	}
}

// Descriptor returns the current attributes of id.
func (s *Store) Descriptor(id ID) (Descriptor, error) {
	slot, ok := s.slotOf[id]
	if !ok {
		return Descriptor{}, ErrUnknownID
	}
	return Descriptor{
		Position:        s.positions[slot],
		Velocity:        s.velocities[slot],
		Shape:           s.shapes[slot],
		Layer:           s.layers[slot],
		CollisionMask:   s.collisionMasks[slot],
		InteractionMask: s.interactionMasks[slot],
		Trigger:         s.triggers[slot],
		Kinematic:       s.kinematics[slot],
		Priority:        s.priorities[slot],
	}, nil
}

func (s *Store) SetPosition(id ID, p mgl64.Vec3) error {
	slot, ok := s.slotOf[id]
	if !ok {
		return ErrUnknownID
	}
	s.positions[slot] = physics.Flatten(p)
	return nil
}

func (s *Store) SetVelocity(id ID, v mgl64.Vec3) error {
	slot, ok := s.slotOf[id]
	if !ok {
		return ErrUnknownID
	}
	s.velocities[slot] = physics.Flatten(v)
	return nil
}

func (s *Store) SetPriority(id ID, priority int) error {
	slot, ok := s.slotOf[id]
	if !ok {
		return ErrUnknownID
	}
	s.priorities[slot] = priority
	return nil
}

func (s *Store) SetTrigger(id ID, trigger bool) error {
	slot, ok := s.slotOf[id]
	if !ok {
		return ErrUnknownID
	}
	s.triggers[slot] = trigger
	return nil
}

func (s *Store) SetKinematic(id ID, kinematic bool) error {
	slot, ok := s.slotOf[id]
	if !ok {
		return ErrUnknownID
	}
	s.kinematics[slot] = kinematic
	return nil
}

// SetLayers replaces the layer and both masks of id.
func (s *Store) SetLayers(id ID, layer, collisionMask, interactionMask physics.Layer) error {
	slot, ok := s.slotOf[id]
	if !ok {
		return ErrUnknownID
	}
	s.layers[slot] = layer
	s.collisionMasks[slot] = collisionMask
	s.interactionMasks[slot] = interactionMask
	return nil
}

// swapRemove deletes slot by moving the last live slot into it. It returns
// the slot that was moved (the old last index) and whether a move happened.
func (s *Store) swapRemove(slot int32) (moved int32, ok bool) {
	last := int32(len(s.ids) - 1)
	delete(s.slotOf, s.ids[slot])

	if slot != last {
		s.ids[slot] = s.ids[last]
		s.positions[slot] = s.positions[last]
		s.velocities[slot] = s.velocities[last]
		s.shapes[slot] = s.shapes[last]
		s.layers[slot] = s.layers[last]
		s.collisionMasks[slot] = s.collisionMasks[last]
		s.interactionMasks[slot] = s.interactionMasks[last]
		s.triggers[slot] = s.triggers[last]
		s.kinematics[slot] = s.kinematics[last]
		s.priorities[slot] = s.priorities[last]
		s.deltas.move(int(slot), int(last))
		s.slotOf[s.ids[slot]] = slot
		moved, ok = last, true
	}

	s.ids = s.ids[:last]
	s.positions = s.positions[:last]
	s.velocities = s.velocities[:last]
	s.shapes = s.shapes[:last]
	s.layers = s.layers[:last]
	s.collisionMasks = s.collisionMasks[:last]
	s.interactionMasks = s.interactionMasks[:last]
	s.triggers = s.triggers[:last]
	s.kinematics = s.kinematics[:last]
	s.priorities = s.priorities[:last]
	s.deltas.pop()

	return moved, ok
}

func (s *Store) reserve(capacity int) {
	s.ids = growSlice(s.ids, capacity)
	s.positions = growSlice(s.positions, capacity)
	s.velocities = growSlice(s.velocities, capacity)
	s.shapes = growSlice(s.shapes, capacity)
	s.layers = growSlice(s.layers, capacity)
	s.collisionMasks = growSlice(s.collisionMasks, capacity)
	s.interactionMasks = growSlice(s.interactionMasks, capacity)
	s.triggers = growSlice(s.triggers, capacity)
	s.kinematics = growSlice(s.kinematics, capacity)
	s.priorities = growSlice(s.priorities, capacity)
	s.deltas.grow(capacity)
	s.capacity = capacity
}

// growSlice returns s with at least the given capacity, keeping its contents.
func growSlice[T any](s []T, capacity int) []T {
	if cap(s) >= capacity {
		return s
	}
	out := make([]T, len(s), capacity)
	copy(out, s)
	return out
}
