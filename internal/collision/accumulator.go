package collision

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// Accumulator holds the per-slot displacement produced during a tick.
// Add may be called concurrently for the same slot; contributions are summed
// with a compare-and-swap loop on the float bits and never overwritten.
type Accumulator struct {
	x []uint64
	z []uint64
}

func (a *Accumulator) len() int {
	return len(a.x)
}

func (a *Accumulator) grow(capacity int) {
	a.x = growSlice(a.x, capacity)
	a.z = growSlice(a.z, capacity)
}

func (a *Accumulator) push() {
	a.x = append(a.x, 0)
	a.z = append(a.z, 0)
}

func (a *Accumulator) move(dst, src int) {
	a.x[dst] = a.x[src]
	a.z[dst] = a.z[src]
}

func (a *Accumulator) pop() {
	n := len(a.x) - 1
	a.x = a.x[:n]
	a.z = a.z[:n]
}

// Add accumulates v's planar components into slot.
func (a *Accumulator) Add(slot int32, v mgl64.Vec3) {
	addFloat(&a.x[slot], v[0])
	addFloat(&a.z[slot], v[2])
}

// Load returns the accumulated displacement of slot.
func (a *Accumulator) Load(slot int32) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Float64frombits(atomic.LoadUint64(&a.x[slot])),
		0,
		math.Float64frombits(atomic.LoadUint64(&a.z[slot])),
	}
}

// Take returns the accumulated displacement of slot and resets it.
func (a *Accumulator) Take(slot int32) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Float64frombits(atomic.SwapUint64(&a.x[slot], 0)),
		0,
		math.Float64frombits(atomic.SwapUint64(&a.z[slot], 0)),
	}
}

func addFloat(addr *uint64, d float64) {
	if d == 0 {
		return
	}
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64bits(math.Float64frombits(old) + d)
		if atomic.CompareAndSwapUint64(addr, old, next) {
			return
		}
	}
}
