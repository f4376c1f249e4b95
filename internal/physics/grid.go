package physics

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCellSize is one world unit.
const DefaultCellSize = 1.0

const defaultGridShards = 64

// Cell is an integer grid coordinate on the XZ plane.
type Cell struct {
	X, Z int32
}

// SpatialGrid is an unbounded uniform grid for broad-phase collision
// detection. Each cell maps to the slots inserted into it during the
// current rebuild.
//
// Cells are spread over mutex-guarded shards so Insert may be called from
// many goroutines at once. QueryAround takes no locks and must only run once
// all inserts for the tick have completed.
//
// Cell size must be >= the largest bounding radius of any inserted shape so
// that every possible contact is found within the 3x3 neighbourhood.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	shards      []gridShard
	mask        uint64
	capacity    int
}

// gridShard stores the cells that hash to it. Cell slices are reused between
// rebuilds (reset to [:0]) to avoid allocations.
type gridShard struct {
	mu    sync.Mutex
	cells map[Cell][]int32
}

// NewSpatialGrid creates a grid with the given cell size, shard count
// (rounded up to a power of two) and initial slot capacity.
func NewSpatialGrid(cellSize float64, shards, capacity int) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	if shards <= 0 {
		shards = defaultGridShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	if capacity < n {
		capacity = n
	}

	g := &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		shards:      make([]gridShard, n),
		mask:        uint64(n - 1),
		capacity:    capacity,
	}
	for i := range g.shards {
		g.shards[i].cells = make(map[Cell][]int32, capacity/n)
	}
	return g
}

// CellSize returns the edge length of one cell.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// Capacity returns the slot count the shard maps are sized for.
func (g *SpatialGrid) Capacity() int {
	return g.capacity
}

// CellOf floors each planar coordinate of pos divided by the cell size.
func (g *SpatialGrid) CellOf(pos mgl64.Vec3) Cell {
	return Cell{
		X: int32(math.Floor(pos[0] * g.invCellSize)),
		Z: int32(math.Floor(pos[2] * g.invCellSize)),
	}
}

// Reserve doubles the grid capacity until it fits n slots. It reports whether
// the shard maps were reallocated. Must not be called during a rebuild.
func (g *SpatialGrid) Reserve(n int) bool {
	if n <= g.capacity {
		return false
	}
	for g.capacity < n {
		g.capacity *= 2
	}
	per := g.capacity / len(g.shards)
	for i := range g.shards {
		old := g.shards[i].cells
		cells := make(map[Cell][]int32, per)
		for c, items := range old {
			cells[c] = items
		}
		g.shards[i].cells = cells
	}
	return true
}

// Clear removes all items from the grid without deallocating cell memory.
// Cells that stayed empty since the previous Clear are dropped so the maps
// do not accumulate every cell ever visited.
func (g *SpatialGrid) Clear() {
	for i := range g.shards {
		sh := &g.shards[i]
		sh.mu.Lock()
		for c, items := range sh.cells {
			if len(items) == 0 {
				delete(sh.cells, c)
				continue
			}
			sh.cells[c] = items[:0]
		}
		sh.mu.Unlock()
	}
}

// Insert adds a slot to the given cell. Safe for concurrent use.
func (g *SpatialGrid) Insert(c Cell, slot int32) {
	sh := g.shard(c)
	sh.mu.Lock()
	sh.cells[c] = append(sh.cells[c], slot)
	sh.mu.Unlock()
}

// Len returns the number of non-empty cells.
func (g *SpatialGrid) Len() int {
	n := 0
	for i := range g.shards {
		sh := &g.shards[i]
		sh.mu.Lock()
		for _, items := range sh.cells {
			if len(items) > 0 {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

// Items returns the slots registered in a cell. The slice is only valid
// until the next Clear.
func (g *SpatialGrid) Items(c Cell) []int32 {
	return g.shard(c).cells[c]
}

// QueryAround calls fn for each slot in the 3x3 cell neighbourhood around c.
// If fn returns true, iteration stops early (useful for "find first" queries).
// Iteration order is unspecified.
func (g *SpatialGrid) QueryAround(c Cell, fn func(slot int32) bool) {
	for dz := int32(-1); dz <= 1; dz++ {
		for dx := int32(-1); dx <= 1; dx++ {
			key := Cell{X: c.X + dx, Z: c.Z + dz}
			for _, slot := range g.shard(key).cells[key] {
				if fn(slot) {
					return
				}
			}
		}
	}
}

func (g *SpatialGrid) shard(c Cell) *gridShard {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.Z))
	return &g.shards[xxhash.Sum64(buf[:])&g.mask]
}
