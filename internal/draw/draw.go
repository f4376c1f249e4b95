// Package draw rasterises planar shapes onto a half-block terminal canvas.
package draw

// Point is a position in canvas space. Y grows downward.
type Point struct {
	X, Y float64
}

// Half-block runes used by the canvas.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
