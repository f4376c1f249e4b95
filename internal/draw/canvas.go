package draw

import (
	"math"
	"slices"
	"strings"
)

// Canvas is a pixel buffer with twice the vertical resolution of the
// terminal, rendered with half-block runes. Drawing happens in logical
// coordinates that are scaled to the terminal size.
type Canvas struct {
	cols, rows int
	pixelRows  int
	pixels     []bool
	drawn      []rune // what the terminal shows per cell, 0 when unknown

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	offsetCol int
	offsetRow int

	scaled        []Point
	intersections []float64
	outline       []Point
}

// NewCanvas creates a canvas of cols x rows terminal cells showing a logical
// area of logicalWidth x logicalHeight.
func NewCanvas(cols, rows int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(cols, rows)
	return c
}

// Resize adapts the canvas to a new terminal size, keeping the logical area.
func (c *Canvas) Resize(cols, rows int) {
	cols, rows = max(cols, 1), max(rows, 1)
	if cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		c.pixelRows = rows * 2
		c.pixels = make([]bool, c.pixelRows*cols)
		c.drawn = make([]rune, rows*cols)
		c.ForceRedraw()
	}
	c.scaleX = float64(c.cols) / c.logicalWidth
	c.scaleY = float64(c.pixelRows) / c.logicalHeight
}

// SetOffset places the canvas at a 0-based terminal column and row.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol, c.offsetRow = col, row
}

func (c *Canvas) OffsetCol() int      { return c.offsetCol }
func (c *Canvas) OffsetRow() int      { return c.offsetRow }
func (c *Canvas) TerminalWidth() int  { return c.cols }
func (c *Canvas) TerminalHeight() int { return c.rows }

// Clear unsets every pixel.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render repaint every cell, blank ones
// included. Call it after the screen was cleared or overwritten.
func (c *Canvas) ForceRedraw() {
	for i := range c.drawn {
		c.drawn[i] = 0
	}
}

// MarkTextDirty records that n cells starting at the 1-based canvas cell
// (col, row) were overwritten by text, so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	if row < 1 || row > c.rows {
		return
	}
	for x := max(col, 1); x < col+n && x <= c.cols; x++ {
		c.drawn[(row-1)*c.cols+x-1] = 0
	}
}

// Lit reports whether the pixel at terminal column x and pixel row y is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || x >= c.cols || y < 0 || y >= c.pixelRows {
		return false
	}
	return c.pixels[y*c.cols+x]
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.pixelRows {
		c.pixels[y*c.cols+x] = true
	}
}

func (c *Canvas) toPixel(p Point) (int, int) {
	return int(math.Round(p.X * c.scaleX)), int(math.Round(p.Y * c.scaleY))
}

// Plot sets the pixel under a logical point.
func (c *Canvas) Plot(p Point) {
	c.setPixel(c.toPixel(p))
}

// DrawLine draws a Bresenham line between two logical points.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1, y1 := c.toPixel(p1)
	x2, y2 := c.toPixel(p2)

	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon outlines a closed polygon and optionally fills it.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	if len(points) < 3 {
		return
	}
	if filled {
		c.fillPolygon(points)
	}
	for i := range points {
		c.DrawLine(points[i], points[(i+1)%len(points)])
	}
}

// fillPolygon is an even-odd scanline fill done in pixel space.
func (c *Canvas) fillPolygon(points []Point) {
	c.scaled = c.scaled[:0]
	for _, p := range points {
		c.scaled = append(c.scaled, Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY})
	}

	minY, maxY := c.scaled[0].Y, c.scaled[0].Y
	for _, p := range c.scaled[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	n := len(c.scaled)
	for y := max(int(math.Floor(minY)), 0); y <= min(int(math.Ceil(maxY)), c.pixelRows-1); y++ {
		scanY := float64(y) + 0.5
		xs := c.intersections[:0]
		for i := 0; i < n; i++ {
			p1, p2 := c.scaled[i], c.scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i])); x <= int(math.Floor(xs[i+1])); x++ {
				c.setPixel(x, y)
			}
		}
		c.intersections = xs
	}
}

// Render writes the cells that changed since the previous Render.
func (c *Canvas) Render(cw *ChunkWriter) {
	for row := 0; row < c.rows; row++ {
		top := c.pixels[row*2*c.cols:]
		bottom := c.pixels[(row*2+1)*c.cols:]
		for col := 0; col < c.cols; col++ {
			ch := ' '
			switch {
			case top[col] && bottom[col]:
				ch = BlockFull
			case top[col]:
				ch = BlockUpperHalf
			case bottom[col]:
				ch = BlockLowerHalf
			}
			i := row*c.cols + col
			if c.drawn[i] == ch {
				continue
			}
			c.drawn[i] = ch
			cw.MoveCursor(col+1, row+1)
			cw.WriteRune(ch)
		}
	}
}

// RenderBorder frames the canvas when it is smaller than the terminal.
// Coordinates are absolute, so it writes through the raw buffer.
func (c *Canvas) RenderBorder(cw *ChunkWriter) {
	sides := c.offsetCol >= 1
	caps := c.offsetRow >= 1
	if !sides && !caps {
		return
	}

	left, right := c.offsetCol, c.offsetCol+c.cols+1
	top, bottom := c.offsetRow, c.offsetRow+c.rows+1
	line := strings.Repeat("─", c.cols)

	if caps {
		if sides {
			cw.WriteAbsolute(left, top, "┌"+line+"┐")
			cw.WriteAbsolute(left, bottom, "└"+line+"┘")
		} else {
			cw.WriteAbsolute(left+1, top, line)
			cw.WriteAbsolute(left+1, bottom, line)
		}
	}
	if sides {
		for row := top + 1; row < bottom; row++ {
			cw.WriteAbsolute(left, row, "│")
			cw.WriteAbsolute(right, row, "│")
		}
	}
}

// LogicalToTerminal converts a logical point to a 1-based canvas cell,
// used to place text labels next to drawn shapes.
func (c *Canvas) LogicalToTerminal(p Point) (col, row int) {
	x, y := c.toPixel(p)
	return x + 1, y/2 + 1
}
