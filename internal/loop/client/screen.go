package client

import (
	"fmt"
	"math"
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/loop/server"
	"github.com/tomz197/swarm/internal/object"
)

// drawFrame draws the world around the camera and the overlay for the
// current phase.
func (c *Client) drawFrame() error {
	if c.state.Phase != c.state.prevPhase || c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevPhase = c.state.Phase
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	snapshot := c.server.GetSnapshot()

	for _, st := range snapshot.Shapes {
		object.DrawState(c.canvas, c.state.Camera, st)
	}

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawLabels(snapshot)
	c.drawUI(snapshot)

	return c.chunkWriter.Flush()
}

func (c *Client) drawUI(snapshot *server.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	switch {
	case c.state.Phase == PhaseShutdown:
		c.drawShutdownScreen(centerX, centerY)
	case c.state.isInactive:
		c.drawInactivityScreen(centerX, centerY)
	case c.state.Phase == PhaseStart:
		c.drawStartScreen(centerX, centerY)
	case c.state.Phase == PhasePlaying:
		c.drawPlayingHUD(termWidth, termHeight, snapshot)
	}
}

func (c *Client) drawInactivityScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "INACTIVITY WARNING"
	cw.WriteAt(centerX-len(title)/2, centerY-2, title)

	msg := fmt.Sprintf("You will be disconnected in %d seconds.",
		int(inactivityDisconnectSecs-time.Since(c.lastInput).Seconds()))
	cw.WriteAt(centerX-len(msg)/2, centerY, msg)

	hint := "Press any key to continue"
	cw.WriteAt(centerX-len(hint)/2, centerY+2, hint)
}

func (c *Client) drawStartScreen(centerX, centerY int) {
	titleArt := []string{
		`  _____      ___   ___ __  __  `,
		` / __\ \    / /_\ | _ \  \/  | `,
		` \__ \\ \/\/ / _ \|   / |\/| | `,
		` |___/ \_/\_/_/ \_\_|_\_|  |_| `,
		`                               `,
	}
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	cw := c.chunkWriter
	titleStartY := centerY - 7
	for i, line := range titleArt {
		cw.WriteAt(centerX-titleWidth/2, titleStartY+i, line)
	}

	subtitle := "~ Outrun the swarm ~"
	cw.WriteAt(centerX-len(subtitle)/2, titleStartY+len(titleArt)+1, subtitle)

	controlsY := titleStartY + len(titleArt) + 3
	header := "Controls"
	cw.WriteAt(centerX-len(header)/2, controlsY, header)

	controlLines := []string{
		"WASD / Arrows . . Move",
		"ENTER  . . . . Respawn",
		"Q  . . . . . . .  Quit",
	}
	for i, line := range controlLines {
		cw.WriteAt(centerX-len(line)/2, controlsY+1+i, line)
	}

	if time.Now().UnixMilli()/600%2 == 0 {
		prompt := ">>  Press SPACE to Start  <<"
		cw.WriteAt(centerX-len(prompt)/2, controlsY+len(controlLines)+2, prompt)
	}
}

// drawPlayingHUD writes fixed-width fields so shrinking values leave no
// residue, since the screen is not cleared every frame.
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snapshot *server.Snapshot) {
	cw := c.chunkWriter
	stats := snapshot.Stats

	cw.WriteAt(2, 1, fmt.Sprintf("Shapes: %-6d Pairs: %-6d", stats.Shapes, stats.Pairs))

	clientsText := fmt.Sprintf("Clients: %-3d", snapshot.Clients)
	cw.WriteAt(termWidth-len(clientsText)-1, 1, clientsText)

	c.drawMinimap(termWidth, termHeight, snapshot)

	pos := c.state.Camera.Center
	cw.WriteAt(2, termHeight, fmt.Sprintf("X:%-7.1f Z:%-7.1f", pos[0], pos[2]))

	touchingText := fmt.Sprintf("Touching: %-3d", c.state.Touching)
	cw.WriteAt(termWidth-len(touchingText)-1, termHeight, touchingText)
}

// drawMinimap shows every shape in the snapshot scaled into a small box,
// with the local player marked.
func (c *Client) drawMinimap(termWidth, termHeight int, snapshot *server.Snapshot) {
	startCol := termWidth - minimapWidth - 3
	startRow := 3
	if startCol < 1 || startRow+minimapHeight+1 > termHeight || len(snapshot.Shapes) == 0 {
		return
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, st := range snapshot.Shapes {
		minX, maxX = math.Min(minX, st.Position[0]), math.Max(maxX, st.Position[0])
		minZ, maxZ = math.Min(minZ, st.Position[2]), math.Max(maxZ, st.Position[2])
	}
	spanX := math.Max(maxX-minX, 1)
	spanZ := math.Max(maxZ-minZ, 1)

	cell := func(x, z float64) (int, int) {
		col := int((x - minX) / spanX * (minimapWidth - 1))
		sub := int((maxZ - z) / spanZ * (minimapSubRows - 1))
		return col, sub
	}

	grid := &c.state.minimapGrid
	*grid = [minimapSubRows][minimapWidth]byte{}
	for _, st := range snapshot.Shapes {
		col, sub := cell(st.Position[0], st.Position[2])
		grid[sub][col] = 1
	}
	if p, ok := snapshot.Player(c.handle.ID); ok {
		col, sub := cell(p.Position[0], p.Position[2])
		grid[sub][col] = 2
	}

	cw := c.chunkWriter
	line := make([]rune, minimapWidth)
	border := make([]rune, minimapWidth)
	for i := range border {
		border[i] = '─'
	}
	cw.WriteAt(startCol, startRow, "┌"+string(border)+"┐")
	for row := 0; row < minimapHeight; row++ {
		for col := range line {
			top, bottom := grid[row*2][col], grid[row*2+1][col]
			switch {
			case top == 2 || bottom == 2:
				line[col] = '@'
			case top != 0 && bottom != 0:
				line[col] = draw.BlockFull
			case top != 0:
				line[col] = draw.BlockUpperHalf
			case bottom != 0:
				line[col] = draw.BlockLowerHalf
			default:
				line[col] = ' '
			}
		}
		cw.WriteAt(startCol, startRow+1+row, "│"+string(line)+"│")
	}
	cw.WriteAt(startCol, startRow+1+minimapHeight, "└"+string(border)+"┘")

	for row := startRow; row <= startRow+1+minimapHeight; row++ {
		c.canvas.MarkTextDirty(startCol, row, minimapWidth+2)
	}
}

func (c *Client) drawShutdownScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "SERVER SHUTTING DOWN"
	cw.WriteAt(centerX-len(title)/2, centerY-3, title)

	msg := "Please reconnect in a moment."
	cw.WriteAt(centerX-len(msg)/2, centerY-1, msg)

	countdown := fmt.Sprintf("Disconnecting in %d seconds...", int(c.state.shutdownTimer)+1)
	cw.WriteAt(centerX-len(countdown)/2, centerY+1, countdown)

	hint := "Press Q to disconnect now"
	cw.WriteAt(centerX-len(hint)/2, centerY+3, hint)
}

// drawLabels writes other players' names above them and the occupant
// count of every visible sensor. The cells are marked dirty so the canvas
// repaints them once the label moves.
func (c *Client) drawLabels(snapshot *server.Snapshot) {
	if c.state.Phase != PhasePlaying {
		return
	}
	v := c.state.Camera
	for _, p := range snapshot.Players {
		if p.ClientID == c.handle.ID || p.Username == "" || !v.Visible(p.Position, object.PlayerRadius) {
			continue
		}
		at := v.ToCanvas(p.Position)
		at.Y -= object.PlayerRadius + 1.5
		c.writeLabel(at, p.Username)
	}
	for _, s := range snapshot.Sensors {
		if !v.Visible(s.Position, 0) {
			continue
		}
		c.writeLabel(v.ToCanvas(s.Position), fmt.Sprintf("%d", s.Occupants))
	}
}

func (c *Client) writeLabel(at draw.Point, text string) {
	col, row := c.canvas.LogicalToTerminal(at)
	col -= len(text) / 2
	if col < 1 || row < 1 || col+len(text)-1 > c.canvas.TerminalWidth() || row > c.canvas.TerminalHeight() {
		return
	}
	c.chunkWriter.WriteAt(col, row, text)
	c.canvas.MarkTextDirty(col, row, len(text))
}
