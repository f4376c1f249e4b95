// Package client renders the shared simulation to one terminal and forwards
// that terminal's keys to the server.
package client

import (
	"bufio"
	"io"
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/input"
	"github.com/tomz197/swarm/internal/loop/server"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *State
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
}

// Options configures a client.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	ViewWidth    float64 // world units shown horizontally
	ViewHeight   float64 // world units shown vertically
}

// New registers a client with gs and prepares its canvas.
func New(gs server.GameServer, r *bufio.Reader, w io.Writer, opts Options) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.ViewWidth <= 0 || opts.ViewHeight <= 0 {
		opts.ViewWidth, opts.ViewHeight = 60, 40
	}

	termWidth, termHeight, err := termSizeFunc()
	if err != nil {
		termWidth, termHeight = 80, 24
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewCanvas(renderWidth, renderHeight, opts.ViewWidth, opts.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		server:       gs,
		handle:       gs.RegisterClient(opts.Username),
		state:        NewState(opts.ViewWidth, opts.ViewHeight),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		termSizeFunc: termSizeFunc,
	}
}

// ID returns the client id assigned by the server.
func (c *Client) ID() int {
	return c.handle.ID
}

// Run draws frames until the user quits, the input closes or the server
// goes away. The client is unregistered on return.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)
	defer c.server.UnregisterClient(c.handle.ID)

	lastTime := time.Now()
	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		if err := c.frame(frameStart); err != nil {
			return err
		}

		if elapsed := time.Since(frameStart); elapsed < targetFrameTime {
			time.Sleep(targetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// frame runs one Input, Update, Draw cycle.
func (c *Client) frame(now time.Time) error {
	c.processInput(now)
	c.processServerEvents()
	c.updateScreen()

	switch c.state.Phase {
	case PhaseStart:
		c.updateStart()
	case PhasePlaying:
		c.updatePlaying()
	case PhaseShutdown:
		c.updateShutdown()
	}

	return c.drawFrame()
}

// processInput reads held keys and forwards them while playing.
func (c *Client) processInput(now time.Time) {
	in, closed := c.inputStream.Read(now)
	c.state.Input = in
	if closed || in.Quit {
		c.state.Running = false
		return
	}

	idle := now.Sub(c.lastInput).Seconds()
	switch {
	case in.Any():
		c.lastInput = now
		c.state.isInactive = false
	case idle > inactivityDisconnectSecs:
		c.state.Running = false
	case idle > inactivityWarnSeconds:
		c.state.isInactive = true
	}

	if c.state.Phase == PhasePlaying {
		c.server.SendInput(c.handle.ID, in)
	}
}

// processServerEvents drains server notifications without blocking.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventPlayerSpawned:
				c.state.Spawning = false
				if c.state.Phase != PhaseShutdown {
					c.state.Phase = PhasePlaying
				}
			case server.EventServerShutdown:
				c.state.Phase = PhaseShutdown
				c.state.shutdownTimer = shutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen follows terminal resizes, clamped to the largest render
// area. A real change clears the terminal so old borders disappear.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize limits the render area and centres it in the terminal.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, maxTermWidth)
	renderHeight = min(termHeight, maxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

func (c *Client) updateStart() {
	if (c.state.Input.Space || c.state.Input.Enter) && !c.state.Spawning {
		c.spawn()
	}
}

// updatePlaying keeps the camera on the player. Enter asks for a new spawn
// point; losing the player returns to the title screen.
func (c *Client) updatePlaying() {
	if c.state.Input.Enter && !c.state.Spawning {
		c.spawn()
		return
	}
	if c.state.Spawning {
		return
	}
	p, ok := c.server.GetSnapshot().Player(c.handle.ID)
	if !ok {
		c.state.Phase = PhaseStart
		c.state.Touching = 0
		return
	}
	c.state.Camera.Center = p.Position
	c.state.Touching = p.Touching
}

func (c *Client) spawn() {
	c.inputStream.Reset()
	c.state.Spawning = true
	c.server.SpawnPlayer(c.handle.ID)
}

func (c *Client) updateShutdown() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
