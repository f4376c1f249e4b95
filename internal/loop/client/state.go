package client

import (
	"time"

	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/input"
)

// Phase is the screen a client is on.
type Phase int

const (
	PhaseStart    Phase = iota // Title screen
	PhasePlaying               // Steering a player
	PhaseShutdown              // Server is shutting down
)

// Client timing. Inactivity limits are in seconds.
const (
	targetFrameTime          = time.Second / 30
	shutdownDisplaySeconds   = 5.0
	inactivityWarnSeconds    = 90.0
	inactivityDisconnectSecs = 120.0
	maxTermWidth             = 160
	maxTermHeight            = 50
	minimapWidth             = 20
	minimapHeight            = 6
	minimapSubRows           = minimapHeight * 2
)

// State holds what one client knows between frames.
type State struct {
	Input     input.Input
	Phase     Phase
	Camera    draw.Viewport
	Touching  int
	Running   bool
	Spawning  bool // a spawn was requested and not yet confirmed
	prevPhase Phase

	delta         time.Duration
	shutdownTimer float64
	isInactive    bool
	wasInactive   bool
	minimapGrid   [minimapSubRows][minimapWidth]byte
}

// NewState returns the state of a freshly connected client.
func NewState(viewWidth, viewHeight float64) *State {
	return &State{
		Phase:     PhaseStart,
		prevPhase: -1,
		Camera:    draw.Viewport{Width: viewWidth, Height: viewHeight},
		Running:   true,
	}
}
