package server

import (
	"github.com/tomz197/swarm/internal/physics"
)

// Frame is the JSON form of a snapshot streamed to web spectators.
type Frame struct {
	Tick    uint64        `json:"tick"`
	Pairs   int           `json:"pairs"`
	Clients int           `json:"clients"`
	Shapes  []FrameShape  `json:"shapes"`
	Players []FramePlayer `json:"players"`
	Sensors []FrameSensor `json:"sensors"`
}

// FrameShape is one shape on the XZ plane.
type FrameShape struct {
	ID      uint64  `json:"id"`
	X       float64 `json:"x"`
	Z       float64 `json:"z"`
	Kind    string  `json:"kind"`
	Role    string  `json:"role"`
	Radius  float64 `json:"r,omitempty"`
	HalfX   float64 `json:"hx,omitempty"`
	HalfZ   float64 `json:"hz,omitempty"`
	Angle   float64 `json:"angle,omitempty"`
	Trigger bool    `json:"trigger,omitempty"`
}

type FramePlayer struct {
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Z        float64 `json:"z"`
	Touching int     `json:"touching"`
}

type FrameSensor struct {
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Occupants int     `json:"occupants"`
}

// NewFrame converts a snapshot. Boxes with a zero secondary extent are
// reported as circles, matching how they collide.
func NewFrame(s *Snapshot) Frame {
	f := Frame{
		Tick:    s.Tick,
		Pairs:   s.Stats.Pairs,
		Clients: s.Clients,
		Shapes:  make([]FrameShape, 0, len(s.Shapes)),
		Players: make([]FramePlayer, 0, len(s.Players)),
		Sensors: make([]FrameSensor, 0, len(s.Sensors)),
	}
	for _, st := range s.Shapes {
		fs := FrameShape{
			ID:      uint64(st.ID),
			X:       st.Position[0],
			Z:       st.Position[2],
			Role:    role(st.Layer),
			Trigger: st.Trigger,
		}
		if st.Shape.IsBox() {
			fs.Kind = physics.KindBox.String()
			fs.HalfX, fs.HalfZ = st.Shape.HalfExtents[0], st.Shape.HalfExtents[1]
			fs.Angle = st.Shape.Angle
		} else {
			fs.Kind = physics.KindCircle.String()
			fs.Radius = st.Shape.CircleRadius()
		}
		f.Shapes = append(f.Shapes, fs)
	}
	for _, p := range s.Players {
		f.Players = append(f.Players, FramePlayer{Username: p.Username, X: p.Position[0], Z: p.Position[2], Touching: p.Touching})
	}
	for _, sv := range s.Sensors {
		f.Sensors = append(f.Sensors, FrameSensor{X: sv.Position[0], Z: sv.Position[2], Occupants: sv.Occupants})
	}
	return f
}

func role(l physics.Layer) string {
	switch {
	case l.Has(physics.LayerPlayer):
		return "player"
	case l.Has(physics.LayerEnemy):
		return "enemy"
	case l.Has(physics.LayerWall):
		return "wall"
	case l.Has(physics.LayerSensor):
		return "sensor"
	default:
		return "other"
	}
}
