package physics

import (
	"fmt"
	"strings"
)

// Layer is a bitset describing what a shape is, or, when used as a mask,
// which layers it reacts to.
type Layer uint32

const (
	LayerNone   Layer = 0
	LayerPlayer Layer = 1 << 0
	LayerEnemy  Layer = 1 << 1
	LayerWall   Layer = 1 << 2
	LayerSensor Layer = 1 << 3

	LayerEveryone Layer = ^Layer(0)
)

var layerNames = map[string]Layer{
	"none":     LayerNone,
	"player":   LayerPlayer,
	"enemy":    LayerEnemy,
	"wall":     LayerWall,
	"sensor":   LayerSensor,
	"everyone": LayerEveryone,
}

// Has reports whether any bit of other is set in l.
func (l Layer) Has(other Layer) bool {
	return l&other != 0
}

// CanPair reports whether two shapes accept each other under the given masks.
// Each side's layer must be present in the other side's mask, so the result
// does not depend on argument order.
func CanPair(layerA, maskA, layerB, maskB Layer) bool {
	return layerA&maskB != 0 && layerB&maskA != 0
}

// ParseLayer parses names joined by '|' ("player|enemy") into a Layer.
func ParseLayer(s string) (Layer, error) {
	var l Layer
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		bit, ok := layerNames[name]
		if !ok {
			return LayerNone, fmt.Errorf("unknown layer %q", name)
		}
		l |= bit
	}
	return l, nil
}
