// Package input turns a raw terminal byte stream into held-key state.
package input

import (
	"bufio"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// keyHoldDuration is how long a key counts as held after its last byte.
// Terminals only repeat keys, they never report releases.
const keyHoldDuration = 120 * time.Millisecond

// Input is the key state for one frame.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Up      bool
	Down    bool
	Space   bool
	Enter   bool
	Pressed []byte
}

// Direction returns the planar direction selected by the arrow keys, not
// normalised. Up is +Z.
func (in Input) Direction() mgl64.Vec3 {
	var d mgl64.Vec3
	if in.Left {
		d[0]--
	}
	if in.Right {
		d[0]++
	}
	if in.Up {
		d[2]++
	}
	if in.Down {
		d[2]--
	}
	return d
}

// Any reports whether a byte arrived this frame.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

type keyState struct {
	quit  time.Time
	left  time.Time
	right time.Time
	up    time.Time
	down  time.Time
	space time.Time
	enter time.Time
}

// Stream delivers bytes read in the background and remembers when each
// key was last seen.
type Stream struct {
	ch    chan byte
	state keyState
	buf   []byte
}

// StartStream reads r on a new goroutine until it fails.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Read drains pending bytes without blocking and returns the key state.
// Closed reports whether the underlying reader has failed.
func (s *Stream) Read(now time.Time) (in Input, closed bool) {
	s.buf = s.buf[:0]
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			s.buf = append(s.buf, b)
		default:
			break drain
		}
	}
	s.state.apply(s.buf, now)
	in = s.state.input(now)
	in.Pressed = s.buf
	return in, closed
}

// Reset forgets held keys, so a key used to leave a screen does not leak
// into the next one.
func (s *Stream) Reset() {
	s.state = keyState{}
}

func (k *keyState) apply(buf []byte, now time.Time) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				k.up = now
			case 'B':
				k.down = now
			case 'C':
				k.right = now
			case 'D':
				k.left = now
			}
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q', '\x03':
			k.quit = now
		case 'a', 'A', 'h', 'H':
			k.left = now
		case 'd', 'D', 'l', 'L':
			k.right = now
		case 'w', 'W', 'k', 'K':
			k.up = now
		case 's', 'S', 'j', 'J':
			k.down = now
		case ' ':
			k.space = now
		case '\n', '\r':
			k.enter = now
		}
	}
}

func (k *keyState) input(now time.Time) Input {
	held := func(t time.Time) bool {
		return !t.IsZero() && now.Sub(t) < keyHoldDuration
	}
	return Input{
		Quit:  held(k.quit),
		Left:  held(k.left),
		Right: held(k.right),
		Up:    held(k.up),
		Down:  held(k.down),
		Space: held(k.space),
		Enter: held(k.enter),
	}
}
