// Package input provides InputSource implementations for driving vehicles
// from host code or from a recorded script.
package input

import (
	"sort"
	"sync"

	"github.com/OCAP2/wheelsim/pkg/core"
)

// Latch holds the most recent inputs written by the host. Writers may run on
// any goroutine; the vehicle polls it once per tick.
type Latch struct {
	mu                           sync.Mutex
	accelerator, steering, brake float64
}

// Set stores the inputs, clamped to their normalized ranges.
func (l *Latch) Set(accelerator, steering, brake float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accelerator = core.Clamp(accelerator, -1, 1)
	l.steering = core.Clamp(steering, -1, 1)
	l.brake = core.Clamp(brake, 0, 1)
}

// Release zeroes the inputs.
func (l *Latch) Release() {
	l.Set(0, 0, 0)
}

// PollControlInputs implements core.InputSource.
func (l *Latch) PollControlInputs() (accelerator, steering, brake float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accelerator, l.steering, l.brake
}

// Keyframe sets the inputs from Tick onward, until the next keyframe.
type Keyframe struct {
	Tick        uint64  `json:"tick" mapstructure:"tick"`
	Accelerator float64 `json:"accelerator" mapstructure:"accelerator"`
	Steering    float64 `json:"steering" mapstructure:"steering"`
	Brake       float64 `json:"brake" mapstructure:"brake"`
}

// Script replays keyframes, advancing one tick per poll. Ticks before the
// first keyframe produce neutral inputs.
type Script struct {
	frames []Keyframe
	tick   uint64
	next   int
	cur    Keyframe
}

// NewScript sorts the keyframes by tick. The slice is copied.
func NewScript(frames []Keyframe) *Script {
	sorted := make([]Keyframe, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})
	return &Script{frames: sorted}
}

// DefaultScript is a short drive: pull away, turn left, straighten and brake to a stop.
func DefaultScript() *Script {
	return NewScript([]Keyframe{
		{Tick: 1, Accelerator: 0.3},
		{Tick: 60, Accelerator: 0.8},
		{Tick: 180, Accelerator: 0.5, Steering: -0.6},
		{Tick: 300, Accelerator: 0.5},
		{Tick: 420, Brake: 1},
		{Tick: 540},
	})
}

// PollControlInputs implements core.InputSource.
func (s *Script) PollControlInputs() (accelerator, steering, brake float64) {
	s.tick++
	for s.next < len(s.frames) && s.frames[s.next].Tick <= s.tick {
		s.cur = s.frames[s.next]
		s.next++
	}
	return s.cur.Accelerator, s.cur.Steering, s.cur.Brake
}

// Done reports whether every keyframe has been played.
func (s *Script) Done() bool {
	return s.next >= len(s.frames)
}

// Rewind restarts the script from tick zero.
func (s *Script) Rewind() {
	s.tick, s.next = 0, 0
	s.cur = Keyframe{}
}
