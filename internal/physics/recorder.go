// Package physics provides an in-process PhysicsEngine that records wheel
// creation and actuator commands. It does no integration or contact solving.
package physics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/OCAP2/wheelsim/pkg/core"
)

// ErrCreateRejected is returned by CreateWheel when the recorder was told to fail.
var ErrCreateRejected = errors.New("wheel creation rejected")

// WheelState is the last command received for one wheel.
type WheelState struct {
	Spec        core.WheelSpec
	MotorTorque float64
	BrakeTorque float64
	SteerAngle  float64
}

// Call is one setter invocation, kept in order of arrival.
type Call struct {
	Handle core.WheelHandle
	Kind   core.Capability // Powered, Braked or Steered
	Value  float64
}

// Recorder implements core.PhysicsEngine.
type Recorder struct {
	mu         sync.Mutex
	bodyValid  bool
	failAfter  int
	nextHandle core.WheelHandle
	wheels     map[core.WheelHandle]*WheelState
	calls      []Call
	batches    int
}

// Option configures a Recorder.
type Option func(*Recorder)

// FailAfter makes CreateWheel fail once n wheels have been created.
func FailAfter(n int) Option {
	return func(r *Recorder) {
		r.failAfter = n
	}
}

// NewRecorder creates a recorder with a valid vehicle body.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		bodyValid:  true,
		failAfter:  -1,
		nextHandle: 1,
		wheels:     make(map[core.WheelHandle]*WheelState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateWheel stores the spec and returns a new handle.
func (r *Recorder) CreateWheel(spec core.WheelSpec) (core.WheelHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter >= 0 && len(r.wheels) >= r.failAfter {
		return 0, fmt.Errorf("%w: %s", ErrCreateRejected, spec.Index)
	}
	h := r.nextHandle
	r.nextHandle++
	r.wheels[h] = &WheelState{Spec: spec}
	return h, nil
}

// SetWheelMotorTorque implements core.PhysicsEngine.
func (r *Recorder) SetWheelMotorTorque(h core.WheelHandle, torque float64) {
	r.set(h, core.Powered, torque)
}

// SetWheelBrakeTorque implements core.PhysicsEngine.
func (r *Recorder) SetWheelBrakeTorque(h core.WheelHandle, torque float64) {
	r.set(h, core.Braked, torque)
}

// SetWheelSteerAngle implements core.PhysicsEngine.
func (r *Recorder) SetWheelSteerAngle(h core.WheelHandle, angle float64) {
	r.set(h, core.Steered, angle)
}

func (r *Recorder) set(h core.WheelHandle, kind core.Capability, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(h, kind, v)
}

func (r *Recorder) setLocked(h core.WheelHandle, kind core.Capability, v float64) {
	r.calls = append(r.calls, Call{Handle: h, Kind: kind, Value: v})
	w, ok := r.wheels[h]
	if !ok {
		return
	}
	switch kind {
	case core.Powered:
		w.MotorTorque = v
	case core.Braked:
		w.BrakeTorque = v
	case core.Steered:
		w.SteerAngle = v
	}
}

// IsVehicleBodyValid implements core.PhysicsEngine.
func (r *Recorder) IsVehicleBodyValid() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodyValid
}

// SetBodyValid toggles the body validity reported to the vehicle.
func (r *Recorder) SetBodyValid(valid bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodyValid = valid
}

// Wheel returns a copy of the state of handle h.
func (r *Recorder) Wheel(h core.WheelHandle) (WheelState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wheels[h]
	if !ok {
		return WheelState{}, false
	}
	return *w, true
}

// WheelCount returns the number of created wheels.
func (r *Recorder) WheelCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wheels)
}

// Calls returns and clears the setter log.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.calls
	r.calls = nil
	return out
}

// Batches returns how many batch calls were received.
func (r *Recorder) Batches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

// BatchRecorder is a Recorder that also implements core.BatchApplier.
type BatchRecorder struct {
	*Recorder
}

// NewBatchRecorder creates a batch-capable recorder.
func NewBatchRecorder(opts ...Option) *BatchRecorder {
	return &BatchRecorder{Recorder: NewRecorder(opts...)}
}

// ApplyWheelCommands records a whole tick under one lock.
func (b *BatchRecorder) ApplyWheelCommands(cmds []core.WheelCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches++
	for _, c := range cmds {
		if c.Apply.Has(core.Braked) {
			b.setLocked(c.Handle, core.Braked, c.BrakeTorque)
		}
		if c.Apply.Has(core.Powered) {
			b.setLocked(c.Handle, core.Powered, c.MotorTorque)
		}
		if c.Apply.Has(core.Steered) {
			b.setLocked(c.Handle, core.Steered, c.SteerAngle)
		}
	}
}
