// Package vehicle builds a wheeled vehicle in a physics engine and drives it
// one control step per simulation tick.
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/wheelsim/internal/control"
	"github.com/OCAP2/wheelsim/internal/layout"
	"github.com/OCAP2/wheelsim/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrWheelCreation is returned by New when the physics engine rejects a wheel.
	ErrWheelCreation = errors.New("wheel creation failed")
	// ErrBodyInvalid is returned by Tick when the vehicle body is gone; the tick was skipped.
	ErrBodyInvalid = errors.New("vehicle body invalid")
	// ErrRemote is returned by Tick for vehicles simulated elsewhere.
	ErrRemote = errors.New("remote vehicle")
)

// Skip reasons reported on TickSample and the skipped counter.
const (
	SkipBodyInvalid = "body_invalid"
	SkipRemote      = "remote"
)

// Mode is the control state of a vehicle.
type Mode int

const (
	// Uncontrolled vehicles are driven with neutral inputs.
	Uncontrolled Mode = iota
	// Controlled vehicles poll their input source every tick.
	Controlled
)

func (m Mode) String() string {
	switch m {
	case Uncontrolled:
		return "uncontrolled"
	case Controlled:
		return "controlled"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Option configures a Vehicle.
type Option func(*options)

type options struct {
	kind   layout.Kind
	logger *slog.Logger
	remote bool
	now    func() time.Time
	notes  []string
}

// WithLogger sets the logger used for layout warnings and skipped ticks.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLayout selects the wheel arrangement. Defaults to layout.FourWheel.
func WithLayout(k layout.Kind) Option {
	return func(o *options) {
		o.kind = k
	}
}

// WithRemote marks the vehicle as simulated by another peer. Its ticks issue no commands.
func WithRemote() Option {
	return func(o *options) {
		o.remote = true
	}
}

// WithWarnings records configuration warnings found before construction.
// They lead the layout warnings in Summary.
func WithWarnings(w []string) Option {
	return func(o *options) {
		o.notes = append(o.notes, w...)
	}
}

// WithClock overrides the time source used to stamp tick samples.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Vehicle owns its configuration, wheel layout and control state.
// It is driven by a single owner and is not safe for concurrent use.
type Vehicle struct {
	cfg     core.VehicleConfig
	engine  core.PhysicsEngine
	layout  layout.Result
	wheels  [core.WheelCount]control.Wheel
	mapper  *control.Mapper
	state   core.ControlInputState
	input   core.InputSource
	remote  bool
	logger  *slog.Logger
	now     func() time.Time
	metrics *metrics
	notes   []string

	created time.Time
	tick    uint64
	last    control.Output
}

// New builds the wheel layout from geometry and creates the four wheels in engine.
// Any error means the vehicle does not exist; wheels created before the failure
// are left to the engine's teardown.
func New(cfg core.VehicleConfig, geometry core.GeometrySource, engine core.PhysicsEngine, limits control.Limits, opts ...Option) (*Vehicle, error) {
	o := options{kind: layout.FourWheel, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	log := o.logger.With("vehicle", cfg.Name)

	mt, err := newMetrics()
	if err != nil {
		return nil, err
	}

	res, err := layout.NewBuilder(o.kind, o.logger).Build(cfg, geometry)
	if err != nil {
		return nil, fmt.Errorf("building wheel layout: %w", err)
	}

	v := &Vehicle{
		cfg:     cfg,
		engine:  engine,
		layout:  res,
		remote:  o.remote,
		logger:  log,
		now:     o.now,
		metrics: mt,
		notes:   o.notes,
		created: o.now(),
	}

	for _, spec := range res.Wheels {
		h, err := engine.CreateWheel(spec)
		if err != nil {
			log.Error("Vehicle creation failed", "wheel", spec.Index.String(), "error", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrWheelCreation, spec.Index, err)
		}
		v.wheels[spec.Index] = control.Wheel{
			Index:        spec.Index,
			Handle:       h,
			Capabilities: spec.Capabilities,
		}
	}
	mt.wheelsCreated.Add(context.Background(), int64(len(res.Wheels)))

	v.mapper = control.NewMapper(limits, v.wheels)
	log.Info("Vehicle created",
		"drivetrain", string(cfg.Drivetrain),
		"wheelbase", res.Wheelbase,
		"remote", o.remote,
		"warnings", len(o.notes)+len(res.Warnings),
	)
	return v, nil
}

// Name returns the configured vehicle name.
func (v *Vehicle) Name() string {
	return v.cfg.Name
}

// Layout returns the derived wheel layout.
func (v *Vehicle) Layout() layout.Result {
	return v.layout
}

// Wheels returns the created wheels with their engine handles.
func (v *Vehicle) Wheels() [core.WheelCount]control.Wheel {
	return v.wheels
}

// IsRemote reports whether ticks are skipped because another peer simulates this vehicle.
func (v *Vehicle) IsRemote() bool {
	return v.remote
}

// AttachInput registers src as the vehicle's driver and switches to Controlled.
// A nil src is the same as DetachInput.
func (v *Vehicle) AttachInput(src core.InputSource) {
	if src == nil {
		v.DetachInput()
		return
	}
	if v.input == nil {
		v.logger.Debug("Input attached")
	}
	v.input = src
}

// DetachInput removes the driver and returns the vehicle to Uncontrolled.
// The stored inputs are zeroed so the next tick coasts.
func (v *Vehicle) DetachInput() {
	if v.input != nil {
		v.logger.Debug("Input detached")
	}
	v.input = nil
	v.state.Reset()
}

// Mode returns the current control state.
func (v *Vehicle) Mode() Mode {
	if v.input != nil {
		return Controlled
	}
	return Uncontrolled
}

// State returns the inputs and torque requests of the last applied tick.
func (v *Vehicle) State() core.ControlInputState {
	return v.state
}

// LastOutput returns the mapper output of the last applied tick.
func (v *Vehicle) LastOutput() control.Output {
	return v.last
}

// Ticks returns how many times Tick has been called.
func (v *Vehicle) Ticks() uint64 {
	return v.tick
}

// Tick runs one control step: poll inputs, map them and forward the wheel commands.
// ErrRemote and ErrBodyInvalid mean the tick was skipped; the returned sample
// still records the skip and the caller should carry on.
func (v *Vehicle) Tick(ctx context.Context) (core.TickSample, error) {
	v.tick++
	sample := core.TickSample{
		Tick:       v.tick,
		Time:       v.now(),
		Controlled: v.input != nil,
	}

	if v.remote {
		return v.skip(ctx, sample, SkipRemote, ErrRemote)
	}
	if !v.engine.IsVehicleBodyValid() {
		v.logger.Warn("Vehicle body invalid, tick skipped", "tick", v.tick)
		return v.skip(ctx, sample, SkipBodyInvalid, ErrBodyInvalid)
	}

	var accelerator, steering, brake float64
	if v.input != nil {
		accelerator, steering, brake = v.input.PollControlInputs()
	}
	v.state.Set(accelerator, steering, brake)

	out := v.mapper.Control(v.state.Accelerator, v.state.Steering, v.state.Brake)
	v.state.EngineTorque = out.EngineTorque
	v.state.BrakeTorque = out.BrakeTorque
	v.last = out

	control.Apply(v.engine, out.Commands[:])
	v.metrics.applied.Add(ctx, 1)

	sample.Accelerator = v.state.Accelerator
	sample.Steering = v.state.Steering
	sample.Brake = v.state.Brake
	sample.EngineTorque = out.EngineTorque
	sample.BrakeTorque = out.BrakeTorque
	sample.SteerAngle = out.SteerAngle
	return sample, nil
}

func (v *Vehicle) skip(ctx context.Context, sample core.TickSample, reason string, err error) (core.TickSample, error) {
	sample.Skipped = true
	sample.SkipReason = reason
	v.metrics.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	return sample, err
}

// Summary describes the built vehicle for telemetry.
func (v *Vehicle) Summary() core.VehicleSummary {
	warnings := make([]string, 0, len(v.notes)+len(v.layout.Warnings))
	warnings = append(warnings, v.notes...)
	warnings = append(warnings, v.layout.Warnings...)
	return core.VehicleSummary{
		Name:          v.cfg.Name,
		CreatedAt:     v.created,
		Config:        v.cfg,
		Wheels:        v.layout.Wheels,
		Wheelbase:     v.layout.Wheelbase,
		FrontLeverArm: v.layout.Front.LeverArm,
		RearLeverArm:  v.layout.Rear.LeverArm,
		FootprintArea: v.layout.Footprint.Area,
		Footprint:     v.layout.Footprint.Coordinates(),
		Warnings:      warnings,
	}
}
