// Package layout places the wheels of a vehicle relative to its chassis and derives
// the per-axle suspension values before any physics object exists.
package layout

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/OCAP2/wheelsim/internal/suspension"
	"github.com/OCAP2/wheelsim/internal/tire"
	"github.com/OCAP2/wheelsim/pkg/core"
)

var (
	// ErrMissingAttachment is returned when a wheel attachment point cannot be read.
	ErrMissingAttachment = errors.New("missing wheel attachment geometry")
	// ErrUnsupportedLayout is returned for a layout kind the builder does not know.
	ErrUnsupportedLayout = errors.New("unsupported wheel layout")
)

// DefaultWheelbase replaces a non-positive wheelbase in the suspension derivation.
const DefaultWheelbase = 1.0

// Kind selects the wheel arrangement.
type Kind int

const (
	FourWheel Kind = iota
)

func (k Kind) String() string {
	switch k {
	case FourWheel:
		return "four-wheel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Axle holds the derived values shared by both wheels of an axle.
type Axle struct {
	LeverArm   float64 // signed distance from the centre of mass to the axle (m)
	SpringRate float64 // N/m
	Damper     float64 // N*s/m
	WheelLoad  float64 // static load per wheel (N)
	Jounce     float64 // vertical offset raise (m)
}

// Result is the output of a successful Build.
type Result struct {
	Kind      Kind
	Wheels    [core.WheelCount]core.WheelSpec
	Front     Axle
	Rear      Axle
	Wheelbase float64 // as used in the derivation; DefaultWheelbase when the geometry was degenerate
	Footprint Footprint
	Warnings  []string
}

// Builder produces wheel specs from a vehicle configuration and chassis geometry.
type Builder struct {
	kind   Kind
	logger *slog.Logger
}

// NewBuilder creates a Builder for the given layout kind.
// A nil logger falls back to slog.Default().
func NewBuilder(kind Kind, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{kind: kind, logger: logger}
}

// Build reads the attachment offsets from src and returns the finalized wheel specs.
// Configuration problems are reported as warnings on the result; a missing attachment
// point or an unknown layout kind is a creation failure.
func (b *Builder) Build(cfg core.VehicleConfig, src core.GeometrySource) (Result, error) {
	switch b.kind {
	case FourWheel:
		return b.buildFourWheel(cfg, src)
	default:
		b.logger.Error("Vehicle creation failed", "vehicle", cfg.Name, "layout", b.kind.String())
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedLayout, b.kind)
	}
}

func (b *Builder) buildFourWheel(cfg core.VehicleConfig, src core.GeometrySource) (Result, error) {
	log := b.logger.With("vehicle", cfg.Name)
	res := Result{Kind: FourWheel}

	var raw [core.WheelCount]core.Vec3
	var missing []core.WheelIndex
	for _, idx := range core.WheelIndices {
		off, ok := src.GetWheelAttachmentOffset(idx)
		if !ok {
			missing = append(missing, idx)
			continue
		}
		raw[idx] = off
	}
	if len(missing) > 0 {
		err := missingWheelsError(missing)
		log.Error("Vehicle creation failed", "error", err)
		return Result{}, err
	}

	res.Front.LeverArm = raw[core.FrontLeft].Y()
	res.Rear.LeverArm = -raw[core.BackLeft].Y()
	res.Wheelbase = res.Front.LeverArm + res.Rear.LeverArm
	if res.Wheelbase <= 0 {
		res.warn(log, "degenerate wheelbase, using default",
			"wheelbase", res.Wheelbase, "default", DefaultWheelbase)
		res.Wheelbase = DefaultWheelbase
	}

	// each axle's share of the chassis is set by the other axle's lever arm
	res.Front = deriveAxle(cfg.Front, cfg.ChassisMass, res.Wheelbase, res.Front.LeverArm, res.Rear.LeverArm)
	res.Rear = deriveAxle(cfg.Rear, cfg.ChassisMass, res.Wheelbase, res.Rear.LeverArm, res.Front.LeverArm)
	if res.Front.SpringRate == 0 {
		res.warn(log, "front spring rate is zero, suspension disabled", "frequency", cfg.Front.Frequency)
	}
	if res.Rear.SpringRate == 0 {
		res.warn(log, "rear spring rate is zero, suspension disabled", "frequency", cfg.Rear.Frequency)
	}

	tires := tire.NewAxleSet(cfg)
	var offsets [core.WheelCount]core.Vec3
	for _, idx := range core.WheelIndices {
		axleCfg := cfg.Axle(idx)
		axle := res.Rear
		if idx.IsFront() {
			axle = res.Front
		}

		off := raw[idx]
		off[2] += axle.Jounce
		if idx.IsLeft() {
			off[0] -= axleCfg.TrackAdjust
		} else {
			off[0] += axleCfg.TrackAdjust
		}
		offsets[idx] = off

		caps, ok := Capabilities(cfg.Drivetrain, idx)
		if !ok && idx == core.FrontLeft {
			res.warn(log, "unknown drivetrain, assuming rear-wheel drive", "drivetrain", string(cfg.Drivetrain))
		}

		res.Wheels[idx] = core.WheelSpec{
			Index:        idx,
			Offset:       off,
			Capabilities: caps,
			Tire:         tires.ForWheel(idx),
			Suspension: core.SuspensionParams{
				RestLength: axleCfg.RestLength,
				Travel:     axleCfg.Travel,
				SpringRate: axle.SpringRate,
				Damper:     axle.Damper,
			},
		}
	}

	fp, err := NewFootprint(offsets)
	if err != nil {
		res.warn(log, "wheel footprint is degenerate", "error", err)
	}
	res.Footprint = fp

	log.Debug("Wheel layout built",
		"wheelbase", res.Wheelbase,
		"frontSpringRate", res.Front.SpringRate,
		"rearSpringRate", res.Rear.SpringRate,
		"frontJounce", res.Front.Jounce,
		"rearJounce", res.Rear.Jounce,
	)
	return res, nil
}

func deriveAxle(a core.AxleConfig, mass, wheelbase, leverArm, oppositeLeverArm float64) Axle {
	k := suspension.ComputeSpringRate(a.Frequency, mass, wheelbase, oppositeLeverArm)
	load := suspension.StaticWheelLoad(mass, wheelbase, oppositeLeverArm)
	return Axle{
		LeverArm:   leverArm,
		SpringRate: k,
		Damper:     suspension.ComputeDamperCoefficient(a.DampingFactor, mass, k, wheelbase, oppositeLeverArm),
		WheelLoad:  load,
		Jounce:     suspension.Jounce(a.RestLength, load, k),
	}
}

func (r *Result) warn(log *slog.Logger, msg string, args ...any) {
	r.Warnings = append(r.Warnings, msg)
	log.Warn(msg, args...)
}
