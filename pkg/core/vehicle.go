// pkg/core/vehicle.go
package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a chassis-relative offset in metres.
// X is lateral (right positive), Y is longitudinal (forward positive), Z is vertical (up positive).
type Vec3 = mgl64.Vec3

// WheelIndex identifies one of the four wheel positions. The order is fixed.
type WheelIndex int

const (
	FrontLeft WheelIndex = iota
	FrontRight
	BackLeft
	BackRight
)

// WheelCount is the number of wheels on every vehicle built by this module.
const WheelCount = 4

// WheelIndices lists every wheel position in index order.
var WheelIndices = [WheelCount]WheelIndex{FrontLeft, FrontRight, BackLeft, BackRight}

func (i WheelIndex) String() string {
	switch i {
	case FrontLeft:
		return "front-left"
	case FrontRight:
		return "front-right"
	case BackLeft:
		return "back-left"
	case BackRight:
		return "back-right"
	default:
		return fmt.Sprintf("wheel(%d)", int(i))
	}
}

// IsFront reports whether the wheel sits on the front axle.
func (i WheelIndex) IsFront() bool {
	return i == FrontLeft || i == FrontRight
}

// IsLeft reports whether the wheel sits on the left side of the chassis.
func (i WheelIndex) IsLeft() bool {
	return i == FrontLeft || i == BackLeft
}

// Capability flags describe which actuator commands a wheel accepts.
type Capability uint8

const (
	Powered Capability = 1 << iota
	Steered
	Braked
)

// Has reports whether all bits of c are set.
func (f Capability) Has(c Capability) bool {
	return f&c == c
}

func (f Capability) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	for _, p := range []struct {
		c    Capability
		name string
	}{{Powered, "powered"}, {Steered, "steered"}, {Braked, "braked"}} {
		if f.Has(p.c) {
			if s != "" {
				s += "|"
			}
			s += p.name
		}
	}
	return s
}

// TireCurve is the slip/force curve shape and contact properties of one axle's tires.
type TireCurve struct {
	ExtremumSlip   float64 `json:"extremumSlip" mapstructure:"extremumSlip"`
	ExtremumValue  float64 `json:"extremumValue" mapstructure:"extremumValue"`
	AsymptoteSlip  float64 `json:"asymptoteSlip" mapstructure:"asymptoteSlip"`
	AsymptoteValue float64 `json:"asymptoteValue" mapstructure:"asymptoteValue"`
	Stiffness      float64 `json:"stiffness" mapstructure:"stiffness"`
	Restitution    float64 `json:"restitution" mapstructure:"restitution"`
}

// AxleConfig holds the per-axle suspension targets and wheel properties.
type AxleConfig struct {
	RestLength    float64   `json:"restLength" mapstructure:"restLength"`       // unloaded suspension length (m)
	Travel        float64   `json:"travel" mapstructure:"travel"`               // suspension travel (m)
	Frequency     float64   `json:"frequency" mapstructure:"frequency"`         // target natural frequency (Hz)
	DampingFactor float64   `json:"dampingFactor" mapstructure:"dampingFactor"` // ratio to critical damping
	TrackAdjust   float64   `json:"trackAdjust" mapstructure:"trackAdjust"`     // signed lateral adjustment (m)
	WheelMass     float64   `json:"wheelMass" mapstructure:"wheelMass"`         // kg
	WheelRadius   float64   `json:"wheelRadius" mapstructure:"wheelRadius"`     // m
	WheelWidth    float64   `json:"wheelWidth" mapstructure:"wheelWidth"`       // m
	Tire          TireCurve `json:"tire" mapstructure:"tire"`
}

// Drivetrain selects which wheels receive engine torque.
type Drivetrain string

const (
	FrontWheelDrive Drivetrain = "fwd"
	RearWheelDrive  Drivetrain = "rwd"
	AllWheelDrive   Drivetrain = "awd"
)

// VehicleConfig is immutable once the vehicle enters simulation.
type VehicleConfig struct {
	Name        string     `json:"name" mapstructure:"name"`
	ChassisMass float64    `json:"chassisMass" mapstructure:"chassisMass"` // kg
	Drivetrain  Drivetrain `json:"drivetrain" mapstructure:"drivetrain"`
	Front       AxleConfig `json:"front" mapstructure:"front"`
	Rear        AxleConfig `json:"rear" mapstructure:"rear"`
}

// Axle returns the front or rear axle configuration for the given wheel.
func (c VehicleConfig) Axle(i WheelIndex) AxleConfig {
	if i.IsFront() {
		return c.Front
	}
	return c.Rear
}

// SuspensionParams are the derived per-wheel suspension values handed to the physics engine.
type SuspensionParams struct {
	RestLength float64 `json:"restLength"`
	Travel     float64 `json:"travel"`
	SpringRate float64 `json:"springRate"` // N/m
	Damper     float64 `json:"damper"`     // N*s/m
}

// WheelTire is the tire data copied verbatim into a wheel-creation call.
type WheelTire struct {
	Curve  TireCurve `json:"curve"`
	Mass   float64   `json:"mass"`
	Radius float64   `json:"radius"`
	Width  float64   `json:"width"`
}

// WheelSpec describes one wheel ready for creation in the physics engine.
type WheelSpec struct {
	Index        WheelIndex       `json:"index"`
	Offset       Vec3             `json:"offset"`
	Capabilities Capability       `json:"capabilities"`
	Tire         WheelTire        `json:"tire"`
	Suspension   SuspensionParams `json:"suspension"`
}
