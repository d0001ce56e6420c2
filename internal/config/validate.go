package config

import (
	"fmt"

	"github.com/OCAP2/wheelsim/pkg/core"
)

// ValidateVehicle reports physically implausible values. The warnings never
// block vehicle creation; the values are still used as given.
func ValidateVehicle(cfg core.VehicleConfig) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if cfg.ChassisMass <= 0 {
		warn("chassis mass %g is not positive", cfg.ChassisMass)
	}
	switch cfg.Drivetrain {
	case core.FrontWheelDrive, core.RearWheelDrive, core.AllWheelDrive:
	default:
		warn("unknown drivetrain %q", cfg.Drivetrain)
	}

	for _, a := range []struct {
		name string
		cfg  core.AxleConfig
	}{{"front", cfg.Front}, {"rear", cfg.Rear}} {
		if a.cfg.Frequency <= 0 {
			warn("%s: suspension frequency %g is not positive", a.name, a.cfg.Frequency)
		}
		if a.cfg.DampingFactor < 0 {
			warn("%s: damping factor %g is negative", a.name, a.cfg.DampingFactor)
		}
		if a.cfg.RestLength < 0 {
			warn("%s: rest length %g is negative", a.name, a.cfg.RestLength)
		}
		if a.cfg.WheelRadius <= 0 {
			warn("%s: wheel radius %g is not positive", a.name, a.cfg.WheelRadius)
		}
		tc := a.cfg.Tire
		if tc.Stiffness <= 0 {
			warn("%s: tire stiffness %g is not positive", a.name, tc.Stiffness)
		}
		if tc.ExtremumSlip >= tc.AsymptoteSlip {
			warn("%s: tire extremum slip %g is not below asymptote slip %g", a.name, tc.ExtremumSlip, tc.AsymptoteSlip)
		}
		if tc.Restitution < 0 || tc.Restitution > 1 {
			warn("%s: tire restitution %g is outside [0, 1]", a.name, tc.Restitution)
		}
	}
	return warnings
}
