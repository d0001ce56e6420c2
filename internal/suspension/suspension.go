// Package suspension derives spring and damper values from frequency and damping targets.
// Every function here is pure.
package suspension

import "math"

// StandardGravity in m/s^2.
const StandardGravity = 9.80665

// AxleMass is the share of chassisMass supported by one axle under static load:
// chassisMass * oppositeLeverArm / wheelbase. Returns 0 for a non-positive wheelbase
// or a non-positive share.
func AxleMass(chassisMass, wheelbase, oppositeLeverArm float64) float64 {
	if wheelbase <= 0 {
		return 0
	}
	m := chassisMass * oppositeLeverArm / wheelbase
	if m <= 0 || math.IsNaN(m) {
		return 0
	}
	return m
}

// ComputeSpringRate returns the spring rate (N/m) that makes the axle's supported mass
// oscillate at frequencyHz: k = m * (2*pi*f)^2.
// Degenerate inputs (frequency or mass <= 0) return 0.
func ComputeSpringRate(frequencyHz, chassisMass, wheelbase, oppositeLeverArm float64) float64 {
	if frequencyHz <= 0 || chassisMass <= 0 {
		return 0
	}
	m := AxleMass(chassisMass, wheelbase, oppositeLeverArm)
	if m == 0 {
		return 0
	}
	w := 2 * math.Pi * frequencyHz
	return m * w * w
}

// ComputeDamperCoefficient returns dampingFactor times the critical damping
// 2*sqrt(k*m) of the same supported mass. dampingFactor is not clamped from above;
// a negative factor yields 0.
func ComputeDamperCoefficient(dampingFactor, chassisMass, springRate, wheelbase, oppositeLeverArm float64) float64 {
	if dampingFactor <= 0 || springRate <= 0 {
		return 0
	}
	m := AxleMass(chassisMass, wheelbase, oppositeLeverArm)
	if m == 0 {
		return 0
	}
	return dampingFactor * 2 * math.Sqrt(springRate*m)
}

// StaticWheelLoad is the weight (N) carried by one wheel of an axle:
// 0.5 * chassisMass * g * oppositeLeverArm / wheelbase.
func StaticWheelLoad(chassisMass, wheelbase, oppositeLeverArm float64) float64 {
	return 0.5 * AxleMass(chassisMass, wheelbase, oppositeLeverArm) * StandardGravity
}

// Jounce returns max(0, restLength - wheelLoad/springRate). A zero spring rate gives 0.
func Jounce(restLength, wheelLoad, springRate float64) float64 {
	if springRate <= 0 {
		return 0
	}
	return math.Max(0, restLength-wheelLoad/springRate)
}
