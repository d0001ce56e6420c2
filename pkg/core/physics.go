// pkg/core/physics.go
package core

// WheelHandle is an opaque reference to a wheel owned by the physics engine.
type WheelHandle uint32

// GeometrySource is the scene-graph side: it reports where each wheel attaches to the chassis.
// ok is false when the wheel node is absent.
type GeometrySource interface {
	GetWheelAttachmentOffset(i WheelIndex) (offset Vec3, ok bool)
}

// InputSource produces normalized driver or AI inputs once per tick.
type InputSource interface {
	PollControlInputs() (accelerator, steering, brake float64)
}

// PhysicsEngine is the rigid-body engine collaborator seen from one vehicle.
type PhysicsEngine interface {
	CreateWheel(spec WheelSpec) (WheelHandle, error)
	SetWheelMotorTorque(h WheelHandle, torque float64)
	SetWheelBrakeTorque(h WheelHandle, torque float64)
	SetWheelSteerAngle(h WheelHandle, angle float64)
	IsVehicleBodyValid() bool
}

// BatchApplier is an optional interface for engines that accept all wheel
// commands of a tick in a single call.
type BatchApplier interface {
	ApplyWheelCommands(cmds []WheelCommand)
}
