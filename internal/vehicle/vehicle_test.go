package vehicle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/OCAP2/wheelsim/internal/control"
	"github.com/OCAP2/wheelsim/internal/layout"
	"github.com/OCAP2/wheelsim/internal/physics"
	"github.com/OCAP2/wheelsim/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = control.LimitsFromDegrees(35, 1500, 400)

func testConfig() core.VehicleConfig {
	axle := core.AxleConfig{
		RestLength:    0.35,
		Travel:        0.2,
		Frequency:     1.2,
		DampingFactor: 0.3,
		WheelMass:     20,
		WheelRadius:   0.34,
		WheelWidth:    0.24,
		Tire: core.TireCurve{
			ExtremumSlip: 0.4, ExtremumValue: 1,
			AsymptoteSlip: 0.8, AsymptoteValue: 0.5,
			Stiffness: 1, Restitution: 0.1,
		},
	}
	return core.VehicleConfig{
		Name:        "sedan",
		ChassisMass: 1500,
		Drivetrain:  core.RearWheelDrive,
		Front:       axle,
		Rear:        axle,
	}
}

// fixedInput returns the same inputs on every poll.
type fixedInput struct {
	accelerator, steering, brake float64
	polls                        int
}

func (f *fixedInput) PollControlInputs() (float64, float64, float64) {
	f.polls++
	return f.accelerator, f.steering, f.brake
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestVehicle(t *testing.T, engine core.PhysicsEngine, opts ...Option) (*Vehicle, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]Option{WithLogger(testLogger(&buf))}, opts...)
	v, err := New(testConfig(), layout.SymmetricGeometry(0.8, 1.2, 1.3, 0), engine, testLimits, opts...)
	require.NoError(t, err)
	return v, &buf
}

func TestNew_CreatesFourWheels(t *testing.T) {
	rec := physics.NewRecorder()
	v, buf := newTestVehicle(t, rec)

	assert.Equal(t, 4, rec.WheelCount())
	assert.Equal(t, "sedan", v.Name())
	assert.Equal(t, Uncontrolled, v.Mode())
	assert.False(t, v.IsRemote())

	for _, idx := range core.WheelIndices {
		w := v.Wheels()[idx]
		assert.Equal(t, idx, w.Index)
		st, ok := rec.Wheel(w.Handle)
		require.True(t, ok, idx.String())
		assert.Equal(t, v.Layout().Wheels[idx], st.Spec)
		assert.Equal(t, st.Spec.Capabilities, w.Capabilities)
	}
	assert.Contains(t, buf.String(), "Vehicle created")
}

func TestNew_MissingAttachment(t *testing.T) {
	rec := physics.NewRecorder()
	geo := layout.SymmetricGeometry(0.8, 1.2, 1.3, 0)
	delete(geo, core.FrontRight)

	v, err := New(testConfig(), geo, rec, testLimits, WithLogger(testLogger(&bytes.Buffer{})))
	require.Error(t, err)
	assert.Nil(t, v)
	assert.True(t, errors.Is(err, layout.ErrMissingAttachment))
	assert.Equal(t, 0, rec.WheelCount(), "no wheel is created before the layout succeeds")
}

func TestNew_UnsupportedLayout(t *testing.T) {
	_, err := New(testConfig(), layout.SymmetricGeometry(0.8, 1.2, 1.3, 0), physics.NewRecorder(), testLimits,
		WithLogger(testLogger(&bytes.Buffer{})), WithLayout(layout.Kind(9)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrUnsupportedLayout))
}

func TestNew_WheelCreationFails(t *testing.T) {
	rec := physics.NewRecorder(physics.FailAfter(2))
	var buf bytes.Buffer

	_, err := New(testConfig(), layout.SymmetricGeometry(0.8, 1.2, 1.3, 0), rec, testLimits, WithLogger(testLogger(&buf)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWheelCreation))
	assert.True(t, errors.Is(err, physics.ErrCreateRejected))
	assert.Contains(t, err.Error(), "back-left")
	assert.Contains(t, buf.String(), "Vehicle creation failed")
}

func TestTick_UncontrolledIssuesNeutralCommands(t *testing.T) {
	rec := physics.NewRecorder()
	v, _ := newTestVehicle(t, rec)

	sample, err := v.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), sample.Tick)
	assert.False(t, sample.Controlled)
	assert.False(t, sample.Skipped)
	assert.Equal(t, 0.0, sample.EngineTorque)
	assert.Equal(t, 0.0, sample.BrakeTorque)
	assert.Equal(t, 0.0, sample.SteerAngle)

	// 2 front wheels steer+brake, 2 rear wheels power+brake
	assert.Len(t, rec.Calls(), 8)
}

func TestTick_ControlledPollsInput(t *testing.T) {
	rec := physics.NewRecorder()
	v, _ := newTestVehicle(t, rec)
	in := &fixedInput{accelerator: 1, steering: -1}

	v.AttachInput(in)
	assert.Equal(t, Controlled, v.Mode())

	sample, err := v.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, in.polls)
	assert.True(t, sample.Controlled)
	assert.Equal(t, -400.0, sample.EngineTorque)
	assert.InDelta(t, 35*math.Pi/180, sample.SteerAngle, 1e-12)

	bl, _ := rec.Wheel(v.Wheels()[core.BackLeft].Handle)
	assert.Equal(t, -400.0, bl.MotorTorque)
	fl, _ := rec.Wheel(v.Wheels()[core.FrontLeft].Handle)
	assert.Equal(t, 0.0, fl.MotorTorque)
	assert.InDelta(t, 35*math.Pi/180, fl.SteerAngle, 1e-12)

	st := v.State()
	assert.Equal(t, 1.0, st.Accelerator)
	assert.Equal(t, -400.0, st.EngineTorque)
	assert.Equal(t, 0.0, st.BrakeTorque)
}

func TestTick_ClampsPolledInput(t *testing.T) {
	v, _ := newTestVehicle(t, physics.NewRecorder())
	v.AttachInput(&fixedInput{accelerator: 5, steering: 3, brake: 2})

	sample, err := v.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, sample.Accelerator)
	assert.Equal(t, 1.0, sample.Steering)
	assert.Equal(t, 1.0, sample.Brake)
	assert.Equal(t, 1500.0, sample.BrakeTorque)
	assert.Equal(t, -400.0, sample.EngineTorque)
}

func TestTick_NaNInputIsNeutral(t *testing.T) {
	rec := physics.NewRecorder()
	v, _ := newTestVehicle(t, rec)
	v.AttachInput(&fixedInput{accelerator: math.NaN(), steering: math.NaN(), brake: math.NaN()})

	sample, err := v.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, sample.Controlled)
	assert.Equal(t, 0.0, sample.Accelerator)
	assert.Equal(t, 0.0, sample.Steering)
	assert.Equal(t, 0.0, sample.Brake)
	assert.Equal(t, 0.0, sample.EngineTorque)
	assert.Equal(t, 0.0, sample.SteerAngle)
	for _, c := range rec.Calls() {
		assert.False(t, math.IsNaN(c.Value), "kind %v", c.Kind)
		assert.Zero(t, c.Value, "kind %v", c.Kind)
	}
}

func TestTick_DetachReturnsToNeutral(t *testing.T) {
	rec := physics.NewRecorder()
	v, _ := newTestVehicle(t, rec)
	in := &fixedInput{accelerator: 0.5, brake: 0.2}

	v.AttachInput(in)
	_, err := v.Tick(context.Background())
	require.NoError(t, err)

	v.DetachInput()
	assert.Equal(t, Uncontrolled, v.Mode())
	sample, err := v.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, in.polls, "detached source is not polled")
	assert.Equal(t, 0.0, sample.EngineTorque)
	assert.Equal(t, 0.0, sample.BrakeTorque)

	v.AttachInput(in)
	v.AttachInput(nil)
	assert.Equal(t, Uncontrolled, v.Mode())
}

func TestTick_InvalidBodySkips(t *testing.T) {
	rec := physics.NewRecorder()
	v, buf := newTestVehicle(t, rec)
	v.AttachInput(&fixedInput{accelerator: 1})
	rec.Calls()
	rec.SetBodyValid(false)

	sample, err := v.Tick(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBodyInvalid))
	assert.True(t, sample.Skipped)
	assert.Equal(t, SkipBodyInvalid, sample.SkipReason)
	assert.Empty(t, rec.Calls())
	assert.Contains(t, buf.String(), "tick skipped")

	// recovers on the next tick
	rec.SetBodyValid(true)
	sample, err = v.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), sample.Tick)
	assert.Equal(t, -400.0, sample.EngineTorque)
}

func TestTick_RemoteSkips(t *testing.T) {
	rec := physics.NewRecorder()
	v, _ := newTestVehicle(t, rec, WithRemote())
	in := &fixedInput{accelerator: 1}
	v.AttachInput(in)
	rec.Calls()

	sample, err := v.Tick(context.Background())
	assert.True(t, errors.Is(err, ErrRemote))
	assert.True(t, v.IsRemote())
	assert.Equal(t, SkipRemote, sample.SkipReason)
	assert.Equal(t, 0, in.polls)
	assert.Empty(t, rec.Calls())
}

func TestTick_BatchEngine(t *testing.T) {
	rec := physics.NewBatchRecorder()
	v, _ := newTestVehicle(t, rec)

	for i := 0; i < 3; i++ {
		_, err := v.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, rec.Batches())
	assert.Equal(t, uint64(3), v.Ticks())
}

func TestTick_Reproducible(t *testing.T) {
	v, _ := newTestVehicle(t, physics.NewRecorder())
	v.AttachInput(&fixedInput{accelerator: 0.3, steering: 0.7, brake: 0.1})

	_, err := v.Tick(context.Background())
	require.NoError(t, err)
	first := v.LastOutput()
	_, err = v.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, v.LastOutput())
}

func TestSummary(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v, _ := newTestVehicle(t, physics.NewRecorder(), WithClock(func() time.Time { return created }))

	s := v.Summary()
	assert.Equal(t, "sedan", s.Name)
	assert.Equal(t, created, s.CreatedAt)
	assert.InDelta(t, 2.5, s.Wheelbase, 1e-12)
	assert.InDelta(t, 1.2, s.FrontLeverArm, 1e-12)
	assert.InDelta(t, 1.3, s.RearLeverArm, 1e-12)
	assert.InDelta(t, 1.6*2.5, s.FootprintArea, 1e-9)
	assert.Len(t, s.Footprint, 4)
	assert.Empty(t, s.Warnings)
	assert.Equal(t, v.Layout().Wheels, s.Wheels)
}

func TestSummary_ConfigWarningsFirst(t *testing.T) {
	cfg := testConfig()
	cfg.Rear.Frequency = 0
	notes := []string{"front damping factor is negative"}

	var buf bytes.Buffer
	v, err := New(cfg, layout.SymmetricGeometry(0.8, 1.2, 1.3, 0), physics.NewRecorder(), testLimits,
		WithLogger(testLogger(&buf)), WithWarnings(notes))
	require.NoError(t, err)

	s := v.Summary()
	require.Greater(t, len(s.Warnings), 1)
	assert.Equal(t, notes[0], s.Warnings[0])
	assert.Equal(t, v.Layout().Warnings, s.Warnings[1:])

	s.Warnings[0] = "changed"
	assert.Equal(t, notes[0], v.Summary().Warnings[0])
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "uncontrolled", Uncontrolled.String())
	assert.Equal(t, "controlled", Controlled.String())
	assert.Equal(t, "mode(5)", Mode(5).String())
}
