package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/wheelsim/internal/input"
	"github.com/OCAP2/wheelsim/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadJSON(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	require.NoError(t, Load(dir))
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{
		"logLevel": "debug",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{}`)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "wheelsim", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./telemetry", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "wheelsim", viper.GetString("otel.serviceName"))
	assert.Equal(t, 60, viper.GetInt("sim.tickRate"))
	assert.Equal(t, 600, viper.GetInt("sim.ticks"))
	assert.Equal(t, SimConfig{TickRate: 60, Ticks: 600, StatusInterval: 10 * time.Second}, GetSimConfig())
	assert.Equal(t, 35.0, viper.GetFloat64("control.maxSteerAngleDeg"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "path": "/tmp/wheelsim.db" }
		}
	}`)

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "/tmp/wheelsim.db", sc.SQLite.Path)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{}`)

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "wheelsim", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetInfluxAndDBConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{ "influx": { "enabled": true, "bucket": "runs" } }`)

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "runs", ic.Bucket)
	assert.Equal(t, "wheelsim", ic.Org)
	assert.Equal(t, "8086", ic.Port)

	dc := GetDBConfig()
	assert.Equal(t, "postgres", dc.Username)
	assert.Equal(t, "wheelsim", dc.Database)
}

func TestGetControlLimits(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{ "control": { "maxSteerAngleDeg": 30, "maxEngineTorque": 250 } }`)

	l := GetControlLimits()
	assert.InDelta(t, math.Pi/6, l.MaxSteerAngle, 1e-12)
	assert.Equal(t, 1500.0, l.MaxBrakeTorque)
	assert.Equal(t, 250.0, l.MaxEngineTorque)
}

func TestGetVehicleConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{}`)

	vc, err := GetVehicleConfig()
	require.NoError(t, err)
	assert.Equal(t, "sedan", vc.Name)
	assert.Equal(t, 1500.0, vc.ChassisMass)
	assert.Equal(t, core.RearWheelDrive, vc.Drivetrain)
	assert.Equal(t, 1.2, vc.Front.Frequency)
	assert.Equal(t, 0.3, vc.Rear.DampingFactor)
	assert.Equal(t, 0.8, vc.Rear.Tire.AsymptoteSlip)
	assert.Empty(t, ValidateVehicle(vc))
}

func TestGetVehicleConfig_PartialOverrideKeepsDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{
		"vehicle": {
			"name": "van",
			"drivetrain": "fwd",
			"rear": { "frequency": 1.6, "tire": { "stiffness": 1.4 } }
		}
	}`)

	vc, err := GetVehicleConfig()
	require.NoError(t, err)
	assert.Equal(t, "van", vc.Name)
	assert.Equal(t, core.FrontWheelDrive, vc.Drivetrain)
	assert.Equal(t, 1500.0, vc.ChassisMass)
	assert.Equal(t, 1.6, vc.Rear.Frequency)
	assert.Equal(t, 1.2, vc.Front.Frequency)
	assert.Equal(t, 1.4, vc.Rear.Tire.Stiffness)
	assert.Equal(t, 0.4, vc.Rear.Tire.ExtremumSlip)
}

func TestGetAttachments(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{ "vehicle": { "attachments": { "frontLeft": [-0.9, 1.4, 0.1] } } }`)

	geo, err := GetAttachments()
	require.NoError(t, err)
	require.Len(t, geo, 4)
	assert.Equal(t, core.Vec3{-0.9, 1.4, 0.1}, geo[core.FrontLeft])
	assert.Equal(t, core.Vec3{0.8, -1.3, 0}, geo[core.BackRight])
}

func TestGetAttachments_BadLength(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{ "vehicle": { "attachments": { "backLeft": [1, 2] } } }`)

	_, err := GetAttachments()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "back-left")
}

func TestGetScript(t *testing.T) {
	t.Cleanup(viper.Reset)

	loadJSON(t, `{ "sim": { "script": [
		{ "tick": 1, "accelerator": 0.5 },
		{ "tick": 30, "steering": -1, "brake": 0.2 }
	] } }`)

	frames, err := GetScript()
	require.NoError(t, err)
	assert.Equal(t, []input.Keyframe{
		{Tick: 1, Accelerator: 0.5},
		{Tick: 30, Steering: -1, Brake: 0.2},
	}, frames)
}

func TestValidateVehicle(t *testing.T) {
	good := core.AxleConfig{
		Frequency:   1.2,
		RestLength:  0.3,
		WheelRadius: 0.3,
		Tire:        core.TireCurve{ExtremumSlip: 0.4, AsymptoteSlip: 0.8, Stiffness: 1, Restitution: 0.1},
	}

	tests := []struct {
		name   string
		mutate func(*core.VehicleConfig)
		want   []string
	}{
		{"valid", func(*core.VehicleConfig) {}, nil},
		{"zero mass", func(c *core.VehicleConfig) { c.ChassisMass = 0 }, []string{"chassis mass 0 is not positive"}},
		{"unknown drivetrain", func(c *core.VehicleConfig) { c.Drivetrain = "6x6" }, []string{`unknown drivetrain "6x6"`}},
		{"zero frequency", func(c *core.VehicleConfig) { c.Rear.Frequency = 0 }, []string{"rear: suspension frequency 0 is not positive"}},
		{"negative stiffness", func(c *core.VehicleConfig) { c.Front.Tire.Stiffness = -1 }, []string{"front: tire stiffness -1 is not positive"}},
		{"slip order", func(c *core.VehicleConfig) { c.Front.Tire.ExtremumSlip = 0.9 }, []string{"front: tire extremum slip 0.9 is not below asymptote slip 0.8"}},
		{"restitution", func(c *core.VehicleConfig) { c.Rear.Tire.Restitution = 1.5 }, []string{"rear: tire restitution 1.5 is outside [0, 1]"}},
		{"negative damping", func(c *core.VehicleConfig) { c.Front.DampingFactor = -0.1 }, []string{"front: damping factor -0.1 is negative"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.VehicleConfig{ChassisMass: 1200, Drivetrain: core.AllWheelDrive, Front: good, Rear: good}
			tt.mutate(&cfg)
			assert.Equal(t, tt.want, ValidateVehicle(cfg))
		})
	}
}

func TestSimConfig_TickInterval(t *testing.T) {
	tests := []struct {
		rate int
		want time.Duration
	}{
		{60, time.Second / 60},
		{0, time.Second / DefaultTickRate},
		{-5, time.Second / DefaultTickRate},
		{MaxTickRate, time.Millisecond},
		{2_000_000_000, time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SimConfig{TickRate: tt.rate}.TickInterval(), "rate %d", tt.rate)
		assert.Positive(t, SimConfig{TickRate: tt.rate}.TickInterval())
	}
}
