package config

import (
	"fmt"
	"time"

	"github.com/OCAP2/wheelsim/internal/control"
	"github.com/OCAP2/wheelsim/internal/input"
	"github.com/OCAP2/wheelsim/internal/layout"
	"github.com/OCAP2/wheelsim/pkg/core"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "wheelsim.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the sqlite backend settings. An empty Path keeps the database in memory.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the telemetry backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds postgres connection settings
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Enabled   bool
	Host      string
	Port      string
	Protocol  string
	Token     string
	Org       string
	Bucket    string
	BackupDir string
}

// GraylogConfig holds the GELF sink settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// SimConfig controls the simulation run.
type SimConfig struct {
	TickRate       int           // ticks per second
	Ticks          int           // ticks to run; 0 runs until interrupted
	Remote         bool          // vehicle is owned by another peer; ticks are skipped
	StatusInterval time.Duration // period of the status log line
}

// Tick rate bounds in ticks per second. Rates outside them are clamped.
const (
	DefaultTickRate = 60
	MaxTickRate     = 1000
)

// TickInterval is the ticker period for TickRate, with non-positive rates
// replaced by DefaultTickRate and high rates capped at MaxTickRate.
func (s SimConfig) TickInterval() time.Duration {
	rate := s.TickRate
	switch {
	case rate <= 0:
		rate = DefaultTickRate
	case rate > MaxTickRate:
		rate = MaxTickRate
	}
	return time.Second / time.Duration(rate)
}

// Attachments are the chassis-relative wheel attachment points as [x, y, z].
// A missing entry leaves that wheel without geometry.
type Attachments struct {
	FrontLeft  []float64 `json:"frontLeft" mapstructure:"frontLeft"`
	FrontRight []float64 `json:"frontRight" mapstructure:"frontRight"`
	BackLeft   []float64 `json:"backLeft" mapstructure:"backLeft"`
	BackRight  []float64 `json:"backRight" mapstructure:"backRight"`
}

type vehicleSection struct {
	core.VehicleConfig `mapstructure:",squash"`
	Attachments        Attachments `mapstructure:"attachments"`
}

// fileConfig mirrors the sections decoded as structs. viper.Unmarshal merges
// defaults key by key, which UnmarshalKey on a parent key does not.
type fileConfig struct {
	Vehicle vehicleSection `mapstructure:"vehicle"`
	Sim     struct {
		Script []input.Keyframe `mapstructure:"script"`
	} `mapstructure:"sim"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "wheelsim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("sim.tickRate", DefaultTickRate)
	viper.SetDefault("sim.ticks", 600)
	viper.SetDefault("sim.remote", false)
	viper.SetDefault("sim.statusInterval", "10s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./telemetry")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "wheelsim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "wheelsim")
	viper.SetDefault("influx.bucket", "vehicle-telemetry")
	viper.SetDefault("influx.backupDir", "./telemetry")

	viper.SetDefault("control.maxSteerAngleDeg", 35.0)
	viper.SetDefault("control.maxBrakeTorque", 1500.0)
	viper.SetDefault("control.maxEngineTorque", 400.0)

	viper.SetDefault("vehicle.name", "sedan")
	viper.SetDefault("vehicle.chassisMass", 1500.0)
	viper.SetDefault("vehicle.drivetrain", string(core.RearWheelDrive))
	for _, axle := range []string{"front", "rear"} {
		prefix := "vehicle." + axle + "."
		viper.SetDefault(prefix+"restLength", 0.35)
		viper.SetDefault(prefix+"travel", 0.2)
		viper.SetDefault(prefix+"frequency", 1.2)
		viper.SetDefault(prefix+"dampingFactor", 0.3)
		viper.SetDefault(prefix+"trackAdjust", 0.0)
		viper.SetDefault(prefix+"wheelMass", 20.0)
		viper.SetDefault(prefix+"wheelRadius", 0.34)
		viper.SetDefault(prefix+"wheelWidth", 0.24)
		viper.SetDefault(prefix+"tire.extremumSlip", 0.4)
		viper.SetDefault(prefix+"tire.extremumValue", 1.0)
		viper.SetDefault(prefix+"tire.asymptoteSlip", 0.8)
		viper.SetDefault(prefix+"tire.asymptoteValue", 0.5)
		viper.SetDefault(prefix+"tire.stiffness", 1.0)
		viper.SetDefault(prefix+"tire.restitution", 0.1)
	}
	viper.SetDefault("vehicle.attachments.frontLeft", []float64{-0.8, 1.2, 0})
	viper.SetDefault("vehicle.attachments.frontRight", []float64{0.8, 1.2, 0})
	viper.SetDefault("vehicle.attachments.backLeft", []float64{-0.8, -1.3, 0})
	viper.SetDefault("vehicle.attachments.backRight", []float64{0.8, -1.3, 0})
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the telemetry backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetDBConfig returns the postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the InfluxDB connection settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:   viper.GetBool("influx.enabled"),
		Host:      viper.GetString("influx.host"),
		Port:      viper.GetString("influx.port"),
		Protocol:  viper.GetString("influx.protocol"),
		Token:     viper.GetString("influx.token"),
		Org:       viper.GetString("influx.org"),
		Bucket:    viper.GetString("influx.bucket"),
		BackupDir: viper.GetString("influx.backupDir"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetSimConfig returns the simulation run settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		TickRate:       viper.GetInt("sim.tickRate"),
		Ticks:          viper.GetInt("sim.ticks"),
		Remote:         viper.GetBool("sim.remote"),
		StatusInterval: viper.GetDuration("sim.statusInterval"),
	}
}

// GetControlLimits returns the control mapper limits.
func GetControlLimits() control.Limits {
	return control.LimitsFromDegrees(
		viper.GetFloat64("control.maxSteerAngleDeg"),
		viper.GetFloat64("control.maxBrakeTorque"),
		viper.GetFloat64("control.maxEngineTorque"),
	)
}

func unmarshal() (fileConfig, error) {
	var fc fileConfig
	if err := viper.Unmarshal(&fc); err != nil {
		return fc, fmt.Errorf("error decoding config: %w", err)
	}
	return fc, nil
}

// GetVehicleConfig returns the vehicle section.
func GetVehicleConfig() (core.VehicleConfig, error) {
	fc, err := unmarshal()
	if err != nil {
		return core.VehicleConfig{}, err
	}
	return fc.Vehicle.VehicleConfig, nil
}

// GetAttachments returns the configured wheel attachment points.
// Wheels without an entry are left out so that vehicle creation reports them.
func GetAttachments() (layout.StaticGeometry, error) {
	fc, err := unmarshal()
	if err != nil {
		return nil, err
	}
	a := fc.Vehicle.Attachments
	geo := layout.StaticGeometry{}
	for idx, p := range map[core.WheelIndex][]float64{
		core.FrontLeft:  a.FrontLeft,
		core.FrontRight: a.FrontRight,
		core.BackLeft:   a.BackLeft,
		core.BackRight:  a.BackRight,
	} {
		switch len(p) {
		case 0:
		case 3:
			geo[idx] = core.Vec3{p[0], p[1], p[2]}
		default:
			return nil, fmt.Errorf("attachment %s: want 3 coordinates, got %d", idx, len(p))
		}
	}
	return geo, nil
}

// GetScript returns the scripted driver input, or nil when none is configured.
func GetScript() ([]input.Keyframe, error) {
	fc, err := unmarshal()
	if err != nil {
		return nil, err
	}
	return fc.Sim.Script, nil
}
