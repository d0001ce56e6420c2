package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/OCAP2/wheelsim/internal/config"
	"github.com/OCAP2/wheelsim/internal/input"
	"github.com/OCAP2/wheelsim/internal/logging"
	"github.com/OCAP2/wheelsim/internal/monitor"
	intOtel "github.com/OCAP2/wheelsim/internal/otel"
	"github.com/OCAP2/wheelsim/internal/physics"
	"github.com/OCAP2/wheelsim/internal/storage"
	"github.com/OCAP2/wheelsim/internal/vehicle"
	"github.com/OCAP2/wheelsim/pkg/core"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "wheelsim"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// LogFile is the session log, nil when logging to stdout
	LogFile *os.File

	SessionStartTime time.Time = time.Now()

	// currentTick is attached to every log record
	currentTick atomic.Uint64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// setupLogging loads config from configDir and wires the slog, OTel and
// Graylog sinks. The returned func flushes and closes them.
func setupLogging(configDir string) func() {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	logFilePath := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	f, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", logFilePath)
	} else {
		LogFile = f
		Logger.Info("Begin logging in logs directory", "path", logFilePath)
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			ServiceVersion: CurrentVersion,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      logWriter(),
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
			ErrorLogger:    Logger,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var extra []slog.Handler
	var graylog *logging.GraylogHandler
	if gl := config.GetGraylogConfig(); gl.Enabled {
		graylog, err = logging.NewGraylogHandler(gl.Address, viper.GetString("logLevel"))
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err, "address", gl.Address)
		} else {
			extra = append(extra, graylog)
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.Uint64("tick", currentTick.Load())}
	})
	var file io.Writer
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, viper.GetString("logLevel"), otelLogProvider, extra...)
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)
	Logger.Info("Starting up", "version", CurrentVersion, "buildDate", BuildDate)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := SlogManager.Flush(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
		}
		if OTelProvider != nil {
			if err := OTelProvider.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to shut down OTel provider: %v\n", err)
			}
		}
		if graylog != nil {
			graylog.Close()
		}
		if LogFile != nil {
			LogFile.Close()
		}
	}
}

// logWriter is where the file-bound loggers write: the session log, or stdout.
func logWriter() io.Writer {
	if LogFile != nil {
		return LogFile
	}
	return os.Stdout
}

// buildVehicle reads the vehicle config and creates it in a recording engine.
func buildVehicle() (*vehicle.Vehicle, *physics.BatchRecorder, error) {
	cfg, err := config.GetVehicleConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read vehicle config: %w", err)
	}
	warnings := config.ValidateVehicle(cfg)
	for _, w := range warnings {
		Logger.Warn("Vehicle config warning", "vehicle", cfg.Name, "warning", w)
	}

	geometry, err := config.GetAttachments()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read attachments: %w", err)
	}

	engine := physics.NewBatchRecorder()
	opts := []vehicle.Option{vehicle.WithLogger(Logger), vehicle.WithWarnings(warnings)}
	if config.GetSimConfig().Remote {
		opts = append(opts, vehicle.WithRemote())
	}
	v, err := vehicle.New(cfg, geometry, engine, config.GetControlLimits(), opts...)
	if err != nil {
		return nil, nil, err
	}
	return v, engine, nil
}

// scriptSource returns the configured keyframe script, or the built-in one.
func scriptSource() (*input.Script, error) {
	frames, err := config.GetScript()
	if err != nil {
		return nil, fmt.Errorf("failed to read input script: %w", err)
	}
	if len(frames) == 0 {
		Logger.Info("No input script configured, using default script")
		return input.DefaultScript(), nil
	}
	return input.NewScript(frames), nil
}

// simulate builds the vehicle and drives it for the configured number of ticks.
func simulate(ctx context.Context) error {
	v, engine, err := buildVehicle()
	if err != nil {
		return err
	}

	backend, err := createStorageBackend(config.GetStorageConfig())
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
		if exp, ok := backend.(storage.Exporter); ok {
			for _, p := range exp.ExportedFilePaths() {
				Logger.Info("Telemetry exported", "path", p)
			}
		}
	}()

	summary := v.Summary()
	if err := backend.AddVehicle(&summary); err != nil {
		return fmt.Errorf("failed to record vehicle: %w", err)
	}

	script, err := scriptSource()
	if err != nil {
		return err
	}
	v.AttachInput(script)

	sim := config.GetSimConfig()
	deps := monitor.Dependencies{
		Logger:   Logger,
		Vehicle:  v.Name(),
		Interval: sim.StatusInterval,
	}
	if p, ok := backend.(interface{ Pending() int }); ok {
		deps.Pending = p.Pending
	}
	mon := monitor.NewService(deps)
	mon.Start(ctx)
	defer mon.Stop()

	Logger.Info("Simulation started", "vehicle", v.Name(), "tickRate", sim.TickRate, "ticks", sim.Ticks)
	err = runLoop(ctx, v, engine, backend, mon, summary.ID, sim)
	Logger.Info("Simulation finished", "ticks", v.Ticks(), "mode", v.Mode().String())
	return err
}

// runLoop ticks the vehicle at sim.TickRate until sim.Ticks have run or ctx is done.
func runLoop(ctx context.Context, v *vehicle.Vehicle, engine *physics.BatchRecorder, backend storage.Backend, mon *monitor.Service, vehicleID uint, sim config.SimConfig) error {
	ticker := time.NewTicker(sim.TickInterval())
	defer ticker.Stop()

	for n := 0; sim.Ticks <= 0 || n < sim.Ticks; n++ {
		select {
		case <-ctx.Done():
			Logger.Info("Simulation interrupted", "ticks", v.Ticks())
			return nil
		case <-ticker.C:
		}

		sample, err := v.Tick(ctx)
		currentTick.Store(sample.Tick)
		if err != nil && !errors.Is(err, vehicle.ErrRemote) && !errors.Is(err, vehicle.ErrBodyInvalid) {
			return err
		}
		recordTick(backend, vehicleID, sample)
		if mon != nil {
			mon.Report(sample)
		}

		// the recording engine keeps every command; only the last state matters here
		engine.Calls()
	}
	return nil
}

func recordTick(backend storage.Backend, vehicleID uint, sample core.TickSample) {
	sample.VehicleID = vehicleID
	if err := backend.RecordTick(&sample); err != nil {
		Logger.Error("Failed to record tick", "error", err)
	}
}

// defaultDumpPath is where an in-memory SQLite database is written on shutdown.
func defaultDumpPath() string {
	return logging.DumpFilePath(viper.GetString("logsDir"), AppName, SessionStartTime)
}
