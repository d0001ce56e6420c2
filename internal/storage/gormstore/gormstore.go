// Package gormstore implements the storage.Backend interface on top of the
// database manager, with tick samples buffered in a queue and written in
// batches by a background goroutine.
package gormstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/wheelsim/internal/config"
	"github.com/OCAP2/wheelsim/internal/database"
	"github.com/OCAP2/wheelsim/internal/model"
	"github.com/OCAP2/wheelsim/internal/model/convert"
	"github.com/OCAP2/wheelsim/internal/queue"
	"github.com/OCAP2/wheelsim/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	defaultFlushInterval = time.Second
	defaultBatchSize     = 500
	defaultQueueLimit    = 100000
)

// Config selects the database. Postgres wins when set; otherwise SQLite at
// SQLitePath, in memory when the path is empty.
type Config struct {
	Postgres      *config.DBConfig
	SQLitePath    string
	DumpPath      string // VACUUM INTO target for in-memory SQLite on Close
	FlushInterval time.Duration
	BatchSize     int
	QueueLimit    int
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	cfg   Config
	db    *database.Manager
	log   zerolog.Logger
	ticks *queue.Queue[model.TickSample]

	stopChan chan struct{}
	wg       sync.WaitGroup
	closed   bool
}

// New creates a new GORM storage backend.
func New(cfg Config, log zerolog.Logger) *Backend {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = defaultQueueLimit
	}
	return &Backend{
		cfg: cfg,
		log: log,
	}
}

// Init connects, runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.db = database.NewManager(b.log)

	var err error
	if b.cfg.Postgres != nil {
		err = b.db.Connect(*b.cfg.Postgres)
	} else {
		err = b.db.ConnectSQLite(b.cfg.SQLitePath)
	}
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if b.db.ShouldSaveLocal && b.cfg.SQLitePath == "" {
		b.db.SqliteFilePath = b.cfg.DumpPath
	}

	if err := b.db.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.ticks = queue.New[model.TickSample](b.cfg.QueueLimit)
	b.stopChan = make(chan struct{})
	b.wg.Add(1)
	go b.writer()
	return nil
}

// DB exposes the underlying connection.
func (b *Backend) DB() *gorm.DB {
	if b.db == nil {
		return nil
	}
	return b.db.DB
}

// Close stops the writer, flushes pending samples and closes the connection.
// An in-memory SQLite database is dumped to DumpPath first when one is set.
func (b *Backend) Close() error {
	if b.db == nil || b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		if err := b.flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.db.IsValid && b.db.SqliteFilePath != "" {
		if err := b.db.DumpMemoryToDisk(); err != nil {
			errs = append(errs, err)
		} else {
			b.log.Info().Str("path", b.db.SqliteFilePath).Msg("Dumped telemetry database")
		}
	}
	if err := b.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// AddVehicle writes the vehicle and its wheels synchronously to obtain the ID.
func (b *Backend) AddVehicle(v *core.VehicleSummary) error {
	if b.db == nil || !b.db.IsValid {
		return fmt.Errorf("db not ready")
	}

	row, err := convert.CoreToVehicle(*v)
	if err != nil {
		return err
	}
	row.ID = 0
	for i := range row.Wheels {
		row.Wheels[i].ID = 0
		row.Wheels[i].VehicleID = 0
	}
	if err := b.db.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("error creating vehicle: %w", err)
	}

	v.ID = row.ID
	if v.CreatedAt.IsZero() {
		v.CreatedAt = row.CreatedAt
	}
	b.log.Debug().Uint("id", row.ID).Str("name", row.Name).Msg("Vehicle stored")
	return nil
}

// RecordTick queues a sample for the next batch write.
func (b *Backend) RecordTick(s *core.TickSample) error {
	if b.ticks == nil {
		return fmt.Errorf("db not ready")
	}
	if s.VehicleID == 0 {
		return fmt.Errorf("tick %d has no vehicle id", s.Tick)
	}
	if dropped := b.ticks.Push(convert.CoreToTickSample(*s)); dropped > 0 {
		b.log.Warn().Int("dropped", dropped).Msg("Tick queue full, dropped oldest samples")
	}
	return nil
}

// Pending returns the number of queued samples not yet written.
func (b *Backend) Pending() int {
	if b.ticks == nil {
		return 0
	}
	return b.ticks.Len()
}

func (b *Backend) writer() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.flush(); err != nil {
				b.log.Error().Err(err).Msg("Error writing tick samples")
			}
		}
	}
}

// flush writes all queued samples in one transaction, requeueing them on failure.
func (b *Backend) flush() error {
	if b.ticks.Empty() {
		return nil
	}

	items := b.ticks.GetAndEmpty()
	start := time.Now()
	err := b.db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&items, b.cfg.BatchSize).Error
	})
	if err != nil {
		b.ticks.Requeue(items...)
		return fmt.Errorf("error creating tick samples: %w", err)
	}

	b.log.Debug().Int("count", len(items)).Dur("duration", time.Since(start)).Msg("Wrote tick samples")
	return nil
}
