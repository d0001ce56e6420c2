package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/wheelsim/pkg/core"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger   *slog.Logger
	Vehicle  string
	Interval time.Duration
	// Pending reports telemetry queued but not yet written; may be nil
	Pending func() int
}

// Status is a point-in-time view of the simulation loop
type Status struct {
	Time           time.Time `json:"time"`
	Vehicle        string    `json:"vehicle"`
	Tick           uint64    `json:"tick"`
	Applied        uint64    `json:"applied"`
	Skipped        uint64    `json:"skipped"`
	LastSkipReason string    `json:"lastSkipReason,omitempty"`
	Pending        int       `json:"pending"`
	TicksPerSecond float64   `json:"ticksPerSecond"`
}

// Service counts reported ticks and periodically logs the loop status
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}

	status    Status
	lastTick  uint64
	lastCheck time.Time
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 10 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		deps:   deps,
		status: Status{Vehicle: deps.Vehicle},
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Report records the outcome of one tick. Safe to call from the loop goroutine
// while the monitor is logging.
func (s *Service) Report(sample core.TickSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Tick = sample.Tick
	s.status.Time = sample.Time
	if sample.Skipped {
		s.status.Skipped++
		s.status.LastSkipReason = sample.SkipReason
	} else {
		s.status.Applied++
	}
}

// GetStatus returns the current status
func (s *Service) GetStatus() Status {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()

	if s.deps.Pending != nil {
		st.Pending = s.deps.Pending()
	}
	return st
}

// Start begins periodic status logging until ctx is done or Stop is called
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.lastCheck = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.setStopped()
				return
			case <-s.stopChan:
				s.setStopped()
				return
			case now := <-ticker.C:
				s.logStatus(now)
			}
		}
	}()
}

// Stop halts status logging and waits for the goroutine to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Service) setStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

func (s *Service) logStatus(now time.Time) {
	s.mu.Lock()
	elapsed := now.Sub(s.lastCheck).Seconds()
	if elapsed > 0 {
		s.status.TicksPerSecond = float64(s.status.Tick-s.lastTick) / elapsed
	}
	s.lastTick = s.status.Tick
	s.lastCheck = now
	s.mu.Unlock()

	st := s.GetStatus()
	s.deps.Logger.Info("Simulation status",
		"vehicle", st.Vehicle,
		"tick", st.Tick,
		"applied", st.Applied,
		"skipped", st.Skipped,
		"pending", st.Pending,
		"ticksPerSecond", st.TicksPerSecond,
	)
}
