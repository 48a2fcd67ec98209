package occupancy

import (
	"context"
	"sync"
	"time"

	"smartparking/models"
	"smartparking/utils"

	"go.uber.org/zap"
)

// ReleaseHandler is told about every hold a sweep released.
type ReleaseHandler interface {
	HandleRelease(ctx context.Context, spot models.Spot)
}

// ReleaseHandlerFunc adapts a function to ReleaseHandler.
type ReleaseHandlerFunc func(ctx context.Context, spot models.Spot)

func (f ReleaseHandlerFunc) HandleRelease(ctx context.Context, spot models.Spot) { f(ctx, spot) }

// Sweeper runs UpdateExpiredOccupancies on a fixed period and on demand.
// At most one sweep runs at a time; requests arriving during a run are
// folded into it.
type Sweeper struct {
	Engine   OccupancyEngine
	Interval time.Duration
	Handlers []ReleaseHandler
	Logger   *zap.Logger

	running sync.Mutex
	trigger chan struct{}

	lastMu sync.RWMutex
	last   models.SweepReport
}

func NewSweeper(engine OccupancyEngine, interval time.Duration, logger *zap.Logger, handlers ...ReleaseHandler) *Sweeper {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		Engine:   engine,
		Interval: interval,
		Handlers: handlers,
		Logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Start sweeps once immediately, then on every tick or trigger until ctx is
// done. It blocks; run it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Logger.Info("Occupancy sweeper started", zap.Duration("interval", s.Interval))
	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("Occupancy sweeper shutdown signal received.")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-s.trigger:
			s.RunOnce(ctx)
		}
	}
}

// Trigger requests a sweep without waiting for it. Requests made while one
// is already pending are dropped.
func (s *Sweeper) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// RunOnce sweeps synchronously. It returns false without sweeping when
// another sweep is in progress.
func (s *Sweeper) RunOnce(ctx context.Context) (models.SweepReport, bool) {
	if !s.running.TryLock() {
		utils.SweepsCoalesced.Inc()
		return models.SweepReport{}, false
	}
	defer s.running.Unlock()

	began := time.Now()
	report := s.Engine.UpdateExpiredOccupancies(ctx)
	utils.ObserveSweep(time.Since(began), len(report.Released), report.Failed, report.Err != nil)

	for _, spot := range report.Released {
		for _, h := range s.Handlers {
			h.HandleRelease(ctx, spot)
		}
	}
	if len(report.Released) > 0 || report.Failed > 0 {
		s.Logger.Info("Occupancy sweep finished",
			zap.Int("scanned", report.Scanned),
			zap.Int("released", len(report.Released)),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}

	s.lastMu.Lock()
	s.last = report
	s.lastMu.Unlock()
	return report, true
}

// LastReport returns the report of the most recent completed sweep.
func (s *Sweeper) LastReport() models.SweepReport {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}
