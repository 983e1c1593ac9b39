// Package jobs runs the periodic quest sweeps.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/modules/service"
	"github.com/glitch-app/glitch/internal/telemetry"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	JobQuestExpiry = "quest-expiry"
	JobQuestPurge  = "quest-purge"
)

// SweepResult describes one finished sweep pass.
type SweepResult struct {
	Job       string
	Affected  int64
	IDs       []uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

type Scheduler struct {
	gs      gocron.Scheduler
	sweeps  service.SweepService
	clock   clockwork.Clock
	log     *zap.Logger
	results chan SweepResult
	mu      sync.Mutex
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the expiry and purge jobs. locker may be nil, in which case every
// replica sweeps on its own schedule.
func New(sweeps service.SweepService, cfg *config.Config, clock clockwork.Clock, log *zap.Logger, locker gocron.Locker) (*Scheduler, error) {
	opts := []gocron.SchedulerOption{
		gocron.WithLogger(zapLogger{l: log.Named("gocron").Sugar()}),
		gocron.WithClock(clock),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		),
	}
	if locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(locker))
	}
	gs, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}

	buf := cfg.Scheduler.ResultsBuffer
	if buf <= 0 {
		buf = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		gs:      gs,
		sweeps:  sweeps,
		clock:   clock,
		log:     log,
		results: make(chan SweepResult, buf),
		ctx:     ctx,
		cancel:  cancel,
	}

	jobs := []struct {
		name     string
		interval time.Duration
		run      func() error
	}{
		{JobQuestExpiry, cfg.Scheduler.ExpiryInterval, s.runExpiry},
		{JobQuestPurge, cfg.Scheduler.PurgeInterval, s.runPurge},
	}
	for _, j := range jobs {
		_, err := gs.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(j.run),
			gocron.WithName(j.name),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			cancel()
			_ = gs.Shutdown()
			return nil, fmt.Errorf("register %s: %w", j.name, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info("sweep scheduler started")
	s.gs.Start()
}

// Stop cancels in-flight sweeps, waits for them to return and closes Results.
func (s *Scheduler) Stop() error {
	s.cancel()
	err := s.gs.Shutdown()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.results)
	}
	return err
}

// Results yields one entry per sweep pass. Entries are dropped when the buffer is full.
func (s *Scheduler) Results() <-chan SweepResult {
	return s.results
}

func (s *Scheduler) runExpiry() error {
	started := s.clock.Now()
	report, err := s.sweeps.ExpireDue(s.ctx)

	res := SweepResult{Job: JobQuestExpiry, StartedAt: started, Duration: s.clock.Since(started), Err: err}
	if report != nil {
		res.Affected = int64(len(report.Expired))
		res.IDs = make([]uuid.UUID, len(report.Expired))
		for i, q := range report.Expired {
			res.IDs[i] = q.ID
		}
	}
	s.finish(res)
	return err
}

func (s *Scheduler) runPurge() error {
	started := s.clock.Now()
	report, err := s.sweeps.PurgeStale(s.ctx)

	res := SweepResult{Job: JobQuestPurge, StartedAt: started, Duration: s.clock.Since(started), Err: err}
	if report != nil {
		res.Affected = report.Purged
	}
	s.finish(res)
	return err
}

func (s *Scheduler) finish(res SweepResult) {
	telemetry.RecordSweep(s.ctx, res.Job, res.Affected, res.Duration, res.Err)
	switch {
	case res.Err != nil:
		s.log.Error("sweep failed, retrying next interval", zap.String("job", res.Job), zap.Error(res.Err))
	case res.Affected > 0:
		s.log.Info("sweep finished",
			zap.String("job", res.Job),
			zap.Int64("affected", res.Affected),
			zap.Duration("took", res.Duration))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.results <- res:
	default:
	}
}

// zapLogger adapts zap to gocron.Logger; gocron passes key/value pairs.
type zapLogger struct {
	l *zap.SugaredLogger
}

func (z zapLogger) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z zapLogger) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z zapLogger) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z zapLogger) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }
