package deadlines

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/taskforge/taskforge/internal/app/system"
	"github.com/taskforge/taskforge/pkg/logger"
)

var _ system.Service = (*Runner)(nil)

// Runner executes the sweeper on a cron schedule.
type Runner struct {
	sweeper  *Sweeper
	schedule string
	log      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

// NewRunner wraps the sweeper in a scheduled service. The schedule uses the
// standard cron syntax, including @every descriptors.
func NewRunner(sweeper *Sweeper, schedule string, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewDefault("deadline-runner")
	}
	if schedule == "" {
		schedule = "@every 1h"
	}
	return &Runner{sweeper: sweeper, schedule: schedule, log: log}
}

func (r *Runner) Name() string { return "deadline-sweeper" }

func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New()
	_, err := c.AddFunc(r.schedule, func() {
		if _, err := r.sweeper.SweepOnce(runCtx); err != nil {
			r.log.WithError(err).Error("deadline sweep failed")
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("invalid sweep schedule %q: %w", r.schedule, err)
	}
	c.Start()

	r.cron = c
	r.cancel = cancel
	r.running = true
	r.log.WithField("schedule", r.schedule).Info("deadline sweeper started")
	return nil
}

func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	cancel := r.cancel
	r.cron = nil
	r.cancel = nil
	running := r.running
	r.running = false
	r.mu.Unlock()

	if !running {
		return nil
	}
	if cancel != nil {
		cancel()
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.log.Info("deadline sweeper stopped")
	return nil
}
