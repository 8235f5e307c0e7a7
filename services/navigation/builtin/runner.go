package builtin

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	goutils "go.viam.com/utils"

	"go.viam.com/waypointnav/logging"
)

// A Stepper runs one control period per call.
type Stepper interface {
	Step(ctx context.Context) error
}

// A RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerClock sets the clock whose ticker drives the runner.
func WithRunnerClock(clk clock.Clock) RunnerOption {
	return func(r *Runner) {
		r.clk = clk
	}
}

// Runner calls a Stepper at a fixed frequency in the background.
type Runner struct {
	stepper Stepper
	dt      time.Duration
	clk     clock.Clock
	logger  logging.Logger
	ticks   *atomic.Int64

	mu                      sync.Mutex
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// NewRunner returns a runner stepping stepper frequencyHz times per second.
func NewRunner(stepper Stepper, frequencyHz float64, logger logging.Logger, opts ...RunnerOption) (*Runner, error) {
	if !(frequencyHz > 0) || frequencyHz > 200 {
		return nil, errors.New("loop frequency shouldn't be 0 or above 200Hz")
	}
	r := &Runner{
		stepper: stepper,
		dt:      time.Duration(float64(time.Second) / frequencyHz),
		clk:     clock.New(),
		logger:  logger,
		ticks:   atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Period returns the time between steps.
func (r *Runner) Period() time.Duration {
	return r.dt
}

// Start begins stepping until Stop is called or ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return errors.New("runner already started")
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	ticker := r.clk.Ticker(r.dt)

	r.logger.Infof("running navigation loop every %v", r.dt)
	r.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		for {
			select {
			case <-cancelCtx.Done():
				return
			case <-ticker.C:
			}
			if err := r.stepper.Step(cancelCtx); err != nil {
				r.logger.Errorw("navigation step failed", "error", err)
			}
			r.ticks.Inc()
		}
	}, func() {
		ticker.Stop()
		r.activeBackgroundWorkers.Done()
	})
	return nil
}

// Stop stops stepping and waits for the background worker to exit. It is safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	r.activeBackgroundWorkers.Wait()
}

// Ticks returns how many steps have run.
func (r *Runner) Ticks() int64 {
	return r.ticks.Load()
}
