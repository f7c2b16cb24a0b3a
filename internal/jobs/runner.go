// Package jobs runs the due-schedule batch on a cron timetable.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/recurring-service/internal/models"
)

// BatchExecutor fires every due schedule once
type BatchExecutor interface {
	ExecuteDue(ctx context.Context) (models.BatchReport, error)
}

// Runner triggers ExecuteDue on a cron spec, skipping ticks while a run is
// still in progress
type Runner struct {
	c    *cron.Cron
	exec BatchExecutor
	log  *logrus.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunner parses spec and registers the batch job
func NewRunner(exec BatchExecutor, log *logrus.Logger, spec string) (*Runner, error) {
	cl := cronLogger{log: log}
	r := &Runner{
		exec: exec,
		log:  log,
		c: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	if _, err := r.c.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("failed to schedule batch %q: %w", spec, err)
	}
	return r, nil
}

// Start begins ticking; runs inherit ctx and are cancelled by Stop
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()
	r.c.Start()
	r.log.Info("Batch runner started")
}

// Stop halts the timetable and waits for a run in progress, or for ctx
func (r *Runner) Stop(ctx context.Context) error {
	done := r.c.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		r.mu.Lock()
		if r.cancel != nil {
			r.cancel()
		}
		r.mu.Unlock()
		<-done
		return ctx.Err()
	}
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.log.Info("Batch runner stopped")
	return nil
}

func (r *Runner) run() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := r.exec.ExecuteDue(ctx); err != nil {
		r.log.Errorf("Batch run failed: %v", err)
	}
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
