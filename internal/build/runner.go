package build

import (
	"context"
	stderrors "errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/logging"
)

// Runner executes task trees. A Runner may be reused; each Run gets its own
// metrics.
type Runner struct {
	logger logging.Logger
}

// NewRunner creates a runner that logs through logger.
func NewRunner(logger logging.Logger) *Runner {
	return &Runner{logger: logger.WithComponent("build")}
}

// Run executes task and returns the metrics of the run together with the
// first fatal error. Step failures come back as ErrStepFailed errors naming
// the step.
func (r *Runner) Run(ctx context.Context, task *Task) (*RunMetrics, error) {
	metrics := NewRunMetrics()
	if err := task.Validate(); err != nil {
		return metrics, errors.NewInternalError(errors.ErrCodeInternalError, "invalid task tree", err)
	}

	err := r.run(ctx, task, metrics)
	metrics.finish()

	s := metrics.Summary()
	fields := []interface{}{
		"task", task.Name,
		"steps", s.Steps,
		"failed", s.Failed,
		"tolerated", s.Tolerated,
		"duration", s.Elapsed.String(),
	}
	if err != nil {
		r.logger.Error(ctx, err, "Run failed", fields...)
	} else {
		r.logger.Info(ctx, "Run finished", fields...)
	}
	return metrics, err
}

func (r *Runner) run(ctx context.Context, task *Task, metrics *RunMetrics) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	r.logger.Info(ctx, "Starting '"+task.Name+"'...")

	var err error
	switch task.Mode {
	case ModeStep:
		err = r.runStep(ctx, task, metrics)
	case ModeSeries:
		err = r.runSeries(ctx, task, metrics)
	case ModeParallel:
		err = r.runParallel(ctx, task, metrics)
	case ModeBestEffort:
		err = r.runBestEffort(ctx, task, metrics)
	}

	elapsed := time.Since(start)
	if err == nil {
		r.logger.Info(ctx, "Finished '"+task.Name+"'", "duration", elapsed.String())
		return nil
	}

	if task.Tolerant {
		r.logger.Warn(ctx, err, "Ignoring failure of '"+task.Name+"'", "duration", elapsed.String())
		return nil
	}

	if task.Mode != ModeStep {
		r.logger.Error(ctx, err, "'"+task.Name+"' errored", "duration", elapsed.String())
	}
	return err
}

func (r *Runner) runStep(ctx context.Context, task *Task, metrics *RunMetrics) error {
	start := time.Now()
	err := task.Action(ctx)
	if err != nil {
		r.logger.Error(ctx, err, task.Name+" error", "step", task.Name)
		err = errors.ErrStepFailed(task.Name, err)
	}
	metrics.RecordStep(StepResult{
		Name:      task.Name,
		Duration:  time.Since(start),
		Err:       err,
		Tolerated: err != nil && task.Tolerant,
	})
	return err
}

func (r *Runner) runSeries(ctx context.Context, task *Task, metrics *RunMetrics) error {
	for _, child := range task.Children {
		if err := r.run(ctx, child, metrics); err != nil {
			return err
		}
	}
	return nil
}

// runParallel waits for every child even after one fails. Children write to
// disjoint paths, so there is nothing to roll back.
func (r *Runner) runParallel(ctx context.Context, task *Task, metrics *RunMetrics) error {
	var g errgroup.Group
	for _, child := range task.Children {
		g.Go(func() error {
			return r.run(ctx, child, metrics)
		})
	}
	return g.Wait()
}

func (r *Runner) runBestEffort(ctx context.Context, task *Task, metrics *RunMetrics) error {
	var errs []error
	for _, child := range task.Children {
		if err := r.run(ctx, child, metrics); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
