// Package worker runs the poll → decide → respond loop against an
// orchestration service. It owns no decision logic: each polled task is
// routed through a registry to the Decider declared for its workflow.
package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/petrijr/decisor/internal/engine"
	"github.com/petrijr/decisor/pkg/api"
)

// Config describes a Worker.
type Config struct {
	// TaskQueue is the queue polled for decision tasks.
	TaskQueue string

	Logger *slog.Logger
}

// Worker polls a DecisionClient for decision tasks and submits the
// responses produced by registered deciders.
type Worker struct {
	client   api.DecisionClient
	registry *engine.DeciderRegistry
	queue    string
	logger   *slog.Logger
}

// New creates a Worker with an empty decider registry.
func New(client api.DecisionClient, cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		client:   client,
		registry: engine.NewDeciderRegistry(),
		queue:    cfg.TaskQueue,
		logger:   logger,
	}
}

// Register binds a decider factory to a workflow name and version. An empty
// version defaults to "v1". Call during startup, before Run.
func (w *Worker) Register(name, version string, factory api.DeciderFactory) error {
	return w.registry.Register(name, version, factory)
}

// RegisterChain is a convenience that registers the default chain-walking
// decider for the given workflow.
func (w *Worker) RegisterChain(name, version string, chain api.StepChain) error {
	return w.Register(name, version, func() api.Decider {
		return engine.New(engine.Config{
			Chain:   chain,
			Fetcher: w.client,
			Logger:  w.logger,
		})
	})
}

// ProcessOne polls for a single decision task and processes it.
// Returns (processed, error):
//   - processed == false, err == nil: the poll returned no task.
//   - processed == true: a task was handled; err reports whether deciding
//     and responding succeeded.
//
// A decide error wrapping api.ErrUnhandledEvent means no response was (or
// may be) submitted for that task; the task will time out at the service and
// be redelivered.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	task, err := w.client.PollDecisionTask(ctx, w.queue)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	decider, err := w.registry.Resolve(task.WorkflowName, task.WorkflowVersion)
	if err != nil {
		return true, err
	}

	resp, err := decider.Decide(ctx, task)
	if err != nil {
		return true, err
	}

	return true, w.client.RespondDecision(ctx, resp)
}

// Run polls until ctx is done. Errors from individual tasks are logged and
// do not stop the loop; a single bad history must not kill the worker.
func (w *Worker) Run(ctx context.Context) error {
	for {
		processed, err := w.ProcessOne(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.logger.ErrorContext(ctx, "decision_task_failed",
				slog.String("task_queue", w.queue),
				slog.Any("error", err),
			)
			continue
		}
		if !processed {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
}
