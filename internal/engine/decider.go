package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/petrijr/decisor/pkg/api"
)

// ChainDecider is the replay-and-decide engine: it folds one decision task's
// history into a DecisionContext and dispatches on the deciding event kind
// to a DecisionHandler. It keeps no state between calls; every invocation
// reconstructs everything it needs from the replayed history, which is what
// makes a crashed-and-retried decision safe.
type ChainDecider struct {
	handler api.DecisionHandler
	fetcher api.HistoryFetcher
	logger  *slog.Logger
}

// Config describes how to construct a ChainDecider.
type Config struct {
	// Chain is the step chain the default handler walks. Ignored when
	// Handler is set.
	Chain api.StepChain

	// Handler overrides the default chain-walking handler.
	Handler api.DecisionHandler

	// Fetcher retrieves history pages beyond the one embedded in the task.
	// May be nil when histories always fit in a single page.
	Fetcher api.HistoryFetcher

	Logger *slog.Logger
}

// New constructs a ChainDecider from cfg.
func New(cfg Config) *ChainDecider {
	h := cfg.Handler
	if h == nil {
		h = NewChainHandler(cfg.Chain)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainDecider{
		handler: h,
		fetcher: cfg.Fetcher,
		logger:  logger,
	}
}

// Decide replays the task's history and returns the single response to
// submit. On an unhandled deciding event kind it returns an error wrapping
// api.ErrUnhandledEvent and no response; nothing must be submitted then.
func (d *ChainDecider) Decide(ctx context.Context, task *api.DecisionTask) (*api.DecisionResponse, error) {
	pager := NewEventPager(task, d.fetcher)
	dc := api.NewDecisionContext(task.WorkflowName, task.WorkflowVersion, task.WorkflowID)

	for i := 0; ; i++ {
		ev, ok := pager.Get(ctx, i)
		if !ok {
			break
		}
		dc.Apply(ev)
	}

	decisions, err := d.dispatch(dc)
	if err != nil {
		return nil, err
	}

	d.logger.DebugContext(ctx, "decision_made",
		slog.String("workflow", dc.WorkflowName),
		slog.String("workflow_id", dc.WorkflowID),
		slog.String("deciding_event", string(dc.DecidingEvent)),
		slog.Int("events_replayed", pager.Loaded()),
		slog.Int("decisions", len(decisions)),
	)

	return &api.DecisionResponse{
		TaskToken:        task.TaskToken,
		ExecutionContext: dc.ExecutionContext,
		Decisions:        decisions,
	}, nil
}

func (d *ChainDecider) dispatch(c *api.DecisionContext) ([]api.Decision, error) {
	switch c.DecidingEvent {
	case api.EventWorkflowStarted, api.EventWorkflowContinued:
		return d.handler.OnWorkflowStarted(c)
	case api.EventCancelRequested:
		return d.handler.OnWorkflowCancelRequested(c)

	case api.EventActivityCompleted:
		return d.handler.OnActivityTaskCompleted(c)
	case api.EventActivityFailed:
		return d.handler.OnActivityTaskFailed(c)
	case api.EventActivityTimedOut:
		return d.handler.OnActivityTaskTimedOut(c)
	case api.EventScheduleActivityFailed:
		return d.handler.OnScheduleActivityTaskFailed(c)

	case api.EventChildWorkflowStarted:
		return d.handler.OnChildWorkflowStarted(c)
	case api.EventChildWorkflowCompleted:
		return d.handler.OnChildWorkflowCompleted(c)
	case api.EventChildWorkflowFailed:
		return d.handler.OnChildWorkflowFailed(c)
	case api.EventChildWorkflowTerminated:
		return d.handler.OnChildWorkflowTerminated(c)
	case api.EventChildWorkflowTimedOut:
		return d.handler.OnChildWorkflowTimedOut(c)
	case api.EventStartChildWorkflowFailed:
		return d.handler.OnStartChildWorkflowFailed(c)

	case api.EventTimerStarted:
		return d.handler.OnTimerStarted(c)
	case api.EventTimerFired:
		return d.handler.OnTimerFired(c)
	case api.EventTimerCanceled:
		return d.handler.OnTimerCanceled(c)
	}

	return nil, fmt.Errorf("%w: %q", api.ErrUnhandledEvent, c.DecidingEvent)
}
