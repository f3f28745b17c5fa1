package api

import (
	"context"
	"errors"
)

// ErrUnhandledEvent is returned (wrapped) when a context's deciding event
// kind has no handler. The caller must not submit anything in that case.
var ErrUnhandledEvent = errors.New("unhandled history event kind")

// DecisionHandler is the fixed capability set a workflow's decision logic
// implements, one method per deciding event kind. Handlers are pure with
// respect to engine state: everything they need is in the DecisionContext,
// and everything they decide is in the returned decision list. Returning an
// empty list is a valid "no decision yet" answer (for example while a child
// workflow runs).
//
// ChainDecider ships a default implementation that walks a StepChain;
// applications with bespoke logic can implement this interface directly.
type DecisionHandler interface {
	OnWorkflowStarted(c *DecisionContext) ([]Decision, error)
	OnWorkflowCancelRequested(c *DecisionContext) ([]Decision, error)

	OnActivityTaskCompleted(c *DecisionContext) ([]Decision, error)
	OnActivityTaskFailed(c *DecisionContext) ([]Decision, error)
	OnActivityTaskTimedOut(c *DecisionContext) ([]Decision, error)
	OnScheduleActivityTaskFailed(c *DecisionContext) ([]Decision, error)

	OnChildWorkflowStarted(c *DecisionContext) ([]Decision, error)
	OnChildWorkflowCompleted(c *DecisionContext) ([]Decision, error)
	OnChildWorkflowFailed(c *DecisionContext) ([]Decision, error)
	OnChildWorkflowTerminated(c *DecisionContext) ([]Decision, error)
	OnChildWorkflowTimedOut(c *DecisionContext) ([]Decision, error)
	OnStartChildWorkflowFailed(c *DecisionContext) ([]Decision, error)

	OnTimerStarted(c *DecisionContext) ([]Decision, error)
	OnTimerFired(c *DecisionContext) ([]Decision, error)
	OnTimerCanceled(c *DecisionContext) ([]Decision, error)
}

// Decider turns one decision task into one response. Implementations must be
// deterministic: the same history yields the same response, every time, at
// any cursor position. They hold no state of their own between calls.
type Decider interface {
	Decide(ctx context.Context, task *DecisionTask) (*DecisionResponse, error)
}

// DeciderFactory builds a fresh Decider for one workflow definition. The
// registry resolves workflow names to factories once at startup; no runtime
// type lookup is involved.
type DeciderFactory func() Decider

// HistoryFetcher retrieves additional history pages for an in-flight
// decision task. Implemented by the orchestration service client.
type HistoryFetcher interface {
	// FetchHistoryPage returns the page identified by pageToken for the task
	// identified by taskToken, plus the token of the page after it ("" when
	// this is the last page).
	FetchHistoryPage(ctx context.Context, taskToken, pageToken string) ([]HistoryEvent, string, error)
}

// DecisionClient is the transport boundary to the orchestration service:
// poll for decision tasks, fetch overflow history pages, submit responses.
// Queueing, leasing, and delivery guarantees live behind this interface.
type DecisionClient interface {
	HistoryFetcher

	// PollDecisionTask blocks until a decision task is available on the
	// given task queue, the context is done, or the service's long-poll
	// window elapses (in which case it returns nil, nil).
	PollDecisionTask(ctx context.Context, taskQueue string) (*DecisionTask, error)

	// RespondDecision submits the response for a previously polled task.
	RespondDecision(ctx context.Context, resp *DecisionResponse) error
}
