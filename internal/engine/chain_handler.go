package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/petrijr/decisor/pkg/api"
)

// Marker names used to persist retry counters in history. Markers are the
// only cross-invocation memory this engine has.
const (
	activityRetryMarker = "ActivityTimeoutMarker"
	childRetryMarker    = "ChildWorkflowTimeoutMarker"
)

// maxTimeoutRetries caps marker-counted timeout retries for both activities
// and child workflows.
const maxTimeoutRetries = 3

const retryExhaustedDetails = "Failing workflow after 3 retry attempts."

// activityState is the serialized payload handed to every step after the
// first, so business activities see both the original workflow input and the
// previous step's result.
type activityState struct {
	StartingInput  string `json:"startingInput"`
	PreviousResult string `json:"previousResult"`
}

// ChainHandler is the default DecisionHandler: it advances an ordered step
// chain one step per completion, retries timeouts with marker-derived
// counters, and terminates the workflow when the chain is exhausted or a
// step fails.
type ChainHandler struct {
	chain api.StepChain
}

// NewChainHandler returns a handler walking the given chain.
func NewChainHandler(chain api.StepChain) *ChainHandler {
	return &ChainHandler{chain: chain}
}

var _ api.DecisionHandler = (*ChainHandler)(nil)

// OnWorkflowStarted schedules the first step of the chain, or completes the
// workflow immediately with an empty result when the chain is empty.
func (h *ChainHandler) OnWorkflowStarted(c *api.DecisionContext) ([]api.Decision, error) {
	if len(h.chain) == 0 {
		return []api.Decision{api.NewCompleteWorkflowDecision("")}, nil
	}
	return h.startStep(h.chain[0], c.Input)
}

// OnWorkflowCancelRequested cancels the execution, carrying the request's
// cause as the cancellation details.
func (h *ChainHandler) OnWorkflowCancelRequested(c *api.DecisionContext) ([]api.Decision, error) {
	return []api.Decision{api.NewCancelWorkflowDecision(c.Cause)}, nil
}

// OnActivityTaskCompleted advances past the completed activity, or completes
// the workflow with its result when it was the last step.
func (h *ChainHandler) OnActivityTaskCompleted(c *api.DecisionContext) ([]api.Decision, error) {
	return h.advance(api.StepKindActivity, c.ActivityName, c.ActivityVersion, c)
}

// OnActivityTaskFailed fails the workflow with the activity's reason and
// details. Explicit failures are never retried.
func (h *ChainHandler) OnActivityTaskFailed(c *api.DecisionContext) ([]api.Decision, error) {
	return []api.Decision{api.NewFailWorkflowDecision(c.Reason, c.Details)}, nil
}

// OnActivityTaskTimedOut retries the timed-out activity with the timeout
// field that expired scaled by the new retry counter, recording the counter
// as a marker in the same response. Once the replayed counter exceeds
// maxTimeoutRetries the workflow is failed instead.
func (h *ChainHandler) OnActivityTaskTimedOut(c *api.DecisionContext) ([]api.Decision, error) {
	step, ok := h.chain.Find(api.StepKindActivity, c.ActivityName, c.ActivityVersion)
	if !ok {
		return nil, fmt.Errorf("timed-out activity %s/%s not declared in chain", c.ActivityName, c.ActivityVersion)
	}

	retries := markerCounter(c, activityRetryMarker)
	if retries > maxTimeoutRetries {
		return []api.Decision{api.NewFailWorkflowDecision("OnActivityTaskTimedOut", retryExhaustedDetails)}, nil
	}
	retries++

	a := *step.Activity
	switch c.TimeoutType {
	case api.TimeoutStartToClose:
		a.StartToCloseTimeout *= int64(retries)
	case api.TimeoutScheduleToStart:
		a.ScheduleToStartTimeout *= int64(retries)
	case api.TimeoutScheduleToClose:
		a.ScheduleToCloseTimeout *= int64(retries)
	case api.TimeoutHeartbeat:
		a.HeartbeatTimeout *= int64(retries)
	}

	input := a.Input
	if input == "" {
		input = c.Input
	}
	return []api.Decision{
		api.NewScheduleActivityDecision(&a, input),
		api.NewRecordMarkerDecision(activityRetryMarker, strconv.Itoa(retries)),
	}, nil
}

// OnScheduleActivityTaskFailed fails the workflow: the service refused the
// schedule request itself, so there is nothing to retry.
func (h *ChainHandler) OnScheduleActivityTaskFailed(c *api.DecisionContext) ([]api.Decision, error) {
	return []api.Decision{api.NewFailWorkflowDecision("OnScheduleActivityTaskFailed", c.Cause)}, nil
}

// OnChildWorkflowStarted makes no decision; the parent waits for the child
// to finish. Extension point for parallel-step support.
func (h *ChainHandler) OnChildWorkflowStarted(c *api.DecisionContext) ([]api.Decision, error) {
	return nil, nil
}

// OnChildWorkflowCompleted advances past the completed child workflow.
func (h *ChainHandler) OnChildWorkflowCompleted(c *api.DecisionContext) ([]api.Decision, error) {
	return h.advance(api.StepKindChildWorkflow, c.ChildWorkflowName, c.ChildWorkflowVersion, c)
}

// OnChildWorkflowFailed fails the workflow with the child's failure details.
func (h *ChainHandler) OnChildWorkflowFailed(c *api.DecisionContext) ([]api.Decision, error) {
	return []api.Decision{api.NewFailWorkflowDecision("OnChildWorkflowFailed", c.Cause)}, nil
}

// OnChildWorkflowTerminated fails the workflow.
func (h *ChainHandler) OnChildWorkflowTerminated(c *api.DecisionContext) ([]api.Decision, error) {
	return []api.Decision{api.NewFailWorkflowDecision("OnChildWorkflowTerminated", c.Cause)}, nil
}

// OnChildWorkflowTimedOut retries the child workflow under the same
// marker-counted cap as activities. Only an expired execution timeout is
// recognized, and the timeout field is scaled by a fixed factor of 1 rather
// than by the retry counter; the asymmetry with the activity path is
// intentional, matching the system this engine reimplements.
func (h *ChainHandler) OnChildWorkflowTimedOut(c *api.DecisionContext) ([]api.Decision, error) {
	step, ok := h.chain.Find(api.StepKindChildWorkflow, c.ChildWorkflowName, c.ChildWorkflowVersion)
	if !ok {
		return nil, fmt.Errorf("timed-out child workflow %s/%s not declared in chain", c.ChildWorkflowName, c.ChildWorkflowVersion)
	}

	retries := markerCounter(c, childRetryMarker)
	if retries > maxTimeoutRetries {
		return []api.Decision{api.NewFailWorkflowDecision("OnChildWorkflowTimedOut", retryExhaustedDetails)}, nil
	}
	retries++

	const childTimeoutMultiplier = 1

	cw := *step.ChildWorkflow
	if c.TimeoutType == api.TimeoutStartToClose {
		cw.ExecutionTimeout *= childTimeoutMultiplier
	}

	input := cw.Input
	if input == "" {
		input = c.Input
	}
	return []api.Decision{
		api.NewStartChildWorkflowDecision(&cw, input),
		api.NewRecordMarkerDecision(childRetryMarker, strconv.Itoa(retries)),
	}, nil
}

// OnStartChildWorkflowFailed fails the workflow.
func (h *ChainHandler) OnStartChildWorkflowFailed(c *api.DecisionContext) ([]api.Decision, error) {
	return []api.Decision{api.NewFailWorkflowDecision("OnStartChildWorkflowFailed", c.Cause)}, nil
}

// OnTimerStarted makes no decision; the workflow waits for the timer.
func (h *ChainHandler) OnTimerStarted(c *api.DecisionContext) ([]api.Decision, error) {
	return nil, nil
}

// OnTimerFired advances past the fired timer.
func (h *ChainHandler) OnTimerFired(c *api.DecisionContext) ([]api.Decision, error) {
	return h.advance(api.StepKindTimer, c.TimerID, "", c)
}

// OnTimerCanceled dispatches on the timer step's declared cancel action.
func (h *ChainHandler) OnTimerCanceled(c *api.DecisionContext) ([]api.Decision, error) {
	step, ok := h.chain.Find(api.StepKindTimer, c.TimerID, "")
	if !ok {
		return nil, fmt.Errorf("canceled timer %q not declared in chain", c.TimerID)
	}

	switch step.Timer.CancelAction {
	case api.TimerCancelCompleteWorkflow:
		return []api.Decision{api.NewCompleteWorkflowDecision(c.Result)}, nil
	case api.TimerCancelCancelWorkflow:
		return []api.Decision{api.NewCancelWorkflowDecision(c.Details)}, nil
	default:
		// TimerCancelProceed and the zero value: as if the timer had fired.
		return h.advance(api.StepKindTimer, c.TimerID, "", c)
	}
}

// advance resolves the step after the one identified by (kind, name,
// version) and starts it, feeding it the serialized activity state. When no
// step follows, the workflow completes with the last result.
func (h *ChainHandler) advance(kind api.StepKind, name, version string, c *api.DecisionContext) ([]api.Decision, error) {
	next, ok := h.chain.FindNext(kind, name, version)
	if !ok {
		return []api.Decision{api.NewCompleteWorkflowDecision(c.Result)}, nil
	}

	state, err := json.Marshal(activityState{
		StartingInput:  c.StartingInput,
		PreviousResult: c.Result,
	})
	if err != nil {
		return nil, fmt.Errorf("serialize activity state: %w", err)
	}
	return h.startStep(next, string(state))
}

// startStep builds the decision that begins the given step. A step's own
// declared input wins over the fallback input when non-empty.
func (h *ChainHandler) startStep(step api.WorkflowStep, input string) ([]api.Decision, error) {
	switch step.Kind {
	case api.StepKindActivity:
		in := step.Activity.Input
		if in == "" {
			in = input
		}
		return []api.Decision{api.NewScheduleActivityDecision(step.Activity, in)}, nil

	case api.StepKindChildWorkflow:
		in := step.ChildWorkflow.Input
		if in == "" {
			in = input
		}
		return []api.Decision{api.NewStartChildWorkflowDecision(step.ChildWorkflow, in)}, nil

	case api.StepKindTimer:
		return []api.Decision{api.NewStartTimerDecision(step.Timer)}, nil
	}
	return nil, fmt.Errorf("workflow step has unknown kind %q", step.Kind)
}

// markerCounter reads an integer retry counter from the named marker.
// Missing or malformed markers count as zero, so a fresh execution always
// starts at attempt one.
func markerCounter(c *api.DecisionContext, name string) int {
	v, ok := c.Marker(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
