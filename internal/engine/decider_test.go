package engine

import (
	"context"
	"testing"

	"github.com/petrijr/decisor/pkg/api"
	"github.com/stretchr/testify/require"
)

// orderChain is the 3-step chain used across these tests:
// Activity reserve -> ChildWorkflow fulfil -> Activity notify.
func orderChain() api.StepChain {
	return api.StepChain{
		api.Activity(api.ActivityStep{
			Name: "reserve", Version: "v1", ActivityID: "a-reserve",
			StartToCloseTimeout: 30, TaskQueue: "orders",
		}),
		api.ChildWorkflow(api.ChildWorkflowStep{
			Name: "fulfil", Version: "v1", WorkflowID: "wf-fulfil",
			ExecutionTimeout: 600, TaskQueue: "orders",
		}),
		api.Activity(api.ActivityStep{
			Name: "notify", Version: "v1", ActivityID: "a-notify",
			StartToCloseTimeout: 10, TaskQueue: "orders",
		}),
	}
}

func decisionTask(events ...api.HistoryEvent) *api.DecisionTask {
	for i := range events {
		events[i].ID = int64(i + 1)
	}
	return &api.DecisionTask{
		TaskToken:       "tok-1",
		WorkflowName:    "order",
		WorkflowVersion: "v1",
		WorkflowID:      "wf-1",
		Events:          events,
	}
}

func started(input string) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventWorkflowStarted,
		WorkflowStarted: &api.WorkflowStartedAttributes{Input: input}}
}

func scheduled(name, version, id, input string) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventActivityScheduled,
		ActivityScheduled: &api.ActivityScheduledAttributes{
			ActivityName: name, ActivityVersion: version, ActivityID: id, Input: input,
		}}
}

func activityCompleted(result string) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventActivityCompleted,
		ActivityCompleted: &api.ActivityCompletedAttributes{Result: result}}
}

func activityTimedOut(kind api.TimeoutType) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventActivityTimedOut,
		ActivityTimedOut: &api.ActivityTimedOutAttributes{TimeoutType: kind}}
}

func marker(name, details string) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventMarkerRecorded,
		MarkerRecorded: &api.MarkerRecordedAttributes{Name: name, Details: details}}
}

func childCompleted(name, version, id, result string) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventChildWorkflowCompleted,
		ChildWorkflowCompleted: &api.ChildWorkflowCompletedAttributes{
			WorkflowName: name, WorkflowVersion: version, WorkflowID: id, Result: result,
		}}
}

func timerStarted(id string) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventTimerStarted,
		TimerStarted: &api.TimerStartedAttributes{TimerID: id}}
}

func timerCanceled(id string) api.HistoryEvent {
	return api.HistoryEvent{Type: api.EventTimerCanceled,
		TimerCanceled: &api.TimerCanceledAttributes{TimerID: id}}
}

func decide(t *testing.T, chain api.StepChain, events ...api.HistoryEvent) *api.DecisionResponse {
	t.Helper()
	resp, err := New(Config{Chain: chain}).Decide(context.Background(), decisionTask(events...))
	require.NoError(t, err)
	return resp
}

func TestDecide_StartSchedulesFirstStep(t *testing.T) {
	resp := decide(t, orderChain(), started(`{"sku":"x"}`))

	require.Len(t, resp.Decisions, 1)
	d := resp.Decisions[0]
	require.Equal(t, api.DecisionScheduleActivity, d.Type)
	require.Equal(t, "reserve", d.ScheduleActivity.ActivityName)
	require.Equal(t, "v1", d.ScheduleActivity.ActivityVersion)
	// The step declares no input of its own, so the workflow input is fed in.
	require.Equal(t, `{"sku":"x"}`, d.ScheduleActivity.Input)
	require.Equal(t, int64(30), d.ScheduleActivity.StartToCloseTimeout)
	require.Equal(t, "orders", d.ScheduleActivity.TaskQueue)
}

func TestDecide_EmptyChainCompletesImmediately(t *testing.T) {
	resp := decide(t, api.StepChain{}, started("in"))

	require.Len(t, resp.Decisions, 1)
	require.Equal(t, api.DecisionCompleteWorkflow, resp.Decisions[0].Type)
	require.Equal(t, "", resp.Decisions[0].CompleteWorkflow.Result)
}

// Walks the whole chain: reserve completes -> start fulfil; fulfil completes
// -> schedule notify; notify completes -> complete the workflow.
func TestDecide_ChainAdvancement(t *testing.T) {
	chain := orderChain()

	resp := decide(t, chain,
		started("in"),
		scheduled("reserve", "v1", "a-reserve", "in"),
		activityCompleted("reserved"),
	)
	require.Len(t, resp.Decisions, 1)
	d := resp.Decisions[0]
	require.Equal(t, api.DecisionStartChildWorkflow, d.Type)
	require.Equal(t, "fulfil", d.StartChildWorkflow.WorkflowName)
	require.JSONEq(t, `{"startingInput":"in","previousResult":"reserved"}`, d.StartChildWorkflow.Input)

	resp = decide(t, chain,
		started("in"),
		scheduled("reserve", "v1", "a-reserve", "in"),
		activityCompleted("reserved"),
		childCompleted("fulfil", "v1", "wf-fulfil", "fulfilled"),
	)
	require.Len(t, resp.Decisions, 1)
	d = resp.Decisions[0]
	require.Equal(t, api.DecisionScheduleActivity, d.Type)
	require.Equal(t, "notify", d.ScheduleActivity.ActivityName)
	require.JSONEq(t, `{"startingInput":"in","previousResult":"fulfilled"}`, d.ScheduleActivity.Input)

	resp = decide(t, chain,
		started("in"),
		scheduled("reserve", "v1", "a-reserve", "in"),
		activityCompleted("reserved"),
		childCompleted("fulfil", "v1", "wf-fulfil", "fulfilled"),
		scheduled("notify", "v1", "a-notify", "..."),
		activityCompleted("notified"),
	)
	require.Len(t, resp.Decisions, 1)
	d = resp.Decisions[0]
	require.Equal(t, api.DecisionCompleteWorkflow, d.Type)
	require.Equal(t, "notified", d.CompleteWorkflow.Result)
}

// The same history must always yield the same response.
func TestDecide_Deterministic(t *testing.T) {
	events := []api.HistoryEvent{
		started("in"),
		scheduled("reserve", "v1", "a-reserve", "in"),
		activityTimedOut(api.TimeoutStartToClose),
	}

	first := decide(t, orderChain(), events...)
	second := decide(t, orderChain(), events...)
	require.Equal(t, first, second)
}

// Timeout retries: counters 1..3 scale the expired timeout field and record
// the counter as a marker in the same response; once the replayed marker
// exceeds 3 the workflow fails.
func TestDecide_TimeoutRetryCap(t *testing.T) {
	chain := orderChain() // reserve has StartToCloseTimeout 30

	retryAt := func(markerValue string) *api.DecisionResponse {
		events := []api.HistoryEvent{started("in")}
		if markerValue != "" {
			events = append(events, marker("ActivityTimeoutMarker", markerValue))
		}
		events = append(events,
			scheduled("reserve", "v1", "a-reserve", "in"),
			activityTimedOut(api.TimeoutStartToClose),
		)
		return decide(t, chain, events...)
	}

	for counter, wantTimeout := range map[string]int64{"": 30, "1": 60, "2": 90} {
		resp := retryAt(counter)
		require.Len(t, resp.Decisions, 2, "marker=%q", counter)

		sched := resp.Decisions[0]
		require.Equal(t, api.DecisionScheduleActivity, sched.Type)
		require.Equal(t, wantTimeout, sched.ScheduleActivity.StartToCloseTimeout, "marker=%q", counter)

		rec := resp.Decisions[1]
		require.Equal(t, api.DecisionRecordMarker, rec.Type)
		require.Equal(t, "ActivityTimeoutMarker", rec.RecordMarker.Name)
	}

	resp := retryAt("4")
	require.Len(t, resp.Decisions, 1)
	fail := resp.Decisions[0]
	require.Equal(t, api.DecisionFailWorkflow, fail.Type)
	require.Equal(t, "OnActivityTaskTimedOut", fail.FailWorkflow.Reason)
	require.Equal(t, "Failing workflow after 3 retry attempts.", fail.FailWorkflow.Details)
}

// Only the timeout field that actually expired is scaled.
func TestDecide_TimeoutScalesMatchingField(t *testing.T) {
	chain := api.StepChain{
		api.Activity(api.ActivityStep{
			Name: "reserve", Version: "v1",
			HeartbeatTimeout: 5, ScheduleToStartTimeout: 7, StartToCloseTimeout: 30,
		}),
	}

	resp := decide(t, chain,
		started("in"),
		marker("ActivityTimeoutMarker", "1"),
		scheduled("reserve", "v1", "", "in"),
		activityTimedOut(api.TimeoutHeartbeat),
	)
	require.Len(t, resp.Decisions, 2)
	sched := resp.Decisions[0].ScheduleActivity
	require.Equal(t, int64(10), sched.HeartbeatTimeout)
	require.Equal(t, int64(7), sched.ScheduleToStartTimeout)
	require.Equal(t, int64(30), sched.StartToCloseTimeout)
}

// Child workflow timeouts retry under the same marker cap, but the timeout
// field is scaled by a fixed factor of 1, not by the counter.
func TestDecide_ChildTimeoutFixedMultiplier(t *testing.T) {
	chain := orderChain() // fulfil has ExecutionTimeout 600

	resp := decide(t, chain,
		started("in"),
		marker("ChildWorkflowTimeoutMarker", "2"),
		api.HistoryEvent{Type: api.EventChildWorkflowTimedOut,
			ChildWorkflowTimedOut: &api.ChildWorkflowTimedOutAttributes{
				WorkflowName: "fulfil", WorkflowVersion: "v1", WorkflowID: "wf-fulfil",
				TimeoutType: api.TimeoutStartToClose,
			}},
	)
	require.Len(t, resp.Decisions, 2)

	start := resp.Decisions[0]
	require.Equal(t, api.DecisionStartChildWorkflow, start.Type)
	require.Equal(t, int64(600), start.StartChildWorkflow.ExecutionTimeout)

	rec := resp.Decisions[1]
	require.Equal(t, "ChildWorkflowTimeoutMarker", rec.RecordMarker.Name)
	require.Equal(t, "3", rec.RecordMarker.Details)

	resp = decide(t, chain,
		started("in"),
		marker("ChildWorkflowTimeoutMarker", "4"),
		api.HistoryEvent{Type: api.EventChildWorkflowTimedOut,
			ChildWorkflowTimedOut: &api.ChildWorkflowTimedOutAttributes{
				WorkflowName: "fulfil", WorkflowVersion: "v1", WorkflowID: "wf-fulfil",
				TimeoutType: api.TimeoutStartToClose,
			}},
	)
	require.Len(t, resp.Decisions, 1)
	require.Equal(t, api.DecisionFailWorkflow, resp.Decisions[0].Type)
	require.Equal(t, "OnChildWorkflowTimedOut", resp.Decisions[0].FailWorkflow.Reason)
}

func TestDecide_TimerCancelActions(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		chain := api.StepChain{
			api.Activity(api.ActivityStep{Name: "reserve", Version: "v1"}),
			api.Timer(api.TimerStep{TimerID: "grace", FireAfterSeconds: 60,
				CancelAction: api.TimerCancelCompleteWorkflow}),
		}
		resp := decide(t, chain,
			started("in"),
			scheduled("reserve", "v1", "", "in"),
			activityCompleted("reserved"),
			timerStarted("grace"),
			timerCanceled("grace"),
		)
		require.Len(t, resp.Decisions, 1)
		require.Equal(t, api.DecisionCompleteWorkflow, resp.Decisions[0].Type)
		require.Equal(t, "reserved", resp.Decisions[0].CompleteWorkflow.Result)
	})

	t.Run("cancel", func(t *testing.T) {
		chain := api.StepChain{
			api.Timer(api.TimerStep{TimerID: "grace", FireAfterSeconds: 60,
				CancelAction: api.TimerCancelCancelWorkflow}),
		}
		resp := decide(t, chain,
			started("in"),
			timerStarted("grace"),
			timerCanceled("grace"),
		)
		require.Len(t, resp.Decisions, 1)
		require.Equal(t, api.DecisionCancelWorkflow, resp.Decisions[0].Type)
	})

	t.Run("proceed", func(t *testing.T) {
		chain := api.StepChain{
			api.Timer(api.TimerStep{TimerID: "grace", FireAfterSeconds: 60,
				CancelAction: api.TimerCancelProceed}),
			api.Activity(api.ActivityStep{Name: "notify", Version: "v1"}),
		}
		resp := decide(t, chain,
			started("in"),
			timerStarted("grace"),
			timerCanceled("grace"),
		)
		require.Len(t, resp.Decisions, 1)
		d := resp.Decisions[0]
		require.Equal(t, api.DecisionScheduleActivity, d.Type)
		require.Equal(t, "notify", d.ScheduleActivity.ActivityName)
		require.JSONEq(t, `{"startingInput":"in","previousResult":""}`, d.ScheduleActivity.Input)
	})
}

func TestDecide_TimerFiredAdvances(t *testing.T) {
	chain := api.StepChain{
		api.Timer(api.TimerStep{TimerID: "grace", FireAfterSeconds: 60}),
	}
	resp := decide(t, chain,
		started("in"),
		timerStarted("grace"),
		api.HistoryEvent{Type: api.EventTimerFired,
			TimerFired: &api.TimerFiredAttributes{TimerID: "grace"}},
	)
	// The timer is the last step: the workflow completes.
	require.Len(t, resp.Decisions, 1)
	require.Equal(t, api.DecisionCompleteWorkflow, resp.Decisions[0].Type)
}

func TestDecide_UnhandledEventKind(t *testing.T) {
	// History that ends without any decision-relevant event.
	task := decisionTask(marker("bookkeeping", "x"))

	resp, err := New(Config{Chain: orderChain()}).Decide(context.Background(), task)
	require.ErrorIs(t, err, api.ErrUnhandledEvent)
	require.Nil(t, resp)
}

func TestDecide_CancelRequested(t *testing.T) {
	resp := decide(t, orderChain(),
		started("in"),
		api.HistoryEvent{Type: api.EventCancelRequested,
			CancelRequested: &api.CancelRequestedAttributes{Cause: "operator"}},
	)
	require.Len(t, resp.Decisions, 1)
	require.Equal(t, api.DecisionCancelWorkflow, resp.Decisions[0].Type)
	require.Equal(t, "operator", resp.Decisions[0].CancelWorkflow.Details)
}

func TestDecide_ActivityFailedFailsWorkflow(t *testing.T) {
	resp := decide(t, orderChain(),
		started("in"),
		scheduled("reserve", "v1", "", "in"),
		api.HistoryEvent{Type: api.EventActivityFailed,
			ActivityFailed: &api.ActivityFailedAttributes{Reason: "boom", Details: "stack"}},
	)
	require.Len(t, resp.Decisions, 1)
	d := resp.Decisions[0]
	require.Equal(t, api.DecisionFailWorkflow, d.Type)
	require.Equal(t, "boom", d.FailWorkflow.Reason)
	require.Equal(t, "stack", d.FailWorkflow.Details)
}

func TestDecide_ScheduleActivityFailed(t *testing.T) {
	resp := decide(t, orderChain(),
		started("in"),
		api.HistoryEvent{Type: api.EventScheduleActivityFailed,
			ScheduleActivityFailed: &api.ScheduleActivityFailedAttributes{
				ActivityName: "reserve", ActivityVersion: "v1", Cause: "quota exceeded",
			}},
	)
	require.Len(t, resp.Decisions, 1)
	d := resp.Decisions[0]
	require.Equal(t, api.DecisionFailWorkflow, d.Type)
	require.Equal(t, "OnScheduleActivityTaskFailed", d.FailWorkflow.Reason)
	require.Equal(t, "quota exceeded", d.FailWorkflow.Details)
}

// A started child workflow needs no decision; the response is valid but
// empty.
func TestDecide_ChildStartedIsNoOp(t *testing.T) {
	resp := decide(t, orderChain(),
		started("in"),
		api.HistoryEvent{Type: api.EventChildWorkflowStarted,
			ChildWorkflowStarted: &api.ChildWorkflowStartedAttributes{
				WorkflowName: "fulfil", WorkflowVersion: "v1", WorkflowID: "wf-fulfil",
			}},
	)
	require.Empty(t, resp.Decisions)
}

func TestDecide_ExecutionContextEchoed(t *testing.T) {
	resp := decide(t, orderChain(),
		started("in"),
		api.HistoryEvent{Type: api.EventDecisionCompleted,
			DecisionCompleted: &api.DecisionCompletedAttributes{ExecutionContext: "cursor-42"}},
		scheduled("reserve", "v1", "", "in"),
		activityCompleted("reserved"),
	)
	require.Equal(t, "cursor-42", resp.ExecutionContext)
	require.Equal(t, "tok-1", resp.TaskToken)
}

// A step's own declared input wins over the fed-in state.
func TestDecide_StepInputPrecedence(t *testing.T) {
	chain := api.StepChain{
		api.Activity(api.ActivityStep{Name: "reserve", Version: "v1", Input: "declared"}),
	}
	resp := decide(t, chain, started("workflow-input"))

	require.Len(t, resp.Decisions, 1)
	require.Equal(t, "declared", resp.Decisions[0].ScheduleActivity.Input)
}
