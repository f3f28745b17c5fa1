package api

// EventType identifies one kind of workflow history event.
//
// The set below is the set the decision engine understands. History may
// contain additional kinds introduced by newer service versions; those are
// ignored during the context fold (see DecisionContext.Apply).
type EventType string

const (
	EventWorkflowStarted   EventType = "workflow.started"
	EventWorkflowContinued EventType = "workflow.continued"
	EventCancelRequested   EventType = "workflow.cancel_requested"

	// EventDecisionCompleted is the echo of a previously submitted decision
	// response. It carries the execution-context string and nothing else the
	// engine acts on.
	EventDecisionCompleted EventType = "decision.completed"

	EventActivityScheduled      EventType = "activity.scheduled"
	EventActivityCompleted      EventType = "activity.completed"
	EventActivityFailed         EventType = "activity.failed"
	EventActivityTimedOut       EventType = "activity.timedout"
	EventScheduleActivityFailed EventType = "activity.schedule_failed"

	EventChildWorkflowStarted    EventType = "child.started"
	EventChildWorkflowCompleted  EventType = "child.completed"
	EventChildWorkflowFailed     EventType = "child.failed"
	EventChildWorkflowTerminated EventType = "child.terminated"
	EventChildWorkflowTimedOut   EventType = "child.timedout"
	EventStartChildWorkflowFailed EventType = "child.start_failed"

	EventMarkerRecorded EventType = "marker.recorded"

	EventTimerStarted  EventType = "timer.started"
	EventTimerFired    EventType = "timer.fired"
	EventTimerCanceled EventType = "timer.canceled"
)

// TimeoutType names which timeout field of a step expired.
type TimeoutType string

const (
	TimeoutStartToClose    TimeoutType = "START_TO_CLOSE"
	TimeoutScheduleToStart TimeoutType = "SCHEDULE_TO_START"
	TimeoutScheduleToClose TimeoutType = "SCHEDULE_TO_CLOSE"
	TimeoutHeartbeat       TimeoutType = "HEARTBEAT"
)

// HistoryEvent is one immutable record in a workflow execution's append-only
// history. ID is the sequence identifier assigned by the orchestration
// service; it increases monotonically within one execution. Exactly one of
// the attribute pointers matching Type is set.
type HistoryEvent struct {
	ID   int64     `json:"id"`
	Type EventType `json:"type"`

	WorkflowStarted   *WorkflowStartedAttributes   `json:"workflowStarted,omitempty"`
	WorkflowContinued *WorkflowContinuedAttributes `json:"workflowContinued,omitempty"`
	CancelRequested   *CancelRequestedAttributes   `json:"cancelRequested,omitempty"`

	DecisionCompleted *DecisionCompletedAttributes `json:"decisionCompleted,omitempty"`

	ActivityScheduled      *ActivityScheduledAttributes      `json:"activityScheduled,omitempty"`
	ActivityCompleted      *ActivityCompletedAttributes      `json:"activityCompleted,omitempty"`
	ActivityFailed         *ActivityFailedAttributes         `json:"activityFailed,omitempty"`
	ActivityTimedOut       *ActivityTimedOutAttributes       `json:"activityTimedOut,omitempty"`
	ScheduleActivityFailed *ScheduleActivityFailedAttributes `json:"scheduleActivityFailed,omitempty"`

	ChildWorkflowStarted     *ChildWorkflowStartedAttributes     `json:"childWorkflowStarted,omitempty"`
	ChildWorkflowCompleted   *ChildWorkflowCompletedAttributes   `json:"childWorkflowCompleted,omitempty"`
	ChildWorkflowFailed      *ChildWorkflowFailedAttributes      `json:"childWorkflowFailed,omitempty"`
	ChildWorkflowTerminated  *ChildWorkflowTerminatedAttributes  `json:"childWorkflowTerminated,omitempty"`
	ChildWorkflowTimedOut    *ChildWorkflowTimedOutAttributes    `json:"childWorkflowTimedOut,omitempty"`
	StartChildWorkflowFailed *StartChildWorkflowFailedAttributes `json:"startChildWorkflowFailed,omitempty"`

	MarkerRecorded *MarkerRecordedAttributes `json:"markerRecorded,omitempty"`

	TimerStarted  *TimerStartedAttributes  `json:"timerStarted,omitempty"`
	TimerFired    *TimerFiredAttributes    `json:"timerFired,omitempty"`
	TimerCanceled *TimerCanceledAttributes `json:"timerCanceled,omitempty"`
}

type WorkflowStartedAttributes struct {
	Input string `json:"input,omitempty"`
}

type WorkflowContinuedAttributes struct {
	Input string `json:"input,omitempty"`
}

type CancelRequestedAttributes struct {
	Cause string `json:"cause,omitempty"`
}

type DecisionCompletedAttributes struct {
	ExecutionContext string `json:"executionContext,omitempty"`
}

type ActivityScheduledAttributes struct {
	ActivityName    string `json:"activityName"`
	ActivityVersion string `json:"activityVersion"`
	ActivityID      string `json:"activityId"`
	Control         string `json:"control,omitempty"`
	Input           string `json:"input,omitempty"`
}

type ActivityCompletedAttributes struct {
	Result string `json:"result,omitempty"`
}

type ActivityFailedAttributes struct {
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

type ActivityTimedOutAttributes struct {
	TimeoutType TimeoutType `json:"timeoutType"`
	Details     string      `json:"details,omitempty"`
}

type ScheduleActivityFailedAttributes struct {
	ActivityName    string `json:"activityName"`
	ActivityVersion string `json:"activityVersion"`
	Cause           string `json:"cause,omitempty"`
}

type ChildWorkflowStartedAttributes struct {
	WorkflowName    string `json:"workflowName"`
	WorkflowVersion string `json:"workflowVersion"`
	WorkflowID      string `json:"workflowId"`
}

type ChildWorkflowCompletedAttributes struct {
	WorkflowName    string `json:"workflowName"`
	WorkflowVersion string `json:"workflowVersion"`
	WorkflowID      string `json:"workflowId"`
	Result          string `json:"result,omitempty"`
}

type ChildWorkflowFailedAttributes struct {
	WorkflowName    string `json:"workflowName"`
	WorkflowVersion string `json:"workflowVersion"`
	WorkflowID      string `json:"workflowId"`
	Reason          string `json:"reason,omitempty"`
	Details         string `json:"details,omitempty"`
}

type ChildWorkflowTerminatedAttributes struct {
	WorkflowName    string `json:"workflowName"`
	WorkflowVersion string `json:"workflowVersion"`
	WorkflowID      string `json:"workflowId"`
	Details         string `json:"details,omitempty"`
}

type ChildWorkflowTimedOutAttributes struct {
	WorkflowName    string      `json:"workflowName"`
	WorkflowVersion string      `json:"workflowVersion"`
	WorkflowID      string      `json:"workflowId"`
	TimeoutType     TimeoutType `json:"timeoutType"`
}

type StartChildWorkflowFailedAttributes struct {
	WorkflowName    string `json:"workflowName"`
	WorkflowVersion string `json:"workflowVersion"`
	Cause           string `json:"cause,omitempty"`
}

type MarkerRecordedAttributes struct {
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
}

type TimerStartedAttributes struct {
	TimerID          string `json:"timerId"`
	FireAfterSeconds int64  `json:"fireAfterSeconds"`
	Control          string `json:"control,omitempty"`
}

type TimerFiredAttributes struct {
	TimerID string `json:"timerId"`
}

type TimerCanceledAttributes struct {
	TimerID string `json:"timerId"`
}
