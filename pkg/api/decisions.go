package api

// DecisionType identifies one kind of outbound decision.
type DecisionType string

const (
	DecisionScheduleActivity   DecisionType = "SCHEDULE_ACTIVITY"
	DecisionStartChildWorkflow DecisionType = "START_CHILD_WORKFLOW"
	DecisionStartTimer         DecisionType = "START_TIMER"
	DecisionCompleteWorkflow   DecisionType = "COMPLETE_WORKFLOW"
	DecisionCancelWorkflow     DecisionType = "CANCEL_WORKFLOW"
	DecisionFailWorkflow       DecisionType = "FAIL_WORKFLOW"
	DecisionRecordMarker       DecisionType = "RECORD_MARKER"
)

// Decision is a tagged union over the outbound decision kinds. Exactly one
// attribute pointer matching Type is set.
type Decision struct {
	Type DecisionType `json:"type"`

	ScheduleActivity   *ScheduleActivityDecisionAttributes   `json:"scheduleActivity,omitempty"`
	StartChildWorkflow *StartChildWorkflowDecisionAttributes `json:"startChildWorkflow,omitempty"`
	StartTimer         *StartTimerDecisionAttributes         `json:"startTimer,omitempty"`
	CompleteWorkflow   *CompleteWorkflowDecisionAttributes   `json:"completeWorkflow,omitempty"`
	CancelWorkflow     *CancelWorkflowDecisionAttributes     `json:"cancelWorkflow,omitempty"`
	FailWorkflow       *FailWorkflowDecisionAttributes       `json:"failWorkflow,omitempty"`
	RecordMarker       *RecordMarkerDecisionAttributes       `json:"recordMarker,omitempty"`
}

type ScheduleActivityDecisionAttributes struct {
	ActivityName    string `json:"activityName"`
	ActivityVersion string `json:"activityVersion"`
	ActivityID      string `json:"activityId"`
	Control         string `json:"control,omitempty"`
	Input           string `json:"input,omitempty"`

	HeartbeatTimeout       int64 `json:"heartbeatTimeout,omitempty"`
	ScheduleToCloseTimeout int64 `json:"scheduleToCloseTimeout,omitempty"`
	ScheduleToStartTimeout int64 `json:"scheduleToStartTimeout,omitempty"`
	StartToCloseTimeout    int64 `json:"startToCloseTimeout,omitempty"`

	TaskQueue string `json:"taskQueue,omitempty"`
}

type StartChildWorkflowDecisionAttributes struct {
	WorkflowName    string `json:"workflowName"`
	WorkflowVersion string `json:"workflowVersion"`
	WorkflowID      string `json:"workflowId"`
	Control         string `json:"control,omitempty"`
	Input           string `json:"input,omitempty"`

	ExecutionTimeout int64 `json:"executionTimeout,omitempty"`
	TaskTimeout      int64 `json:"taskTimeout,omitempty"`

	TaskQueue   string      `json:"taskQueue,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	ChildPolicy ChildPolicy `json:"childPolicy,omitempty"`
}

type StartTimerDecisionAttributes struct {
	TimerID          string `json:"timerId"`
	FireAfterSeconds int64  `json:"fireAfterSeconds"`
	Control          string `json:"control,omitempty"`
}

type CompleteWorkflowDecisionAttributes struct {
	Result string `json:"result,omitempty"`
}

type CancelWorkflowDecisionAttributes struct {
	Details string `json:"details,omitempty"`
}

type FailWorkflowDecisionAttributes struct {
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

type RecordMarkerDecisionAttributes struct {
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
}

// Decision constructors. Each copies its inputs field for field and has no
// other effect; which decision to build is the dispatcher's business.

// NewScheduleActivityDecision builds a schedule decision for the given
// activity step with the given input.
func NewScheduleActivityDecision(step *ActivityStep, input string) Decision {
	return Decision{
		Type: DecisionScheduleActivity,
		ScheduleActivity: &ScheduleActivityDecisionAttributes{
			ActivityName:           step.Name,
			ActivityVersion:        step.Version,
			ActivityID:             step.ActivityID,
			Control:                step.Control,
			Input:                  input,
			HeartbeatTimeout:       step.HeartbeatTimeout,
			ScheduleToCloseTimeout: step.ScheduleToCloseTimeout,
			ScheduleToStartTimeout: step.ScheduleToStartTimeout,
			StartToCloseTimeout:    step.StartToCloseTimeout,
			TaskQueue:              step.TaskQueue,
		},
	}
}

// NewStartChildWorkflowDecision builds a start-child decision for the given
// child workflow step with the given input.
func NewStartChildWorkflowDecision(step *ChildWorkflowStep, input string) Decision {
	return Decision{
		Type: DecisionStartChildWorkflow,
		StartChildWorkflow: &StartChildWorkflowDecisionAttributes{
			WorkflowName:     step.Name,
			WorkflowVersion:  step.Version,
			WorkflowID:       step.WorkflowID,
			Control:          step.Control,
			Input:            input,
			ExecutionTimeout: step.ExecutionTimeout,
			TaskTimeout:      step.TaskTimeout,
			TaskQueue:        step.TaskQueue,
			Tags:             step.Tags,
			ChildPolicy:      step.ChildPolicy,
		},
	}
}

// NewStartTimerDecision builds a start-timer decision for the given timer
// step.
func NewStartTimerDecision(step *TimerStep) Decision {
	return Decision{
		Type: DecisionStartTimer,
		StartTimer: &StartTimerDecisionAttributes{
			TimerID:          step.TimerID,
			FireAfterSeconds: step.FireAfterSeconds,
			Control:          step.Control,
		},
	}
}

// NewCompleteWorkflowDecision builds a complete-workflow decision.
func NewCompleteWorkflowDecision(result string) Decision {
	return Decision{
		Type:             DecisionCompleteWorkflow,
		CompleteWorkflow: &CompleteWorkflowDecisionAttributes{Result: result},
	}
}

// NewCancelWorkflowDecision builds a cancel-workflow decision.
func NewCancelWorkflowDecision(details string) Decision {
	return Decision{
		Type:           DecisionCancelWorkflow,
		CancelWorkflow: &CancelWorkflowDecisionAttributes{Details: details},
	}
}

// NewFailWorkflowDecision builds a fail-workflow decision.
func NewFailWorkflowDecision(reason, details string) Decision {
	return Decision{
		Type:         DecisionFailWorkflow,
		FailWorkflow: &FailWorkflowDecisionAttributes{Reason: reason, Details: details},
	}
}

// NewRecordMarkerDecision builds a record-marker decision.
func NewRecordMarkerDecision(name, details string) Decision {
	return Decision{
		Type:         DecisionRecordMarker,
		RecordMarker: &RecordMarkerDecisionAttributes{Name: name, Details: details},
	}
}

// DecisionTask is one decision invocation: a snapshot of (possibly
// paginated) history for a single workflow execution, plus the continuation
// token the response must carry.
type DecisionTask struct {
	TaskToken string `json:"taskToken"`

	WorkflowName    string `json:"workflowName"`
	WorkflowVersion string `json:"workflowVersion"`
	WorkflowID      string `json:"workflowId"`

	// Events is the first page of history, ordered by sequence ID.
	Events []HistoryEvent `json:"events"`

	// NextPageToken is non-empty when further pages exist.
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// DecisionResponse is the engine's answer to one DecisionTask.
type DecisionResponse struct {
	TaskToken string `json:"taskToken"`

	// ExecutionContext echoes the last value seen from a decision.completed
	// event, or empty.
	ExecutionContext string `json:"executionContext,omitempty"`

	// Decisions usually holds one decision; timeout retries bundle a
	// record-marker alongside the reschedule.
	Decisions []Decision `json:"decisions"`
}
