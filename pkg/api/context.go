package api

// DecisionContext is the mutable accumulator one decision invocation folds
// its event history into. It is created empty, fed every event of the
// replayed window through Apply in sequence order, handed to a
// DecisionHandler, and discarded. It is never persisted; the only state that
// survives across invocations is what the history itself carries (markers
// included).
//
// Scalar fields hold the most recent value seen: a later event overwrites
// what an earlier one wrote. DecidingEvent tracks the last decision-relevant
// event kind; by construction of the orchestration service that is always
// the final event of the window.
type DecisionContext struct {
	WorkflowName    string
	WorkflowVersion string
	WorkflowID      string

	// DecidingEvent is the kind the dispatcher acts on. Echo events
	// (decision.completed, activity.scheduled) and marker.recorded never set
	// it.
	DecidingEvent EventType

	Input         string
	StartingInput string
	Result        string
	Details       string
	Reason        string
	Cause         string
	Control       string
	TimeoutType   TimeoutType

	ActivityName    string
	ActivityVersion string
	ActivityID      string

	ChildWorkflowName    string
	ChildWorkflowVersion string
	ChildWorkflowID      string

	TimerID string

	// ExecutionContext is the last value echoed back by a
	// decision.completed event, copied verbatim onto the next response.
	ExecutionContext string

	// Markers holds the last recorded value per marker name. Later
	// recordings overwrite earlier ones; that is the intended semantics, not
	// a defect.
	Markers map[string]string

	// OpenTimers holds started timers that have neither fired nor been
	// canceled, keyed by timer ID.
	OpenTimers map[string]TimerStartedAttributes

	// FiredTimers and CanceledTimers hold terminal timer outcomes, keyed by
	// timer ID.
	FiredTimers    map[string]TimerFiredAttributes
	CanceledTimers map[string]TimerCanceledAttributes
}

// NewDecisionContext returns an empty context for one workflow execution.
func NewDecisionContext(name, version, workflowID string) *DecisionContext {
	return &DecisionContext{
		WorkflowName:    name,
		WorkflowVersion: version,
		WorkflowID:      workflowID,
		Markers:         make(map[string]string),
		OpenTimers:      make(map[string]TimerStartedAttributes),
		FiredTimers:     make(map[string]TimerFiredAttributes),
		CanceledTimers:  make(map[string]TimerCanceledAttributes),
	}
}

// Marker returns the last recorded value of the named marker.
func (c *DecisionContext) Marker(name string) (string, bool) {
	v, ok := c.Markers[name]
	return v, ok
}

// Apply folds one history event into the context. Events must be applied in
// sequence order. Event kinds this engine does not recognize are ignored so
// that histories written by newer service versions still replay.
func (c *DecisionContext) Apply(ev HistoryEvent) {
	switch ev.Type {
	case EventWorkflowStarted:
		if a := ev.WorkflowStarted; a != nil {
			c.Input = a.Input
			c.StartingInput = a.Input
		}
		c.DecidingEvent = ev.Type

	case EventWorkflowContinued:
		if a := ev.WorkflowContinued; a != nil {
			c.Input = a.Input
		}
		c.DecidingEvent = ev.Type

	case EventCancelRequested:
		if a := ev.CancelRequested; a != nil {
			c.Cause = a.Cause
		}
		c.DecidingEvent = ev.Type

	case EventDecisionCompleted:
		// Echo of our own previous response; only the execution context is
		// carried forward.
		if a := ev.DecisionCompleted; a != nil {
			c.ExecutionContext = a.ExecutionContext
		}

	case EventActivityScheduled:
		// Echo of a schedule decision: remember which step is in flight, but
		// do not decide on it.
		if a := ev.ActivityScheduled; a != nil {
			c.ActivityName = a.ActivityName
			c.ActivityVersion = a.ActivityVersion
			c.ActivityID = a.ActivityID
			c.Control = a.Control
			c.Input = a.Input
		}

	case EventActivityCompleted:
		if a := ev.ActivityCompleted; a != nil {
			c.Result = a.Result
		}
		c.DecidingEvent = ev.Type

	case EventActivityFailed:
		if a := ev.ActivityFailed; a != nil {
			c.Reason = a.Reason
			c.Details = a.Details
		}
		c.DecidingEvent = ev.Type

	case EventActivityTimedOut:
		if a := ev.ActivityTimedOut; a != nil {
			c.TimeoutType = a.TimeoutType
			c.Details = a.Details
		}
		c.DecidingEvent = ev.Type

	case EventScheduleActivityFailed:
		if a := ev.ScheduleActivityFailed; a != nil {
			c.ActivityName = a.ActivityName
			c.ActivityVersion = a.ActivityVersion
			c.Cause = a.Cause
		}
		c.DecidingEvent = ev.Type

	case EventChildWorkflowStarted:
		if a := ev.ChildWorkflowStarted; a != nil {
			c.ChildWorkflowName = a.WorkflowName
			c.ChildWorkflowVersion = a.WorkflowVersion
			c.ChildWorkflowID = a.WorkflowID
		}
		c.DecidingEvent = ev.Type

	case EventChildWorkflowCompleted:
		if a := ev.ChildWorkflowCompleted; a != nil {
			c.ChildWorkflowName = a.WorkflowName
			c.ChildWorkflowVersion = a.WorkflowVersion
			c.ChildWorkflowID = a.WorkflowID
			c.Result = a.Result
		}
		c.DecidingEvent = ev.Type

	case EventChildWorkflowFailed:
		if a := ev.ChildWorkflowFailed; a != nil {
			c.ChildWorkflowName = a.WorkflowName
			c.ChildWorkflowVersion = a.WorkflowVersion
			c.ChildWorkflowID = a.WorkflowID
			c.Reason = a.Reason
			c.Details = a.Details
			c.Cause = a.Details
		}
		c.DecidingEvent = ev.Type

	case EventChildWorkflowTerminated:
		if a := ev.ChildWorkflowTerminated; a != nil {
			c.ChildWorkflowName = a.WorkflowName
			c.ChildWorkflowVersion = a.WorkflowVersion
			c.ChildWorkflowID = a.WorkflowID
			c.Details = a.Details
			c.Cause = a.Details
		}
		c.DecidingEvent = ev.Type

	case EventChildWorkflowTimedOut:
		if a := ev.ChildWorkflowTimedOut; a != nil {
			c.ChildWorkflowName = a.WorkflowName
			c.ChildWorkflowVersion = a.WorkflowVersion
			c.ChildWorkflowID = a.WorkflowID
			c.TimeoutType = a.TimeoutType
		}
		c.DecidingEvent = ev.Type

	case EventStartChildWorkflowFailed:
		if a := ev.StartChildWorkflowFailed; a != nil {
			c.ChildWorkflowName = a.WorkflowName
			c.ChildWorkflowVersion = a.WorkflowVersion
			c.Cause = a.Cause
		}
		c.DecidingEvent = ev.Type

	case EventMarkerRecorded:
		if a := ev.MarkerRecorded; a != nil {
			c.Markers[a.Name] = a.Details
		}

	case EventTimerStarted:
		if a := ev.TimerStarted; a != nil {
			c.OpenTimers[a.TimerID] = *a
			c.TimerID = a.TimerID
			c.Control = a.Control
		}
		c.DecidingEvent = ev.Type

	case EventTimerFired:
		if a := ev.TimerFired; a != nil {
			delete(c.OpenTimers, a.TimerID)
			c.FiredTimers[a.TimerID] = *a
			c.TimerID = a.TimerID
		}
		c.DecidingEvent = ev.Type

	case EventTimerCanceled:
		if a := ev.TimerCanceled; a != nil {
			delete(c.OpenTimers, a.TimerID)
			c.CanceledTimers[a.TimerID] = *a
			c.TimerID = a.TimerID
		}
		c.DecidingEvent = ev.Type

	default:
		// Unrecognized kind: forward-compatible no-op.
	}
}
