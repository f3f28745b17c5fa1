package api

import (
	"errors"
	"fmt"
)

// StepKind tags the variant carried by a WorkflowStep.
type StepKind string

const (
	StepKindActivity      StepKind = "ACTIVITY"
	StepKindTimer         StepKind = "TIMER"
	StepKindChildWorkflow StepKind = "CHILD_WORKFLOW"
)

// TimerCancelAction selects what the engine decides when a declared timer is
// canceled before firing.
type TimerCancelAction string

const (
	// TimerCancelProceed resolves the next step in the chain, exactly as if
	// the timer had fired.
	TimerCancelProceed TimerCancelAction = "PROCEED_TO_NEXT"

	// TimerCancelCancelWorkflow cancels the whole workflow execution.
	TimerCancelCancelWorkflow TimerCancelAction = "CANCEL_WORKFLOW"

	// TimerCancelCompleteWorkflow completes the workflow with the last
	// recorded result.
	TimerCancelCompleteWorkflow TimerCancelAction = "COMPLETE_WORKFLOW"
)

// ChildPolicy controls what happens to a child workflow when its parent is
// terminated.
type ChildPolicy string

const (
	ChildPolicyTerminate     ChildPolicy = "TERMINATE"
	ChildPolicyRequestCancel ChildPolicy = "REQUEST_CANCEL"
	ChildPolicyAbandon       ChildPolicy = "ABANDON"
)

// Declared field constraints. Violations are rejected when the chain is
// built, never at decide time.
const (
	MaxTimerFireSeconds = 99_999_999
	MaxControlLength    = 32_768
)

// ActivityStep declares one activity task in a step chain. Timeouts are in
// seconds; zero means the service default. Identity for chain matching is
// (Name, Version).
type ActivityStep struct {
	Name       string
	Version    string
	ActivityID string
	Control    string
	Input      string

	HeartbeatTimeout       int64
	ScheduleToCloseTimeout int64
	ScheduleToStartTimeout int64
	StartToCloseTimeout    int64

	TaskQueue string
}

// TimerStep declares a durable timer in a step chain. Identity for chain
// matching is TimerID.
type TimerStep struct {
	TimerID          string
	FireAfterSeconds int64
	Control          string

	// CancelAction is consulted when the timer is canceled before firing.
	// The zero value behaves like TimerCancelProceed.
	CancelAction TimerCancelAction
}

// ChildWorkflowStep declares a child workflow execution in a step chain.
// Identity for chain matching is (Name, Version).
type ChildWorkflowStep struct {
	Name       string
	Version    string
	WorkflowID string
	Control    string
	Input      string

	ExecutionTimeout int64
	TaskTimeout      int64

	TaskQueue   string
	Tags        []string
	ChildPolicy ChildPolicy
}

// WorkflowStep is a tagged union over the three step shapes. Exactly one of
// the variant pointers matching Kind must be set.
type WorkflowStep struct {
	Kind          StepKind
	Activity      *ActivityStep
	Timer         *TimerStep
	ChildWorkflow *ChildWorkflowStep
}

// Activity wraps an ActivityStep into a WorkflowStep.
func Activity(step ActivityStep) WorkflowStep {
	return WorkflowStep{Kind: StepKindActivity, Activity: &step}
}

// Timer wraps a TimerStep into a WorkflowStep.
func Timer(step TimerStep) WorkflowStep {
	return WorkflowStep{Kind: StepKindTimer, Timer: &step}
}

// ChildWorkflow wraps a ChildWorkflowStep into a WorkflowStep.
func ChildWorkflow(step ChildWorkflowStep) WorkflowStep {
	return WorkflowStep{Kind: StepKindChildWorkflow, ChildWorkflow: &step}
}

// Validate checks that the step carries exactly the variant named by Kind and
// that the declared field constraints hold.
func (s WorkflowStep) Validate() error {
	switch s.Kind {
	case StepKindActivity:
		if s.Activity == nil || s.Timer != nil || s.ChildWorkflow != nil {
			return errors.New("activity step must carry exactly the Activity variant")
		}
		if s.Activity.Name == "" {
			return errors.New("activity step requires a name")
		}
		return nil

	case StepKindTimer:
		if s.Timer == nil || s.Activity != nil || s.ChildWorkflow != nil {
			return errors.New("timer step must carry exactly the Timer variant")
		}
		t := s.Timer
		if t.TimerID == "" {
			return errors.New("timer step requires a timer ID")
		}
		if t.FireAfterSeconds < 0 || t.FireAfterSeconds > MaxTimerFireSeconds {
			return fmt.Errorf("timer %q: fire-after seconds %d out of range [0, %d]",
				t.TimerID, t.FireAfterSeconds, MaxTimerFireSeconds)
		}
		if len(t.Control) > MaxControlLength {
			return fmt.Errorf("timer %q: control exceeds %d characters", t.TimerID, MaxControlLength)
		}
		return nil

	case StepKindChildWorkflow:
		if s.ChildWorkflow == nil || s.Activity != nil || s.Timer != nil {
			return errors.New("child workflow step must carry exactly the ChildWorkflow variant")
		}
		if s.ChildWorkflow.Name == "" {
			return errors.New("child workflow step requires a name")
		}
		return nil
	}
	return fmt.Errorf("unknown step kind %q", s.Kind)
}
