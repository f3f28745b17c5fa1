package decisor

import (
	"log/slog"

	"github.com/petrijr/decisor/internal/engine"
	"github.com/petrijr/decisor/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	EventType         = api.EventType
	HistoryEvent      = api.HistoryEvent
	TimeoutType       = api.TimeoutType
	StepKind          = api.StepKind
	WorkflowStep      = api.WorkflowStep
	ActivityStep      = api.ActivityStep
	TimerStep         = api.TimerStep
	ChildWorkflowStep = api.ChildWorkflowStep
	TimerCancelAction = api.TimerCancelAction
	ChildPolicy       = api.ChildPolicy
	StepChain         = api.StepChain
	DecisionContext   = api.DecisionContext
	Decision          = api.Decision
	DecisionType      = api.DecisionType
	DecisionTask      = api.DecisionTask
	DecisionResponse  = api.DecisionResponse
	DecisionHandler   = api.DecisionHandler
	Decider           = api.Decider
	DeciderFactory    = api.DeciderFactory
	HistoryFetcher    = api.HistoryFetcher
	DecisionClient    = api.DecisionClient
)

// Re-export the values needed to declare chains and inspect decisions.

const (
	StepKindActivity      = api.StepKindActivity
	StepKindTimer         = api.StepKindTimer
	StepKindChildWorkflow = api.StepKindChildWorkflow

	TimerCancelProceed          = api.TimerCancelProceed
	TimerCancelCancelWorkflow   = api.TimerCancelCancelWorkflow
	TimerCancelCompleteWorkflow = api.TimerCancelCompleteWorkflow

	TimeoutStartToClose    = api.TimeoutStartToClose
	TimeoutScheduleToStart = api.TimeoutScheduleToStart
	TimeoutScheduleToClose = api.TimeoutScheduleToClose
	TimeoutHeartbeat       = api.TimeoutHeartbeat

	DecisionScheduleActivity   = api.DecisionScheduleActivity
	DecisionStartChildWorkflow = api.DecisionStartChildWorkflow
	DecisionStartTimer         = api.DecisionStartTimer
	DecisionCompleteWorkflow   = api.DecisionCompleteWorkflow
	DecisionCancelWorkflow     = api.DecisionCancelWorkflow
	DecisionFailWorkflow       = api.DecisionFailWorkflow
	DecisionRecordMarker       = api.DecisionRecordMarker
)

// ErrUnhandledEvent is returned by Decide when history ends on an event kind
// the engine has no handler for. Nothing may be submitted in that case.
var ErrUnhandledEvent = api.ErrUnhandledEvent

// Decider constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewChainDecider returns the default decider for the given step chain.
// fetcher retrieves history pages beyond the one embedded in each task; it
// may be nil when histories always fit in one page.
func NewChainDecider(chain StepChain, fetcher HistoryFetcher) Decider {
	return engine.New(engine.Config{Chain: chain, Fetcher: fetcher})
}

// NewChainDeciderWithLogger is NewChainDecider with a specific slog.Logger.
func NewChainDeciderWithLogger(chain StepChain, fetcher HistoryFetcher, logger *slog.Logger) Decider {
	return engine.New(engine.Config{Chain: chain, Fetcher: fetcher, Logger: logger})
}

// NewHandlerDecider returns a decider dispatching to custom decision logic
// instead of the default chain walk.
func NewHandlerDecider(handler DecisionHandler, fetcher HistoryFetcher) Decider {
	return engine.New(engine.Config{Handler: handler, Fetcher: fetcher})
}
