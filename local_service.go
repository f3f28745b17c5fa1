package decisor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/petrijr/decisor/internal/persistence"
	"github.com/petrijr/decisor/pkg/api"
)

// ExecutionStatus is the lifecycle state LocalService tracks per workflow
// execution.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "RUNNING"
	ExecutionCompleted ExecutionStatus = "COMPLETED"
	ExecutionCanceled  ExecutionStatus = "CANCELED"
	ExecutionFailed    ExecutionStatus = "FAILED"
)

// ExecutionInfo is a snapshot of one execution's terminal state.
type ExecutionInfo struct {
	WorkflowName    string
	WorkflowVersion string
	WorkflowID      string
	Status          ExecutionStatus
	Result          string
	Details         string
	Reason          string
}

// LocalService is an in-process stand-in for the external orchestration
// service, intended for development and tests. It keeps an append-only
// history per execution in a HistoryStore, hands out paginated decision
// tasks, applies responded decisions back onto the history, and provides
// helpers that simulate activity, timer, and child workflow outcomes.
//
// It deliberately implements none of the real service's queueing, leasing,
// or delivery guarantees: tasks are handed out once, synchronously.
//
// Typical usage:
//
//	svc := decisor.NewLocalService()
//	id, _ := svc.StartWorkflow(ctx, "order", "v1", "", `{"sku":"x"}`)
//
//	w := worker.New(svc, worker.Config{TaskQueue: "default"})
//	_ = w.RegisterChain("order", "v1", chain)
//	_, _ = w.ProcessOne(ctx) // decides on workflow.started
//
//	_ = svc.CompleteActivity(ctx, id, `"reserved"`)
//	_, _ = w.ProcessOne(ctx) // decides on activity.completed
type LocalService struct {
	store    persistence.HistoryStore
	pageSize int
	logger   *slog.Logger

	mu         sync.Mutex
	executions map[string]*localExecution
	pending    []string          // workflow IDs with a decision due
	tasks      map[string]string // task token -> workflow ID
}

type localExecution struct {
	info ExecutionInfo
}

// LocalServiceConfig tunes a LocalService.
type LocalServiceConfig struct {
	// PageSize is the number of events per history page. Small values force
	// the engine's pager to fetch; defaults to 100.
	PageSize int

	Logger *slog.Logger
}

// NewLocalService returns a LocalService backed by an in-memory history
// store with default configuration.
func NewLocalService() *LocalService {
	return NewLocalServiceWithConfig(persistence.NewMemoryHistoryStore(), LocalServiceConfig{})
}

// NewSQLiteLocalService returns a LocalService whose histories persist in
// the given SQLite database.
func NewSQLiteLocalService(db *sql.DB, cfg LocalServiceConfig) (*LocalService, error) {
	store, err := persistence.NewSQLiteHistoryStore(db)
	if err != nil {
		return nil, err
	}
	return NewLocalServiceWithConfig(store, cfg), nil
}

// NewLocalServiceWithConfig builds a LocalService over the given store. A
// nil store defaults to a fresh in-memory one.
func NewLocalServiceWithConfig(store persistence.HistoryStore, cfg LocalServiceConfig) *LocalService {
	if store == nil {
		store = persistence.NewMemoryHistoryStore()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalService{
		store:      store,
		pageSize:   pageSize,
		logger:     logger,
		executions: make(map[string]*localExecution),
		tasks:      make(map[string]string),
	}
}

var (
	_ DecisionClient = (*LocalService)(nil)
	_ HistoryFetcher = (*LocalService)(nil)
)

// StartWorkflow opens a new execution, appends its workflow.started event,
// and schedules a decision for it. An empty workflowID gets a generated one;
// the chosen ID is returned.
func (s *LocalService) StartWorkflow(ctx context.Context, name, version, workflowID, input string) (string, error) {
	if workflowID == "" {
		workflowID = uuid.NewString()
	}

	s.mu.Lock()
	if _, exists := s.executions[workflowID]; exists {
		s.mu.Unlock()
		return "", fmt.Errorf("workflow execution %q already started", workflowID)
	}
	s.executions[workflowID] = &localExecution{info: ExecutionInfo{
		WorkflowName:    name,
		WorkflowVersion: version,
		WorkflowID:      workflowID,
		Status:          ExecutionRunning,
	}}
	s.mu.Unlock()

	return workflowID, s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type:            api.EventWorkflowStarted,
		WorkflowStarted: &api.WorkflowStartedAttributes{Input: input},
	})
}

// Execution returns the tracked state of one execution.
func (s *LocalService) Execution(workflowID string) (ExecutionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exec, ok := s.executions[workflowID]
	if !ok {
		return ExecutionInfo{}, false
	}
	return exec.info, true
}

// PollDecisionTask hands out the next due decision task, or (nil, nil) when
// none is pending. Unlike the real service it does not block.
func (s *LocalService) PollDecisionTask(ctx context.Context, taskQueue string) (*DecisionTask, error) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	workflowID := s.pending[0]
	s.pending = s.pending[1:]
	exec := s.executions[workflowID]
	token := uuid.NewString()
	s.tasks[token] = workflowID
	s.mu.Unlock()

	events, err := s.store.ListEvents(ctx, workflowID, 0, s.pageSize)
	if err != nil {
		return nil, err
	}

	return &DecisionTask{
		TaskToken:       token,
		WorkflowName:    exec.info.WorkflowName,
		WorkflowVersion: exec.info.WorkflowVersion,
		WorkflowID:      workflowID,
		Events:          events,
		NextPageToken:   s.nextPageToken(events),
	}, nil
}

// FetchHistoryPage serves history overflow pages for an outstanding task.
func (s *LocalService) FetchHistoryPage(ctx context.Context, taskToken, pageToken string) ([]HistoryEvent, string, error) {
	s.mu.Lock()
	workflowID, ok := s.tasks[taskToken]
	s.mu.Unlock()
	if !ok {
		return nil, "", fmt.Errorf("unknown task token %q", taskToken)
	}

	afterID, err := strconv.ParseInt(pageToken, 10, 64)
	if err != nil {
		return nil, "", fmt.Errorf("malformed page token %q: %w", pageToken, err)
	}

	events, err := s.store.ListEvents(ctx, workflowID, afterID, s.pageSize)
	if err != nil {
		return nil, "", err
	}
	return events, s.nextPageToken(events), nil
}

// nextPageToken encodes the continuation point after a full page. A short
// page means the history is (currently) exhausted.
func (s *LocalService) nextPageToken(events []HistoryEvent) string {
	if len(events) < s.pageSize {
		return ""
	}
	return strconv.FormatInt(events[len(events)-1].ID, 10)
}

// RespondDecision applies a decision response onto the execution: echo
// events are appended to history, terminal decisions update the execution
// state, and a started child schedules the no-op decision the real service
// would trigger.
func (s *LocalService) RespondDecision(ctx context.Context, resp *DecisionResponse) error {
	s.mu.Lock()
	workflowID, ok := s.tasks[resp.TaskToken]
	delete(s.tasks, resp.TaskToken)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown task token %q", resp.TaskToken)
	}

	if _, err := s.store.AppendEvent(ctx, workflowID, api.HistoryEvent{
		Type:              api.EventDecisionCompleted,
		DecisionCompleted: &api.DecisionCompletedAttributes{ExecutionContext: resp.ExecutionContext},
	}); err != nil {
		return err
	}

	for _, d := range resp.Decisions {
		if err := s.applyDecision(ctx, workflowID, d); err != nil {
			return err
		}
	}

	s.logger.DebugContext(ctx, "decision_applied",
		slog.String("workflow_id", workflowID),
		slog.Int("decisions", len(resp.Decisions)),
	)
	return nil
}

func (s *LocalService) applyDecision(ctx context.Context, workflowID string, d Decision) error {
	switch d.Type {
	case DecisionScheduleActivity:
		a := d.ScheduleActivity
		_, err := s.store.AppendEvent(ctx, workflowID, api.HistoryEvent{
			Type: api.EventActivityScheduled,
			ActivityScheduled: &api.ActivityScheduledAttributes{
				ActivityName:    a.ActivityName,
				ActivityVersion: a.ActivityVersion,
				ActivityID:      a.ActivityID,
				Control:         a.Control,
				Input:           a.Input,
			},
		})
		return err

	case DecisionStartChildWorkflow:
		c := d.StartChildWorkflow
		return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
			Type: api.EventChildWorkflowStarted,
			ChildWorkflowStarted: &api.ChildWorkflowStartedAttributes{
				WorkflowName:    c.WorkflowName,
				WorkflowVersion: c.WorkflowVersion,
				WorkflowID:      c.WorkflowID,
			},
		})

	case DecisionStartTimer:
		t := d.StartTimer
		_, err := s.store.AppendEvent(ctx, workflowID, api.HistoryEvent{
			Type: api.EventTimerStarted,
			TimerStarted: &api.TimerStartedAttributes{
				TimerID:          t.TimerID,
				FireAfterSeconds: t.FireAfterSeconds,
				Control:          t.Control,
			},
		})
		return err

	case DecisionRecordMarker:
		m := d.RecordMarker
		_, err := s.store.AppendEvent(ctx, workflowID, api.HistoryEvent{
			Type:           api.EventMarkerRecorded,
			MarkerRecorded: &api.MarkerRecordedAttributes{Name: m.Name, Details: m.Details},
		})
		return err

	case DecisionCompleteWorkflow:
		return s.finish(workflowID, ExecutionCompleted, func(info *ExecutionInfo) {
			info.Result = d.CompleteWorkflow.Result
		})

	case DecisionCancelWorkflow:
		return s.finish(workflowID, ExecutionCanceled, func(info *ExecutionInfo) {
			info.Details = d.CancelWorkflow.Details
		})

	case DecisionFailWorkflow:
		return s.finish(workflowID, ExecutionFailed, func(info *ExecutionInfo) {
			info.Reason = d.FailWorkflow.Reason
			info.Details = d.FailWorkflow.Details
		})
	}
	return fmt.Errorf("unknown decision type %q", d.Type)
}

func (s *LocalService) finish(workflowID string, status ExecutionStatus, update func(*ExecutionInfo)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exec, ok := s.executions[workflowID]
	if !ok {
		return fmt.Errorf("unknown workflow execution %q", workflowID)
	}
	exec.info.Status = status
	update(&exec.info)
	return nil
}

// Simulation helpers. Each records the outcome the real service would append
// on behalf of a worker and schedules the follow-up decision.

// CompleteActivity records a successful activity result.
func (s *LocalService) CompleteActivity(ctx context.Context, workflowID, result string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type:              api.EventActivityCompleted,
		ActivityCompleted: &api.ActivityCompletedAttributes{Result: result},
	})
}

// FailActivity records an activity failure.
func (s *LocalService) FailActivity(ctx context.Context, workflowID, reason, details string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type:           api.EventActivityFailed,
		ActivityFailed: &api.ActivityFailedAttributes{Reason: reason, Details: details},
	})
}

// TimeOutActivity records an activity timeout of the given kind.
func (s *LocalService) TimeOutActivity(ctx context.Context, workflowID string, timeoutType TimeoutType, details string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type:             api.EventActivityTimedOut,
		ActivityTimedOut: &api.ActivityTimedOutAttributes{TimeoutType: timeoutType, Details: details},
	})
}

// CompleteChildWorkflow records a child workflow's successful result.
func (s *LocalService) CompleteChildWorkflow(ctx context.Context, workflowID, childName, childVersion, childID, result string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type: api.EventChildWorkflowCompleted,
		ChildWorkflowCompleted: &api.ChildWorkflowCompletedAttributes{
			WorkflowName:    childName,
			WorkflowVersion: childVersion,
			WorkflowID:      childID,
			Result:          result,
		},
	})
}

// FailChildWorkflow records a child workflow failure.
func (s *LocalService) FailChildWorkflow(ctx context.Context, workflowID, childName, childVersion, childID, reason, details string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type: api.EventChildWorkflowFailed,
		ChildWorkflowFailed: &api.ChildWorkflowFailedAttributes{
			WorkflowName:    childName,
			WorkflowVersion: childVersion,
			WorkflowID:      childID,
			Reason:          reason,
			Details:         details,
		},
	})
}

// TimeOutChildWorkflow records a child workflow timeout.
func (s *LocalService) TimeOutChildWorkflow(ctx context.Context, workflowID, childName, childVersion, childID string, timeoutType TimeoutType) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type: api.EventChildWorkflowTimedOut,
		ChildWorkflowTimedOut: &api.ChildWorkflowTimedOutAttributes{
			WorkflowName:    childName,
			WorkflowVersion: childVersion,
			WorkflowID:      childID,
			TimeoutType:     timeoutType,
		},
	})
}

// FireTimer records a timer firing.
func (s *LocalService) FireTimer(ctx context.Context, workflowID, timerID string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type:       api.EventTimerFired,
		TimerFired: &api.TimerFiredAttributes{TimerID: timerID},
	})
}

// CancelTimer records a timer cancellation.
func (s *LocalService) CancelTimer(ctx context.Context, workflowID, timerID string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type:          api.EventTimerCanceled,
		TimerCanceled: &api.TimerCanceledAttributes{TimerID: timerID},
	})
}

// RequestCancel records an external cancellation request.
func (s *LocalService) RequestCancel(ctx context.Context, workflowID, cause string) error {
	return s.appendAndSchedule(ctx, workflowID, api.HistoryEvent{
		Type:            api.EventCancelRequested,
		CancelRequested: &api.CancelRequestedAttributes{Cause: cause},
	})
}

// appendAndSchedule appends ev to the execution's history and marks a
// decision as due for it.
func (s *LocalService) appendAndSchedule(ctx context.Context, workflowID string, ev api.HistoryEvent) error {
	s.mu.Lock()
	_, ok := s.executions[workflowID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown workflow execution %q", workflowID)
	}

	if _, err := s.store.AppendEvent(ctx, workflowID, ev); err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = append(s.pending, workflowID)
	s.mu.Unlock()
	return nil
}
