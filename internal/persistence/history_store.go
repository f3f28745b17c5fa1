package persistence

import (
	"context"
	"sync"

	"github.com/petrijr/decisor/pkg/api"
)

// HistoryStore is an append-only event log, one history per workflow
// execution. Events are assigned monotonically increasing sequence IDs on
// append and are never mutated afterwards.
type HistoryStore interface {
	// AppendEvent appends ev to the given execution's history and returns
	// the assigned sequence ID. Any ID already set on ev is ignored.
	AppendEvent(ctx context.Context, workflowID string, ev api.HistoryEvent) (int64, error)

	// ListEvents returns up to limit events with sequence IDs strictly
	// greater than afterID, in sequence order. limit <= 0 means no limit.
	ListEvents(ctx context.Context, workflowID string, afterID int64, limit int) ([]api.HistoryEvent, error)
}

// MemoryHistoryStore keeps histories in process memory. Not durable; best
// for tests and local development.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	nextSeq int64
	events  map[string][]api.HistoryEvent
}

var _ HistoryStore = (*MemoryHistoryStore)(nil)

// NewMemoryHistoryStore returns an empty in-memory store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		events: make(map[string][]api.HistoryEvent),
	}
}

func (s *MemoryHistoryStore) AppendEvent(ctx context.Context, workflowID string, ev api.HistoryEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	ev.ID = s.nextSeq
	s.events[workflowID] = append(s.events[workflowID], ev)
	return ev.ID, nil
}

func (s *MemoryHistoryStore) ListEvents(ctx context.Context, workflowID string, afterID int64, limit int) ([]api.HistoryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []api.HistoryEvent
	for _, ev := range s.events[workflowID] {
		if ev.ID <= afterID {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
