package engine

import (
	"context"

	"github.com/petrijr/decisor/pkg/api"
)

// fetchMaxAttempts bounds how often one page fetch is retried. Retries are
// immediate; the external service is expected to shed transient failures
// quickly or not at all.
const fetchMaxAttempts = 10

// EventPager exposes one decision task's history as a finite, restartable
// sequence indexed by position. The first page arrives embedded in the task;
// further pages are fetched lazily through the HistoryFetcher the moment an
// index past the loaded window is requested.
//
// Fetch failures are retried up to fetchMaxAttempts times with no delay.
// When retries are exhausted the pager stops paging and serves only what was
// fetched so far, WITHOUT surfacing an error: the decision is then made on
// an incomplete event view. This mirrors the behavior of the system this
// engine was built against and is covered by an explicit test; callers that
// cannot tolerate it must wrap the fetcher with their own failure policy.
type EventPager struct {
	taskToken string
	fetcher   api.HistoryFetcher

	events    []api.HistoryEvent
	nextToken string
	exhausted bool
}

// NewEventPager builds a pager over the task's embedded events and
// continuation token. fetcher may be nil when the caller knows the history
// fits in one page.
func NewEventPager(task *api.DecisionTask, fetcher api.HistoryFetcher) *EventPager {
	events := make([]api.HistoryEvent, len(task.Events))
	copy(events, task.Events)
	return &EventPager{
		taskToken: task.TaskToken,
		fetcher:   fetcher,
		events:    events,
		nextToken: task.NextPageToken,
	}
}

// Get returns the event at position i, fetching further pages as needed.
// It reports false once the history is exhausted. Events keep their source
// sequence IDs; the pager neither reorders nor deduplicates.
func (p *EventPager) Get(ctx context.Context, i int) (api.HistoryEvent, bool) {
	for i >= len(p.events) && p.hasMore() {
		p.fetchNextPage(ctx)
	}
	if i < len(p.events) {
		return p.events[i], true
	}
	return api.HistoryEvent{}, false
}

// Loaded returns how many events have been materialized so far. More may be
// loaded by a later Get.
func (p *EventPager) Loaded() int {
	return len(p.events)
}

func (p *EventPager) hasMore() bool {
	return p.nextToken != "" && !p.exhausted && p.fetcher != nil
}

func (p *EventPager) fetchNextPage(ctx context.Context) {
	for attempt := 1; attempt <= fetchMaxAttempts; attempt++ {
		events, next, err := p.fetcher.FetchHistoryPage(ctx, p.taskToken, p.nextToken)
		if err != nil {
			continue
		}
		if len(events) == 0 && next == p.nextToken {
			// A fetcher that makes no progress would loop forever.
			p.exhausted = true
			return
		}
		p.events = append(p.events, events...)
		p.nextToken = next
		return
	}
	// Give up and decide on what we have.
	p.exhausted = true
}
