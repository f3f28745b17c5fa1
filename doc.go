// Package decisor provides a stateless decision engine for long-running,
// step-ordered workflows whose source of truth is an append-only event
// history kept by an external orchestration service.
//
// Decisor never executes business logic and never stores state of its own.
// On every invocation it receives a (possibly paginated) slice of history,
// replays it into a decision context, and answers with exactly one response
// describing what the service should do next: schedule an activity, start a
// child workflow, start a timer, record a marker, or finish the workflow.
// Because everything is derived from history, a decision that crashes before
// its response is submitted can simply be retried from scratch.
//
// # Core Concepts
//
//  1. StepChain
//  2. Decider
//  3. Worker
//  4. DecisionClient
//  5. LocalService
//
// # StepChain
//
// A StepChain is the ordered, immutable list of steps a workflow consists
// of. Each step is an activity task, a durable timer, or a child workflow.
// Chains are declared with the fluent ChainBuilder:
//
//	chain := decisor.NewChain().
//	    Activity(decisor.ActivityStep{Name: "reserve", Version: "v1"}).
//	    Timer(decisor.TimerStep{TimerID: "cooldown", FireAfterSeconds: 60}).
//	    Activity(decisor.ActivityStep{Name: "charge", Version: "v1"}).
//	    Chain()
//
// Invalid configuration (timer bounds, oversized control payloads, missing
// identities) panics at build time; nothing is validated at decide time.
//
// # Decider
//
// A Decider maps one decision task to one response. The default chain
// decider replays history, finds the step that just finished, and schedules
// the one after it; timeouts are retried up to three times with counters
// persisted as history markers, so retry state survives process restarts
// without any engine-local memory. Custom decision logic implements the
// DecisionHandler interface and is dispatched the same way.
//
// # Worker
//
// A Worker runs the poll → decide → respond loop against a DecisionClient.
// Workflow names are bound to deciders in a registry at startup. Workers can
// be scaled horizontally; the engine's statelessness makes that safe.
//
// # DecisionClient
//
// DecisionClient is the transport boundary to the orchestration service.
// Queueing, task leases, and delivery guarantees are the service's job, not
// this package's.
//
// # LocalService
//
// LocalService is an in-process stand-in for the orchestration service,
// backed by an in-memory or SQLite history store. It paginates history,
// applies responses back onto the store, and offers helpers to simulate
// activity and timer outcomes, which makes multi-invocation scenarios easy
// to drive in tests. It is intentionally not a durable queue.
package decisor
