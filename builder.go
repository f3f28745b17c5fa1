package decisor

import (
	"fmt"

	"github.com/petrijr/decisor/pkg/api"
)

// ChainBuilder provides a fluent API for declaring step chains:
//
//	chain := decisor.NewChain().
//	    Activity(decisor.ActivityStep{Name: "reserve", Version: "v1"}).
//	    ChildWorkflow(decisor.ChildWorkflowStep{Name: "fulfil", Version: "v1"}).
//	    Activity(decisor.ActivityStep{Name: "notify", Version: "v1"}).
//	    Chain()
//
// Each step is validated as it is added; invalid configuration panics so
// that a bad definition fails at startup, never inside a decision.
type ChainBuilder struct {
	chain api.StepChain
}

// NewChain creates an empty chain builder.
func NewChain() *ChainBuilder {
	return &ChainBuilder{chain: make(api.StepChain, 0)}
}

// Activity appends an activity step.
func (b *ChainBuilder) Activity(step ActivityStep) *ChainBuilder {
	return b.add(api.Activity(step))
}

// Timer appends a timer step.
func (b *ChainBuilder) Timer(step TimerStep) *ChainBuilder {
	return b.add(api.Timer(step))
}

// ChildWorkflow appends a child workflow step.
func (b *ChainBuilder) ChildWorkflow(step ChildWorkflowStep) *ChainBuilder {
	return b.add(api.ChildWorkflow(step))
}

func (b *ChainBuilder) add(step api.WorkflowStep) *ChainBuilder {
	if err := step.Validate(); err != nil {
		panic(fmt.Sprintf("decisor: invalid step %d: %v", len(b.chain), err))
	}
	b.chain = append(b.chain, step)
	return b
}

// Chain returns the built step chain.
func (b *ChainBuilder) Chain() StepChain {
	return b.chain
}
