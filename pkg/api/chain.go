package api

// StepChain is the ordered, immutable sequence of steps that makes up one
// workflow definition. It is declared once and read concurrently by any
// number of decisions; nothing in this package mutates it.
//
// Steps with duplicate identities are not supported: Find and FindNext
// return the first match, so a second step with the same identity is
// unreachable. Keeping identities unique is a constraint on the definition,
// not something checked at decide time.
type StepChain []WorkflowStep

// Validate checks every entry of the chain.
func (c StepChain) Validate() error {
	for _, s := range c {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the first step matching the given kind and identity.
// For activities and child workflows the identity is (name, version); for
// timers it is the timer ID passed as name, and version is ignored.
func (c StepChain) Find(kind StepKind, name, version string) (WorkflowStep, bool) {
	for _, s := range c {
		if s.matches(kind, name, version) {
			return s, true
		}
	}
	return WorkflowStep{}, false
}

// FindNext returns the step immediately after the first match, or false when
// the match is the last element or no step matches.
func (c StepChain) FindNext(kind StepKind, name, version string) (WorkflowStep, bool) {
	for i, s := range c {
		if s.matches(kind, name, version) {
			if i+1 < len(c) {
				return c[i+1], true
			}
			return WorkflowStep{}, false
		}
	}
	return WorkflowStep{}, false
}

func (s WorkflowStep) matches(kind StepKind, name, version string) bool {
	if s.Kind != kind {
		return false
	}
	switch kind {
	case StepKindActivity:
		return s.Activity != nil && s.Activity.Name == name && s.Activity.Version == version
	case StepKindTimer:
		return s.Timer != nil && s.Timer.TimerID == name
	case StepKindChildWorkflow:
		return s.ChildWorkflow != nil && s.ChildWorkflow.Name == name && s.ChildWorkflow.Version == version
	}
	return false
}
