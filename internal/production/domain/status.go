package domain

import "fmt"

// Status is the lifecycle state of a production item
type Status string

// Production statuses. Transitions are monotonic along
// planted -> in_production -> harvested; harvested is terminal.
const (
	StatusPlanted      Status = "planted"
	StatusInProduction Status = "in_production"
	StatusHarvested    Status = "harvested"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanted, StatusInProduction, StatusHarvested:
		return true
	}
	return false
}

// ValidationErrorKind discriminates transition failures so callers can
// switch on an explicit kind instead of type-testing
type ValidationErrorKind string

const (
	KindInvalidTransition ValidationErrorKind = "invalid_transition"
	KindTerminalState     ValidationErrorKind = "terminal_state"
	KindSkipPhase         ValidationErrorKind = "skip_phase"
)

// ValidationError is a business-rule violation of the status state machine
type ValidationError struct {
	Kind      ValidationErrorKind
	Current   Status
	Requested Status
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindTerminalState:
		return fmt.Sprintf("production item is already harvested: no transition from %q is allowed", e.Current)
	case KindSkipPhase:
		return fmt.Sprintf("cannot transition from %q directly to %q: mark the item in_production first", e.Current, e.Requested)
	default:
		return fmt.Sprintf("invalid status transition from %q to %q", e.Current, e.Requested)
	}
}

// allowedTransitions is the successor table of the state machine
var allowedTransitions = map[Status][]Status{
	StatusPlanted:      {StatusInProduction},
	StatusInProduction: {StatusHarvested},
	StatusHarvested:    {},
}

// ValidateTransition checks whether requested is a legal next status for
// current. The terminal-state and skip-phase cases are checked explicitly,
// even though the successor table already rejects them, so callers get a
// specific error kind for each.
func ValidateTransition(current, requested Status) error {
	if current == StatusHarvested {
		return &ValidationError{Kind: KindTerminalState, Current: current, Requested: requested}
	}

	if current == StatusPlanted && requested == StatusHarvested {
		return &ValidationError{Kind: KindSkipPhase, Current: current, Requested: requested}
	}

	if current == requested {
		return &ValidationError{Kind: KindInvalidTransition, Current: current, Requested: requested}
	}

	for _, next := range allowedTransitions[current] {
		if next == requested {
			return nil
		}
	}

	return &ValidationError{Kind: KindInvalidTransition, Current: current, Requested: requested}
}
