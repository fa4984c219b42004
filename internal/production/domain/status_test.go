package domain

import (
	"errors"
	"testing"
)

func TestValidateTransition_AllowedChain(t *testing.T) {
	if err := ValidateTransition(StatusPlanted, StatusInProduction); err != nil {
		t.Errorf("planted -> in_production should be allowed, got: %v", err)
	}
	if err := ValidateTransition(StatusInProduction, StatusHarvested); err != nil {
		t.Errorf("in_production -> harvested should be allowed, got: %v", err)
	}
}

func TestValidateTransition_Exhaustive(t *testing.T) {
	statuses := []Status{StatusPlanted, StatusInProduction, StatusHarvested}

	allowed := map[Status]Status{
		StatusPlanted:      StatusInProduction,
		StatusInProduction: StatusHarvested,
	}

	for _, current := range statuses {
		for _, requested := range statuses {
			err := ValidateTransition(current, requested)
			if allowed[current] == requested && current != StatusHarvested {
				if err != nil {
					t.Errorf("%s -> %s: expected success, got %v", current, requested, err)
				}
				continue
			}
			if err == nil {
				t.Errorf("%s -> %s: expected error, got success", current, requested)
			}
		}
	}
}

func TestValidateTransition_TerminalState(t *testing.T) {
	for _, requested := range []Status{StatusPlanted, StatusInProduction, StatusHarvested} {
		err := ValidateTransition(StatusHarvested, requested)

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("harvested -> %s: expected ValidationError, got %v", requested, err)
		}
		if validationErr.Kind != KindTerminalState {
			t.Errorf("harvested -> %s: expected terminal_state, got %s", requested, validationErr.Kind)
		}
	}
}

func TestValidateTransition_SkipPhase(t *testing.T) {
	err := ValidateTransition(StatusPlanted, StatusHarvested)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Kind != KindSkipPhase {
		t.Errorf("expected skip_phase, got %s", validationErr.Kind)
	}
}

func TestValidateTransition_SameStatus(t *testing.T) {
	for _, current := range []Status{StatusPlanted, StatusInProduction} {
		err := ValidateTransition(current, current)

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s -> %s: expected ValidationError, got %v", current, current, err)
		}
		if validationErr.Kind != KindInvalidTransition {
			t.Errorf("%s -> %s: expected invalid_transition, got %s", current, current, validationErr.Kind)
		}
	}
}

func TestValidateTransition_Backwards(t *testing.T) {
	err := ValidateTransition(StatusInProduction, StatusPlanted)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Kind != KindInvalidTransition {
		t.Errorf("expected invalid_transition, got %s", validationErr.Kind)
	}
}
