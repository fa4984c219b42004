package command

import (
	"fmt"

	"github.com/tair/farm-management/internal/production/domain"
)

// UpdateStatusCommand represents the command to transition a production item.
// YieldAmount is required when the requested status is harvested.
type UpdateStatusCommand struct {
	ItemID      uint
	Status      domain.Status
	YieldAmount *float64
}

// UpdateStatusResult carries the item before and after the transition, so the
// delivery layer can publish a change event with both snapshots.
type UpdateStatusResult struct {
	Previous domain.ProductionItem
	Updated  domain.ProductionItem
}

// UpdateStatusHandler handles update status command
type UpdateStatusHandler struct {
	repo domain.ProductionRepository
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(repo domain.ProductionRepository) *UpdateStatusHandler {
	return &UpdateStatusHandler{repo: repo}
}

// Handle executes the update status command. The transition is validated
// against the state machine first; the harvest transition additionally stamps
// yield and harvested date. Inventory is not touched here: the credit happens
// in the reconciliation trigger reacting to the persisted change.
func (h *UpdateStatusHandler) Handle(cmd UpdateStatusCommand) (*UpdateStatusResult, error) {
	if cmd.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required")
	}
	if !cmd.Status.IsValid() {
		return nil, fmt.Errorf("unknown status: %q", cmd.Status)
	}

	item, err := h.repo.FindByID(cmd.ItemID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateTransition(item.Status, cmd.Status); err != nil {
		return nil, err
	}

	if cmd.Status == domain.StatusHarvested {
		if cmd.YieldAmount == nil || *cmd.YieldAmount <= 0 {
			return nil, fmt.Errorf("yield_amount is required to harvest")
		}
		if err := h.repo.SetAsHarvested(cmd.ItemID, *cmd.YieldAmount); err != nil {
			return nil, fmt.Errorf("failed to harvest production item: %w", err)
		}
	} else {
		if err := h.repo.UpdateStatus(cmd.ItemID, cmd.Status); err != nil {
			return nil, fmt.Errorf("failed to update production status: %w", err)
		}
	}

	updated, err := h.repo.FindByID(cmd.ItemID)
	if err != nil {
		return nil, err
	}

	return &UpdateStatusResult{Previous: *item, Updated: *updated}, nil
}
