package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	inventorydomain "github.com/tair/farm-management/internal/inventory/domain"
	productdomain "github.com/tair/farm-management/internal/product/domain"
	productiondomain "github.com/tair/farm-management/internal/production/domain"
	"github.com/tair/farm-management/kafka"
	"github.com/tair/farm-management/pkg/logger"
)

// HarvestReconciler credits the inventory ledger when a production item
// transitions into harvested. It runs outside the request path, reacting to
// production-item-updated events, and must tolerate redelivery.
type HarvestReconciler struct {
	inventory inventorydomain.InventoryRepository
	products  productdomain.ProductRepository
}

// NewHarvestReconciler creates a new harvest reconciler
func NewHarvestReconciler(
	inventory inventorydomain.InventoryRepository,
	products productdomain.ProductRepository,
) *HarvestReconciler {
	return &HarvestReconciler{inventory: inventory, products: products}
}

// HandleMessage adapts raw Kafka payloads to Handle. Registered as the
// consumer handler for production_item.updated events.
func (r *HarvestReconciler) HandleMessage(ctx context.Context, payload []byte) error {
	var event kafka.ProductionItemUpdatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal production item updated event: %w", err)
	}
	return r.Handle(ctx, event)
}

// Handle applies one production item update to the inventory ledger.
//
// Only a fresh edge into harvested triggers a credit; unrelated field edits
// and redelivered snapshots are no-ops. Events missing the owner, product or
// a positive yield are logged and dropped without side effects. The credit
// itself is an atomic read-modify-write that retries on write conflict; if
// retries are exhausted the item stays harvested with inventory
// under-credited, so the overall guarantee is at-least-once, not
// exactly-once.
func (r *HarvestReconciler) Handle(ctx context.Context, event kafka.ProductionItemUpdatedEvent) error {
	log := logger.WithContext(ctx)

	harvested := string(productiondomain.StatusHarvested)
	if event.Before.Status == harvested || event.After.Status != harvested {
		// Not a fresh transition into harvested
		return nil
	}

	after := event.After
	if after.OwnerID == 0 || after.ProductID == 0 || after.Yield == nil || *after.Yield <= 0 {
		log.Warn().
			Str("event_id", event.EventID).
			Uint("item_id", after.ID).
			Uint("owner_id", after.OwnerID).
			Uint("product_id", after.ProductID).
			Msg("Harvest event missing required fields, no inventory credit applied")
		return nil
	}

	productName := after.ProductName
	unit := after.Unit
	if productName == "" || unit == "" {
		product, err := r.products.FindByID(after.ProductID)
		if err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.EventID).
				Uint("product_id", after.ProductID).
				Msg("Failed to load product for harvest credit")
			return fmt.Errorf("failed to load product %d: %w", after.ProductID, err)
		}
		productName = product.Name
		unit = product.Unit
	}

	credit := inventorydomain.HarvestCredit{
		OwnerID:     after.OwnerID,
		ProductID:   after.ProductID,
		ProductName: productName,
		Unit:        unit,
		Yield:       *after.Yield,
		HarvestID:   after.ID,
	}

	if err := r.inventory.CreditHarvest(ctx, credit); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.EventID).
			Uint("item_id", after.ID).
			Uint("owner_id", after.OwnerID).
			Uint("product_id", after.ProductID).
			Float64("yield", *after.Yield).
			Msg("Inventory credit failed, ledger is under-credited")
		return err
	}

	log.Info().
		Str("event_id", event.EventID).
		Uint("item_id", after.ID).
		Uint("owner_id", after.OwnerID).
		Uint("product_id", after.ProductID).
		Float64("yield", *after.Yield).
		Msg("Inventory credited for harvest")

	return nil
}
