package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	inventorydomain "github.com/tair/farm-management/internal/inventory/domain"
	productdomain "github.com/tair/farm-management/internal/product/domain"
	saledomain "github.com/tair/farm-management/internal/sale/domain"
	"github.com/tair/farm-management/kafka"
	"github.com/tair/farm-management/pkg/logger"
)

// SaleReconciler debits the inventory ledger and computes profit when a sale
// is created. It reacts to sale-created events outside the request path: by
// the time it runs, the registering call has already returned.
type SaleReconciler struct {
	sales     saledomain.SaleRepository
	inventory inventorydomain.InventoryRepository
	products  productdomain.ProductRepository
}

// NewSaleReconciler creates a new sale reconciler
func NewSaleReconciler(
	sales saledomain.SaleRepository,
	inventory inventorydomain.InventoryRepository,
	products productdomain.ProductRepository,
) *SaleReconciler {
	return &SaleReconciler{sales: sales, inventory: inventory, products: products}
}

// HandleMessage adapts raw Kafka payloads to Handle. Registered as the
// consumer handler for sale.created events.
func (r *SaleReconciler) HandleMessage(ctx context.Context, payload []byte) error {
	var event kafka.SaleCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal sale created event: %w", err)
	}
	return r.Handle(ctx, event)
}

// Handle reconciles one created sale.
//
// Each line item is debited with its own atomic conditional decrement; a line
// whose stock shrank since the registration pre-check is skipped, not failed,
// and ends up without a profit contribution. Errors are contained per item so
// one bad line does not abort the rest. The sale is finally patched with the
// enriched items and the aggregate profit.
func (r *SaleReconciler) Handle(ctx context.Context, event kafka.SaleCreatedEvent) error {
	log := logger.WithContext(ctx)

	sale, err := r.sales.FindByID(event.SaleID)
	if err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.EventID).
			Uint("sale_id", event.SaleID).
			Msg("Failed to load sale for reconciliation")
		return fmt.Errorf("failed to load sale %d: %w", event.SaleID, err)
	}

	if sale.TotalProfit != nil {
		// Redelivered event, the sale is already reconciled
		log.Debug().
			Str("event_id", event.EventID).
			Uint("sale_id", sale.ID).
			Msg("Sale already reconciled, skipping")
		return nil
	}

	totalProfit := 0.0
	items := sale.Items

	for i := range items {
		item := &items[i]

		debited, err := r.inventory.DebitSale(ctx, sale.OwnerID, item.ProductID, item.Quantity)
		if err != nil {
			log.Error().
				Err(err).
				Uint("sale_id", sale.ID).
				Uint("product_id", item.ProductID).
				Float64("quantity", item.Quantity).
				Msg("Inventory debit failed for sale item")
			continue
		}
		if !debited {
			log.Warn().
				Uint("sale_id", sale.ID).
				Uint("product_id", item.ProductID).
				Float64("quantity", item.Quantity).
				Msg("Insufficient stock at reconciliation, sale item skipped")
			continue
		}

		product, err := r.products.FindByID(item.ProductID)
		if err != nil {
			log.Error().
				Err(err).
				Uint("sale_id", sale.ID).
				Uint("product_id", item.ProductID).
				Msg("Failed to load product cost, item profit not computed")
			continue
		}

		profit := (item.PricePerUnit - product.CostPerUnit) * item.Quantity
		item.Profit = &profit
		totalProfit += profit
	}

	if err := r.sales.UpdateProfit(sale.ID, items, totalProfit); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.EventID).
			Uint("sale_id", sale.ID).
			Msg("Failed to patch sale with reconciled profit")
		return fmt.Errorf("failed to update sale %d profit: %w", sale.ID, err)
	}

	log.Info().
		Str("event_id", event.EventID).
		Uint("sale_id", sale.ID).
		Float64("total_profit", totalProfit).
		Int("items", len(items)).
		Msg("Sale reconciled")

	return nil
}
