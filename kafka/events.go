package kafka

import "time"

// ProductionSnapshot is the state of a production item at one point in time.
// Events carry a before and an after snapshot so consumers can detect edges
// instead of reacting to every write.
type ProductionSnapshot struct {
	ID            uint       `json:"id"`
	OwnerID       uint       `json:"owner_id"`
	ProductID     uint       `json:"product_id"`
	ProductName   string     `json:"product_name"`
	Unit          string     `json:"unit"`
	Status        string     `json:"status"`
	Yield         *float64   `json:"yield,omitempty"`
	HarvestedDate *time.Time `json:"harvested_date,omitempty"`
}

// ProductionItemUpdatedEvent is published after every production item mutation
type ProductionItemUpdatedEvent struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Before    ProductionSnapshot `json:"before"`
	After     ProductionSnapshot `json:"after"`
	Timestamp time.Time          `json:"timestamp"`
}

// SaleLine is one line item of a sale-created event
type SaleLine struct {
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// SaleCreatedEvent is published after a sale is registered
type SaleCreatedEvent struct {
	EventID   string     `json:"event_id"`
	EventType string     `json:"event_type"`
	SaleID    uint       `json:"sale_id"`
	OwnerID   uint       `json:"owner_id"`
	Items     []SaleLine `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}

// Event types
const (
	EventTypeProductionItemUpdated = "production_item.updated"
	EventTypeSaleCreated           = "sale.created"
)

// Kafka topics
const (
	TopicProductionItemUpdated = "production-item-updated"
	TopicSaleCreated           = "sale-created"
)
