package query

import (
	"fmt"
	"time"

	"github.com/tair/farm-management/internal/sale/domain"
)

// ListSalesQuery represents the query to list sales for an owner, optionally
// narrowed to one client or a date window
type ListSalesQuery struct {
	OwnerID    uint
	ClientName string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// ListSalesHandler handles list sales query
type ListSalesHandler struct {
	repo domain.SaleRepository
}

// NewListSalesHandler creates a new list sales handler
func NewListSalesHandler(repo domain.SaleRepository) *ListSalesHandler {
	return &ListSalesHandler{repo: repo}
}

// Handle executes the list sales query
func (h *ListSalesHandler) Handle(query ListSalesQuery) ([]domain.Sale, error) {
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}

	if query.ClientName != "" {
		return h.repo.FindByClient(query.OwnerID, query.ClientName)
	}

	if !query.From.IsZero() && !query.To.IsZero() {
		return h.repo.FindByDateRange(query.OwnerID, query.From, query.To)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	return h.repo.FindByOwner(query.OwnerID, limit, query.Offset)
}
