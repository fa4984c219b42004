package query

import (
	"fmt"
	"sort"
	"time"

	"github.com/tair/farm-management/internal/sale/domain"
)

// topClientsLimit caps the client ranking
const topClientsLimit = 10

// GetDashboardQuery represents the query to get sales dashboard statistics
// for a date window
type GetDashboardQuery struct {
	OwnerID uint
	From    time.Time
	To      time.Time
}

// MonthlyBucket aggregates sales of one calendar month, keyed YYYY-MM
type MonthlyBucket struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// ClientRanking is one client's aggregate position in the window
type ClientRanking struct {
	ClientName  string  `json:"client_name"`
	TotalAmount float64 `json:"total_amount"`
	Count       int     `json:"count"`
}

// SalesDashboard aggregates the sales ledger for a date window. Profit sums
// treat unreconciled sales (no total profit yet) as zero.
type SalesDashboard struct {
	TotalSales    int             `json:"total_sales"`
	TotalRevenue  float64         `json:"total_revenue"`
	LiquidRevenue float64         `json:"liquid_revenue"`
	BestMonth     *MonthlyBucket  `json:"best_month,omitempty"`
	Monthly       []MonthlyBucket `json:"monthly"`
	TopClients    []ClientRanking `json:"top_clients"`
}

// GetDashboardHandler handles get dashboard query
type GetDashboardHandler struct {
	repo domain.SaleRepository
}

// NewGetDashboardHandler creates a new get dashboard handler
func NewGetDashboardHandler(repo domain.SaleRepository) *GetDashboardHandler {
	return &GetDashboardHandler{repo: repo}
}

// Handle executes the get dashboard query. Pure aggregation over a ledger
// snapshot.
func (h *GetDashboardHandler) Handle(query GetDashboardQuery) (*SalesDashboard, error) {
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}

	from := query.From
	to := query.To
	if from.IsZero() {
		from = time.Now().AddDate(-1, 0, 0)
	}
	if to.IsZero() {
		to = time.Now()
	}

	sales, err := h.repo.FindByDateRange(query.OwnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	return Aggregate(sales), nil
}

// Aggregate derives the dashboard from a slice of sales. Exported so it can
// run against any ledger snapshot.
func Aggregate(sales []domain.Sale) *SalesDashboard {
	dashboard := &SalesDashboard{
		Monthly:    []MonthlyBucket{},
		TopClients: []ClientRanking{},
	}

	months := make(map[string]*MonthlyBucket)
	monthOrder := []string{}
	clients := make(map[string]*ClientRanking)
	clientOrder := []string{}

	for _, sale := range sales {
		dashboard.TotalSales++
		dashboard.TotalRevenue += sale.TotalAmount
		if sale.TotalProfit != nil {
			dashboard.LiquidRevenue += *sale.TotalProfit
		}

		key := sale.SaleDate.Format("2006-01")
		bucket, ok := months[key]
		if !ok {
			bucket = &MonthlyBucket{Month: key}
			months[key] = bucket
			monthOrder = append(monthOrder, key)
		}
		bucket.Revenue += sale.TotalAmount
		bucket.Count++

		ranking, ok := clients[sale.ClientName]
		if !ok {
			ranking = &ClientRanking{ClientName: sale.ClientName}
			clients[sale.ClientName] = ranking
			clientOrder = append(clientOrder, sale.ClientName)
		}
		ranking.TotalAmount += sale.TotalAmount
		ranking.Count++
	}

	// Best month: highest revenue, first-encountered month wins ties
	for _, key := range monthOrder {
		bucket := months[key]
		if dashboard.BestMonth == nil || bucket.Revenue > dashboard.BestMonth.Revenue {
			best := *bucket
			dashboard.BestMonth = &best
		}
	}

	for _, key := range monthOrder {
		dashboard.Monthly = append(dashboard.Monthly, *months[key])
	}
	sort.Slice(dashboard.Monthly, func(i, j int) bool {
		return dashboard.Monthly[i].Month < dashboard.Monthly[j].Month
	})

	// Top clients: descending by amount, encounter order preserved on ties
	for _, name := range clientOrder {
		dashboard.TopClients = append(dashboard.TopClients, *clients[name])
	}
	sort.SliceStable(dashboard.TopClients, func(i, j int) bool {
		return dashboard.TopClients[i].TotalAmount > dashboard.TopClients[j].TotalAmount
	})
	if len(dashboard.TopClients) > topClientsLimit {
		dashboard.TopClients = dashboard.TopClients[:topClientsLimit]
	}

	return dashboard
}
