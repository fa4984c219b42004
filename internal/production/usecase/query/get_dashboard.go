package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/tair/farm-management/internal/production/domain"
)

// GetDashboardQuery represents the query to get production dashboard statistics
type GetDashboardQuery struct {
	OwnerID uint
}

// ProductShare is the share of one product in the owner's production cycles
type ProductShare struct {
	ProductName string `json:"product_name"`
	Count       int    `json:"count"`
	Percentage  int    `json:"percentage"`
}

// MonthlyTrend counts plantings and harvests for one calendar month
type MonthlyTrend struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	Planted   int `json:"planted"`
	Harvested int `json:"harvested"`
}

// ProductionDashboard aggregates an owner's production ledger
type ProductionDashboard struct {
	TotalItems   int            `json:"total_items"`
	Distribution []ProductShare `json:"distribution"`
	Trend        []MonthlyTrend `json:"trend"`
}

// GetDashboardHandler handles get dashboard query
type GetDashboardHandler struct {
	repo domain.ProductionRepository
}

// NewGetDashboardHandler creates a new get dashboard handler
func NewGetDashboardHandler(repo domain.ProductionRepository) *GetDashboardHandler {
	return &GetDashboardHandler{repo: repo}
}

// Handle executes the get dashboard query
func (h *GetDashboardHandler) Handle(query GetDashboardQuery) (*ProductionDashboard, error) {
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}

	items, err := h.repo.FindByOwner(query.OwnerID, 10000, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load production items: %w", err)
	}

	return &ProductionDashboard{
		TotalItems:   len(items),
		Distribution: productDistribution(items),
		Trend:        monthlyTrend(items),
	}, nil
}

// productDistribution computes per-product percentage shares, sorted by
// percentage descending. Percentages are rounded individually and may not
// sum to exactly 100.
func productDistribution(items []domain.ProductionItem) []ProductShare {
	total := len(items)
	shares := []ProductShare{}
	if total == 0 {
		return shares
	}

	counts := make(map[string]int)
	order := []string{}
	for _, item := range items {
		if _, seen := counts[item.ProductName]; !seen {
			order = append(order, item.ProductName)
		}
		counts[item.ProductName]++
	}

	for _, name := range order {
		count := counts[name]
		shares = append(shares, ProductShare{
			ProductName: name,
			Count:       count,
			Percentage:  int(math.Round(float64(count) / float64(total) * 100)),
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Percentage > shares[j].Percentage
	})

	return shares
}

// monthlyTrend buckets plantings by plantedDate and harvests by
// harvestedDate, sorted chronologically.
func monthlyTrend(items []domain.ProductionItem) []MonthlyTrend {
	type yearMonth struct {
		year  int
		month int
	}

	buckets := make(map[yearMonth]*MonthlyTrend)
	bucket := func(year, month int) *MonthlyTrend {
		key := yearMonth{year, month}
		if b, ok := buckets[key]; ok {
			return b
		}
		b := &MonthlyTrend{Year: year, Month: month}
		buckets[key] = b
		return b
	}

	for _, item := range items {
		b := bucket(item.PlantedDate.Year(), int(item.PlantedDate.Month()))
		b.Planted++

		if item.HarvestedDate != nil {
			b = bucket(item.HarvestedDate.Year(), int(item.HarvestedDate.Month()))
			b.Harvested++
		}
	}

	trend := make([]MonthlyTrend, 0, len(buckets))
	for _, b := range buckets {
		trend = append(trend, *b)
	}

	sort.Slice(trend, func(i, j int) bool {
		if trend[i].Year != trend[j].Year {
			return trend[i].Year < trend[j].Year
		}
		return trend[i].Month < trend[j].Month
	})

	return trend
}
