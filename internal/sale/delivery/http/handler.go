package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/tair/farm-management/internal/sale/domain"
	"github.com/tair/farm-management/internal/sale/usecase/command"
	"github.com/tair/farm-management/internal/sale/usecase/query"
	"github.com/tair/farm-management/kafka"
	"github.com/tair/farm-management/pkg/logger"
)

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	registerHandler  *command.RegisterSaleHandler
	listHandler      *query.ListSalesHandler
	dashboardHandler *query.GetDashboardHandler

	repo           domain.SaleRepository
	kafkaPublisher *kafka.Publisher
	redisClient    *redis.Client

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(
	registerHandler *command.RegisterSaleHandler,
	listHandler *query.ListSalesHandler,
	dashboardHandler *query.GetDashboardHandler,
	repo domain.SaleRepository,
	kafkaPublisher *kafka.Publisher,
	redisClient *redis.Client,
) *SaleHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_service_requests_total",
			Help: "Total number of requests to sales service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_service_request_duration_seconds",
			Help:    "Duration of sales service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &SaleHandler{
		registerHandler:  registerHandler,
		listHandler:      listHandler,
		dashboardHandler: dashboardHandler,
		repo:             repo,
		kafkaPublisher:   kafkaPublisher,
		redisClient:      redisClient,
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterSale handles POST /api/sales
func (h *SaleHandler) RegisterSale(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(h.requestLatency.WithLabelValues("POST", "/api/sales"))
	defer timer.ObserveDuration()

	var req struct {
		OwnerID    uint      `json:"owner_id"`
		ClientName string    `json:"client_name"`
		SaleDate   time.Time `json:"sale_date"`
		Items      []struct {
			ProductID    uint    `json:"product_id"`
			Quantity     float64 `json:"quantity"`
			PricePerUnit float64 `json:"price_per_unit"`
		} `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, "POST", "/api/sales", http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.RegisterSaleCommand{
		OwnerID:    req.OwnerID,
		ClientName: req.ClientName,
		SaleDate:   req.SaleDate,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.RegisterSaleItem{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
		})
	}

	sale, err := h.registerHandler.Handle(cmd)
	if err != nil {
		var insufficientErr *domain.InsufficientInventoryError
		if errors.As(err, &insufficientErr) {
			h.respondJSON(w, "POST", "/api/sales", http.StatusConflict, Response{
				Success: false,
				Error:   insufficientErr.Error(),
				Data: map[string]interface{}{
					"product_name": insufficientErr.ProductName,
					"available":    insufficientErr.Available,
					"required":     insufficientErr.Requested,
				},
			})
			return
		}

		logger.Logger.Error().Err(err).Msg("Failed to register sale")
		h.respondJSON(w, "POST", "/api/sales", http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	ctx := r.Context()

	// Publish the sale-created event so the reconciler can debit inventory
	// and compute profit; the caller sees the sale without profit until then.
	if h.kafkaPublisher != nil {
		event := kafka.SaleCreatedEvent{
			SaleID:  sale.ID,
			OwnerID: sale.OwnerID,
		}
		for _, item := range sale.Items {
			event.Items = append(event.Items, kafka.SaleLine{
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				Quantity:     item.Quantity,
				PricePerUnit: item.PricePerUnit,
			})
		}

		if err := h.kafkaPublisher.PublishSaleCreated(ctx, event); err != nil {
			logger.Logger.Error().
				Err(err).
				Uint("sale_id", sale.ID).
				Msg("Failed to publish sale created event")
			// Don't fail the sale, just log the error
		}
	}

	if err := InvalidateDashboardCache(ctx, h.redisClient); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to invalidate dashboard cache")
	}

	h.respondJSON(w, "POST", "/api/sales", http.StatusCreated, Response{
		Success: true,
		Message: "Sale registered successfully",
		Data:    sale,
	})
}

// GetSale handles GET /api/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(h.requestLatency.WithLabelValues("GET", "/api/sales/{id}"))
	defer timer.ObserveDuration()

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondJSON(w, "GET", "/api/sales/{id}", http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid sale ID",
		})
		return
	}

	sale, err := h.repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.respondJSON(w, "GET", "/api/sales/{id}", http.StatusNotFound, Response{
				Success: false,
				Error:   "Sale not found",
			})
			return
		}
		logger.Logger.Error().Err(err).Msg("Failed to get sale")
		h.respondJSON(w, "GET", "/api/sales/{id}", http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to get sale",
		})
		return
	}

	h.respondJSON(w, "GET", "/api/sales/{id}", http.StatusOK, Response{
		Success: true,
		Data:    sale,
	})
}

// ListSales handles GET /api/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(h.requestLatency.WithLabelValues("GET", "/api/sales"))
	defer timer.ObserveDuration()

	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	q := query.ListSalesQuery{
		OwnerID:    uint(ownerID),
		ClientName: r.URL.Query().Get("client"),
		Limit:      limit,
		Offset:     offset,
	}
	if from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from")); err == nil {
		q.From = from
	}
	if to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to")); err == nil {
		q.To = to
	}

	sales, err := h.listHandler.Handle(q)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list sales")
		h.respondJSON(w, "GET", "/api/sales", http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.respondJSON(w, "GET", "/api/sales", http.StatusOK, Response{
		Success: true,
		Data:    sales,
	})
}

// GetDashboard handles GET /api/sales/dashboard
func (h *SaleHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(h.requestLatency.WithLabelValues("GET", "/api/sales/dashboard"))
	defer timer.ObserveDuration()

	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)

	q := query.GetDashboardQuery{OwnerID: uint(ownerID)}
	if from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from")); err == nil {
		q.From = from
	}
	if to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to")); err == nil {
		q.To = to
	}

	dashboard, err := h.dashboardHandler.Handle(q)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to compute sales dashboard")
		h.respondJSON(w, "GET", "/api/sales/dashboard", http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.respondJSON(w, "GET", "/api/sales/dashboard", http.StatusOK, Response{
		Success: true,
		Data:    dashboard,
	})
}

// GetTotal handles GET /api/sales/total
func (h *SaleHandler) GetTotal(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(h.requestLatency.WithLabelValues("GET", "/api/sales/total"))
	defer timer.ObserveDuration()

	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)
	if ownerID == 0 {
		h.respondJSON(w, "GET", "/api/sales/total", http.StatusBadRequest, Response{
			Success: false,
			Error:   "owner_id is required",
		})
		return
	}

	total, err := h.repo.GetTotalSalesAmount(uint(ownerID))
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to get total sales amount")
		h.respondJSON(w, "GET", "/api/sales/total", http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to get total sales amount",
		})
		return
	}

	h.respondJSON(w, "GET", "/api/sales/total", http.StatusOK, Response{
		Success: true,
		Data:    map[string]float64{"total_sales_amount": total},
	})
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sales", h.ListSales).Methods("GET")
	router.HandleFunc("/api/sales", h.RegisterSale).Methods("POST")
	router.HandleFunc("/api/sales/dashboard", CacheDashboard(h.redisClient, h.GetDashboard)).Methods("GET")
	router.HandleFunc("/api/sales/total", h.GetTotal).Methods("GET")
	router.HandleFunc("/api/sales/{id}", h.GetSale).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *SaleHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			h.respondJSON(w, "GET", "/health", http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		h.respondJSON(w, "GET", "/health", http.StatusOK, Response{
			Success: true,
			Message: "Sales service is healthy",
		})
	}).Methods("GET")
}

func (h *SaleHandler) respondJSON(w http.ResponseWriter, method, endpoint string, status int, payload interface{}) {
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
