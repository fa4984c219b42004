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

	productdomain "github.com/tair/farm-management/internal/product/domain"
	"github.com/tair/farm-management/internal/production/domain"
	"github.com/tair/farm-management/internal/production/usecase/command"
	"github.com/tair/farm-management/internal/production/usecase/query"
	"github.com/tair/farm-management/kafka"
	"github.com/tair/farm-management/pkg/logger"
)

// ProductionHandler handles HTTP requests for production items
type ProductionHandler struct {
	startHandler     *command.StartProductionHandler
	updateHandler    *command.UpdateStatusHandler
	getHandler       *query.GetProductionHandler
	listHandler      *query.ListProductionHandler
	overviewHandler  *query.GetOverviewHandler
	dashboardHandler *query.GetDashboardHandler
	products         productdomain.ProductRepository

	kafkaPublisher *kafka.Publisher

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewProductionHandler creates a new production handler
func NewProductionHandler(
	startHandler *command.StartProductionHandler,
	updateHandler *command.UpdateStatusHandler,
	getHandler *query.GetProductionHandler,
	listHandler *query.ListProductionHandler,
	overviewHandler *query.GetOverviewHandler,
	dashboardHandler *query.GetDashboardHandler,
	products productdomain.ProductRepository,
	kafkaPublisher *kafka.Publisher,
) *ProductionHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "production_service_requests_total",
			Help: "Total number of requests to production service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "production_service_request_duration_seconds",
			Help:    "Duration of production service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &ProductionHandler{
		startHandler:     startHandler,
		updateHandler:    updateHandler,
		getHandler:       getHandler,
		listHandler:      listHandler,
		overviewHandler:  overviewHandler,
		dashboardHandler: dashboardHandler,
		products:         products,
		kafkaPublisher:   kafkaPublisher,
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"error_kind,omitempty"`
}

// StartProduction handles POST /api/production
func (h *ProductionHandler) StartProduction(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("POST", "/api/production")
	defer timer.ObserveDuration()

	var req struct {
		OwnerID             uint      `json:"owner_id"`
		ProductID           uint      `json:"product_id"`
		ExpectedHarvestDate time.Time `json:"expected_harvest_date"`
		Location            string    `json:"location"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, "POST", "/api/production", http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	item, err := h.startHandler.Handle(command.StartProductionCommand{
		OwnerID:             req.OwnerID,
		ProductID:           req.ProductID,
		ExpectedHarvestDate: req.ExpectedHarvestDate,
		Location:            req.Location,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to start production")
		h.respondJSON(w, "POST", "/api/production", http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.respondJSON(w, "POST", "/api/production", http.StatusCreated, Response{
		Success: true,
		Message: "Production started successfully",
		Data:    item,
	})
}

// UpdateStatus handles PATCH /api/production/{id}/status
func (h *ProductionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("PATCH", "/api/production/{id}/status")
	defer timer.ObserveDuration()

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondJSON(w, "PATCH", "/api/production/{id}/status", http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid production item ID",
		})
		return
	}

	var req struct {
		Status      string   `json:"status"`
		YieldAmount *float64 `json:"yield_amount,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, "PATCH", "/api/production/{id}/status", http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	result, err := h.updateHandler.Handle(command.UpdateStatusCommand{
		ItemID:      uint(id),
		Status:      domain.Status(req.Status),
		YieldAmount: req.YieldAmount,
	})
	if err != nil {
		h.respondError(w, "PATCH", "/api/production/{id}/status", err)
		return
	}

	// Publish the change event so the harvest reconciler can credit
	// inventory; the user-facing call does not wait for that.
	ctx := r.Context()
	if h.kafkaPublisher != nil {
		event := kafka.ProductionItemUpdatedEvent{
			Before: snapshot(result.Previous),
			After:  snapshot(result.Updated),
		}

		if err := h.kafkaPublisher.PublishProductionItemUpdated(ctx, event); err != nil {
			logger.Logger.Error().
				Err(err).
				Uint("item_id", result.Updated.ID).
				Msg("Failed to publish production item updated event")
			// Don't fail the update, just log the error
		}
	}

	h.respondJSON(w, "PATCH", "/api/production/{id}/status", http.StatusOK, Response{
		Success: true,
		Message: "Status updated successfully",
		Data:    result.Updated,
	})
}

// GetProduction handles GET /api/production/{id}
func (h *ProductionHandler) GetProduction(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("GET", "/api/production/{id}")
	defer timer.ObserveDuration()

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondJSON(w, "GET", "/api/production/{id}", http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid production item ID",
		})
		return
	}

	item, err := h.getHandler.Handle(query.GetProductionQuery{ItemID: uint(id)})
	if err != nil {
		h.respondError(w, "GET", "/api/production/{id}", err)
		return
	}

	h.respondJSON(w, "GET", "/api/production/{id}", http.StatusOK, Response{
		Success: true,
		Data:    item,
	})
}

// ListProduction handles GET /api/production
func (h *ProductionHandler) ListProduction(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("GET", "/api/production")
	defer timer.ObserveDuration()

	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	status := r.URL.Query().Get("status")

	items, err := h.listHandler.Handle(query.ListProductionQuery{
		OwnerID: uint(ownerID),
		Status:  domain.Status(status),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.respondError(w, "GET", "/api/production", err)
		return
	}

	h.respondJSON(w, "GET", "/api/production", http.StatusOK, Response{
		Success: true,
		Data:    items,
	})
}

// GetOverview handles GET /api/production/overview
func (h *ProductionHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("GET", "/api/production/overview")
	defer timer.ObserveDuration()

	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)

	overview, err := h.overviewHandler.Handle(query.GetOverviewQuery{OwnerID: uint(ownerID)})
	if err != nil {
		h.respondError(w, "GET", "/api/production/overview", err)
		return
	}

	h.respondJSON(w, "GET", "/api/production/overview", http.StatusOK, Response{
		Success: true,
		Data:    overview,
	})
}

// GetDashboard handles GET /api/production/dashboard
func (h *ProductionHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("GET", "/api/production/dashboard")
	defer timer.ObserveDuration()

	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)

	dashboard, err := h.dashboardHandler.Handle(query.GetDashboardQuery{OwnerID: uint(ownerID)})
	if err != nil {
		h.respondError(w, "GET", "/api/production/dashboard", err)
		return
	}

	h.respondJSON(w, "GET", "/api/production/dashboard", http.StatusOK, Response{
		Success: true,
		Data:    dashboard,
	})
}

// ListProducts handles GET /api/products
func (h *ProductionHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("GET", "/api/products")
	defer timer.ObserveDuration()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	products, err := h.products.FindAll(limit, offset)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list products")
		h.respondJSON(w, "GET", "/api/products", http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list products",
		})
		return
	}

	h.respondJSON(w, "GET", "/api/products", http.StatusOK, Response{
		Success: true,
		Data:    products,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductionHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	timer := h.startTimer("GET", "/api/products/{id}")
	defer timer.ObserveDuration()

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondJSON(w, "GET", "/api/products/{id}", http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid product ID",
		})
		return
	}

	product, err := h.products.FindByID(uint(id))
	if err != nil {
		h.respondJSON(w, "GET", "/api/products/{id}", http.StatusNotFound, Response{
			Success: false,
			Error:   "Product not found",
		})
		return
	}

	h.respondJSON(w, "GET", "/api/products/{id}", http.StatusOK, Response{
		Success: true,
		Data:    product,
	})
}

// RegisterRoutes registers all production routes
func (h *ProductionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/production", h.ListProduction).Methods("GET")
	router.HandleFunc("/api/production", h.StartProduction).Methods("POST")
	router.HandleFunc("/api/production/overview", h.GetOverview).Methods("GET")
	router.HandleFunc("/api/production/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/api/production/{id}", h.GetProduction).Methods("GET")
	router.HandleFunc("/api/production/{id}/status", h.UpdateStatus).Methods("PATCH")
	router.HandleFunc("/api/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.GetProduct).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *ProductionHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
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
			Message: "Production service is healthy",
		})
	}).Methods("GET")
}

func (h *ProductionHandler) respondError(w http.ResponseWriter, method, endpoint string, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.respondJSON(w, method, endpoint, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   validationErr.Error(),
			Kind:    string(validationErr.Kind),
		})
	case errors.Is(err, domain.ErrNotFound):
		h.respondJSON(w, method, endpoint, http.StatusNotFound, Response{
			Success: false,
			Error:   "Production item not found",
		})
	default:
		logger.Logger.Error().Err(err).Str("endpoint", endpoint).Msg("Request failed")
		h.respondJSON(w, method, endpoint, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	}
}

func (h *ProductionHandler) startTimer(method, endpoint string) *prometheus.Timer {
	return prometheus.NewTimer(h.requestLatency.WithLabelValues(method, endpoint))
}

func (h *ProductionHandler) respondJSON(w http.ResponseWriter, method, endpoint string, status int, payload interface{}) {
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func snapshot(item domain.ProductionItem) kafka.ProductionSnapshot {
	return kafka.ProductionSnapshot{
		ID:            item.ID,
		OwnerID:       item.OwnerID,
		ProductID:     item.ProductID,
		ProductName:   item.ProductName,
		Unit:          item.Unit,
		Status:        string(item.Status),
		Yield:         item.Yield,
		HarvestedDate: item.HarvestedDate,
	}
}
