package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/farm-management/internal/inventory/domain"
	"github.com/tair/farm-management/internal/inventory/usecase/query"
	"github.com/tair/farm-management/pkg/logger"
)

// InventoryHandler handles HTTP requests for the stock ledger. The ledger is
// read-only over HTTP: all writes go through the reconciliation triggers.
type InventoryHandler struct {
	repo            domain.InventoryRepository
	overviewHandler *query.GetOverviewHandler
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(repo domain.InventoryRepository) *InventoryHandler {
	return &InventoryHandler{
		repo:            repo,
		overviewHandler: query.NewGetOverviewHandler(repo),
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ListInventory handles GET /api/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)
	if ownerID == 0 {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "owner_id is required",
		})
		return
	}

	inventories, err := h.repo.FindByOwner(uint(ownerID))
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list inventory")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list inventory",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    inventories,
	})
}

// GetOverview handles GET /api/inventory/overview
func (h *InventoryHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)

	overview, err := h.overviewHandler.Handle(query.GetOverviewQuery{OwnerID: uint(ownerID)})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    overview,
	})
}

// GetByProduct handles GET /api/inventory/{product_id}
func (h *InventoryHandler) GetByProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID, err := strconv.ParseUint(vars["product_id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid product ID",
		})
		return
	}

	ownerID, _ := strconv.ParseUint(r.URL.Query().Get("owner_id"), 10, 32)
	if ownerID != 0 {
		inventory, err := h.repo.FindByOwnerAndProduct(uint(ownerID), uint(productID))
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to get inventory")
			respondJSON(w, http.StatusInternalServerError, Response{
				Success: false,
				Error:   "Failed to get inventory",
			})
			return
		}
		if inventory == nil {
			respondJSON(w, http.StatusNotFound, Response{
				Success: false,
				Error:   "Inventory not found",
			})
			return
		}
		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    inventory,
		})
		return
	}

	inventories, err := h.repo.FindByProduct(uint(productID))
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to get inventory by product")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to get inventory",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    inventories,
	})
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory", h.ListInventory).Methods("GET")
	router.HandleFunc("/api/inventory/overview", h.GetOverview).Methods("GET")
	router.HandleFunc("/api/inventory/{product_id}", h.GetByProduct).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *InventoryHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Inventory service is healthy",
		})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
