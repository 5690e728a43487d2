package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/hagglehub/negotiation-api/internal/service"
	"go.uber.org/zap"
)

type DealHandler struct {
	dealService *service.DealService
	logger      *zap.Logger
}

func NewDealHandler(dealService *service.DealService, logger *zap.Logger) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		logger:      logger,
	}
}

// List returns the user's deals with optional status / dealer /
// purchase-type filters.
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	uid := userID(r)

	filters := &repository.DealFilters{UserID: &uid}

	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.DealStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filters.Status = &status
	}
	if d := r.URL.Query().Get("dealerId"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			filters.DealerID = &id
		}
	}
	if v := r.URL.Query().Get("vehicleId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.VehicleID = &id
		}
	}
	if p := r.URL.Query().Get("purchaseType"); p != "" {
		pt := domain.PurchaseType(p)
		filters.PurchaseType = &pt
	}
	if r.URL.Query().Get("active") == "true" {
		filters.ActiveOnly = true
	}

	sortBy := repository.DealSortOption(r.URL.Query().Get("sort"))

	result, err := h.dealService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("Failed to list deals", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.Create(r.Context(), userID(r), &req)
	if err != nil {
		h.logger.Error("Failed to create deal", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, deal)
}

// UpdatePrices edits one or more price fields in the deal's current
// negotiation mode.
func (h *DealHandler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req domain.UpdateDealPricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.UpdatePrices(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("Failed to update deal prices", zap.String("deal_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// ToggleMode switches the deal between sales-price and out-the-door
// negotiation.
func (h *DealHandler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req domain.ToggleNegotiationModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.ToggleNegotiationMode(r.Context(), id, req.Mode)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

func (h *DealHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req domain.UpdateDealStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// ResolveFees recalculates the fee breakdown from the deal's zip code.
func (h *DealHandler) ResolveFees(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	deal, err := h.dealService.ResolveFees(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// SetManualFees replaces the automatic breakdown with hand-entered
// figures.
func (h *DealHandler) SetManualFees(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req domain.SetManualFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.SetManualFees(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// ClearManualFees re-enables automatic fee resolution.
func (h *DealHandler) ClearManualFees(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	deal, err := h.dealService.ClearManualFees(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// PreviewFees resolves a breakdown for a hypothetical price and zip
// without touching any deal.
func (h *DealHandler) PreviewFees(w http.ResponseWriter, r *http.Request) {
	var req domain.FeePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	breakdown, err := h.dealService.PreviewFees(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, breakdown)
}

func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	if err := h.dealService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
