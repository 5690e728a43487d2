package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/service"
	"go.uber.org/zap"
)

type DealerHandler struct {
	dealerService *service.DealerService
	logger        *zap.Logger
}

func NewDealerHandler(dealerService *service.DealerService, logger *zap.Logger) *DealerHandler {
	return &DealerHandler{
		dealerService: dealerService,
		logger:        logger,
	}
}

func (h *DealerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	result, err := h.dealerService.List(r.Context(), userID(r), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list dealers", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *DealerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dealer ID")
		return
	}

	dealer, err := h.dealerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dealer)
}

func (h *DealerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dealer, err := h.dealerService.Create(r.Context(), userID(r), &req)
	if err != nil {
		h.logger.Error("Failed to create dealer", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dealer)
}

func (h *DealerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dealer ID")
		return
	}

	var req domain.UpdateDealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dealer, err := h.dealerService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dealer)
}

func (h *DealerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dealer ID")
		return
	}

	if err := h.dealerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
