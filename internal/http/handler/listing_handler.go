package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/service"
	"go.uber.org/zap"
)

type ListingHandler struct {
	listingService *service.ListingService
	logger         *zap.Logger
}

func NewListingHandler(listingService *service.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		logger:         logger,
	}
}

func (h *ListingHandler) ImportURL(w http.ResponseWriter, r *http.Request) {
	var req domain.ImportListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.listingService.ImportFromURL(r.Context(), userID(r), &req)
	if err != nil {
		h.logger.Error("Failed to import listing", zap.String("url", req.URL), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, deal)
}

func (h *ListingHandler) ParseConversation(w http.ResponseWriter, r *http.Request) {
	var req domain.ParseConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	parsed, err := h.listingService.ParseConversation(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, parsed)
}

func (h *ListingHandler) ImportConversation(w http.ResponseWriter, r *http.Request) {
	var req domain.ParseConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.listingService.ImportFromConversation(r.Context(), userID(r), &req)
	if err != nil {
		h.logger.Error("Failed to import conversation", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, deal)
}
