package handler

import (
	"net/http"

	"github.com/hagglehub/negotiation-api/internal/service"
	"go.uber.org/zap"
)

type InsightHandler struct {
	insightService *service.InsightService
	logger         *zap.Logger
}

func NewInsightHandler(insightService *service.InsightService, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		logger:         logger,
	}
}

func (h *InsightHandler) Check(w http.ResponseWriter, r *http.Request) {
	result, err := h.insightService.CheckAndTrigger(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("Failed to check insights", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *InsightHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.insightService.ForceRefresh(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("Failed to refresh insights", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *InsightHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, err := h.insightService.Latest(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
