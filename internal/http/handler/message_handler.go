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

type MessageHandler struct {
	messageService *service.MessageService
	logger         *zap.Logger
}

func NewMessageHandler(messageService *service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		logger:         logger,
	}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	uid := userID(r)
	filters := &repository.MessageFilters{
		UserID: &uid,
	}
	if dealID := r.URL.Query().Get("dealId"); dealID != "" {
		id, err := uuid.Parse(dealID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
			return
		}
		filters.DealID = &id
	}
	if direction := r.URL.Query().Get("direction"); direction != "" {
		d := domain.MessageDirection(direction)
		filters.Direction = &d
	}
	if unread := r.URL.Query().Get("unread"); unread == "true" {
		filters.UnreadOnly = true
	}

	result, err := h.messageService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("Failed to list messages", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	message, err := h.messageService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, message)
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	message, err := h.messageService.Create(r.Context(), userID(r), &req)
	if err != nil {
		h.logger.Error("Failed to create message", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, message)
}

func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "dealId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	messages, err := h.messageService.GetThread(r.Context(), dealID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	if err := h.messageService.MarkRead(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.messageService.CountUnread(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"unread": count})
}
