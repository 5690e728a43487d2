package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/hagglehub/negotiation-api/internal/service"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	vehicleService *service.VehicleService
	logger         *zap.Logger
}

func NewVehicleHandler(vehicleService *service.VehicleService, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	uid := userID(r)

	filters := &repository.VehicleFilters{UserID: &uid}

	if m := r.URL.Query().Get("make"); m != "" {
		filters.Make = &m
	}
	if c := r.URL.Query().Get("condition"); c != "" {
		condition := domain.VehicleCondition(c)
		if !condition.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid condition filter")
			return
		}
		filters.Condition = &condition
	}
	if y := r.URL.Query().Get("minYear"); y != "" {
		if v, err := strconv.Atoi(y); err == nil {
			filters.MinYear = &v
		}
	}
	if y := r.URL.Query().Get("maxYear"); y != "" {
		if v, err := strconv.Atoi(y); err == nil {
			filters.MaxYear = &v
		}
	}
	if q := r.URL.Query().Get("search"); q != "" {
		filters.SearchQuery = &q
	}

	result, err := h.vehicleService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("Failed to list vehicles", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicleService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	vehicle, err := h.vehicleService.Create(r.Context(), userID(r), &req)
	if err != nil {
		h.logger.Error("Failed to create vehicle", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, vehicle)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	var req domain.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	vehicle, err := h.vehicleService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	if err := h.vehicleService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
