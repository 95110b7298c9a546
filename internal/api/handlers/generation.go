package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/javi/team-balancer-web/internal/api/middleware"
	"github.com/javi/team-balancer-web/internal/balancer"
	"github.com/javi/team-balancer-web/internal/domain"
	"github.com/javi/team-balancer-web/internal/service"
)

type GenerationHandler struct {
	balancerService *service.BalancerService
}

func NewGenerationHandler(balancerService *service.BalancerService) *GenerationHandler {
	return &GenerationHandler{balancerService: balancerService}
}

func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req service.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.balancerService.Generate(r.Context(), userID, req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *GenerationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	analysis, err := h.balancerService.Analyze(r.Context(), req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (h *GenerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid generation id", http.StatusBadRequest)
		return
	}

	generation, err := h.balancerService.Get(r.Context(), id)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generation)
}

func (h *GenerationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	generations, err := h.balancerService.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, generations)
}

func (h *GenerationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid generation id", http.StatusBadRequest)
		return
	}

	if err := h.balancerService.Delete(r.Context(), id); err != nil {
		writeGenerationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGenerationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrUnknownPlayers),
		errors.Is(err, domain.ErrDuplicatePlayers),
		errors.Is(err, balancer.ErrNotEnoughPlayers),
		errors.Is(err, balancer.ErrInvalidTeamSize),
		errors.Is(err, balancer.ErrInvalidNumTeams),
		errors.Is(err, balancer.ErrInvalidTopN),
		errors.Is(err, balancer.ErrInvalidDiversityThreshold),
		errors.Is(err, balancer.ErrPinnedTeamOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, balancer.ErrNoValidCombination):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
