package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/repositories"
	apperrors "github.com/homematch-ai/recommender/pkg/errors"
)

// RecommendationHandler handles recommendation endpoints.
type RecommendationHandler struct {
	service *services.RecommendationService
	scores  repositories.ScoreRepository
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(service *services.RecommendationService, scores repositories.ScoreRepository) *RecommendationHandler {
	return &RecommendationHandler{service: service, scores: scores}
}

type recommendRequest struct {
	BuyerID         string                `json:"buyer_id"`
	Preferences     *entities.Preferences `json:"preferences"`
	PreferencesText string                `json:"preferences_text"`
	PreferredAreas  []string              `json:"preferred_areas"`
	Limit           int                   `json:"limit"`
}

// Recommend handles POST /api/v1/recommendations
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Recommend(r.Context(), services.RecommendInput{
		BuyerID:         strings.TrimSpace(req.BuyerID),
		Preferences:     req.Preferences,
		PreferencesText: strings.TrimSpace(req.PreferencesText),
		PreferredAreas:  req.PreferredAreas,
		Limit:           req.Limit,
	})
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Msg("recommendation request failed")
		}
		message := "failed to generate recommendations"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			message = appErr.Message
		}
		respondWithError(w, status, message)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// BuyerRecommendations handles GET /api/v1/buyers/{id}/recommendations
func (h *RecommendationHandler) BuyerRecommendations(w http.ResponseWriter, r *http.Request) {
	buyerID := strings.TrimSpace(r.PathValue("id"))
	if buyerID == "" {
		respondWithError(w, http.StatusBadRequest, "buyer id is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	records, err := h.scores.ScoresForBuyer(r.Context(), buyerID, limit)
	if err != nil {
		log.Error().Err(err).Str("buyer_id", buyerID).Msg("failed to load persisted scores")
		respondWithError(w, statusForError(err), "failed to load recommendations")
		return
	}
	if records == nil {
		records = []*entities.ScoreRecord{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"buyer_id":        buyerID,
		"recommendations": records,
	})
}
