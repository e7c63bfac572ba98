package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/db/repository"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
	"github.com/gokatarajesh/live-match-dashboard/internal/timeline"
	httperrors "github.com/gokatarajesh/live-match-dashboard/pkg/http/errors"
)

// TimelineSource resolves scripted timelines.
type TimelineSource interface {
	Load(matchID, teamA, teamB string) (model.MatchTimeline, timeline.Source)
}

// TimelineStore persists per-user edited timelines.
type TimelineStore interface {
	Get(ctx context.Context, userID, matchID string) (repository.UserTimeline, error)
	Save(ctx context.Context, userID, matchID string, data json.RawMessage) (repository.UserTimeline, error)
	Delete(ctx context.Context, userID, matchID string) error
}

// TimelineHandlers serves the base scripts and user timelines.
type TimelineHandlers struct {
	loader  TimelineSource
	store   TimelineStore
	matches MatchStore
	logger  zerolog.Logger
}

// NewTimelineHandlers creates the timeline handlers. store and matches may be
// nil when no database is configured; only the base script route is mounted
// then.
func NewTimelineHandlers(loader TimelineSource, store TimelineStore, matches MatchStore, logger zerolog.Logger) *TimelineHandlers {
	return &TimelineHandlers{
		loader:  loader,
		store:   store,
		matches: matches,
		logger:  logger.With().Str("component", "timeline_http").Logger(),
	}
}

func (h *TimelineHandlers) Register(r *mux.Router) {
	s := r.PathPrefix("/api/v1/timelines").Subrouter()
	s.HandleFunc("/base/{matchId}", h.Base).Methods(http.MethodGet)
	if h.store == nil || h.matches == nil {
		return
	}
	s.HandleFunc("/user/{matchId}", h.GetUser).Methods(http.MethodGet)
	s.HandleFunc("/user/{matchId}", h.SaveUser).Methods(http.MethodPost)
	s.HandleFunc("/user/{matchId}", h.DeleteUser).Methods(http.MethodDelete)
}

// Base handles GET /api/v1/timelines/base/{matchId}. Only a script stored
// under the exact match id counts; the bundled default is not served here.
func (h *TimelineHandlers) Base(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	tl, src := h.loader.Load(matchID, "", "")
	if src != timeline.SourceMatch {
		httperrors.RespondNotFound(w, httperrors.ErrCodeTimelineNotFound, "No timeline found for this match")
		return
	}
	respondData(w, http.StatusOK, tl)
}

// GetUser handles GET /api/v1/timelines/user/{matchId}?userId=
func (h *TimelineHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "userId is required", "userId")
		return
	}

	ut, err := h.store.Get(r.Context(), userID, matchID)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeTimelineNotFound, "No timeline found for this user and match", "Failed to fetch timeline")
		return
	}

	data, err := flattenUserTimeline(ut)
	if err != nil {
		h.logger.Error().Err(err).Str("match_id", matchID).Msg("stored timeline is not a JSON object")
		httperrors.RespondInternalError(w, "Failed to fetch timeline")
		return
	}
	respondData(w, http.StatusOK, data)
}

// flattenUserTimeline merges the stored document with its row metadata, the
// metadata keys taking precedence.
func flattenUserTimeline(ut repository.UserTimeline) (map[string]any, error) {
	out := make(map[string]any)
	if len(ut.TimelineData) > 0 {
		if err := json.Unmarshal(ut.TimelineData, &out); err != nil {
			return nil, err
		}
	}
	out["id"] = ut.ID
	out["userId"] = ut.UserID
	out["matchId"] = ut.MatchID
	out["createdAt"] = ut.CreatedAt.Format(time.RFC3339)
	out["updatedAt"] = ut.UpdatedAt.Format(time.RFC3339)
	return out, nil
}

type saveTimelineRequest struct {
	UserID       string          `json:"userId"`
	TimelineData json.RawMessage `json:"timelineData"`
}

// SaveUser handles POST /api/v1/timelines/user/{matchId}
func (h *TimelineHandlers) SaveUser(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	var req saveTimelineRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.UserID == "" || len(req.TimelineData) == 0 {
		respondValidation(w, &ValidationError{Field: "userId", Message: "userId and timelineData are required"})
		return
	}
	var obj map[string]any
	if err := json.Unmarshal(req.TimelineData, &obj); err != nil || obj == nil {
		respondValidation(w, &ValidationError{Field: "timelineData", Message: "timelineData must be a JSON object"})
		return
	}

	if _, err := h.matches.Get(r.Context(), matchID); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to save timeline")
		return
	}

	ut, err := h.store.Save(r.Context(), req.UserID, matchID, req.TimelineData)
	if err != nil {
		h.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to save timeline")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSaveFailed, "Failed to save timeline")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "Timeline saved successfully", Data: ut})
}

// DeleteUser handles DELETE /api/v1/timelines/user/{matchId}?userId=
func (h *TimelineHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "userId is required", "userId")
		return
	}
	if err := h.store.Delete(r.Context(), userID, matchID); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeTimelineNotFound, "No timeline found for this user and match", "Failed to delete timeline")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "Timeline deleted successfully"})
}
