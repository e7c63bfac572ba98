package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/db/repository"
	httperrors "github.com/gokatarajesh/live-match-dashboard/pkg/http/errors"
)

// MatchStore persists fixtures.
type MatchStore interface {
	Create(ctx context.Context, params repository.CreateMatchParams) (repository.Match, error)
	Get(ctx context.Context, id string) (repository.Match, error)
	List(ctx context.Context, status repository.MatchStatus, page repository.Page) ([]repository.Match, int, error)
	Live(ctx context.Context) ([]repository.Match, error)
	Update(ctx context.Context, id string, params repository.UpdateMatchParams) (repository.Match, error)
	Delete(ctx context.Context, id string) error
}

// MatchHandlers provides REST endpoints for stored matches.
type MatchHandlers struct {
	store  MatchStore
	logger zerolog.Logger
}

func NewMatchHandlers(store MatchStore, logger zerolog.Logger) *MatchHandlers {
	return &MatchHandlers{store: store, logger: logger.With().Str("component", "match_http").Logger()}
}

func (h *MatchHandlers) Register(r *mux.Router) {
	s := r.PathPrefix("/api/matches").Subrouter()
	s.HandleFunc("", h.List).Methods(http.MethodGet)
	s.HandleFunc("", h.Create).Methods(http.MethodPost)
	s.HandleFunc("/live", h.Live).Methods(http.MethodGet)
	s.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	s.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	s.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /api/matches?status=&limit=&offset=
func (h *MatchHandlers) List(w http.ResponseWriter, r *http.Request) {
	status := repository.MatchStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondValidation(w, &ValidationError{Field: "status", Message: "unknown match status"})
		return
	}
	page := pageFromQuery(r, 10)

	matches, total, err := h.store.List(r.Context(), status, page)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to fetch matches")
		return
	}
	respondPage(w, matches, len(matches), total, page)
}

// Live handles GET /api/matches/live
func (h *MatchHandlers) Live(w http.ResponseWriter, r *http.Request) {
	matches, err := h.store.Live(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to fetch live matches")
		return
	}
	respondData(w, http.StatusOK, matches)
}

// Get handles GET /api/matches/{id}
func (h *MatchHandlers) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to fetch match")
		return
	}
	respondData(w, http.StatusOK, m)
}

type createMatchRequest struct {
	TeamA     string                 `json:"teamA"`
	TeamB     string                 `json:"teamB"`
	StartTime *time.Time             `json:"startTime"`
	Status    repository.MatchStatus `json:"status"`
}

// Create handles POST /api/matches
func (h *MatchHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.TeamA == "" || req.TeamB == "" {
		respondValidation(w, &ValidationError{Field: "teamA", Message: "teamA and teamB are required"})
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		respondValidation(w, &ValidationError{Field: "status", Message: "unknown match status"})
		return
	}

	m, err := h.store.Create(r.Context(), repository.CreateMatchParams{
		TeamA:     req.TeamA,
		TeamB:     req.TeamB,
		Status:    req.Status,
		StartTime: req.StartTime,
	})
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to create match")
		return
	}
	respondData(w, http.StatusCreated, m)
}

type updateMatchRequest struct {
	TeamA     *string                 `json:"teamA"`
	TeamB     *string                 `json:"teamB"`
	ScoreA    *int                    `json:"scoreA"`
	ScoreB    *int                    `json:"scoreB"`
	Status    *repository.MatchStatus `json:"status"`
	StartTime *time.Time              `json:"startTime"`
	EndTime   *time.Time              `json:"endTime"`
}

// Update handles PUT /api/matches/{id}
func (h *MatchHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMatchRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		respondValidation(w, &ValidationError{Field: "status", Message: "unknown match status"})
		return
	}
	if (req.ScoreA != nil && *req.ScoreA < 0) || (req.ScoreB != nil && *req.ScoreB < 0) {
		respondValidation(w, &ValidationError{Field: "scoreA", Message: "scores must not be negative"})
		return
	}

	m, err := h.store.Update(r.Context(), mux.Vars(r)["id"], repository.UpdateMatchParams(req))
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to update match")
		return
	}
	respondData(w, http.StatusOK, m)
}

// Delete handles DELETE /api/matches/{id}
func (h *MatchHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to delete match")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "Match deleted successfully"})
}
