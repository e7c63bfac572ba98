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

// CommentaryStore persists commentary lines.
type CommentaryStore interface {
	Create(ctx context.Context, matchID, text string, ts *time.Time) (repository.Commentary, error)
	Get(ctx context.Context, id string) (repository.Commentary, error)
	List(ctx context.Context, matchID string, page repository.Page) ([]repository.Commentary, int, error)
	Update(ctx context.Context, id string, text *string, ts *time.Time) (repository.Commentary, error)
	Delete(ctx context.Context, id string) error
}

// CommentaryHandlers provides REST endpoints for stored commentary.
type CommentaryHandlers struct {
	store   CommentaryStore
	matches MatchStore
	logger  zerolog.Logger
}

func NewCommentaryHandlers(store CommentaryStore, matches MatchStore, logger zerolog.Logger) *CommentaryHandlers {
	return &CommentaryHandlers{store: store, matches: matches, logger: logger.With().Str("component", "commentary_http").Logger()}
}

func (h *CommentaryHandlers) Register(r *mux.Router) {
	s := r.PathPrefix("/api/commentary").Subrouter()
	s.HandleFunc("", h.List).Methods(http.MethodGet)
	s.HandleFunc("", h.Create).Methods(http.MethodPost)
	s.HandleFunc("/match/{matchId}", h.ForMatch).Methods(http.MethodGet)
	s.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	s.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	s.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /api/commentary?matchId=&limit=&offset=
func (h *CommentaryHandlers) List(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r, 50)
	lines, total, err := h.store.List(r.Context(), r.URL.Query().Get("matchId"), page)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeCommentaryNotFound, "Commentary not found", "Failed to fetch commentary")
		return
	}
	respondPage(w, lines, len(lines), total, page)
}

// ForMatch handles GET /api/commentary/match/{matchId}
func (h *CommentaryHandlers) ForMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	if _, err := h.matches.Get(r.Context(), matchID); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to fetch commentary")
		return
	}

	page := pageFromQuery(r, 50)
	lines, total, err := h.store.List(r.Context(), matchID, page)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeCommentaryNotFound, "Commentary not found", "Failed to fetch commentary")
		return
	}
	respondPage(w, lines, len(lines), total, page)
}

// Get handles GET /api/commentary/{id}
func (h *CommentaryHandlers) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeCommentaryNotFound, "Commentary not found", "Failed to fetch commentary")
		return
	}
	respondData(w, http.StatusOK, c)
}

type commentaryRequest struct {
	Text      string     `json:"text"`
	MatchID   string     `json:"matchId"`
	Timestamp *time.Time `json:"timestamp"`
}

// Create handles POST /api/commentary
func (h *CommentaryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req commentaryRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Text == "" || req.MatchID == "" {
		respondValidation(w, &ValidationError{Field: "text", Message: "text and matchId are required"})
		return
	}
	if _, err := h.matches.Get(r.Context(), req.MatchID); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to create commentary")
		return
	}

	c, err := h.store.Create(r.Context(), req.MatchID, req.Text, req.Timestamp)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeCommentaryNotFound, "Commentary not found", "Failed to create commentary")
		return
	}
	respondData(w, http.StatusCreated, c)
}

type updateCommentaryRequest struct {
	Text      *string    `json:"text"`
	Timestamp *time.Time `json:"timestamp"`
}

// Update handles PUT /api/commentary/{id}
func (h *CommentaryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCommentaryRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Text != nil && *req.Text == "" {
		respondValidation(w, &ValidationError{Field: "text", Message: "text must not be empty"})
		return
	}
	c, err := h.store.Update(r.Context(), mux.Vars(r)["id"], req.Text, req.Timestamp)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeCommentaryNotFound, "Commentary not found", "Failed to update commentary")
		return
	}
	respondData(w, http.StatusOK, c)
}

// Delete handles DELETE /api/commentary/{id}
func (h *CommentaryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeCommentaryNotFound, "Commentary not found", "Failed to delete commentary")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "Commentary deleted successfully"})
}
