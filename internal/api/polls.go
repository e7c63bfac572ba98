package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/db/repository"
	httperrors "github.com/gokatarajesh/live-match-dashboard/pkg/http/errors"
)

// PollStore persists polls and votes.
type PollStore interface {
	Create(ctx context.Context, params repository.CreatePollParams) (repository.Poll, error)
	Get(ctx context.Context, id string) (repository.Poll, error)
	List(ctx context.Context, filter repository.PollFilter) ([]repository.Poll, int, error)
	Update(ctx context.Context, id string, question *string, isActive *bool) (repository.Poll, error)
	Delete(ctx context.Context, id string) error
	Vote(ctx context.Context, pollID, optionID string, voterID *string) (repository.Vote, error)
	Results(ctx context.Context, pollID string) (repository.PollResults, error)
}

// PollHandlers provides REST endpoints for stored polls.
type PollHandlers struct {
	store   PollStore
	matches MatchStore
	logger  zerolog.Logger
}

func NewPollHandlers(store PollStore, matches MatchStore, logger zerolog.Logger) *PollHandlers {
	return &PollHandlers{store: store, matches: matches, logger: logger.With().Str("component", "poll_http").Logger()}
}

func (h *PollHandlers) Register(r *mux.Router) {
	s := r.PathPrefix("/api/polls").Subrouter()
	s.HandleFunc("", h.List).Methods(http.MethodGet)
	s.HandleFunc("", h.Create).Methods(http.MethodPost)
	s.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	s.HandleFunc("/{id}/results", h.Results).Methods(http.MethodGet)
	s.HandleFunc("/{id}/vote", h.Vote).Methods(http.MethodPost)
	s.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	s.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /api/polls?matchId=&isActive=&limit=&offset=
func (h *PollHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.PollFilter{MatchID: q.Get("matchId"), Page: pageFromQuery(r, 10)}
	if raw := q.Get("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondValidation(w, &ValidationError{Field: "isActive", Message: "isActive must be true or false"})
			return
		}
		filter.IsActive = &active
	}

	polls, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodePollNotFound, "Poll not found", "Failed to fetch polls")
		return
	}
	respondPage(w, polls, len(polls), total, filter.Page)
}

// Get handles GET /api/polls/{id}
func (h *PollHandlers) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodePollNotFound, "Poll not found", "Failed to fetch poll")
		return
	}
	respondData(w, http.StatusOK, p)
}

// Results handles GET /api/polls/{id}/results
func (h *PollHandlers) Results(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.Results(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodePollNotFound, "Poll not found", "Failed to fetch poll results")
		return
	}
	respondData(w, http.StatusOK, res)
}

type createPollRequest struct {
	Question string   `json:"question"`
	MatchID  string   `json:"matchId"`
	Options  []string `json:"options"`
}

// Create handles POST /api/polls
func (h *PollHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Question == "" || req.MatchID == "" || len(req.Options) < 2 {
		respondValidation(w, &ValidationError{Field: "options", Message: "question, matchId, and at least 2 options are required"})
		return
	}

	if _, err := h.matches.Get(r.Context(), req.MatchID); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodeMatchNotFound, "Match not found", "Failed to create poll")
		return
	}

	p, err := h.store.Create(r.Context(), repository.CreatePollParams{
		MatchID:  req.MatchID,
		Question: req.Question,
		Options:  req.Options,
	})
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodePollNotFound, "Poll not found", "Failed to create poll")
		return
	}
	respondData(w, http.StatusCreated, p)
}

type voteRequest struct {
	OptionID string  `json:"optionId"`
	VoterID  *string `json:"voterId"`
}

// Vote handles POST /api/polls/{id}/vote
func (h *PollHandlers) Vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.OptionID == "" {
		respondValidation(w, &ValidationError{Field: "optionId", Message: "optionId is required"})
		return
	}
	if req.VoterID != nil && *req.VoterID == "" {
		req.VoterID = nil
	}

	v, err := h.store.Vote(r.Context(), mux.Vars(r)["id"], req.OptionID, req.VoterID)
	switch {
	case err == nil:
		respondData(w, http.StatusCreated, v)
	case errors.Is(err, repository.ErrPollInactive):
		httperrors.RespondBadRequest(w, httperrors.ErrCodePollInactive, "Poll is not active")
	case errors.Is(err, repository.ErrInvalidOption):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidOption, "Invalid option for this poll")
	case errors.Is(err, repository.ErrAlreadyVoted):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeAlreadyVoted, "You have already voted on this poll")
	default:
		respondStoreError(w, h.logger, err, httperrors.ErrCodePollNotFound, "Poll not found", "Failed to vote on poll")
	}
}

type updatePollRequest struct {
	Question *string `json:"question"`
	IsActive *bool   `json:"isActive"`
}

// Update handles PUT /api/polls/{id}
func (h *PollHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePollRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	p, err := h.store.Update(r.Context(), mux.Vars(r)["id"], req.Question, req.IsActive)
	if err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodePollNotFound, "Poll not found", "Failed to update poll")
		return
	}
	respondData(w, http.StatusOK, p)
}

// Delete handles DELETE /api/polls/{id}
func (h *PollHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, h.logger, err, httperrors.ErrCodePollNotFound, "Poll not found", "Failed to delete poll")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Message: "Poll deleted successfully"})
}
