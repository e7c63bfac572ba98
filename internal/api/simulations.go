package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
	"github.com/gokatarajesh/live-match-dashboard/internal/simulation"
	httperrors "github.com/gokatarajesh/live-match-dashboard/pkg/http/errors"
)

// Simulations is the simulation manager surface exposed over REST.
type Simulations interface {
	Start(matchID, teamA, teamB string, cfg *model.SimulationConfig) error
	Pause(matchID string) error
	Resume(matchID string) error
	Reset(matchID string) error
	Stop(matchID string) error
	StopAll()
	Status(matchID string) model.SimulationStatus
	MatchState(matchID string) (model.MatchState, bool)
	PastEvents(matchID string) []model.MatchEvent
	Timeline(matchID string) (model.MatchTimeline, bool)
	All() []model.SimulationSummary
	LastKnownState(ctx context.Context, matchID string) (*model.MatchState, string, error)
}

// ActivePolls lists the open in-memory match polls.
type ActivePolls interface {
	ActivePolls() []model.Poll
}

// SimulationHandlers provides REST endpoints for simulation control.
type SimulationHandlers struct {
	sims   Simulations
	polls  ActivePolls
	logger zerolog.Logger
}

// NewSimulationHandlers creates the simulation REST handlers.
func NewSimulationHandlers(sims Simulations, polls ActivePolls, logger zerolog.Logger) *SimulationHandlers {
	return &SimulationHandlers{
		sims:   sims,
		polls:  polls,
		logger: logger.With().Str("component", "simulation_http").Logger(),
	}
}

// Register mounts the routes under /api/v1.
func (h *SimulationHandlers) Register(r *mux.Router) {
	s := r.PathPrefix("/api/v1/simulations").Subrouter()
	s.HandleFunc("", h.List).Methods(http.MethodGet)
	s.HandleFunc("/stop-all", h.StopAll).Methods(http.MethodPost)
	s.HandleFunc("/{matchId}", h.Status).Methods(http.MethodGet)
	s.HandleFunc("/{matchId}/state", h.State).Methods(http.MethodGet)
	s.HandleFunc("/{matchId}/events", h.PastEvents).Methods(http.MethodGet)
	s.HandleFunc("/{matchId}/timeline", h.Timeline).Methods(http.MethodGet)
	s.HandleFunc("/{matchId}/start", h.Start).Methods(http.MethodPost)
	s.HandleFunc("/{matchId}/pause", h.command("pause", "paused", h.sims.Pause)).Methods(http.MethodPost)
	s.HandleFunc("/{matchId}/resume", h.command("resume", "resumed", h.sims.Resume)).Methods(http.MethodPost)
	s.HandleFunc("/{matchId}/reset", h.command("reset", "reset", h.sims.Reset)).Methods(http.MethodPost)
	s.HandleFunc("/{matchId}/stop", h.command("stop", "stopped", h.sims.Stop)).Methods(http.MethodPost)

	if h.polls != nil {
		r.HandleFunc("/api/v1/polls/active", h.ActivePolls).Methods(http.MethodGet)
	}
}

// List handles GET /api/v1/simulations
func (h *SimulationHandlers) List(w http.ResponseWriter, r *http.Request) {
	all := h.sims.All()
	respondData(w, http.StatusOK, map[string]any{
		"simulations": all,
		"count":       len(all),
	})
}

// Status handles GET /api/v1/simulations/{matchId}
func (h *SimulationHandlers) Status(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	var state *model.MatchState
	if s, ok := h.sims.MatchState(matchID); ok {
		state = &s
	}
	respondData(w, http.StatusOK, map[string]any{
		"status":     h.sims.Status(matchID),
		"matchId":    matchID,
		"matchState": state,
	})
}

// State handles GET /api/v1/simulations/{matchId}/state. Stopped matches
// are served from the last saved snapshot.
func (h *SimulationHandlers) State(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	state, source, err := h.sims.LastKnownState(r.Context(), matchID)
	if err != nil {
		h.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to load match state")
		httperrors.RespondInternalError(w, "Failed to fetch match state")
		return
	}
	if state == nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeStateNotFound, "No state found for this match")
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"matchId": matchID,
		"source":  source,
		"state":   state,
	})
}

// PastEvents handles GET /api/v1/simulations/{matchId}/events
func (h *SimulationHandlers) PastEvents(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	evs := h.sims.PastEvents(matchID)
	respondData(w, http.StatusOK, map[string]any{
		"matchId": matchID,
		"events":  evs,
		"count":   len(evs),
	})
}

// Timeline handles GET /api/v1/simulations/{matchId}/timeline
func (h *SimulationHandlers) Timeline(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	tl, ok := h.sims.Timeline(matchID)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSimulationNotFound, "No simulation found for this match")
		return
	}
	respondData(w, http.StatusOK, tl)
}

type startRequest struct {
	TeamA  string                  `json:"teamA"`
	TeamB  string                  `json:"teamB"`
	Config *model.SimulationConfig `json:"config,omitempty"`
}

func (req *startRequest) validate() *ValidationError {
	if req.TeamA == "" || req.TeamB == "" {
		return &ValidationError{Field: "teamA", Message: "teamA and teamB are required"}
	}
	if req.Config != nil {
		if err := req.Config.Validate(); err != nil {
			return &ValidationError{Field: "config", Message: err.Error()}
		}
	}
	return nil
}

// Start handles POST /api/v1/simulations/{matchId}/start
func (h *SimulationHandlers) Start(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if verr := req.validate(); verr != nil {
		respondValidation(w, verr)
		return
	}

	if err := h.sims.Start(matchID, req.TeamA, req.TeamB, req.Config); err != nil {
		h.respondSimulationError(w, matchID, "start", err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		Message: "Simulation started successfully",
		Data: map[string]string{
			"matchId": matchID,
			"teamA":   req.TeamA,
			"teamB":   req.TeamB,
		},
	})
}

func (h *SimulationHandlers) command(action, done string, op func(string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := mux.Vars(r)["matchId"]
		if err := op(matchID); err != nil {
			h.respondSimulationError(w, matchID, action, err)
			return
		}
		respondJSON(w, http.StatusOK, envelope{
			Message: "Simulation " + done + " successfully",
			Data:    map[string]any{"matchId": matchID, "status": h.sims.Status(matchID)},
		})
	}
}

// StopAll handles POST /api/v1/simulations/stop-all
func (h *SimulationHandlers) StopAll(w http.ResponseWriter, r *http.Request) {
	h.sims.StopAll()
	respondJSON(w, http.StatusOK, envelope{Message: "All simulations stopped successfully"})
}

// ActivePolls handles GET /api/v1/polls/active
func (h *SimulationHandlers) ActivePolls(w http.ResponseWriter, r *http.Request) {
	polls := h.polls.ActivePolls()
	respondData(w, http.StatusOK, map[string]any{
		"polls": polls,
		"count": len(polls),
	})
}

func (h *SimulationHandlers) respondSimulationError(w http.ResponseWriter, matchID, action string, err error) {
	switch {
	case errors.Is(err, simulation.ErrSimulationExists):
		httperrors.RespondConflict(w, httperrors.ErrCodeSimulationExists, "Simulation already exists for this match")
	case errors.Is(err, simulation.ErrSimulationNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSimulationNotFound, "No simulation found for this match")
	default:
		h.logger.Error().Err(err).Str("match_id", matchID).Str("action", action).Msg("simulation command failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSimulationFailed, "Failed to "+action+" simulation")
	}
}
