// Package live adapts the simulation and poll managers to WebSocket clients:
// it routes client commands, replays state for late joiners and relays
// broadcasts onto match channels.
package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
	"github.com/gokatarajesh/live-match-dashboard/internal/poll"
	httperrors "github.com/gokatarajesh/live-match-dashboard/pkg/http/errors"
	ws "github.com/gokatarajesh/live-match-dashboard/pkg/http/ws"
)

// Simulations is the part of the simulation manager the socket needs.
type Simulations interface {
	Start(matchID, teamA, teamB string, cfg *model.SimulationConfig) error
	Pause(matchID string) error
	Resume(matchID string) error
	Reset(matchID string) error
	Stop(matchID string) error
	Status(matchID string) model.SimulationStatus
	Observe(matchID string, fn func(state model.MatchState, past []model.MatchEvent)) bool
}

// Polls is the part of the poll manager the socket needs.
type Polls interface {
	GetPoll(matchID string) (model.Poll, bool)
	Vote(matchID, userID, optionID string) (model.Poll, error)
	HasUserVoted(matchID, userID string) bool
	GetUserVote(matchID, userID string) (string, bool)
}

// Options tune per-connection buffers.
type Options struct {
	SendQueue   int
	ReadTimeout time.Duration
}

// Handler manages WebSocket connections and routes match messages.
type Handler struct {
	sims     Simulations
	polls    Polls
	hub      *ws.Hub
	upgrader websocket.Upgrader
	opts     Options
	logger   zerolog.Logger
}

// NewHandler creates a live match WebSocket handler.
func NewHandler(sims Simulations, polls Polls, hub *ws.Hub, upgrader websocket.Upgrader, opts Options, logger zerolog.Logger) *Handler {
	return &Handler{
		sims:     sims,
		polls:    polls,
		hub:      hub,
		upgrader: upgrader,
		opts:     opts,
		logger:   logger.With().Str("component", "live_ws").Logger(),
	}
}

// HandleWebSocket upgrades the request and serves it until the peer leaves.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	h.HandleConnection(conn)
}

// HandleConnection processes an upgraded connection. It blocks until the
// read side closes.
func (h *Handler) HandleConnection(conn *websocket.Conn) {
	connID := uuid.New()
	logger := h.logger.With().Str("conn_id", connID.String()).Logger()

	wsConn := ws.NewConnection(conn, h.opts.SendQueue, h.opts.ReadTimeout, logger)
	h.hub.RegisterConnection(connID, wsConn)
	logger.Info().Msg("client connected")

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(connID, msg)
	})

	h.hub.UnregisterConnection(connID)
	logger.Info().Msg("client disconnected")
}

// handleMessage routes incoming WebSocket messages.
func (h *Handler) handleMessage(connID uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeJoinMatch:
		return h.handleJoinMatch(connID, msg.Payload)
	case ws.TypeLeaveMatch:
		return h.handleLeaveMatch(connID, msg.Payload)
	case ws.TypeGetSimulationStatus:
		return h.handleSimulationStatus(connID, msg.Payload)
	case ws.TypeStartSimulation:
		return h.handleStartSimulation(connID, msg.Payload)
	case ws.TypePauseSimulation:
		return h.handleCommand(connID, msg, "pause", "paused", h.sims.Pause)
	case ws.TypeResumeSimulation:
		return h.handleCommand(connID, msg, "resume", "resumed", h.sims.Resume)
	case ws.TypeResetSimulation:
		return h.handleCommand(connID, msg, "reset", "reset", h.sims.Reset)
	case ws.TypeStopSimulation:
		return h.handleCommand(connID, msg, "stop", "stopped", h.sims.Stop)
	case ws.TypeVotePoll:
		return h.handleVotePoll(connID, msg.Payload)
	case ws.TypeGetPoll:
		return h.handleGetPoll(connID, msg.Payload)
	case ws.TypeCheckVoteStatus:
		return h.handleCheckVoteStatus(connID, msg.Payload)
	default:
		return h.sendError(connID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) handleJoinMatch(connID uuid.UUID, payload json.RawMessage) error {
	ref, err := decodeRef(payload)
	if err != nil {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid join-match payload")
	}

	// Subscribing inside Observe keeps the replay and the live stream
	// contiguous: the engine cannot publish until the replay is queued.
	var sendErr error
	observed := h.sims.Observe(ref.MatchID, func(state model.MatchState, past []model.MatchEvent) {
		h.hub.JoinMatch(ref.MatchID, connID)
		sendErr = h.replay(connID, ref.MatchID, state, past)
	})
	if !observed {
		h.hub.JoinMatch(ref.MatchID, connID)
	}
	h.logger.Debug().Str("conn_id", connID.String()).Str("match_id", ref.MatchID).Msg("joined match")
	if sendErr != nil {
		return sendErr
	}

	current, ok := h.polls.GetPoll(ref.MatchID)
	if !ok {
		return nil
	}
	if err := h.sendEvent(connID, events.PollCreated{Poll: current}); err != nil {
		return err
	}
	if ref.UserID == "" {
		return nil
	}
	return h.sendVoteStatus(connID, ref.MatchID, ref.UserID)
}

func (h *Handler) replay(connID uuid.UUID, matchID string, state model.MatchState, past []model.MatchEvent) error {
	if err := h.sendEvent(connID, events.MatchStateSnapshot{MatchID: matchID, State: state}); err != nil {
		return err
	}
	for _, evt := range past {
		if err := h.sendEvent(connID, events.MatchEventBroadcast{MatchID: matchID, Event: evt}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) handleLeaveMatch(connID uuid.UUID, payload json.RawMessage) error {
	ref, err := decodeRef(payload)
	if err != nil {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid leave-match payload")
	}
	h.hub.LeaveMatch(ref.MatchID, connID)
	return nil
}

func (h *Handler) handleSimulationStatus(connID uuid.UUID, payload json.RawMessage) error {
	ref, err := decodeRef(payload)
	if err != nil {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid get-simulation-status payload")
	}
	return h.send(connID, ws.TypeSimulationStatus, ws.SimulationStatusPayload{
		Status:  string(h.sims.Status(ref.MatchID)),
		MatchID: ref.MatchID,
	})
}

func (h *Handler) handleStartSimulation(connID uuid.UUID, payload json.RawMessage) error {
	var req ws.StartSimulationPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.MatchID == "" {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid start-simulation payload")
	}

	cfg := simulationConfig(req.Config)
	var err error
	switch {
	case req.TeamA == "" || req.TeamB == "":
		err = errors.New("teamA and teamB are required")
	case cfg != nil:
		if err = cfg.Validate(); err == nil {
			err = h.sims.Start(req.MatchID, req.TeamA, req.TeamB, cfg)
		}
	default:
		err = h.sims.Start(req.MatchID, req.TeamA, req.TeamB, nil)
	}
	return h.respond(connID, "start", "started", req.MatchID, err)
}

func (h *Handler) handleCommand(connID uuid.UUID, msg ws.Message, action, done string, op func(string) error) error {
	ref, err := decodeRef(msg.Payload)
	if err != nil {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, fmt.Sprintf("Invalid %s payload", msg.Type))
	}
	return h.respond(connID, action, done, ref.MatchID, op(ref.MatchID))
}

func (h *Handler) respond(connID uuid.UUID, action, done, matchID string, opErr error) error {
	resp := ws.SimulationResponsePayload{
		Action:  action,
		MatchID: matchID,
		Success: opErr == nil,
		Message: "Simulation " + done,
	}
	if opErr != nil {
		resp.Message = fmt.Sprintf("Failed to %s simulation: %s", action, opErr)
		h.logger.Info().Err(opErr).Str("match_id", matchID).Str("action", action).Msg("simulation command rejected")
	}
	return h.send(connID, ws.TypeSimulationResponse, resp)
}

func (h *Handler) handleVotePoll(connID uuid.UUID, payload json.RawMessage) error {
	var req ws.VotePollPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid vote-poll payload")
	}

	updated, voteErr := h.polls.Vote(req.MatchID, req.UserID, req.OptionID)
	resp := ws.VotePollResponsePayload{Success: voteErr == nil}
	if voteErr != nil {
		resp.Message = voteErr.Error()
		h.logger.Debug().Err(voteErr).Str("match_id", req.MatchID).Str("user_id", req.UserID).Msg("vote rejected")
	} else {
		resp.Message = poll.VoteRecordedMessage
		raw, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("marshal poll: %w", err)
		}
		resp.Poll = raw
	}
	if option, ok := h.polls.GetUserVote(req.MatchID, req.UserID); ok {
		resp.HasVoted = true
		resp.UserVote = &option
	}
	return h.send(connID, ws.TypeVotePollResponse, resp)
}

func (h *Handler) handleGetPoll(connID uuid.UUID, payload json.RawMessage) error {
	ref, err := decodeRef(payload)
	if err != nil {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid get-poll payload")
	}
	current, ok := h.polls.GetPoll(ref.MatchID)
	if !ok {
		return h.send(connID, ws.TypePollData, nil)
	}
	return h.send(connID, ws.TypePollData, current)
}

func (h *Handler) handleCheckVoteStatus(connID uuid.UUID, payload json.RawMessage) error {
	ref, err := decodeRef(payload)
	if err != nil || ref.UserID == "" {
		return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid check-vote-status payload")
	}
	return h.sendVoteStatus(connID, ref.MatchID, ref.UserID)
}

func (h *Handler) sendVoteStatus(connID uuid.UUID, matchID, userID string) error {
	status := ws.VoteStatusPayload{HasVoted: h.polls.HasUserVoted(matchID, userID)}
	if option, ok := h.polls.GetUserVote(matchID, userID); ok {
		status.UserVote = &option
	}
	return h.send(connID, ws.TypeVoteStatus, status)
}

func (h *Handler) sendEvent(connID uuid.UUID, evt events.Event) error {
	msg, err := Encode(evt)
	if err != nil {
		return err
	}
	return h.hub.SendTo(connID, msg)
}

func (h *Handler) send(connID uuid.UUID, msgType string, payload any) error {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return h.hub.SendTo(connID, msg)
}

func (h *Handler) sendError(connID uuid.UUID, code, message string) error {
	errPayload := ws.ErrorPayload{
		Code:    code,
		Message: message,
	}
	msg := ws.Message{Type: ws.TypeError}
	msg.Payload, _ = json.Marshal(errPayload)
	return h.hub.SendTo(connID, msg)
}

func decodeRef(payload json.RawMessage) (ws.MatchRef, error) {
	var ref ws.MatchRef
	if err := json.Unmarshal(payload, &ref); err != nil {
		return ref, err
	}
	if ref.MatchID == "" {
		return ref, errors.New("matchId is required")
	}
	return ref, nil
}

func simulationConfig(p *ws.SimulationConfigPayload) *model.SimulationConfig {
	if p == nil {
		return nil
	}
	return &model.SimulationConfig{
		TimeMultiplier: p.TimeMultiplier,
		AutoStart:      p.AutoStart,
		MaxDuration:    p.MaxDuration,
	}
}
