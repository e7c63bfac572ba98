package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MessageType constants for the WebSocket protocol.
const (
	// Client -> Server
	TypeJoinMatch           = "join-match"
	TypeLeaveMatch          = "leave-match"
	TypeGetSimulationStatus = "get-simulation-status"
	TypeStartSimulation     = "start-simulation"
	TypePauseSimulation     = "pause-simulation"
	TypeResumeSimulation    = "resume-simulation"
	TypeResetSimulation     = "reset-simulation"
	TypeStopSimulation      = "stop-simulation"
	TypeVotePoll            = "vote-poll"
	TypeGetPoll             = "get-poll"
	TypeCheckVoteStatus     = "check-vote-status"

	// Server -> Client
	TypeSimulationEvent    = "simulation-event"
	TypeSimulationStatus   = "simulation-status"
	TypeSimulationResponse = "simulation-response"
	TypePollCreated        = "poll-created"
	TypePollUpdated        = "poll-updated"
	TypePollEnded          = "poll-ended"
	TypePollData           = "poll-data"
	TypeVoteStatus         = "vote-status"
	TypeVotePollResponse   = "vote-poll-response"
	TypeError              = "error"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// Client Messages (incoming)

// MatchRef addresses a match. It decodes from a bare string
// ("match-1") or an object ({"matchId":"match-1","userId":"u1"}).
type MatchRef struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId,omitempty"`
}

func (r *MatchRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.MatchID)
	}
	type plain MatchRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = MatchRef(p)
	return nil
}

type SimulationConfigPayload struct {
	TimeMultiplier float64 `json:"timeMultiplier"`
	AutoStart      bool    `json:"autoStart"`
	MaxDuration    float64 `json:"maxDuration"`
}

type StartSimulationPayload struct {
	MatchID string                   `json:"matchId"`
	TeamA   string                   `json:"teamA"`
	TeamB   string                   `json:"teamB"`
	Config  *SimulationConfigPayload `json:"config,omitempty"`
}

type VotePollPayload struct {
	MatchID  string `json:"matchId"`
	UserID   string `json:"userId"`
	OptionID string `json:"optionId"`
}

// Server Messages (outgoing)

type SimulationStatusPayload struct {
	Status  string `json:"status"`
	MatchID string `json:"matchId"`
}

type SimulationResponsePayload struct {
	Action  string `json:"action"`
	MatchID string `json:"matchId"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VoteStatusPayload struct {
	HasVoted bool    `json:"hasVoted"`
	UserVote *string `json:"userVote"`
}

type VotePollResponsePayload struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Poll     json.RawMessage `json:"poll,omitempty"`
	HasVoted bool            `json:"hasVoted"`
	UserVote *string         `json:"userVote"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
