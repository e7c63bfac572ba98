//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	wsmsg "github.com/gokatarajesh/live-match-dashboard/pkg/http/ws"
)

func TestSimulationLifecycleOverREST(t *testing.T) {
	matchID := uniqueMatchID("rest")
	base := baseURL() + "/api/v1/simulations/" + matchID

	resp, body := doJSON(t, http.MethodPost, base+"/start", map[string]any{
		"teamA":  "Arsenal",
		"teamB":  "Chelsea",
		"config": map[string]any{"timeMultiplier": 60},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start failed: %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, base+"/start", map[string]any{"teamA": "Arsenal", "teamB": "Chelsea"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate start, got %d %v", resp.StatusCode, body)
	}

	_, body = doJSON(t, http.MethodGet, base, nil)
	data := body["data"].(map[string]any)
	if data["status"] != "running" {
		t.Fatalf("expected running, got %v", data["status"])
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/pause", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pause failed: %d", resp.StatusCode)
	}
	_, body = doJSON(t, http.MethodGet, base, nil)
	if body["data"].(map[string]any)["status"] != "stopped" {
		t.Fatalf("expected stopped after pause, got %v", body["data"])
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop failed: %d", resp.StatusCode)
	}
	_, body = doJSON(t, http.MethodGet, base, nil)
	if body["data"].(map[string]any)["status"] != "not_found" {
		t.Fatalf("expected not_found after stop, got %v", body["data"])
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/resume", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 resuming a stopped match, got %d", resp.StatusCode)
	}
}

func TestJoinReceivesLiveEventsAndPoll(t *testing.T) {
	matchID := uniqueMatchID("ws")
	conn := dialMatchWS(t)

	sendWS(t, conn, wsmsg.TypeStartSimulation, map[string]any{
		"matchId": matchID,
		"teamA":   "Arsenal",
		"teamB":   "Chelsea",
		"config":  map[string]any{"timeMultiplier": 60},
	})
	_, payload := readUntil(t, conn, 3*time.Second, func(m wsmsg.Message, p map[string]any) bool {
		return m.Type == wsmsg.TypeSimulationResponse && p["action"] == "start"
	})
	if payload["success"] != true {
		t.Fatalf("start over socket failed: %v", payload)
	}

	sendWS(t, conn, wsmsg.TypeJoinMatch, map[string]any{"matchId": matchID, "userId": "fan-1"})
	// The replayed state, the poll and live ticks may interleave.
	var sawState, sawTick bool
	var poll map[string]any
	readUntil(t, conn, 5*time.Second, func(m wsmsg.Message, p map[string]any) bool {
		switch {
		case m.Type == wsmsg.TypeSimulationEvent && p["type"] == "match-state":
			sawState = true
		case m.Type == wsmsg.TypeSimulationEvent && p["type"] == "time-update":
			sawTick = sawState
		case m.Type == wsmsg.TypePollCreated && poll == nil:
			poll = p
		}
		return sawState && sawTick && poll != nil
	})
	options, _ := poll["options"].([]any)
	if len(options) != 3 {
		t.Fatalf("expected 3 poll options, got %v", poll["options"])
	}

	optionID := options[0].(map[string]any)["id"]
	sendWS(t, conn, wsmsg.TypeVotePoll, map[string]any{"matchId": matchID, "userId": "fan-1", "optionId": optionID})
	_, vote := readUntil(t, conn, 3*time.Second, func(m wsmsg.Message, _ map[string]any) bool {
		return m.Type == wsmsg.TypeVotePollResponse
	})
	if vote["success"] != true || vote["userVote"] != optionID {
		t.Fatalf("unexpected vote result: %v", vote)
	}

	sendWS(t, conn, wsmsg.TypeStopSimulation, matchID)
	readUntil(t, conn, 3*time.Second, func(m wsmsg.Message, _ map[string]any) bool {
		return m.Type == wsmsg.TypePollEnded
	})
}

func TestUnknownMessageType(t *testing.T) {
	conn := dialMatchWS(t)
	sendWS(t, conn, "unknown_message_type", map[string]any{})

	_, payload := readUntil(t, conn, 2*time.Second, func(m wsmsg.Message, _ map[string]any) bool {
		return m.Type == wsmsg.TypeError
	})
	if payload["code"] != "unknown_message_type" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}
