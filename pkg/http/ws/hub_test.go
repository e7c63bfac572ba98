package ws

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detachedConn(queue int) *Connection {
	return NewConnection(nil, queue, time.Second, zerolog.New(io.Discard))
}

func TestHub_BroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub(zerolog.New(io.Discard))
	a, b := uuid.New(), uuid.New()
	connA, connB := detachedConn(4), detachedConn(4)
	hub.RegisterConnection(a, connA)
	hub.RegisterConnection(b, connB)
	hub.JoinMatch("m1", a)
	hub.JoinMatch("m1", a)
	hub.JoinMatch("m2", b)

	require.NoError(t, hub.BroadcastToMatch("m1", Message{Type: TypeSimulationEvent}))

	assert.Equal(t, 1, hub.Subscribers("m1"))
	assert.Len(t, connA.sendCh, 1)
	assert.Len(t, connB.sendCh, 0)
}

func TestHub_LeaveAndUnregister(t *testing.T) {
	hub := NewHub(zerolog.New(io.Discard))
	id := uuid.New()
	conn := detachedConn(4)
	hub.RegisterConnection(id, conn)
	hub.JoinMatch("m1", id)
	hub.JoinMatch("m2", id)

	hub.LeaveMatch("m1", id)
	assert.Zero(t, hub.Subscribers("m1"))
	assert.Equal(t, 1, hub.Subscribers("m2"))

	hub.UnregisterConnection(id)
	assert.Zero(t, hub.Subscribers("m2"))
	assert.ErrorIs(t, hub.SendTo(id, Message{}), ErrConnectionNotFound)
	assert.ErrorIs(t, conn.Send(Message{}), ErrConnectionClosed)
}

func TestConnection_SendQueueFull(t *testing.T) {
	conn := detachedConn(1)

	require.NoError(t, conn.Send(Message{Type: TypePollData}))
	assert.ErrorIs(t, conn.Send(Message{Type: TypePollData}), ErrSendQueueFull)
}

func TestMatchRef_AcceptsStringOrObject(t *testing.T) {
	var ref MatchRef
	require.NoError(t, json.Unmarshal([]byte(`"match-1"`), &ref))
	assert.Equal(t, MatchRef{MatchID: "match-1"}, ref)

	ref = MatchRef{}
	require.NoError(t, json.Unmarshal([]byte(`{"matchId":"match-2","userId":"u1"}`), &ref))
	assert.Equal(t, MatchRef{MatchID: "match-2", UserID: "u1"}, ref)

	assert.Error(t, json.Unmarshal([]byte(`42`), &ref))
}
