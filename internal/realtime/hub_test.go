package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log, _ := test.NewNullLogger()
	h := NewHub(log)
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func register(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	before := h.ClientCount(c.Group)
	h.RegisterClient(c)
	require.Eventually(t, func() bool { return h.ClientCount(c.Group) == before+1 }, time.Second, 5*time.Millisecond)
}

func TestHubRoutesByGroup(t *testing.T) {
	h := newTestHub(t)
	roomID, alice, bob := uuid.New(), uuid.New(), uuid.New()

	inRoom := NewClient(alice, RoomGroup(roomID), nil)
	personal := NewClient(bob, UserGroup(bob), nil)
	register(t, h, inRoom)
	register(t, h, personal)

	h.BroadcastRoom(roomID, map[string]string{"type": "new_message"})
	select {
	case msg := <-inRoom.Send:
		assert.JSONEq(t, `{"type":"new_message"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("room client got nothing")
	}
	assert.Len(t, personal.Send, 0)

	h.SendToUser(bob, map[string]int{"unread_count": 1})
	select {
	case msg := <-personal.Send:
		assert.JSONEq(t, `{"unread_count":1}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("personal client got nothing")
	}
	assert.Len(t, inRoom.Send, 0)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := newTestHub(t)
	c := NewClient(uuid.New(), UserGroup(uuid.New()), nil)
	register(t, h, c)

	h.UnregisterClient(c)
	require.Eventually(t, func() bool { return h.ClientCount(c.Group) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)

	// sending to an empty group is a no-op
	h.SendToGroup(c.Group, "ignored")
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := NewHub(log)
	go h.Run()
	defer h.Stop()

	c := &Client{ID: "slow", UserID: uuid.New(), Group: "user:slow", Send: make(chan []byte, 1)}
	register(t, h, c)

	h.SendRaw(c.Group, []byte("1"))
	h.SendRaw(c.Group, []byte("2"))

	assert.Equal(t, "1", string(<-c.Send))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestHubCallsReturnAfterStop(t *testing.T) {
	h := newTestHub(t)
	c := NewClient(uuid.New(), UserGroup(uuid.New()), nil)
	register(t, h, c)
	h.Stop()

	done := make(chan struct{})
	go func() {
		h.UnregisterClient(c)
		h.RegisterClient(NewClient(uuid.New(), c.Group, nil))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub call blocked after Stop")
	}
}

func TestUserFromChannel(t *testing.T) {
	id := uuid.New()

	got, ok := userFromChannel(NotificationChannel(id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = userFromChannel("notifications:not-a-uuid")
	assert.False(t, ok)
	_, ok = userFromChannel("other:" + id.String())
	assert.False(t, ok)
}
