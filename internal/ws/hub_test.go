package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID, role string) *Client {
	return &Client{hub: hub, userID: userID, role: role, send: make(chan []byte, 4)}
}

func receive(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.send:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatalf("нет сообщения для %s", c.userID)
	}
	return Frame{}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("неожиданное сообщение для %s: %s", c.userID, raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Routing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)
	go hub.Run()

	alice := newTestClient(hub, "user_alice", "user")
	admin := newTestClient(hub, "admin_1", "admin")
	hub.Register(alice)
	hub.Register(admin)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.BroadcastAll("post.created", map[string]string{"id": "post_1"}))
	assert.Equal(t, "post.created", receive(t, alice).Type)
	assert.Equal(t, "post.created", receive(t, admin).Type)

	require.NoError(t, hub.BroadcastToRole("admin", "report.created", nil))
	assert.Equal(t, "report.created", receive(t, admin).Type)
	assertSilent(t, alice)

	require.NoError(t, hub.BroadcastToUser("user_alice", "post.reaction_received", nil))
	assert.Equal(t, "post.reaction_received", receive(t, alice).Type)
	assertSilent(t, admin)

	hub.Unregister(alice)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(ctx)
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	c := newTestClient(hub, "user_1", "user")
	hub.Register(c)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("хаб не остановился")
	}
	assert.Error(t, hub.BroadcastAll("post.created", nil))
}
