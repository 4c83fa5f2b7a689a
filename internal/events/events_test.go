package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/roastblame-backend/internal/models"
)

type sent struct {
	to    string
	event string
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingBroadcaster) add(to, event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{to: to, event: event})
	return nil
}

func (r *recordingBroadcaster) BroadcastAll(event string, _ any) error {
	return r.add("*", event)
}

func (r *recordingBroadcaster) BroadcastToUser(userID, event string, _ any) error {
	return r.add("user:"+userID, event)
}

func (r *recordingBroadcaster) BroadcastToRole(role, event string, _ any) error {
	return r.add("role:"+role, event)
}

func (r *recordingBroadcaster) snapshot() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sent...)
}

func startForwarder(t *testing.T) (*Bus, *recordingBroadcaster) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	bus := NewBus(nil)
	target := &recordingBroadcaster{}
	require.NoError(t, NewForwarder(bus, target).Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
	})
	return bus, target
}

func TestForwarder_ReactionGoesToFeedAndAuthor(t *testing.T) {
	bus, target := startForwarder(t)

	err := bus.Publish(context.Background(), TopicPostReactionUpdated, ReactionUpdated{
		PostID:   "post_1",
		AuthorID: "user_author",
		UserID:   "user_fan",
		Next:     models.ReactionFunny,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(target.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []sent{
		{to: "*", event: TopicPostReactionUpdated},
		{to: "user:user_author", event: EventReactionReceived},
	}, target.snapshot())
}

func TestForwarder_OwnReactionDoesNotNotifyAuthor(t *testing.T) {
	bus, target := startForwarder(t)

	require.NoError(t, bus.Publish(context.Background(), TopicPostReactionUpdated, ReactionUpdated{
		PostID:   "post_1",
		AuthorID: "user_a",
		UserID:   "user_a",
		Next:     models.ReactionLike,
	}))
	require.NoError(t, bus.Publish(context.Background(), TopicPostDeleted, PostDeleted{PostID: "post_1"}))

	require.Eventually(t, func() bool { return len(target.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
	for _, s := range target.snapshot() {
		assert.Equal(t, "*", s.to)
	}
}

func TestForwarder_ReportsGoToAdmins(t *testing.T) {
	bus, target := startForwarder(t)

	require.NoError(t, bus.Publish(context.Background(), TopicReportCreated, models.Report{ID: "report_1"}))

	require.Eventually(t, func() bool { return len(target.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, sent{to: "role:" + models.RoleAdmin, event: TopicReportCreated}, target.snapshot()[0])
}
