package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ignatzorin/roastblame-backend/internal/goroutine"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/models"
)

// EventReactionReceived уходит автору поста, когда на него реагируют.
const EventReactionReceived = "post.reaction_received"

// Broadcaster - то, что Forwarder умеет делать с WebSocket хабом.
type Broadcaster interface {
	BroadcastAll(event string, data any) error
	BroadcastToUser(userID, event string, data any) error
	BroadcastToRole(role, event string, data any) error
}

// Forwarder пересылает доменные события в WebSocket.
type Forwarder struct {
	bus    *Bus
	target Broadcaster
}

func NewForwarder(bus *Bus, target Broadcaster) *Forwarder {
	return &Forwarder{bus: bus, target: target}
}

// Start подписывается на все топики. Подписки закрываются вместе с ctx.
func (f *Forwarder) Start(ctx context.Context) error {
	for _, topic := range Topics {
		messages, err := f.bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		topic := topic
		goroutine.SafeGo(func() {
			for msg := range messages {
				f.handle(topic, msg)
				msg.Ack()
			}
		})
	}
	return nil
}

func (f *Forwarder) handle(topic string, msg *message.Message) {
	data := json.RawMessage(msg.Payload)
	log := logger.L().WithField("topic", topic)

	var err error
	switch topic {
	case TopicPostReactionUpdated:
		var ev ReactionUpdated
		if err = json.Unmarshal(msg.Payload, &ev); err != nil {
			break
		}
		if err = f.target.BroadcastAll(topic, data); err != nil {
			break
		}
		if ev.AuthorID != "" && ev.AuthorID != ev.UserID && ev.Next != "" {
			err = f.target.BroadcastToUser(ev.AuthorID, EventReactionReceived, data)
		}
	case TopicReportCreated:
		err = f.target.BroadcastToRole(models.RoleAdmin, topic, data)
	default:
		err = f.target.BroadcastAll(topic, data)
	}

	if err != nil {
		log.WithError(err).Warn("events: не удалось переслать событие")
	}
}
