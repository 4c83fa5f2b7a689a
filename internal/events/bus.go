// Package events - внутрипроцессная шина доменных событий поверх
// watermill gochannel.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/ignatzorin/roastblame-backend/internal/metrics"
	"github.com/ignatzorin/roastblame-backend/internal/models"
)

// Топики доменных событий.
const (
	TopicPostCreated         = "post.created"
	TopicPostReactionUpdated = "post.reaction_updated"
	TopicPostDeleted         = "post.deleted"
	TopicReportCreated       = "report.created"
)

// Topics - все топики, на которые подписывается Forwarder.
var Topics = []string{
	TopicPostCreated,
	TopicPostReactionUpdated,
	TopicPostDeleted,
	TopicReportCreated,
}

// ReactionUpdated - полезная нагрузка post.reaction_updated.
type ReactionUpdated struct {
	PostID    string              `json:"post_id"`
	AuthorID  string              `json:"author_id"`
	UserID    string              `json:"user_id"`
	Previous  models.ReactionKind `json:"previous,omitempty"`
	Next      models.ReactionKind `json:"next,omitempty"`
	Reactions models.Reactions    `json:"reactions"`
}

// PostDeleted - полезная нагрузка post.deleted.
type PostDeleted struct {
	PostID  string `json:"post_id"`
	AdminID string `json:"admin_id"`
	Reason  string `json:"reason,omitempty"`
}

// Bus публикует события в gochannel.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus создаёт шину. Публикация не ждёт подтверждения подписчиков.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger),
		logger: logger,
	}
}

// Publish сериализует payload в JSON и отправляет в топик.
func (b *Bus) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: сериализация %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("events: публикация %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Subscribe возвращает канал сообщений топика.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close закрывает все подписки.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
