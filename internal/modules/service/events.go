package service

import (
	"context"
	"time"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error
}

type Event struct {
	Type       string     `json:"type"`
	OccurredAt time.Time  `json:"occurred_at"`
	QuestID    *uuid.UUID `json:"quest_id,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Data       any        `json:"data,omitempty"`
}

// Events publishes quest lifecycle notifications. A nil *Events or a nil publisher
// drops everything, and publish failures are only logged.
type Events struct {
	pub EventPublisher
	cfg *config.Config
	log *zap.Logger
}

func NewEvents(pub EventPublisher, cfg *config.Config, log *zap.Logger) *Events {
	return &Events{pub: pub, cfg: cfg, log: log}
}

func (e *Events) emit(ctx context.Context, routingKey string, ev Event) {
	if e == nil || e.pub == nil {
		return
	}
	ev.Type = routingKey
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := e.pub.PublishJSON(ctx, e.cfg.RabbitMQ.ExchangeName.QuestEvents, routingKey, ev); err != nil {
		e.log.Warn("publish event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func ids(questID, userID uuid.UUID) (*uuid.UUID, *uuid.UUID) {
	var q, u *uuid.UUID
	if questID != uuid.Nil {
		q = &questID
	}
	if userID != uuid.Nil {
		u = &userID
	}
	return q, u
}

func (e *Events) questEvent(ctx context.Context, key string, questID, userID uuid.UUID, at time.Time, data any) {
	if e == nil {
		return
	}
	q, u := ids(questID, userID)
	e.emit(ctx, key, Event{OccurredAt: at, QuestID: q, UserID: u, Data: data})
}

func (e *Events) QuestCreated(ctx context.Context, questID, creatorID uuid.UUID, at time.Time, data any) {
	if e == nil {
		return
	}
	e.questEvent(ctx, e.cfg.RabbitMQ.RoutingKey.QuestCreated, questID, creatorID, at, data)
}

func (e *Events) QuestJoined(ctx context.Context, questID, userID uuid.UUID, at time.Time) {
	if e == nil {
		return
	}
	e.questEvent(ctx, e.cfg.RabbitMQ.RoutingKey.QuestJoined, questID, userID, at, nil)
}

func (e *Events) QuestLeft(ctx context.Context, questID, userID uuid.UUID, at time.Time) {
	if e == nil {
		return
	}
	e.questEvent(ctx, e.cfg.RabbitMQ.RoutingKey.QuestLeft, questID, userID, at, nil)
}

func (e *Events) QuestExpired(ctx context.Context, questID uuid.UUID, title string, at time.Time) {
	if e == nil {
		return
	}
	e.questEvent(ctx, e.cfg.RabbitMQ.RoutingKey.QuestExpired, questID, uuid.Nil, at, map[string]string{"title": title})
}

func (e *Events) QuestReviewed(ctx context.Context, questID, userID uuid.UUID, at time.Time, score int) {
	if e == nil {
		return
	}
	e.questEvent(ctx, e.cfg.RabbitMQ.RoutingKey.QuestReviewed, questID, userID, at, map[string]int{"score": score})
}

func (e *Events) UserLeveledUp(ctx context.Context, userID uuid.UUID, at time.Time, level int64) {
	if e == nil {
		return
	}
	e.questEvent(ctx, e.cfg.RabbitMQ.RoutingKey.UserLeveledUp, uuid.Nil, userID, at, map[string]int64{"level": level})
}

func (e *Events) ChatMessage(ctx context.Context, questID, senderID uuid.UUID, at time.Time, messageID uuid.UUID) {
	if e == nil {
		return
	}
	e.questEvent(ctx, e.cfg.RabbitMQ.RoutingKey.ChatMessage, questID, senderID, at, map[string]string{"message_id": messageID.String()})
}
