package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/models"
)

// RedisBridge связывает реестры присутствия нескольких процессов через
// Redis pub/sub: Push публикует уведомление в общий канал, а цикл подписки
// каждого процесса доставляет его в локальный хаб. Без Redis отправка
// остаётся локальной для процесса, а сходимость для остальных получателей
// обеспечивает долговременная запись и повторный запрос списка.
type RedisBridge struct {
	client  *redis.Client
	hub     *Hub
	channel string
}

type bridgeEnvelope struct {
	RecipientID  uuid.UUID            `json:"recipient_id"`
	Notification *models.Notification `json:"notification"`
}

// NewRedisBridge создаёт мост поверх локального хаба.
func NewRedisBridge(client *redis.Client, hub *Hub, channel string) *RedisBridge {
	if channel == "" {
		channel = "lostfound:notifications"
	}
	return &RedisBridge{client: client, hub: hub, channel: channel}
}

// Push публикует уведомление в общий канал. Локальная доставка произойдёт
// через подписку этого же процесса.
func (b *RedisBridge) Push(recipientID uuid.UUID, notification *models.Notification) error {
	payload, err := json.Marshal(bridgeEnvelope{
		RecipientID:  recipientID,
		Notification: notification,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать уведомление для redis: %w", err)
	}

	if err := b.client.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		return fmt.Errorf("ws: не удалось опубликовать уведомление в redis: %w", err)
	}

	return nil
}

// Run читает общий канал и раздаёт уведомления локальному хабу.
// Блокируется до отмены контекста.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var envelope bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				if logger.Log != nil {
					logger.Log.Errorf("ws: повреждённое сообщение в redis канале: %v", err)
				}
				continue
			}

			if err := b.hub.Push(envelope.RecipientID, envelope.Notification); err != nil {
				if logger.Log != nil {
					logger.Log.Errorf("ws: не удалось доставить уведомление из redis: %v", err)
				}
			}
		}
	}
}
