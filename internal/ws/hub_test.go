package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/models"
)

func receivePayload(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	case <-time.After(time.Second):
		t.Fatal("таймаут ожидания сообщения")
		return nil
	}
}

func assertNoPayload(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("неожиданное сообщение: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func registerAndWait(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	hub.Register(c)
	// Цикл хаба обрабатывает каналы последовательно, поэтому после
	// завершения широковещательной отправки регистрация уже применена.
	require.NoError(t, hub.BroadcastToUser(uuid.New(), "noop", nil))
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, ok := hub.clients[c.userID]
		hub.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("клиент не зарегистрировался")
}

func TestHub_PushDeliversToAllDevices(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	phone := NewClient(nil, hub, userID)
	laptop := NewClient(nil, hub, userID)
	registerAndWait(t, hub, phone)
	registerAndWait(t, hub, laptop)

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: userID,
		Kind:        models.NotificationClaimApproved,
		Title:       "Claim Approved!",
	}
	require.NoError(t, hub.Push(userID, notification))

	for _, c := range []*Client{phone, laptop} {
		payload := receivePayload(t, c)

		var envelope struct {
			Type string              `json:"type"`
			Data models.Notification `json:"data"`
		}
		require.NoError(t, json.Unmarshal(payload, &envelope))
		assert.Equal(t, "notification", envelope.Type)
		assert.Equal(t, notification.ID, envelope.Data.ID)
	}
}

func TestHub_PushToOfflineUserIsSilent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	onlineID := uuid.New()
	online := NewClient(nil, hub, onlineID)
	registerAndWait(t, hub, online)

	// Доставка офлайн-получателю не ошибка: запись уже в базе,
	// он заберёт её при следующем запросе списка.
	err := hub.Push(uuid.New(), &models.Notification{ID: uuid.New()})
	assert.NoError(t, err)
	assertNoPayload(t, online)
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := NewClient(nil, hub, userID)
	registerAndWait(t, hub, client)

	hub.Unregister(client)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, ok := hub.clients[userID]
		hub.mu.RUnlock()
		if !ok {
			break
		}
		time.Sleep(time.Millisecond)
	}

	require.NoError(t, hub.Push(userID, &models.Notification{ID: uuid.New()}))
	assertNoPayload(t, client)
}

func TestHub_UnregisterKeepsOtherDevices(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	phone := NewClient(nil, hub, userID)
	laptop := NewClient(nil, hub, userID)
	registerAndWait(t, hub, phone)
	registerAndWait(t, hub, laptop)

	hub.Unregister(phone)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		count := len(hub.clients[userID])
		hub.mu.RUnlock()
		if count == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	require.NoError(t, hub.Push(userID, &models.Notification{ID: uuid.New()}))
	receivePayload(t, laptop)
	assertNoPayload(t, phone)
}
