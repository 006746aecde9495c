package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/goroutine"
	"github.com/ignatzorin/lostfound-backend/internal/models"
)

// Hub — реестр присутствия: отображение идентификатора пользователя на
// множество его открытых WebSocket подключений. Состояние живёт только в
// памяти процесса; после рестарта клиенты переподключаются и заново
// запрашивают уведомления.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	backend    NotificationBackend
}

// NotificationBackend обслуживает входящие сообщения клиентов:
// выдачу списка уведомлений и пометку прочитанными.
type NotificationBackend interface {
	ListNotifications(ctx context.Context, recipientID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, callerID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, callerID uuid.UUID) error
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// SetNotificationBackend устанавливает обработчик входящих сообщений клиентов.
func (h *Hub) SetNotificationBackend(backend NotificationBackend) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backend = backend
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Push доставляет уведомление во все открытые каналы получателя.
// Запись уже сохранена в базе вызывающей стороной: если получатель офлайн
// или канал закрывается во время отправки, он увидит уведомление при
// следующем запросе списка.
func (h *Hub) Push(recipientID uuid.UUID, notification *models.Notification) error {
	return h.BroadcastToUser(recipientID, "notification", notification)
}

// BroadcastToUser отправляет событие всем подключениям пользователя.
// Сообщение следует контракту WebSocket API: "type" — имя события,
// "data" — полезная нагрузка.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	payload := map[string]any{
		"type": event,
		"data": data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	h.broadcast <- message{userID: userID, payload: raw}
	return nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		client := client
		select {
		case client.send <- payload:
		default:
			// Канал клиента переполнен, закрываем его асинхронно.
			goroutine.SafeGo(client.Close)
		}
	}
}
