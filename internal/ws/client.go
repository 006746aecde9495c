package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/lostfound-backend/internal/goroutine"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024

	// defaultPageSize ограничивает выдачу get_notifications.
	defaultPageSize = 20
)

// Client представляет одно подключение WebSocket.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	userID uuid.UUID
	send   chan []byte
}

// inboundMessage — входящее сообщение клиента: тегированный вариант,
// диспетчеризуемый по полю type.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewClient создаёт нового клиента. Идентификатор пользователя берётся
// из проверенного токена, а не из данных клиента.
func NewClient(conn *websocket.Conn, hub *Hub, userID uuid.UUID) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, 16),
	}
}

// Run запускает обработку входящих и исходящих сообщений.
func (c *Client) Run(ctx context.Context) {
	goroutine.SafeGo(c.writePump)
	c.readPump(ctx)
}

// Close закрывает соединение и снимает клиента с регистрации в хабе.
func (c *Client) Close() {
	c.hub.Unregister(c)
	c.conn.Close()
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("WebSocket readPump panic recovered: %v\nStack trace:\n%s\n", r, debug.Stack())
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, raw, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					if logger.Log != nil {
						logger.Log.WithField("user_id", c.userID).Debugf("ws: соединение закрыто: %v", err)
					}
				}
				return
			}

			c.handleMessage(ctx, raw)
		}
	}
}

// handleMessage разбирает входящее сообщение и вызывает обработчик по его виду.
// Неизвестные виды сообщений игнорируются.
func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	c.hub.mu.RLock()
	backend := c.hub.backend
	c.hub.mu.RUnlock()
	if backend == nil {
		return
	}

	switch msg.Type {
	case "get_notifications":
		notifications, err := backend.ListNotifications(ctx, c.userID, defaultPageSize, 0, false)
		if err != nil {
			if logger.Log != nil {
				logger.Log.WithField("user_id", c.userID).Errorf("ws: не удалось получить уведомления: %v", err)
			}
			return
		}
		c.reply("notifications", notifications)

	case "mark_read":
		var data struct {
			ID uuid.UUID `json:"id"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.ID == uuid.Nil {
			return
		}
		if err := backend.MarkAsRead(ctx, data.ID, c.userID); err != nil {
			if logger.Log != nil {
				logger.Log.WithField("user_id", c.userID).Errorf("ws: не удалось отметить уведомление: %v", err)
			}
		}

	case "mark_all_read":
		if err := backend.MarkAllAsRead(ctx, c.userID); err != nil {
			if logger.Log != nil {
				logger.Log.WithField("user_id", c.userID).Errorf("ws: не удалось отметить уведомления: %v", err)
			}
		}
	}
}

// reply отправляет ответ только в это подключение.
func (c *Client) reply(event string, data any) {
	payload, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return
	}

	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
