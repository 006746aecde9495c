package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/lostfound-backend/internal/service"
	"github.com/ignatzorin/lostfound-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub          *ws.Hub
	tokenManager *service.TokenManager
	auth         *service.AuthService
	upgrader     websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер.
func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager, auth *service.AuthService) *WSHandler {
	return &WSHandler{
		hub:          hub,
		tokenManager: tokens,
		auth:         auth,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
// Соединение принимается только после того, как токен проверен и
// пользователь подтверждён в базе как активный. Регистрация в хабе
// происходит после апгрейда, поэтому неавторизованный клиент никогда
// не попадает в реестр присутствия.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access токен обязателен"})
		return
	}

	principal, err := h.tokenManager.ParseAccess(rawToken)
	if err != nil || principal.ID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "невалидный access токен"})
		return
	}

	// Токен может пережить деактивацию аккаунта, поэтому перечитываем
	// пользователя перед регистрацией соединения.
	principal, err = h.auth.ResolvePrincipal(c.Request.Context(), principal.ID)
	if err != nil || !principal.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден или деактивирован"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	client := ws.NewClient(conn, h.hub, principal.ID)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
