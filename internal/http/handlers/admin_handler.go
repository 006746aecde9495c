package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/dto"
	"github.com/ignatzorin/lostfound-backend/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// AdminHandler обслуживает административные маршруты.
type AdminHandler struct {
	claims *service.ClaimService
}

// NewAdminHandler создаёт новый хэндлер.
func NewAdminHandler(claims *service.ClaimService) *AdminHandler {
	return &AdminHandler{claims: claims}
}

// DisputeClaim обрабатывает PUT /api/admin/claims/:id/dispute.
// Проверка роли выполняется в сервисе: решение о допустимости перехода
// принадлежит машине состояний, а не маршрутизации.
func (h *AdminHandler) DisputeClaim(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	claimID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Комментарий необязателен, пустое тело допустимо.
	var req dto.DisputeClaimRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
			return
		}
	}

	claim, err := h.claims.DisputeClaim(c.Request.Context(), principal, claimID, req.ReviewNote)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}
