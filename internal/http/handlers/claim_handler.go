package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/dto"
	"github.com/ignatzorin/lostfound-backend/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// ClaimHandler обслуживает маршруты заявок.
type ClaimHandler struct {
	claims *service.ClaimService
}

// NewClaimHandler создаёт новый хэндлер.
func NewClaimHandler(claims *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// SubmitClaim обрабатывает POST /api/claims.
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req dto.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор вещи"})
		return
	}

	claim, err := h.claims.SubmitClaim(c.Request.Context(), principal, service.SubmitClaimInput{
		ItemID:      itemID,
		Description: req.Description,
		ProofImages: req.ProofImages,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// UpdateClaimStatus обрабатывает PUT /api/claims/:id/status.
func (h *ClaimHandler) UpdateClaimStatus(c *gin.Context) {
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

	var req dto.UpdateClaimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	claim, err := h.claims.UpdateClaimStatus(c.Request.Context(), principal, claimID, req.Status, req.ReviewNote)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

// ListClaimsByItem обрабатывает GET /api/claims/item/:itemId.
func (h *ClaimHandler) ListClaimsByItem(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	itemID, err := common.ParseUUIDParam(c, "itemId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.claims.ListClaimsForItem(c.Request.Context(), principal, itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// ListMyClaims обрабатывает GET /api/claims/my.
func (h *ClaimHandler) ListMyClaims(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.claims.ListClaimsForUser(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// DeleteClaim обрабатывает DELETE /api/claims/:id.
func (h *ClaimHandler) DeleteClaim(c *gin.Context) {
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

	if err := h.claims.DeleteClaim(c.Request.Context(), principal, claimID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "заявка удалена"})
}
