package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/dto"
	"github.com/ignatzorin/lostfound-backend/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// ItemHandler обслуживает маршруты каталога вещей.
type ItemHandler struct {
	items *service.ItemService
}

// NewItemHandler создаёт новый хэндлер.
func NewItemHandler(items *service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// ReportItem обрабатывает POST /api/items.
func (h *ItemHandler) ReportItem(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req dto.ReportItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	item, err := h.items.ReportItem(c.Request.Context(), principal, service.ReportItemInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetItem обрабатывает GET /api/items/:id.
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.items.GetItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListItems обрабатывает GET /api/items.
func (h *ItemHandler) ListItems(c *gin.Context) {
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	items, err := h.items.ListItems(c.Request.Context(), c.Query("type"), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// ListMyItems обрабатывает GET /api/items/my.
func (h *ItemHandler) ListMyItems(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	items, err := h.items.ListMyItems(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}
