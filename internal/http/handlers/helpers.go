package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

// respondServiceError переводит ошибку сервиса в HTTP ответ.
// Кодированные ошибки несут свой статус; ошибки "не найдено" из
// репозиториев отдаются как 404, остальное маскируется как 500.
func respondServiceError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "вещь не найдена"})
	case errors.Is(err, repository.ErrClaimNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "заявка не найдена"})
	case errors.Is(err, repository.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "уведомление не найдено"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "пользователь не найден"})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
	}
}
