package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно: известные ошибки
// получают свой статус, внутренние маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"

		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr):
			statusCode = appErr.HTTPStatus
			message = appErr.Message
		case errors.Is(err, repository.ErrUserNotFound):
			statusCode = http.StatusNotFound
			message = "пользователь не найден"
		case errors.Is(err, repository.ErrItemNotFound):
			statusCode = http.StatusNotFound
			message = "вещь не найдена"
		case errors.Is(err, repository.ErrClaimNotFound):
			statusCode = http.StatusNotFound
			message = "заявка не найдена"
		case errors.Is(err, repository.ErrNotificationNotFound):
			statusCode = http.StatusNotFound
			message = "уведомление не найдено"
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}
