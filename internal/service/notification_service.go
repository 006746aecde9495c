package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, recipientID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// Pusher доставляет сохранённое уведомление во все открытые каналы получателя.
type Pusher interface {
	Push(recipientID uuid.UUID, notification *models.Notification) error
}

// NotificationService — диспетчер уведомлений: сначала долговременная
// запись, затем живая доставка. Ошибка записи прерывает всю операцию;
// ошибка доставки лишь логируется — офлайн-получатель увидит уведомление
// при следующем запросе списка.
type NotificationService struct {
	repo   NotificationRepository
	pusher Pusher
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// Dispatch сохраняет уведомление и рассылает его по открытым каналам.
// Сохранение строго предшествует доставке.
func (s *NotificationService) Dispatch(ctx context.Context, recipientID uuid.UUID, kind, title, message string, relatedItemID, relatedClaimID *uuid.UUID) (*models.Notification, error) {
	notification := &models.Notification{
		RecipientID:    recipientID,
		Kind:           kind,
		Title:          title,
		Message:        message,
		RelatedItemID:  relatedItemID,
		RelatedClaimID: relatedClaimID,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		if err := s.pusher.Push(recipientID, notification); err != nil {
			if logger.Log != nil {
				logger.Log.WithField("recipient_id", recipientID).
					Errorf("notification service: живая доставка не удалась: %v", err)
			}
		}
	}

	return notification, nil
}

// ListNotifications возвращает уведомления получателя, новые первыми.
func (s *NotificationService) ListNotifications(ctx context.Context, recipientID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, recipientID, limit, offset, unreadOnly)
}

// MarkAsRead отмечает уведомление прочитанным. Только получатель может
// пометить своё уведомление; повторная пометка — no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, callerID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.RecipientID != callerID {
		return apperror.ErrForbidden
	}

	if notification.IsRead {
		return nil
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead отмечает все уведомления получателя прочитанными. Идемпотентна.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, callerID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, callerID)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, recipientID)
}
