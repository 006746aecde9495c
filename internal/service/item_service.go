package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

// ItemRepository описывает зависимости ItemService от слоя хранилища.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, itemType, status string, limit, offset int) ([]models.Item, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error)
}

// ItemService — минимальный каталог вещей. Статус после создания меняется
// только машиной состояний заявок.
type ItemService struct {
	repo ItemRepository
}

// ReportItemInput содержит данные нового объявления.
type ReportItemInput struct {
	Type        string
	Title       string
	Description string
	Category    string
	Location    string
	ImageURLs   []string
}

// NewItemService создаёт сервис каталога.
func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

// ReportItem публикует объявление о потерянной или найденной вещи.
func (s *ItemService) ReportItem(ctx context.Context, principal models.Principal, in ReportItemInput) (*models.Item, error) {
	if err := ensureActive(principal); err != nil {
		return nil, err
	}

	if _, ok := models.ValidItemTypes[in.Type]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "тип должен быть lost или found")
	}
	if _, ok := models.ValidItemCategories[in.Category]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестная категория")
	}
	if err := validation.ValidateLength("название", in.Title, validation.MinItemTitleLength, validation.MaxItemTitleLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание", in.Description, validation.MinItemDescriptionLength, validation.MaxItemDescriptionLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("место", in.Location, 1, validation.MaxLocationLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	item := &models.Item{
		OwnerID:     principal.ID,
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		ImageURLs:   in.ImageURLs,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetItem возвращает вещь по идентификатору.
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.repo.GetByID(ctx, id)
}

// ListItems возвращает объявления с фильтрацией по типу и статусу.
func (s *ItemService) ListItems(ctx context.Context, itemType, status string, limit, offset int) ([]models.Item, error) {
	if itemType != "" {
		if _, ok := models.ValidItemTypes[itemType]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "тип должен быть lost или found")
		}
	}
	if status != "" {
		if _, ok := models.ValidItemStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус")
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, itemType, status, limit, offset)
}

// ListMyItems возвращает объявления пользователя.
func (s *ItemService) ListMyItems(ctx context.Context, principal models.Principal) ([]models.Item, error) {
	return s.repo.ListByOwner(ctx, principal.ID)
}
