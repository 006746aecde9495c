package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/lostfound-backend/internal/models"
)

// ErrItemNotFound возвращается, когда вещь не найдена.
var ErrItemNotFound = errors.New("item not found")

// ItemRepository отвечает за работу с таблицей items.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository создаёт экземпляр репозитория.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create создаёт новую запись о вещи со статусом active.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (owner_id, type, title, description, category, location, image_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		item.OwnerID, item.Type, item.Title, item.Description,
		item.Category, item.Location, pq.Array([]string(item.ImageURLs)), models.ItemStatusActive,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("item repository: create %w", err)
	}

	item.Status = models.ItemStatusActive
	return nil
}

// GetByID возвращает вещь по идентификатору.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.GetContext(ctx, &item, `SELECT * FROM items WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item repository: get by id %w", err)
	}

	return &item, nil
}

// List возвращает вещи с фильтрацией по типу и статусу.
func (r *ItemRepository) List(ctx context.Context, itemType, status string, limit, offset int) ([]models.Item, error) {
	query := `SELECT * FROM items WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if itemType != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, itemType)
		argIndex++
	}

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("item repository: list %w", err)
	}

	return items, nil
}

// ListByOwner возвращает вещи, заявленные конкретным владельцем.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM items WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("item repository: list by owner %w", err)
	}

	return items, nil
}
