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

var (
	// ErrClaimNotFound возвращается, когда заявка не найдена.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrDuplicateClaim возвращается при повторной заявке той же пары (вещь, заявитель).
	ErrDuplicateClaim = errors.New("claim already exists for this item and claimant")
	// ErrItemNotActive возвращается, когда условное обновление вещи не прошло:
	// её статус уже не active.
	ErrItemNotActive = errors.New("item is no longer active")
	// ErrClaimNotPending возвращается, когда заявка уже покинула состояние pending.
	ErrClaimNotPending = errors.New("claim is not pending")
)

// ClaimRepository отвечает за работу с таблицей claims.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository создаёт экземпляр репозитория.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create создаёт новую заявку в статусе pending.
// Уникальность пары (item_id, claimant_id) обеспечивает индекс в базе,
// поэтому параллельная повторная подача не может проскочить.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	query := `
		INSERT INTO claims (item_id, claimant_id, description, proof_images, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		claim.ItemID, claim.ClaimantID, claim.Description,
		pq.Array([]string(claim.ProofImages)), models.ClaimStatusPending,
	).Scan(&claim.ID, &claim.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateClaim
		}
		return fmt.Errorf("claim repository: create %w", err)
	}

	claim.Status = models.ClaimStatusPending
	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.GetContext(ctx, &claim, `SELECT * FROM claims WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("claim repository: get by id %w", err)
	}

	return &claim, nil
}

// ListByItem возвращает все заявки на вещь, новые первыми.
func (r *ClaimRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Claim, error) {
	var claims []models.Claim
	err := r.db.SelectContext(ctx, &claims, `
		SELECT * FROM claims WHERE item_id = $1 ORDER BY created_at DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("claim repository: list by item %w", err)
	}

	return claims, nil
}

// ListByClaimant возвращает заявки пользователя, новые первыми.
func (r *ClaimRepository) ListByClaimant(ctx context.Context, claimantID uuid.UUID) ([]models.Claim, error) {
	var claims []models.Claim
	err := r.db.SelectContext(ctx, &claims, `
		SELECT * FROM claims WHERE claimant_id = $1 ORDER BY created_at DESC
	`, claimantID)
	if err != nil {
		return nil, fmt.Errorf("claim repository: list by claimant %w", err)
	}

	return claims, nil
}

// Approve одобряет заявку одной транзакцией: условно переводит вещь из
// active в claimed, помечает заявку approved и массово отклоняет остальные
// pending заявки на эту вещь. Если вещь уже не active (второе одобрение
// проиграло гонку), транзакция откатывается с ErrItemNotActive — победитель
// может быть только один.
func (r *ClaimRepository) Approve(ctx context.Context, claim *models.Claim, reviewerID uuid.UUID, note *string) ([]models.RejectedSibling, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("claim repository: approve begin tx %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE items
		SET status = $3, claimed_by = $2, claim_approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
	`, claim.ItemID, claim.ClaimantID, models.ItemStatusClaimed, models.ItemStatusActive)
	if err != nil {
		return nil, fmt.Errorf("claim repository: approve update item %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim repository: approve rows affected %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrItemNotActive
	}

	query := `
		UPDATE claims
		SET status = $2, review_note = $3, reviewer_id = $4, reviewed_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING review_note, reviewer_id, reviewed_at
	`
	if err := tx.QueryRowxContext(
		ctx, query,
		claim.ID, models.ClaimStatusApproved, note, reviewerID, models.ClaimStatusPending,
	).Scan(&claim.ReviewNote, &claim.ReviewerID, &claim.ReviewedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotPending
		}
		return nil, fmt.Errorf("claim repository: approve update claim %w", err)
	}
	claim.Status = models.ClaimStatusApproved

	// Конкурирующие pending заявки отклоняются той же транзакцией.
	// reviewer_id остаётся пустым: отклонение системное, а не решение
	// конкретного рецензента.
	var siblings []models.RejectedSibling
	err = tx.SelectContext(ctx, &siblings, `
		UPDATE claims
		SET status = $3, review_note = $4, reviewed_at = NOW()
		WHERE item_id = $1 AND id <> $2 AND status = $5
		RETURNING id, claimant_id
	`, claim.ItemID, claim.ID, models.ClaimStatusRejected, models.AutoRejectNote, models.ClaimStatusPending)
	if err != nil {
		return nil, fmt.Errorf("claim repository: approve reject siblings %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("claim repository: approve commit %w", err)
	}

	return siblings, nil
}

// Finalize переводит заявку в терминальный статус, если её текущий статус
// входит в allowedFrom. Используется для reject и dispute.
func (r *ClaimRepository) Finalize(ctx context.Context, claim *models.Claim, newStatus string, note *string, reviewerID uuid.UUID, allowedFrom []string) error {
	query := `
		UPDATE claims
		SET status = $2, review_note = $3, reviewer_id = $4, reviewed_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING review_note, reviewer_id, reviewed_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		claim.ID, newStatus, note, reviewerID, pq.Array(allowedFrom),
	).Scan(&claim.ReviewNote, &claim.ReviewerID, &claim.ReviewedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClaimNotPending
		}
		return fmt.Errorf("claim repository: finalize %w", err)
	}

	claim.Status = newStatus
	return nil
}

// Delete удаляет заявку. Удаление — простая операция над записью,
// вне машины состояний и без уведомлений.
func (r *ClaimRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("claim repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrClaimNotFound
	}

	return nil
}

// CountByItem возвращает количество заявок на вещь.
func (r *ClaimRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM claims WHERE item_id = $1`, itemID); err != nil {
		return 0, fmt.Errorf("claim repository: count by item %w", err)
	}

	return count, nil
}
