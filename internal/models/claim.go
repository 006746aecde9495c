package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// Claim — заявление пользователя о праве на вещь.
// Пара (item_id, claimant_id) уникальна на уровне базы.
type Claim struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	ItemID      uuid.UUID      `db:"item_id" json:"item_id"`
	ClaimantID  uuid.UUID      `db:"claimant_id" json:"claimant_id"`
	Description string         `db:"description" json:"description"`
	ProofImages pq.StringArray `db:"proof_images" json:"proof_images"`
	Status      string         `db:"status" json:"status"`
	ReviewNote  *string        `db:"review_note" json:"review_note,omitempty"`
	ReviewerID  *uuid.UUID     `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// RejectedSibling описывает заявку, автоматически отклонённую при одобрении
// конкурирующей заявки на ту же вещь.
type RejectedSibling struct {
	ClaimID    uuid.UUID `db:"id"`
	ClaimantID uuid.UUID `db:"claimant_id"`
}
