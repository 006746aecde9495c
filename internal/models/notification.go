package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification — запись в журнале уведомлений получателя.
// Создаётся только диспетчером уведомлений; получатель может лишь
// помечать её прочитанной.
type Notification struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	RecipientID    uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	Kind           string     `db:"kind" json:"kind"`
	Title          string     `db:"title" json:"title"`
	Message        string     `db:"message" json:"message"`
	RelatedItemID  *uuid.UUID `db:"related_item_id" json:"related_item_id,omitempty"`
	RelatedClaimID *uuid.UUID `db:"related_claim_id" json:"related_claim_id,omitempty"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
