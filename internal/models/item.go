package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// Item описывает потерянную или найденную вещь.
// После создания статус меняется только через жизненный цикл заявок:
// прямое выставление статуса пользователем запрещено.
type Item struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OwnerID         uuid.UUID      `db:"owner_id" json:"owner_id"`
	Type            string         `db:"type" json:"type"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	Category        string         `db:"category" json:"category"`
	Location        string         `db:"location" json:"location"`
	ImageURLs       pq.StringArray `db:"image_urls" json:"image_urls"`
	Status          string         `db:"status" json:"status"`
	ClaimedBy       *uuid.UUID     `db:"claimed_by" json:"claimed_by,omitempty"`
	ClaimApprovedAt *time.Time     `db:"claim_approved_at" json:"claim_approved_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
