package models

// ItemStatus константы статусов вещей
const (
	ItemStatusActive   = "active"
	ItemStatusClaimed  = "claimed"
	ItemStatusResolved = "resolved"
	ItemStatusExpired  = "expired"
)

// ItemType константы типов объявлений
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// ClaimStatus константы статусов заявок
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
	ClaimStatusDisputed = "disputed"
)

// NotificationKind константы видов уведомлений
const (
	NotificationClaimSubmitted = "claim_submitted"
	NotificationClaimApproved  = "claim_approved"
	NotificationClaimRejected  = "claim_rejected"
	NotificationClaimDisputed  = "claim_disputed"
)

// AutoRejectNote — системная пометка для заявок, отклонённых автоматически
// при одобрении конкурирующей заявки.
const AutoRejectNote = "Item already claimed by another user"

// ValidItemStatuses список валидных статусов вещей
var ValidItemStatuses = map[string]struct{}{
	ItemStatusActive:   {},
	ItemStatusClaimed:  {},
	ItemStatusResolved: {},
	ItemStatusExpired:  {},
}

// ValidItemTypes список валидных типов объявлений
var ValidItemTypes = map[string]struct{}{
	ItemTypeLost:  {},
	ItemTypeFound: {},
}

// ValidClaimStatuses список валидных статусов заявок
var ValidClaimStatuses = map[string]struct{}{
	ClaimStatusPending:  {},
	ClaimStatusApproved: {},
	ClaimStatusRejected: {},
	ClaimStatusDisputed: {},
}

// ValidItemCategories список категорий вещей
var ValidItemCategories = map[string]struct{}{
	"Electronics": {},
	"Documents":   {},
	"Accessories": {},
	"Clothing":    {},
	"Books":       {},
	"Keys":        {},
	"Other":       {},
}
