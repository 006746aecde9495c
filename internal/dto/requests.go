package dto

// RegisterRequest — тело POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
}

// LoginRequest — тело POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — тело POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ReportItemRequest — тело POST /api/items.
type ReportItemRequest struct {
	Type        string   `json:"type" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	ImageURLs   []string `json:"image_urls"`
}

// SubmitClaimRequest — тело POST /api/claims.
type SubmitClaimRequest struct {
	ItemID      string   `json:"item_id" binding:"required"`
	Description string   `json:"description" binding:"required"`
	ProofImages []string `json:"proof_images"`
}

// UpdateClaimStatusRequest — тело PUT /api/claims/:id/status.
type UpdateClaimStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	ReviewNote *string `json:"review_note"`
}

// DisputeClaimRequest — тело PUT /api/admin/claims/:id/dispute.
type DisputeClaimRequest struct {
	ReviewNote *string `json:"review_note"`
}
