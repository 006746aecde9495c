package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

type mockClaimRepo struct {
	mock.Mock
}

func (m *mockClaimRepo) Create(ctx context.Context, claim *models.Claim) error {
	args := m.Called(ctx, claim)
	if args.Error(0) == nil {
		claim.ID = uuid.New()
		claim.Status = models.ClaimStatusPending
	}
	return args.Error(0)
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *mockClaimRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Claim, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]models.Claim), args.Error(1)
}

func (m *mockClaimRepo) ListByClaimant(ctx context.Context, claimantID uuid.UUID) ([]models.Claim, error) {
	args := m.Called(ctx, claimantID)
	return args.Get(0).([]models.Claim), args.Error(1)
}

func (m *mockClaimRepo) Approve(ctx context.Context, claim *models.Claim, reviewerID uuid.UUID, note *string) ([]models.RejectedSibling, error) {
	args := m.Called(ctx, claim, reviewerID, note)
	if args.Error(1) == nil {
		claim.Status = models.ClaimStatusApproved
		claim.ReviewerID = &reviewerID
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RejectedSibling), args.Error(1)
}

func (m *mockClaimRepo) Finalize(ctx context.Context, claim *models.Claim, newStatus string, note *string, reviewerID uuid.UUID, allowedFrom []string) error {
	args := m.Called(ctx, claim, newStatus, note, reviewerID, allowedFrom)
	if args.Error(0) == nil {
		claim.Status = newStatus
		claim.ReviewNote = note
		claim.ReviewerID = &reviewerID
	}
	return args.Error(0)
}

func (m *mockClaimRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockItemCatalog struct {
	mock.Mock
}

func (m *mockItemCatalog) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, recipientID uuid.UUID, kind, title, message string, relatedItemID, relatedClaimID *uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, recipientID, kind, title, message, relatedItemID, relatedClaimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func activePrincipal(id uuid.UUID) models.Principal {
	return models.Principal{ID: id, Role: models.RoleUser, IsActive: true}
}

func adminPrincipal(id uuid.UUID) models.Principal {
	return models.Principal{ID: id, Role: models.RoleAdmin, IsActive: true}
}

func activeItem(ownerID uuid.UUID) *models.Item {
	return &models.Item{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Type:    models.ItemTypeFound,
		Title:   "Чёрный кошелёк",
		Status:  models.ItemStatusActive,
	}
}

func TestClaimService_SubmitClaim_Success(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	dispatcher := new(mockDispatcher)
	svc := NewClaimService(claimRepo, items, dispatcher)
	ctx := context.Background()

	ownerID := uuid.New()
	claimantID := uuid.New()
	item := activeItem(ownerID)

	items.On("GetByID", ctx, item.ID).Return(item, nil)
	claimRepo.On("Create", ctx, mock.AnythingOfType("*models.Claim")).Return(nil)
	dispatcher.On("Dispatch", ctx, ownerID, models.NotificationClaimSubmitted,
		mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything, mock.Anything).
		Return(&models.Notification{ID: uuid.New()}, nil)

	claim, err := svc.SubmitClaim(ctx, activePrincipal(claimantID), SubmitClaimInput{
		ItemID:      item.ID,
		Description: "Потерял кошелёк у входа в библиотеку во вторник",
	})

	assert.NoError(t, err)
	assert.NotNil(t, claim)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	assert.Equal(t, claimantID, claim.ClaimantID)
	dispatcher.AssertCalled(t, "Dispatch", ctx, ownerID, models.NotificationClaimSubmitted,
		mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything, mock.Anything)
}

func TestClaimService_SubmitClaim_OwnItem(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	svc := NewClaimService(claimRepo, items, nil)
	ctx := context.Background()

	ownerID := uuid.New()
	item := activeItem(ownerID)
	items.On("GetByID", ctx, item.ID).Return(item, nil)

	_, err := svc.SubmitClaim(ctx, activePrincipal(ownerID), SubmitClaimInput{
		ItemID:      item.ID,
		Description: "Это моя вещь",
	})

	assert.ErrorIs(t, err, apperror.ErrSelfClaim)
	claimRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClaimService_SubmitClaim_Duplicate(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	svc := NewClaimService(claimRepo, items, nil)
	ctx := context.Background()

	item := activeItem(uuid.New())
	items.On("GetByID", ctx, item.ID).Return(item, nil)
	claimRepo.On("Create", ctx, mock.AnythingOfType("*models.Claim")).Return(repository.ErrDuplicateClaim)

	_, err := svc.SubmitClaim(ctx, activePrincipal(uuid.New()), SubmitClaimInput{
		ItemID:      item.ID,
		Description: "Повторная заявка",
	})

	assert.ErrorIs(t, err, apperror.ErrDuplicateClaim)
}

func TestClaimService_SubmitClaim_ItemNotActive(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	svc := NewClaimService(claimRepo, items, nil)
	ctx := context.Background()

	item := activeItem(uuid.New())
	item.Status = models.ItemStatusClaimed
	items.On("GetByID", ctx, item.ID).Return(item, nil)

	_, err := svc.SubmitClaim(ctx, activePrincipal(uuid.New()), SubmitClaimInput{
		ItemID:      item.ID,
		Description: "Заявка на уже переданную вещь",
	})

	assert.ErrorIs(t, err, apperror.ErrItemUnavailable)
	claimRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClaimService_SubmitClaim_InactivePrincipal(t *testing.T) {
	svc := NewClaimService(new(mockClaimRepo), new(mockItemCatalog), nil)

	principal := models.Principal{ID: uuid.New(), Role: models.RoleUser, IsActive: false}
	_, err := svc.SubmitClaim(context.Background(), principal, SubmitClaimInput{
		ItemID:      uuid.New(),
		Description: "Заявка от деактивированного пользователя",
	})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestClaimService_Approve_RejectsSiblings(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	dispatcher := new(mockDispatcher)
	svc := NewClaimService(claimRepo, items, dispatcher)
	ctx := context.Background()

	ownerID := uuid.New()
	winnerID := uuid.New()
	loserBID := uuid.New()
	loserCID := uuid.New()
	item := activeItem(ownerID)

	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ClaimantID: winnerID,
		Status:     models.ClaimStatusPending,
	}
	siblings := []models.RejectedSibling{
		{ClaimID: uuid.New(), ClaimantID: loserBID},
		{ClaimID: uuid.New(), ClaimantID: loserCID},
	}

	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	items.On("GetByID", ctx, item.ID).Return(item, nil)
	claimRepo.On("Approve", ctx, claim, ownerID, (*string)(nil)).Return(siblings, nil)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Notification{ID: uuid.New()}, nil)

	updated, err := svc.UpdateClaimStatus(ctx, activePrincipal(ownerID), claim.ID, models.ClaimStatusApproved, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, updated.Status)

	// Победитель получает approved, оба проигравших — rejected.
	dispatcher.AssertCalled(t, "Dispatch", mock.Anything, winnerID, models.NotificationClaimApproved,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dispatcher.AssertCalled(t, "Dispatch", mock.Anything, loserBID, models.NotificationClaimRejected,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dispatcher.AssertCalled(t, "Dispatch", mock.Anything, loserCID, models.NotificationClaimRejected,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dispatcher.AssertNumberOfCalls(t, "Dispatch", 3)
}

func TestClaimService_Approve_StaleWhenItemAlreadyClaimed(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	dispatcher := new(mockDispatcher)
	svc := NewClaimService(claimRepo, items, dispatcher)
	ctx := context.Background()

	ownerID := uuid.New()
	item := activeItem(ownerID)
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ClaimantID: uuid.New(),
		Status:     models.ClaimStatusPending,
	}

	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	items.On("GetByID", ctx, item.ID).Return(item, nil)
	claimRepo.On("Approve", ctx, claim, ownerID, (*string)(nil)).
		Return(nil, repository.ErrItemNotActive)

	_, err := svc.UpdateClaimStatus(ctx, activePrincipal(ownerID), claim.ID, models.ClaimStatusApproved, nil)

	assert.ErrorIs(t, err, apperror.ErrStaleApproval)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimService_UpdateClaimStatus_Forbidden(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	svc := NewClaimService(claimRepo, items, nil)
	ctx := context.Background()

	item := activeItem(uuid.New())
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ClaimantID: uuid.New(),
		Status:     models.ClaimStatusPending,
	}

	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	items.On("GetByID", ctx, item.ID).Return(item, nil)

	// Ни владелец, ни админ.
	_, err := svc.UpdateClaimStatus(ctx, activePrincipal(uuid.New()), claim.ID, models.ClaimStatusApproved, nil)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	claimRepo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimService_UpdateClaimStatus_AlreadyFinalized(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	svc := NewClaimService(claimRepo, items, nil)
	ctx := context.Background()

	ownerID := uuid.New()
	item := activeItem(ownerID)
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ClaimantID: uuid.New(),
		Status:     models.ClaimStatusRejected,
	}

	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	items.On("GetByID", ctx, item.ID).Return(item, nil)

	_, err := svc.UpdateClaimStatus(ctx, activePrincipal(ownerID), claim.ID, models.ClaimStatusApproved, nil)

	assert.ErrorIs(t, err, apperror.ErrClaimFinalized)
}

func TestClaimService_Reject_Success(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	dispatcher := new(mockDispatcher)
	svc := NewClaimService(claimRepo, items, dispatcher)
	ctx := context.Background()

	ownerID := uuid.New()
	claimantID := uuid.New()
	item := activeItem(ownerID)
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ClaimantID: claimantID,
		Status:     models.ClaimStatusPending,
	}

	note := "Недостаточно доказательств"
	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	items.On("GetByID", ctx, item.ID).Return(item, nil)
	claimRepo.On("Finalize", ctx, claim, models.ClaimStatusRejected, &note, ownerID,
		[]string{models.ClaimStatusPending}).Return(nil)
	dispatcher.On("Dispatch", ctx, claimantID, models.NotificationClaimRejected,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Notification{ID: uuid.New()}, nil)

	updated, err := svc.UpdateClaimStatus(ctx, activePrincipal(ownerID), claim.ID, models.ClaimStatusRejected, &note)

	assert.NoError(t, err)
	assert.Equal(t, models.ClaimStatusRejected, updated.Status)
	assert.Equal(t, &note, updated.ReviewNote)
}

func TestClaimService_Reject_ItemNoLongerActive(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	svc := NewClaimService(claimRepo, items, nil)
	ctx := context.Background()

	ownerID := uuid.New()
	item := activeItem(ownerID)
	item.Status = models.ItemStatusClaimed
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ClaimantID: uuid.New(),
		Status:     models.ClaimStatusPending,
	}

	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	items.On("GetByID", ctx, item.ID).Return(item, nil)

	_, err := svc.UpdateClaimStatus(ctx, activePrincipal(ownerID), claim.ID, models.ClaimStatusRejected, nil)

	assert.ErrorIs(t, err, apperror.ErrItemUnavailable)
	claimRepo.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimService_Dispute_ApprovedClaim(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	dispatcher := new(mockDispatcher)
	svc := NewClaimService(claimRepo, items, dispatcher)
	ctx := context.Background()

	adminID := uuid.New()
	claimantID := uuid.New()
	item := activeItem(uuid.New())
	item.Status = models.ItemStatusClaimed
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ClaimantID: claimantID,
		Status:     models.ClaimStatusApproved,
	}

	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	items.On("GetByID", ctx, item.ID).Return(item, nil)
	claimRepo.On("Finalize", ctx, claim, models.ClaimStatusDisputed, (*string)(nil), adminID,
		[]string{models.ClaimStatusPending, models.ClaimStatusRejected, models.ClaimStatusApproved}).Return(nil)
	dispatcher.On("Dispatch", ctx, claimantID, models.NotificationClaimDisputed,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Notification{ID: uuid.New()}, nil)

	updated, err := svc.DisputeClaim(ctx, adminPrincipal(adminID), claim.ID, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ClaimStatusDisputed, updated.Status)
	// Статус вещи спор не трогает.
	assert.Equal(t, models.ItemStatusClaimed, item.Status)
}

func TestClaimService_Dispute_ForbiddenForRegularUser(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	svc := NewClaimService(claimRepo, new(mockItemCatalog), nil)

	_, err := svc.DisputeClaim(context.Background(), activePrincipal(uuid.New()), uuid.New(), nil)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	claimRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestClaimService_ListClaimsForItem_OwnerOnly(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	items := new(mockItemCatalog)
	svc := NewClaimService(claimRepo, items, nil)
	ctx := context.Background()

	ownerID := uuid.New()
	item := activeItem(ownerID)
	items.On("GetByID", ctx, item.ID).Return(item, nil)
	claimRepo.On("ListByItem", ctx, item.ID).Return([]models.Claim{}, nil)

	_, err := svc.ListClaimsForItem(ctx, activePrincipal(ownerID), item.ID)
	assert.NoError(t, err)

	_, err = svc.ListClaimsForItem(ctx, activePrincipal(uuid.New()), item.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestClaimService_DeleteClaim_ClaimantOrAdmin(t *testing.T) {
	claimRepo := new(mockClaimRepo)
	svc := NewClaimService(claimRepo, new(mockItemCatalog), nil)
	ctx := context.Background()

	claimantID := uuid.New()
	claim := &models.Claim{
		ID:         uuid.New(),
		ItemID:     uuid.New(),
		ClaimantID: claimantID,
		Status:     models.ClaimStatusPending,
	}

	claimRepo.On("GetByID", ctx, claim.ID).Return(claim, nil)
	claimRepo.On("Delete", ctx, claim.ID).Return(nil)

	assert.NoError(t, svc.DeleteClaim(ctx, activePrincipal(claimantID), claim.ID))
	assert.NoError(t, svc.DeleteClaim(ctx, adminPrincipal(uuid.New()), claim.ID))

	err := svc.DeleteClaim(ctx, activePrincipal(uuid.New()), claim.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
