package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

// ClaimRepository описывает взаимодействие сервиса с хранилищем заявок.
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Claim, error)
	ListByClaimant(ctx context.Context, claimantID uuid.UUID) ([]models.Claim, error)
	Approve(ctx context.Context, claim *models.Claim, reviewerID uuid.UUID, note *string) ([]models.RejectedSibling, error)
	Finalize(ctx context.Context, claim *models.Claim, newStatus string, note *string, reviewerID uuid.UUID, allowedFrom []string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemCatalog — каталог вещей с точки зрения машины состояний заявок.
// Статус вещи меняется только внутри транзакции одобрения, каталогу
// остаётся чтение.
type ItemCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// Dispatcher — диспетчер уведомлений, внедряемый в машину состояний.
// Прямого доступа к транспортному слою у сервиса нет.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipientID uuid.UUID, kind, title, message string, relatedItemID, relatedClaimID *uuid.UUID) (*models.Notification, error)
}

// ClaimService реализует жизненный цикл заявок: подачу, одобрение,
// отклонение и административный спор, вместе с сопряжёнными переходами
// статуса вещи и рассылкой уведомлений.
type ClaimService struct {
	claims     ClaimRepository
	items      ItemCatalog
	dispatcher Dispatcher
}

// SubmitClaimInput содержит данные новой заявки.
type SubmitClaimInput struct {
	ItemID      uuid.UUID
	Description string
	ProofImages []string
}

// NewClaimService создаёт сервис заявок.
func NewClaimService(claims ClaimRepository, items ItemCatalog, dispatcher Dispatcher) *ClaimService {
	return &ClaimService{claims: claims, items: items, dispatcher: dispatcher}
}

// ensureActive отклоняет операции от деактивированных учётных записей.
func ensureActive(p models.Principal) error {
	if !p.IsActive {
		return apperror.ErrForbidden
	}
	return nil
}

// SubmitClaim подаёт заявку на вещь. Владелец не может подать заявку на
// собственную вещь, вещь должна быть active, повторная заявка той же пары
// (вещь, заявитель) отклоняется ограничением уникальности в базе.
func (s *ClaimService) SubmitClaim(ctx context.Context, principal models.Principal, in SubmitClaimInput) (*models.Claim, error) {
	if err := ensureActive(principal); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("описание", in.Description, 1, validation.MaxClaimDescription); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if len(in.ProofImages) > validation.MaxProofImages {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("не более %d подтверждающих изображений", validation.MaxProofImages))
	}

	item, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == principal.ID {
		return nil, apperror.ErrSelfClaim
	}
	if item.Status != models.ItemStatusActive {
		return nil, apperror.ErrItemUnavailable
	}

	claim := &models.Claim{
		ItemID:      in.ItemID,
		ClaimantID:  principal.ID,
		Description: in.Description,
		ProofImages: in.ProofImages,
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		if errors.Is(err, repository.ErrDuplicateClaim) {
			return nil, apperror.ErrDuplicateClaim
		}
		return nil, err
	}

	s.notify(ctx, item.OwnerID, models.NotificationClaimSubmitted,
		"New Claim Submitted",
		fmt.Sprintf("Someone has claimed your %s item: %s", item.Type, item.Title),
		item.ID, claim.ID)

	return claim, nil
}

// UpdateClaimStatus одобряет или отклоняет pending заявку. Разрешено
// владельцу вещи и администратору.
//
// Одобрение — единственная конкурентно-критичная операция: статус вещи
// меняется условным обновлением "claimed, если всё ещё active" в одной
// транзакции с переходом заявки, поэтому из гонки двух одобрений выйти
// победителем может только одно, второе получает stale-ошибку и должно
// перечитать состояние.
func (s *ClaimService) UpdateClaimStatus(ctx context.Context, principal models.Principal, claimID uuid.UUID, newStatus string, note *string) (*models.Claim, error) {
	if err := ensureActive(principal); err != nil {
		return nil, err
	}
	if newStatus != models.ClaimStatusApproved && newStatus != models.ClaimStatusRejected {
		return nil, apperror.New(apperror.ErrCodeValidation, "статус должен быть approved или rejected")
	}
	if note != nil {
		if err := validation.ValidateLength("комментарий", *note, 0, validation.MaxReviewNoteLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, claim.ItemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != principal.ID && !principal.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	if claim.Status != models.ClaimStatusPending {
		return nil, apperror.ErrClaimFinalized
	}

	if newStatus == models.ClaimStatusApproved {
		return s.approve(ctx, principal, claim, item, note)
	}
	return s.reject(ctx, principal, claim, item, note)
}

func (s *ClaimService) approve(ctx context.Context, principal models.Principal, claim *models.Claim, item *models.Item, note *string) (*models.Claim, error) {
	siblings, err := s.claims.Approve(ctx, claim, principal.ID, note)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotActive):
			return nil, apperror.ErrStaleApproval
		case errors.Is(err, repository.ErrClaimNotPending):
			return nil, apperror.ErrClaimFinalized
		}
		return nil, err
	}

	// Переход зафиксирован; уведомления — best effort относительно
	// состояния. Каждая запись сохраняется до живой доставки, порядок
	// между конкурирующими заявителями не важен.
	s.notify(ctx, claim.ClaimantID, models.NotificationClaimApproved,
		"Claim Approved!",
		fmt.Sprintf("Your claim for %q has been approved!", item.Title),
		item.ID, claim.ID)

	g, gctx := errgroup.WithContext(ctx)
	for _, sibling := range siblings {
		sibling := sibling
		g.Go(func() error {
			s.notify(gctx, sibling.ClaimantID, models.NotificationClaimRejected,
				"Claim Rejected",
				fmt.Sprintf("Your claim for %q has been rejected. %s", item.Title, models.AutoRejectNote),
				item.ID, sibling.ClaimID)
			return nil
		})
	}
	_ = g.Wait()

	return claim, nil
}

func (s *ClaimService) reject(ctx context.Context, principal models.Principal, claim *models.Claim, item *models.Item, note *string) (*models.Claim, error) {
	// Прямое отклонение возможно только пока вещь active: после одобрения
	// конкурирующей заявки остальные уже отклонены автоматически.
	if item.Status != models.ItemStatusActive {
		return nil, apperror.ErrItemUnavailable
	}

	err := s.claims.Finalize(ctx, claim, models.ClaimStatusRejected, note, principal.ID, []string{models.ClaimStatusPending})
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotPending) {
			return nil, apperror.ErrClaimFinalized
		}
		return nil, err
	}

	message := fmt.Sprintf("Your claim for %q has been rejected.", item.Title)
	if note != nil && *note != "" {
		message = fmt.Sprintf("%s %s", message, *note)
	}
	s.notify(ctx, claim.ClaimantID, models.NotificationClaimRejected,
		"Claim Rejected", message, item.ID, claim.ID)

	return claim, nil
}

// DisputeClaim переводит заявку в статус disputed. Доступно только
// администратору из любого состояния, кроме самого disputed; статус вещи
// не меняется — спор не откатывает передачу.
func (s *ClaimService) DisputeClaim(ctx context.Context, principal models.Principal, claimID uuid.UUID, note *string) (*models.Claim, error) {
	if err := ensureActive(principal); err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, claim.ItemID)
	if err != nil {
		return nil, err
	}

	err = s.claims.Finalize(ctx, claim, models.ClaimStatusDisputed, note, principal.ID,
		[]string{models.ClaimStatusPending, models.ClaimStatusRejected, models.ClaimStatusApproved})
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotPending) {
			return nil, apperror.ErrClaimFinalized
		}
		return nil, err
	}

	s.notify(ctx, claim.ClaimantID, models.NotificationClaimDisputed,
		"Claim Disputed",
		fmt.Sprintf("Your claim for %q has been marked as disputed by an administrator.", item.Title),
		item.ID, claim.ID)

	return claim, nil
}

// ListClaimsForItem возвращает заявки на вещь. Доступно владельцу и администратору.
func (s *ClaimService) ListClaimsForItem(ctx context.Context, principal models.Principal, itemID uuid.UUID) ([]models.Claim, error) {
	if err := ensureActive(principal); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != principal.ID && !principal.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	return s.claims.ListByItem(ctx, itemID)
}

// ListClaimsForUser возвращает заявки, поданные самим пользователем.
func (s *ClaimService) ListClaimsForUser(ctx context.Context, principal models.Principal) ([]models.Claim, error) {
	return s.claims.ListByClaimant(ctx, principal.ID)
}

// DeleteClaim удаляет заявку. Доступно заявителю и администратору; это
// простое удаление записи вне машины состояний, без уведомлений.
func (s *ClaimService) DeleteClaim(ctx context.Context, principal models.Principal, claimID uuid.UUID) error {
	if err := ensureActive(principal); err != nil {
		return err
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return err
	}

	if claim.ClaimantID != principal.ID && !principal.IsAdmin() {
		return apperror.ErrForbidden
	}

	return s.claims.Delete(ctx, claimID)
}

// notify отправляет уведомление через диспетчер. Ошибка доставки не
// отменяет уже зафиксированный переход — только логируется.
func (s *ClaimService) notify(ctx context.Context, recipientID uuid.UUID, kind, title, message string, itemID, claimID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}

	if _, err := s.dispatcher.Dispatch(ctx, recipientID, kind, title, message, &itemID, &claimID); err != nil {
		if logger.Log != nil {
			logger.Log.WithField("recipient_id", recipientID).
				Errorf("claim service: не удалось отправить уведомление %s: %v", kind, err)
		}
	}
}
