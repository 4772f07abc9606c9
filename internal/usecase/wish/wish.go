package wish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wishboard/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type WishUsecase struct {
	tx        txManager
	repo      wishRepository
	publisher eventPublisher
	logger    *zlog.Zerolog
	now       func() time.Time
}

func NewWishUsecase(tx txManager, repo wishRepository, publisher eventPublisher, logger *zlog.Zerolog) *WishUsecase {
	return &WishUsecase{
		tx:        tx,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (u *WishUsecase) Create(ctx context.Context, ownerID string, in domain.CreateWishInput) (*domain.Wish, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("owner_id", "is required")
	}
	if err := domain.ValidateCreate(&in); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	w := &domain.Wish{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Link:        in.Link,
		Tags:        in.Tags,
		Status:      in.Status,
		LikeCount:   0,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.repo.Create(ctx, w); err != nil {
		u.logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to create wish")
		return nil, fmt.Errorf("failed to create wish: %w", err)
	}

	created, err := u.repo.GetByID(ctx, w.ID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read created wish: %w", err)
	}

	u.logger.Info().Str("wish_id", w.ID).Str("owner_id", ownerID).Msg("Wish created")
	return created, nil
}

func (u *WishUsecase) Get(ctx context.Context, id, viewerID string) (*domain.Wish, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}

	w, err := u.repo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wish: %w", err)
	}
	return w, nil
}

// List returns wishes newest first. It is not paginated.
func (u *WishUsecase) List(ctx context.Context, filter domain.WishFilter) ([]domain.Wish, error) {
	wishes, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishes: %w", err)
	}
	return wishes, nil
}

func (u *WishUsecase) ListByOwner(ctx context.Context, ownerID, viewerID string) ([]domain.Wish, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("owner_id", "is required")
	}
	return u.List(ctx, domain.WishFilter{OwnerID: ownerID, ViewerID: viewerID})
}

// Update applies the supplied fields. The like counter is not part of the
// input and is never written here.
func (u *WishUsecase) Update(ctx context.Context, actorID, id string, in domain.UpdateWishInput) (*domain.Wish, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	if in.Empty() {
		return nil, domain.NewValidationError("body", "at least one field must be supplied")
	}
	if err := domain.ValidateUpdate(&in); err != nil {
		return nil, err
	}

	err := u.tx.RunInTx(ctx, func(ctx context.Context) error {
		ownerID, err := u.repo.Lock(ctx, id)
		if err != nil {
			return err
		}
		if ownerID != actorID {
			return fmt.Errorf("wish %s: %w", id, domain.ErrForbidden)
		}
		return u.repo.Update(ctx, id, in, u.now().UTC())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update wish: %w", err)
	}

	updated, err := u.repo.GetByID(ctx, id, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read updated wish: %w", err)
	}

	u.logger.Info().Str("wish_id", id).Str("owner_id", actorID).Msg("Wish updated")
	return updated, nil
}

// Delete removes the wish together with its like relationships. It reports
// false when there was nothing to remove.
func (u *WishUsecase) Delete(ctx context.Context, actorID, id string) (bool, error) {
	if id == "" {
		return false, domain.NewValidationError("id", "is required")
	}

	var removed bool
	err := u.tx.RunInTx(ctx, func(ctx context.Context) error {
		ownerID, err := u.repo.Lock(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if ownerID != actorID {
			return fmt.Errorf("wish %s: %w", id, domain.ErrForbidden)
		}

		removed, err = u.repo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete wish: %w", err)
	}

	if !removed {
		return false, nil
	}

	u.logger.Info().Str("wish_id", id).Str("owner_id", actorID).Msg("Wish deleted")

	if u.publisher != nil {
		event := domain.Event{Type: domain.EventWishDeleted, WishID: id, UserID: actorID, OccurredAt: u.now().UTC()}
		if err := u.publisher.Publish(ctx, event); err != nil {
			u.logger.Error().Err(err).Str("wish_id", id).Msg("Failed to publish wish deletion")
		}
	}

	return true, nil
}

// UpsertProfile saves the actor's own profile. A profile is keyed by the
// user id, so writing any other id is forbidden.
func (u *WishUsecase) UpsertProfile(ctx context.Context, actorID string, p domain.Profile) (*domain.Profile, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.FullName = strings.TrimSpace(p.FullName)

	var errs []domain.FieldError
	if p.ID == "" {
		errs = append(errs, domain.FieldError{Field: "id", Message: "is required"})
	}
	if p.FullName == "" {
		errs = append(errs, domain.FieldError{Field: "full_name", Message: "is required"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	if p.ID != actorID {
		return nil, fmt.Errorf("profile %s: %w", p.ID, domain.ErrForbidden)
	}

	p.UpdatedAt = u.now().UTC()
	if err := u.repo.UpsertProfile(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return &p, nil
}

func (u *WishUsecase) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}

	p, err := u.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}
