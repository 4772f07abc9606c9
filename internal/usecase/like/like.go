package like

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wishboard/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type LikeUsecase struct {
	tx        txManager
	wishes    wishRepository
	likes     likeRepository
	publisher eventPublisher
	logger    *zlog.Zerolog
	now       func() time.Time
}

func NewLikeUsecase(tx txManager, wishes wishRepository, likes likeRepository, publisher eventPublisher, logger *zlog.Zerolog) *LikeUsecase {
	return &LikeUsecase{
		tx:        tx,
		wishes:    wishes,
		likes:     likes,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// errToggleRaced marks a write that affected no rows because a concurrent
// toggle from the same user already applied the same change.
var errToggleRaced = errors.New("like toggle raced")

// Toggle flips the (user, wish) relationship and returns the new state.
//
// The decision is taken from the current relationship row and applied with a
// conditional insert or delete. If a concurrent toggle from the same user has
// already applied the same change, the write affects no rows; the transaction
// is abandoned and the committed state is read once and returned without an
// event, since the winning toggle publishes its own. A serialization failure
// or deadlock reported by the database rolls the whole attempt back, so it is
// retried once before the error is surfaced.
func (u *LikeUsecase) Toggle(ctx context.Context, userID, wishID string) (domain.ToggleResult, error) {
	if err := validateIDs(userID, wishID); err != nil {
		return domain.ToggleResult{}, err
	}

	result, err := u.toggleOnce(ctx, userID, wishID)
	if errors.Is(err, domain.ErrConflict) {
		u.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Str("wish_id", wishID).
			Msg("Like toggle aborted by the database, retrying")

		result, err = u.toggleOnce(ctx, userID, wishID)
	}

	switch {
	case err == nil:
	case errors.Is(err, errToggleRaced) || errors.Is(err, domain.ErrAlreadyExists):
		u.logger.Info().
			Str("user_id", userID).
			Str("wish_id", wishID).
			Msg("Like toggle raced with a concurrent toggle, reading committed state")

		result, err = u.state(ctx, userID, wishID)
		if err != nil {
			return domain.ToggleResult{}, fmt.Errorf("failed to read like state after race: %w", err)
		}
		return result, nil
	default:
		return domain.ToggleResult{}, fmt.Errorf("failed to toggle like: %w", err)
	}

	u.logger.Info().
		Str("user_id", userID).
		Str("wish_id", wishID).
		Bool("liked", result.Liked).
		Int("total_likes", result.TotalLikes).
		Msg("Like toggled")

	u.publish(ctx, domain.Event{
		Type:       domain.EventLikeToggled,
		WishID:     wishID,
		UserID:     userID,
		Liked:      result.Liked,
		TotalLikes: result.TotalLikes,
		OccurredAt: u.now(),
	})

	return result, nil
}

func (u *LikeUsecase) toggleOnce(ctx context.Context, userID, wishID string) (domain.ToggleResult, error) {
	var result domain.ToggleResult
	err := u.tx.RunInTx(ctx, func(ctx context.Context) error {
		liked, err := u.likes.Exists(ctx, userID, wishID)
		if err != nil {
			return err
		}

		if liked {
			removed, err := u.likes.Delete(ctx, userID, wishID)
			if err != nil {
				return err
			}
			if !removed {
				return errToggleRaced
			}
		} else {
			inserted, err := u.likes.Insert(ctx, &domain.LikeRelationship{
				ID:        uuid.New().String(),
				UserID:    userID,
				WishID:    wishID,
				CreatedAt: u.now(),
			})
			if err != nil {
				return err
			}
			if !inserted {
				return errToggleRaced
			}
		}

		total, err := u.wishes.SyncLikeCount(ctx, wishID)
		if err != nil {
			return err
		}

		result = domain.ToggleResult{Liked: !liked, TotalLikes: total}
		return nil
	})
	return result, err
}

func (u *LikeUsecase) IsLiked(ctx context.Context, userID, wishID string) (bool, error) {
	if err := validateIDs(userID, wishID); err != nil {
		return false, err
	}

	liked, err := u.likes.Exists(ctx, userID, wishID)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return liked, nil
}

// Count reads the relationship table, not the cached counter.
func (u *LikeUsecase) Count(ctx context.Context, wishID string) (int, error) {
	if wishID == "" {
		return 0, domain.NewValidationError("wish_id", "is required")
	}

	count, err := u.likes.CountByWish(ctx, wishID)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// Reconcile rewrites the cached counter of one wish from its relationships.
func (u *LikeUsecase) Reconcile(ctx context.Context, wishID string) (int, error) {
	var total int
	err := u.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		total, err = u.wishes.SyncLikeCount(ctx, wishID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile wish %s: %w", wishID, err)
	}
	return total, nil
}

// ReconcileAll repairs every drifted counter and returns how many were fixed.
// Wishes deleted while it runs are skipped.
func (u *LikeUsecase) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := u.wishes.ListDrifted(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list drifted wishes: %w", err)
	}

	fixed := 0
	for _, id := range ids {
		total, err := u.Reconcile(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fixed, err
		}

		fixed++
		u.logger.Warn().Str("wish_id", id).Int("total_likes", total).Msg("Like counter reconciled")
	}

	return fixed, nil
}

func (u *LikeUsecase) state(ctx context.Context, userID, wishID string) (domain.ToggleResult, error) {
	liked, err := u.likes.Exists(ctx, userID, wishID)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	total, err := u.likes.CountByWish(ctx, wishID)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	return domain.ToggleResult{Liked: liked, TotalLikes: total}, nil
}

func (u *LikeUsecase) publish(ctx context.Context, event domain.Event) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, event); err != nil {
		u.logger.Error().
			Err(err).
			Str("event", string(event.Type)).
			Str("wish_id", event.WishID).
			Msg("Failed to publish event")
	}
}

func validateIDs(userID, wishID string) error {
	var errs []domain.FieldError
	if userID == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "is required"})
	}
	if wishID == "" {
		errs = append(errs, domain.FieldError{Field: "wish_id", Message: "is required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
