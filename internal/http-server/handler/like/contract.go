package like

import (
	"context"

	"wishboard/internal/domain"
)

type likeUsecase interface {
	Toggle(ctx context.Context, userID, wishID string) (domain.ToggleResult, error)
	IsLiked(ctx context.Context, userID, wishID string) (bool, error)
	Count(ctx context.Context, wishID string) (int, error)
}
