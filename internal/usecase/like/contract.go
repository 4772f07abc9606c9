package like

import (
	"context"

	"wishboard/internal/domain"
)

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type wishRepository interface {
	SyncLikeCount(ctx context.Context, id string) (int, error)
	ListDrifted(ctx context.Context) ([]string, error)
}

type likeRepository interface {
	Insert(ctx context.Context, like *domain.LikeRelationship) (bool, error)
	Delete(ctx context.Context, userID, wishID string) (bool, error)
	Exists(ctx context.Context, userID, wishID string) (bool, error)
	CountByWish(ctx context.Context, wishID string) (int, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
