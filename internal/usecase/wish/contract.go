package wish

import (
	"context"
	"time"

	"wishboard/internal/domain"
)

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type wishRepository interface {
	Create(ctx context.Context, w *domain.Wish) error
	GetByID(ctx context.Context, id, viewerID string) (*domain.Wish, error)
	List(ctx context.Context, filter domain.WishFilter) ([]domain.Wish, error)
	Lock(ctx context.Context, id string) (string, error)
	Update(ctx context.Context, id string, in domain.UpdateWishInput, updatedAt time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
	UpsertProfile(ctx context.Context, p *domain.Profile) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
