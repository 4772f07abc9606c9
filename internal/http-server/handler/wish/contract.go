package wish

import (
	"context"

	"wishboard/internal/domain"
)

type wishUsecase interface {
	Create(ctx context.Context, ownerID string, in domain.CreateWishInput) (*domain.Wish, error)
	Get(ctx context.Context, id, viewerID string) (*domain.Wish, error)
	List(ctx context.Context, filter domain.WishFilter) ([]domain.Wish, error)
	ListByOwner(ctx context.Context, ownerID, viewerID string) ([]domain.Wish, error)
	Update(ctx context.Context, actorID, id string, in domain.UpdateWishInput) (*domain.Wish, error)
	Delete(ctx context.Context, actorID, id string) (bool, error)
	UpsertProfile(ctx context.Context, actorID string, p domain.Profile) (*domain.Profile, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}
