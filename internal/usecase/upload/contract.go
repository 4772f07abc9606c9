package upload

import (
	"context"
	"image"

	"wishboard/internal/domain"
)

type rasterEngine interface {
	Transform(ctx context.Context, src []byte, spec domain.CropSpec) (*domain.Asset, error)
	Inspect(src []byte) (image.Config, string, error)
}

type gateway interface {
	Save(ctx context.Context, asset *domain.Asset) (string, error)
}
