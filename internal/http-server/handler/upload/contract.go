package upload

import (
	"context"

	"wishboard/internal/domain"
)

type uploadUsecase interface {
	Upload(ctx context.Context, src []byte, filename string, spec *domain.CropSpec) (string, error)
}
