package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"wishboard/internal/domain"
	"wishboard/internal/usecase/processor"

	"github.com/wb-go/wbf/zlog"
)

type UploadUsecase struct {
	engine  rasterEngine
	gateway gateway
	maxSize int64
	logger  *zlog.Zerolog
}

func NewUploadUsecase(engine rasterEngine, gateway gateway, maxSize int64, logger *zlog.Zerolog) *UploadUsecase {
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxUploadSize
	}
	return &UploadUsecase{
		engine:  engine,
		gateway: gateway,
		maxSize: maxSize,
		logger:  logger,
	}
}

// Upload stores src and returns its public reference. With a crop the raster
// engine renders the selection first; without one the source must be a
// supported image and is stored unchanged.
func (u *UploadUsecase) Upload(ctx context.Context, src []byte, filename string, spec *domain.CropSpec) (string, error) {
	if len(src) == 0 {
		return "", domain.NewValidationError("file", "is required")
	}
	if int64(len(src)) > u.maxSize {
		return "", domain.NewValidationError("file", fmt.Sprintf("must be at most %d bytes", u.maxSize))
	}

	var (
		asset *domain.Asset
		err   error
	)
	if spec != nil {
		asset, err = u.engine.Transform(ctx, src, *spec)
	} else {
		asset, err = u.original(src, filename)
	}
	if err != nil {
		u.logger.Warn().Err(err).Str("filename", filename).Msg("Upload rejected")
		return "", err
	}

	ref, err := u.gateway.Save(ctx, asset)
	if err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("Failed to store asset")
		return "", fmt.Errorf("failed to store asset: %w", err)
	}

	u.logger.Info().
		Str("filename", filename).
		Str("media_type", asset.MediaType).
		Int64("size", asset.Size()).
		Bool("cropped", spec != nil).
		Str("ref", ref).
		Msg("Asset uploaded")

	return ref, nil
}

func (u *UploadUsecase) original(src []byte, filename string) (*domain.Asset, error) {
	_, format, err := u.engine.Inspect(src)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload"
	}

	return &domain.Asset{
		Name:      name,
		MediaType: processor.MediaType(format),
		Data:      src,
	}, nil
}
