package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wishboard/internal/config"
	"wishboard/internal/domain"
	"wishboard/internal/repository/upload"

	"github.com/wb-go/wbf/zlog"
)

// Gateway writes assets below a local directory that is served statically.
type Gateway struct {
	dir       string
	publicURL string
	logger    *zlog.Zerolog
	now       func() time.Time
}

func NewGateway(cfg config.FSConfig, logger *zlog.Zerolog) (*Gateway, error) {
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &Gateway{
		dir:       dir,
		publicURL: cfg.PublicURL,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (g *Gateway) Dir() string {
	return g.dir
}

func (g *Gateway) Save(ctx context.Context, asset *domain.Asset) (string, error) {
	if asset == nil || asset.Size() == 0 {
		return "", upload.ErrEmptyAsset
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := upload.ObjectKey(g.now(), asset)
	target := filepath.Join(g.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrStorageError, err)
	}

	// Written to a temp file first so a partially written asset is never served.
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrStorageError, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(asset.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %v", upload.ErrStorageError, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrStorageError, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrStorageError, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrStorageError, err)
	}

	g.logger.Info().Str("key", key).Int64("size", asset.Size()).Msg("Asset stored on disk")
	return upload.PublicURL(g.publicURL, key), nil
}
