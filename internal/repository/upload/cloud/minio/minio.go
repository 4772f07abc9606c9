package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"wishboard/internal/config"
	"wishboard/internal/domain"
	"wishboard/internal/repository/upload"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type Gateway struct {
	client    *minio.Client
	bucket    string
	region    string
	publicURL string
	retries   retry.Strategy
	logger    *zlog.Zerolog
	now       func() time.Time
}

func NewGateway(cfg config.MinioConfig, retries retry.Strategy, logger *zlog.Zerolog) (*Gateway, error) {
	endpoint, useSSL, err := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &Gateway{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: publicBase(cfg.PublicURL, endpoint, useSSL, cfg.Bucket),
		retries:   retries,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (g *Gateway) EnsureBucket(ctx context.Context) error {
	exists, err := g.client.BucketExists(ctx, g.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", g.bucket, err)
	}
	if exists {
		return nil
	}

	if err := g.client.MakeBucket(ctx, g.bucket, minio.MakeBucketOptions{Region: g.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", g.bucket, err)
	}

	g.logger.Info().Str("bucket", g.bucket).Msg("Bucket created")
	return nil
}

func (g *Gateway) Save(ctx context.Context, asset *domain.Asset) (string, error) {
	if asset == nil || asset.Size() == 0 {
		return "", upload.ErrEmptyAsset
	}

	key := upload.ObjectKey(g.now(), asset)

	err := retry.Do(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := g.client.PutObject(ctx, g.bucket, key, bytes.NewReader(asset.Data), asset.Size(), minio.PutObjectOptions{
			ContentType: asset.MediaType,
		})
		return err
	}, g.retries)
	if err != nil {
		g.logger.Error().Err(err).Str("bucket", g.bucket).Str("key", key).Msg("Failed to put object")
		return "", fmt.Errorf("%w: %v", upload.ErrStorageError, err)
	}

	g.logger.Info().Str("bucket", g.bucket).Str("key", key).Int64("size", asset.Size()).Msg("Asset stored in bucket")
	return upload.PublicURL(g.publicURL, key), nil
}

// splitEndpoint accepts host:port or a full URL; a URL scheme decides TLS.
func splitEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if !strings.HasPrefix(endpoint, "http") {
		return endpoint, useSSL, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint: %w", err)
	}
	return u.Host, u.Scheme == "https", nil
}

func publicBase(configured, endpoint string, useSSL bool, bucket string) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
}
