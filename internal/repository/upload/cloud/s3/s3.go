package s3

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"wishboard/internal/config"
	"wishboard/internal/domain"
	"wishboard/internal/repository/upload"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type Gateway struct {
	client    *s3.Client
	bucket    string
	publicURL string
	retries   retry.Strategy
	logger    *zlog.Zerolog
	now       func() time.Time
}

func NewGateway(ctx context.Context, cfg config.S3Config, retries retry.Strategy, logger *zlog.Zerolog) (*Gateway, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// A custom endpoint means an S3-compatible store, which needs path-style addressing.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Gateway{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
		retries:   retries,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (g *Gateway) EnsureBucket(ctx context.Context) error {
	_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(g.bucket),
	})
	if err == nil {
		return nil
	}

	if _, err := g.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(g.bucket),
	}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", g.bucket, err)
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
		_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(g.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(asset.Data),
			ContentType:   aws.String(asset.MediaType),
			ContentLength: aws.Int64(asset.Size()),
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

func publicBase(cfg config.S3Config) string {
	switch {
	case cfg.PublicURL != "":
		return cfg.PublicURL
	case cfg.Endpoint != "":
		return upload.PublicURL(cfg.Endpoint, cfg.Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}
