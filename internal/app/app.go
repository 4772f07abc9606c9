package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"wishboard/internal/broker"
	kafka_impl "wishboard/internal/broker/kafka"
	"wishboard/internal/config"
	"wishboard/internal/domain"
	like_h "wishboard/internal/http-server/handler/like"
	upload_h "wishboard/internal/http-server/handler/upload"
	wish_h "wishboard/internal/http-server/handler/wish"
	"wishboard/internal/http-server/router"
	minio_repo "wishboard/internal/repository/upload/cloud/minio"
	s3_repo "wishboard/internal/repository/upload/cloud/s3"
	fs_repo "wishboard/internal/repository/upload/fs"
	like_uc "wishboard/internal/usecase/like"
	"wishboard/internal/usecase/processor"
	upload_uc "wishboard/internal/usecase/upload"
	wish_uc "wishboard/internal/usecase/wish"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
)

type assetGateway interface {
	Save(ctx context.Context, asset *domain.Asset) (string, error)
}

type App struct {
	cfg       *config.Config
	server    *http.Server
	logger    *zlog.Zerolog
	store     *Store
	publisher broker.Publisher
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	SetLogLevel(cfg.Log.Level, logger)

	ctx := context.Background()

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	background, err := cfg.Raster.BackgroundColor()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("invalid raster background: %w", err)
	}

	engine, err := processor.NewImageProcessor(processor.Options{
		Quality:    cfg.Raster.Quality,
		MaxPixels:  cfg.Raster.MaxPixels,
		MinZoom:    cfg.Raster.MinZoom,
		MaxZoom:    cfg.Raster.MaxZoom,
		Background: background,
	}, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create image processor: %w", err)
	}

	gateway, static, err := newGateway(ctx, cfg, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create upload gateway: %w", err)
	}

	var publisher broker.Publisher = broker.NoopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = kafka_impl.NewProducerClient(cfg)
	}

	wishUsecase := wish_uc.NewWishUsecase(store.Tx, store.Wishes, publisher, logger)
	likeUsecase := like_uc.NewLikeUsecase(store.Tx, store.Wishes, store.Likes, publisher, logger)
	uploadUsecase := upload_uc.NewUploadUsecase(engine, gateway, cfg.Storage.MaxUploadSize, logger)

	h := &router.Handler{
		WishHandler:   wish_h.NewWishHandler(wishUsecase, logger),
		LikeHandler:   like_h.NewLikeHandler(likeUsecase, logger),
		UploadHandler: upload_h.NewUploadHandler(uploadUsecase, cfg.Storage.MaxUploadSize, logger),
	}

	mux := router.SetupRouter(h, static)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:       cfg,
		server:    server,
		logger:    logger,
		store:     store,
		publisher: publisher,
	}, nil
}

func newGateway(ctx context.Context, cfg *config.Config, logger *zlog.Zerolog) (assetGateway, router.Static, error) {
	retries := cfg.DefaultRetryStrategy()

	switch cfg.Storage.Backend {
	case config.BackendMinio:
		gw, err := minio_repo.NewGateway(cfg.Storage.Minio, retries, logger)
		if err != nil {
			return nil, router.Static{}, err
		}
		if err := gw.EnsureBucket(ctx); err != nil {
			return nil, router.Static{}, err
		}
		return gw, router.Static{}, nil

	case config.BackendS3:
		gw, err := s3_repo.NewGateway(ctx, cfg.Storage.S3, retries, logger)
		if err != nil {
			return nil, router.Static{}, err
		}
		if err := gw.EnsureBucket(ctx); err != nil {
			return nil, router.Static{}, err
		}
		return gw, router.Static{}, nil

	default:
		gw, err := fs_repo.NewGateway(cfg.Storage.FS, logger)
		if err != nil {
			return nil, router.Static{}, err
		}
		return gw, router.Static{Prefix: staticPrefix(cfg.Storage.FS.PublicURL), Dir: gw.Dir()}, nil
	}
}

// staticPrefix keeps only the path of an absolute public URL.
func staticPrefix(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Path == "" {
		return "/uploads"
	}
	return u.Path
}

// SetLogLevel applies the configured level globally. Unknown levels keep info.
func SetLogLevel(level string, logger *zlog.Zerolog) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logger.Warn().Str("level", level).Msg("Unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Str("store", a.cfg.Store.Driver).Str("storage", a.cfg.Storage.Backend).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		a.close()

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close event publisher")
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close store")
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
