package worker

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"wishboard/internal/app"
	kafka_impl "wishboard/internal/broker/kafka"
	"wishboard/internal/config"
	like_uc "wishboard/internal/usecase/like"
	worker_impl "wishboard/internal/worker"

	"github.com/wb-go/wbf/zlog"
)

// Worker runs the like counter reconciler against the event stream.
type Worker struct {
	cfg      *config.Config
	logger   *zlog.Zerolog
	store    *app.Store
	consumer *kafka_impl.ConsumerClient
	worker   *worker_impl.Worker
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
	app.SetLogLevel(cfg.Log.Level, logger)

	if cfg.Store.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("worker needs the %s store, got %q", config.DriverPostgres, cfg.Store.Driver)
	}
	if !cfg.Kafka.Enabled {
		return nil, fmt.Errorf("worker needs kafka.enabled=true")
	}

	store, err := app.OpenStore(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	likeUsecase := like_uc.NewLikeUsecase(store.Tx, store.Wishes, store.Likes, nil, logger)
	consumer := kafka_impl.NewConsumerClient(cfg)

	return &Worker{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		consumer: consumer,
		worker:   worker_impl.NewWorker(consumer, likeUsecase, cfg.Worker.Concurrency, cfg.DefaultRetryStrategy(), logger),
	}, nil
}

func (w *Worker) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer w.close()

	if w.cfg.Worker.ReconcileOnStart {
		if err := w.worker.ReconcileAll(ctx); err != nil {
			return err
		}
	}

	return w.worker.Run(ctx)
}

func (w *Worker) close() {
	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close consumer")
	}
	if err := w.store.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close store")
	}
}
