package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wishboard/internal/broker"
	"wishboard/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

var (
	ErrOrphanedLikes   = errors.New("likes left behind by a deleted wish")
	ErrConsumerStopped = errors.New("consumer stopped delivering messages")
)

type reconciler interface {
	Reconcile(ctx context.Context, wishID string) (int, error)
	ReconcileAll(ctx context.Context) (int, error)
	Count(ctx context.Context, wishID string) (int, error)
}

// Worker consumes wish events and keeps cached like counters in line with
// the relationship table.
type Worker struct {
	consumer    broker.Consumer
	reconciler  reconciler
	logger      *zlog.Zerolog
	retries     retry.Strategy
	concurrency int
	wg          sync.WaitGroup
}

func NewWorker(consumer broker.Consumer, reconciler reconciler, concurrency int, retries retry.Strategy, logger *zlog.Zerolog) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		consumer:    consumer,
		reconciler:  reconciler,
		logger:      logger,
		retries:     retries,
		concurrency: concurrency,
	}
}

// ReconcileAll repairs every drifted counter once.
func (w *Worker) ReconcileAll(ctx context.Context) error {
	started := time.Now()
	fixed, err := w.reconciler.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("initial reconciliation failed: %w", err)
	}
	w.logger.Info().Int("fixed", fixed).Dur("duration", time.Since(started)).Msg("Initial reconciliation finished")
	return nil
}

// Run blocks until ctx is cancelled or the consumer closes its channel, and
// every goroutine has returned. A closed channel is reported as
// ErrConsumerStopped so the process can exit and be restarted.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("Starting worker")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages := make(chan kafka.Message, w.concurrency*2)
	go w.consumer.StartConsuming(runCtx, messages, w.retries)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processWorker(runCtx, id, messages)
		}(i)
	}

	stopped := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		w.logger.Info().Msg("Shutting down worker gracefully...")
		<-stopped
		w.logger.Info().Msg("Worker stopped gracefully")
		return nil
	case <-stopped:
		if ctx.Err() != nil {
			return nil
		}
		w.logger.Error().Msg("Message channel closed, worker stopping")
		return ErrConsumerStopped
	}
}

func (w *Worker) processWorker(ctx context.Context, id int, messages <-chan kafka.Message) {
	w.logger.Info().Int("worker_id", id).Msg("Worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int("worker_id", id).Msg("Worker stopping")
			return
		case msg, ok := <-messages:
			if !ok {
				w.logger.Debug().Int("worker_id", id).Msg("Message channel closed")
				return
			}
			w.handle(ctx, id, msg)
		}
	}
}

// handle commits a message only after it was processed. Undecodable messages
// are committed too, so one bad payload cannot stall the partition.
func (w *Worker) handle(ctx context.Context, id int, msg kafka.Message) {
	startTime := time.Now()

	err := w.safeProcessMessage(ctx, id, msg)
	if err != nil && !errors.Is(err, errSkip) {
		w.logger.Error().
			Err(err).
			Int("worker_id", id).
			Int64("offset", msg.Offset).
			Msg("Failed to process message")
		return
	}

	if err := w.consumer.Commit(ctx, msg); err != nil {
		w.logger.Error().
			Err(err).
			Int("worker_id", id).
			Int64("offset", msg.Offset).
			Msg("Failed to commit message after successful processing")
		return
	}

	w.logger.Debug().
		Int("worker_id", id).
		Int64("offset", msg.Offset).
		Dur("duration", time.Since(startTime)).
		Msg("Message processed and committed successfully")
}

var errSkip = errors.New("message skipped")

func (w *Worker) safeProcessMessage(ctx context.Context, workerID int, msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker_id", workerID).
				Interface("panic", r).
				Int64("offset", msg.Offset).
				Msg("Panic recovered while processing message")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.processMessage(ctx, msg)
}

func (w *Worker) processMessage(ctx context.Context, msg kafka.Message) error {
	event, err := broker.DecodeEvent(msg.Value)
	if err != nil {
		w.logger.Warn().Err(err).Str("message", string(msg.Value)).Int64("offset", msg.Offset).Msg("Skipping undecodable event")
		return errSkip
	}

	switch event.Type {
	case domain.EventLikeToggled:
		total, err := w.reconciler.Reconcile(ctx, event.WishID)
		if errors.Is(err, domain.ErrNotFound) {
			w.logger.Debug().Str("wish_id", event.WishID).Msg("Wish already deleted, nothing to reconcile")
			return nil
		}
		if err != nil {
			return err
		}
		if total != event.TotalLikes {
			w.logger.Info().
				Str("wish_id", event.WishID).
				Int("event_total", event.TotalLikes).
				Int("total_likes", total).
				Msg("Counter moved since event")
		}
		return nil

	case domain.EventWishDeleted:
		left, err := w.reconciler.Count(ctx, event.WishID)
		if err != nil {
			return err
		}
		if left > 0 {
			w.logger.Error().Str("wish_id", event.WishID).Int("likes", left).Msg("Deleted wish still has likes")
			return fmt.Errorf("wish %s: %w (%d)", event.WishID, ErrOrphanedLikes, left)
		}
		return nil
	}

	return errSkip
}
