package kafka

import (
	"context"
	"fmt"

	"wishboard/internal/broker"
	"wishboard/internal/config"
	"wishboard/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type ProducerClient struct {
	producer *wbkafka.Producer
	retries  retry.Strategy
}

func NewProducerClient(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

// Publish keys events by wish id so one wish's events stay in one partition.
func (p *ProducerClient) Publish(ctx context.Context, event domain.Event) error {
	value, err := broker.EncodeEvent(event)
	if err != nil {
		return err
	}

	if err := p.producer.SendWithRetry(ctx, p.retries, []byte(event.WishID), value); err != nil {
		return fmt.Errorf("failed to send %s event: %w", event.Type, err)
	}
	return nil
}

func (p *ProducerClient) Close() error {
	return p.producer.Close()
}
