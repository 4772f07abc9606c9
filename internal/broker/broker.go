package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wishboard/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
)

var ErrUnknownEvent = errors.New("unknown event type")

type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}

type Consumer interface {
	Commit(ctx context.Context, msg kafka.Message) error
	StartConsuming(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy)
	Close() error
}

// NoopPublisher drops events. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

func EncodeEvent(event domain.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

func DecodeEvent(data []byte) (domain.Event, error) {
	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	switch event.Type {
	case domain.EventLikeToggled, domain.EventWishDeleted:
	default:
		return domain.Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
	if event.WishID == "" {
		return domain.Event{}, fmt.Errorf("event %s without wish id", event.Type)
	}

	return event, nil
}
