package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/absmach/cartridge/event"
	pkgmqtt "github.com/absmach/cartridge/pkg/mqtt"
)

// Queue accepts decoded events for sequential processing.
type Queue interface {
	Enqueue(ctx context.Context, ev event.Event) error
}

// Subscribe subscribes to every lifecycle topic and feeds decoded events
// into q. Malformed messages are logged and dropped.
func Subscribe(ctx context.Context, pubsub pkgmqtt.PubSub, q Queue, logger *slog.Logger) error {
	handler := func(topic string, payload []byte) error {
		ev, err := event.Decode(topic, payload)
		if err != nil {
			logger.Warn("dropping message",
				slog.String("topic", topic),
				slog.Any("error", err))

			return nil
		}

		if err := q.Enqueue(ctx, ev); err != nil {
			if errors.Is(err, ErrTerminated) || errors.Is(err, context.Canceled) {
				logger.Debug("agent stopped, dropping event",
					slog.String("topic", topic),
					slog.String("kind", ev.Kind.String()))

				return nil
			}

			return err
		}

		return nil
	}

	for _, topic := range event.Subscriptions() {
		if err := pubsub.Subscribe(ctx, topic, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		logger.Info("subscribed", slog.String("topic", topic))
	}

	return nil
}
