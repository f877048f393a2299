package inproc

import (
	"context"
	"errors"
	"sync"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/ports/events"
)

// Bus entrega eventos en el mismo proceso, de forma sincrónica.
// Se usa cuando no hay KAFKA_BROKERS (dev, modo "all" y tests).
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]events.Handler
	log  logger.Logger
}

func NewBus(log logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{
		subs: make(map[string][]events.Handler),
		log:  log,
	}
}

func (b *Bus) Subscribe(topic string, h events.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

func (b *Bus) Publish(ctx context.Context, topic string, env events.Envelope) error {
	b.mu.RLock()
	handlers := append([]events.Handler(nil), b.subs[topic]...)
	b.mu.RUnlock()

	metrics.EventsPublished.WithLabelValues(topic, env.Type).Inc()

	if len(handlers) == 0 {
		b.log.Debug("event without subscribers", map[string]any{"topic": topic, "type": env.Type, "key": env.Key})
		return nil
	}

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
