package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/ports/events"

	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// Publisher publica envelopes en Kafka. El topic va por mensaje,
// así un solo Writer sirve para billing, carts y products.
type Publisher struct {
	w   *kafkago.Writer
	log logger.Logger
}

func NewPublisher(brokers []string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		w: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		log: log,
	}
}

func (p *Publisher) Publish(ctx context.Context, topic string, env events.Envelope) error {
	msg, err := toMessage(topic, env)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.log.Error("kafka publish failed", map[string]any{"topic": topic, "type": env.Type, "err": err})
		return fmt.Errorf("kafka: publish %s: %w", env.Type, err)
	}
	metrics.EventsPublished.WithLabelValues(topic, env.Type).Inc()
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

// toMessage: key "<type>.<id>" para que las particiones agrupen por entidad.
func toMessage(topic string, env events.Envelope) (kafkago.Message, error) {
	if strings.TrimSpace(topic) == "" {
		return kafkago.Message{}, fmt.Errorf("kafka: no topic for event %q", env.Type)
	}
	b, err := json.Marshal(env)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("kafka: marshal envelope: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(env.Type + "." + env.Key),
		Value: b,
	}, nil
}

func fromMessage(msg kafkago.Message) (events.Envelope, error) {
	var env events.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return events.Envelope{}, fmt.Errorf("kafka: unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return events.Envelope{}, errors.New("kafka: envelope without type")
	}
	return env, nil
}

// Consumer lee uno o más topics en un consumer group.
type Consumer struct {
	brokers []string
	groupID string
	log     logger.Logger
}

func NewConsumer(brokers []string, groupID string, log logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{brokers: brokers, groupID: groupID, log: log}
}

// Run bloquea hasta que ctx se cancela. Un reader por topic.
// Los mensajes que no se pueden decodificar o procesar se loguean y se saltean.
func (c *Consumer) Run(ctx context.Context, topics []string, h events.Handler) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, topic := range topics {
		topic := topic
		g.Go(func() error {
			r := kafkago.NewReader(kafkago.ReaderConfig{
				Brokers:  c.brokers,
				Topic:    topic,
				GroupID:  c.groupID,
				MinBytes: 10e3,
				MaxBytes: 10e6,
			})
			defer r.Close()

			for {
				msg, err := r.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					c.log.Error("kafka read failed", map[string]any{"topic": topic, "err": err})
					continue
				}

				env, err := fromMessage(msg)
				if err != nil {
					c.log.Warn("kafka message skipped", map[string]any{"topic": topic, "key": string(msg.Key), "err": err})
					continue
				}
				if err := h(ctx, env); err != nil {
					c.log.Error("event handler failed", map[string]any{"topic": topic, "type": env.Type, "err": err})
				}
			}
		})
	}

	return g.Wait()
}
