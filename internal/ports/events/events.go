package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Topics
const (
	TopicBilling  = "billing"
	TopicCarts    = "carts"
	TopicProducts = "products"
)

// Tipos de evento de dominio.
const (
	BillCreated         = "bill.created"
	BillOverdue         = "bill.overdue"
	BillPaid            = "bill.paid"
	CartCheckout        = "cart.checkout"
	ProductRestocked    = "product.restocked"
	ProductPriceDropped = "product.price_dropped"
)

// Envelope es lo que viaja por el bus (JSON).
type Envelope struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope serializa payload y arma el sobre.
func NewEnvelope(eventType, key string, payload any, at time.Time) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s: %w", eventType, err)
	}
	return Envelope{
		Type:       eventType,
		Key:        key,
		OccurredAt: at.UTC(),
		Payload:    b,
	}, nil
}

// TopicOf deriva el topic del prefijo del tipo ("bill.created" => billing).
func TopicOf(eventType string) string {
	switch strings.SplitN(eventType, ".", 2)[0] {
	case "bill":
		return TopicBilling
	case "cart":
		return TopicCarts
	case "product":
		return TopicProducts
	default:
		return ""
	}
}

// AllTopics son los topics que escucha notifications.
func AllTopics() []string {
	return []string{TopicBilling, TopicCarts, TopicProducts}
}

type Publisher interface {
	Publish(ctx context.Context, topic string, env Envelope) error
}

type Handler func(ctx context.Context, env Envelope) error

// Publish es un helper: arma el envelope y publica en el topic que corresponde.
// Con p == nil no hace nada.
func Publish(ctx context.Context, p Publisher, eventType, key string, payload any, at time.Time) error {
	if p == nil {
		return nil
	}
	env, err := NewEnvelope(eventType, key, payload, at)
	if err != nil {
		return err
	}
	return p.Publish(ctx, TopicOf(eventType), env)
}
