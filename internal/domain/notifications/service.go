package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/ports/events"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

type Input struct {
	Recipient string
	Subject   string
	Body      string
}

// Send registra una notificación directa (tipo email). No hay envío real.
func (s *Service) Send(ctx context.Context, in Input) (Notification, error) {
	in.Recipient = strings.TrimSpace(in.Recipient)
	in.Subject = strings.TrimSpace(in.Subject)
	switch {
	case in.Recipient == "":
		return Notification{}, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	case in.Subject == "":
		return Notification{}, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	return s.record(ctx, Notification{
		Type:      TypeEmail,
		Recipient: in.Recipient,
		Subject:   in.Subject,
		Body:      strings.TrimSpace(in.Body),
		Status:    StatusSent,
	})
}

func (s *Service) record(ctx context.Context, n Notification) (Notification, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = s.now()
	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id string) (Notification, error) {
	if strings.TrimSpace(id) == "" {
		return Notification{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Notification, error) {
	return s.repo.List(ctx, f)
}

// MarkRead es idempotente: si ya estaba leída no cambia readAt.
func (s *Service) MarkRead(ctx context.Context, id string) (Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.Status == StatusRead {
		return n, nil
	}
	now := s.now()
	n.Status = StatusRead
	n.ReadAt = &now
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// -------------------------
// Consumo de eventos de dominio
// -------------------------

// HandleEvent convierte un evento en notificación. Tipos desconocidos se loguean y se saltean.
func (s *Service) HandleEvent(ctx context.Context, env events.Envelope) error {
	n, ok := fromEvent(env)
	if !ok {
		s.log.Warn("unknown event type skipped", map[string]any{"type": env.Type, "key": env.Key})
		metrics.EventsConsumed.WithLabelValues(env.Type, "skipped").Inc()
		return nil
	}
	if n.Recipient == "" {
		s.log.Warn("event without recipient skipped", map[string]any{"type": env.Type, "key": env.Key})
		metrics.EventsConsumed.WithLabelValues(env.Type, "skipped").Inc()
		return nil
	}

	if _, err := s.record(ctx, n); err != nil {
		metrics.EventsConsumed.WithLabelValues(env.Type, "error").Inc()
		return fmt.Errorf("notifications: record %s: %w", env.Type, err)
	}
	metrics.EventsConsumed.WithLabelValues(env.Type, "ok").Inc()
	return nil
}

// fromEvent arma la notificación leyendo el payload con gjson.
func fromEvent(env events.Envelope) (Notification, bool) {
	p := gjson.ParseBytes(env.Payload)
	n := Notification{Type: env.Type, Status: StatusPending}

	switch env.Type {
	case events.BillCreated:
		n.Recipient = p.Get("customerId").String()
		n.Reference = p.Get("billId").String()
		n.Subject = "New bill"
		n.Body = fmt.Sprintf("A bill of %.2f was issued. Due date: %s.", p.Get("amount").Float(), p.Get("dueDate").String())
	case events.BillOverdue:
		n.Recipient = p.Get("customerId").String()
		n.Reference = p.Get("billId").String()
		n.Subject = "Bill overdue"
		n.Body = fmt.Sprintf("Your bill of %.2f due on %s is overdue.", p.Get("amount").Float(), p.Get("dueDate").String())
	case events.BillPaid:
		n.Recipient = p.Get("customerId").String()
		n.Reference = p.Get("billId").String()
		n.Subject = "Payment received"
		n.Body = fmt.Sprintf("Your payment of %.2f was received. Thank you!", p.Get("amount").Float())
	case events.CartCheckout:
		n.Recipient = p.Get("customerId").String()
		n.Reference = p.Get("invoiceId").String()
		n.Subject = "Order confirmed"
		n.Body = fmt.Sprintf("Invoice %s: %d items, total %.2f.", n.Reference, p.Get("items").Int(), p.Get("total").Float())
	case events.ProductRestocked:
		n.Recipient = recipientOf(p)
		n.Reference = p.Get("productId").String()
		name := p.Get("productName").String()
		n.Subject = name + " is back in stock"
		n.Body = fmt.Sprintf("%s now has %d units available.", name, p.Get("newValue").Int())
	case events.ProductPriceDropped:
		n.Recipient = recipientOf(p)
		n.Reference = p.Get("productId").String()
		name := p.Get("productName").String()
		n.Subject = "Price drop on " + name
		n.Body = fmt.Sprintf("%s dropped from %.2f to %.2f.", name, p.Get("oldValue").Float(), p.Get("newValue").Float())
	default:
		return Notification{}, false
	}

	n.Recipient = strings.TrimSpace(n.Recipient)
	return n, true
}

// recipientOf prefiere el email del suscriptor y cae al customerId.
func recipientOf(p gjson.Result) string {
	if e := strings.TrimSpace(p.Get("email").String()); e != "" {
		return e
	}
	return p.Get("customerId").String()
}
