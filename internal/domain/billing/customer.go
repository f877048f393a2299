package billing

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"petclinic/internal/platform/money"
	"petclinic/internal/ports/events"
)

// Operaciones vistas desde el cliente (owner) sobre sus propias facturas.

func (s *Service) CustomerBills(ctx context.Context, customerID string, st Status) ([]Bill, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}
	return s.repo.List(ctx, Filter{CustomerID: customerID, Status: st})
}

// CurrentBalance suma amount + interés de lo pendiente (UNPAID y OVERDUE).
func (s *Service) CurrentBalance(ctx context.Context, customerID string) (float64, error) {
	bills, err := s.CustomerBills(ctx, customerID, "")
	if err != nil {
		return 0, err
	}
	today := s.Today()
	total := 0.0
	for _, b := range bills {
		if b.Status == StatusUnpaid || b.Status == StatusOverdue {
			total += Total(b, today)
		}
	}
	return money.Round2(total), nil
}

type PaymentInput struct {
	CardNumber     string
	CVV            string
	ExpirationDate string // MM/YY
}

var (
	cardRe   = regexp.MustCompile(`^\d{16}$`)
	cvvRe    = regexp.MustCompile(`^\d{3}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
)

// validatePayment: tarjeta de 16 dígitos, cvv de 3, vencimiento MM/YY no vencido.
func validatePayment(in PaymentInput, today time.Time) error {
	card := strings.ReplaceAll(strings.TrimSpace(in.CardNumber), " ", "")
	if !cardRe.MatchString(card) {
		return fmt.Errorf("%w: invalid payment details: card number must have 16 digits", ErrInvalidInput)
	}
	if !cvvRe.MatchString(strings.TrimSpace(in.CVV)) {
		return fmt.Errorf("%w: invalid payment details: cvv must have 3 digits", ErrInvalidInput)
	}
	m := expiryRe.FindStringSubmatch(strings.TrimSpace(in.ExpirationDate))
	if m == nil {
		return fmt.Errorf("%w: invalid payment details: expiration date must be MM/YY", ErrInvalidInput)
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	// La tarjeta vale hasta el último día del mes de vencimiento.
	firstOfNext := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !today.Before(firstOfNext) {
		return fmt.Errorf("%w: invalid payment details: card is expired", ErrInvalidInput)
	}
	return nil
}

// Pay registra el pago de una factura del cliente.
func (s *Service) Pay(ctx context.Context, customerID, billID string, in PaymentInput) (Bill, error) {
	if err := validatePayment(in, s.Today()); err != nil {
		return Bill{}, err
	}

	b, err := s.Get(ctx, billID)
	if err != nil {
		return Bill{}, err
	}
	if b.CustomerID != customerID {
		return Bill{}, ErrNotFound
	}
	if b.Status == StatusPaid {
		return Bill{}, fmt.Errorf("%w: bill is already paid", ErrInvalidInput)
	}

	b.Status = StatusPaid
	b.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, b); err != nil {
		return Bill{}, err
	}

	_ = events.Publish(ctx, s.pub, events.BillPaid, b.ID, toEvent(b), b.UpdatedAt)
	return b, nil
}

func (s *Service) FilterByAmount(ctx context.Context, customerID string, min, max float64) ([]Bill, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("%w: invalid amount range", ErrInvalidInput)
	}
	return s.filterCustomer(ctx, customerID, func(b Bill) bool {
		return b.Amount >= min && b.Amount <= max
	})
}

func (s *Service) FilterByDueDate(ctx context.Context, customerID string, start, end time.Time) ([]Bill, error) {
	start, end = dateOf(start), dateOf(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: invalid date range", ErrInvalidInput)
	}
	return s.filterCustomer(ctx, customerID, func(b Bill) bool {
		return !b.DueDate.Before(start) && !b.DueDate.After(end)
	})
}

func (s *Service) FilterByDate(ctx context.Context, customerID string, start, end time.Time) ([]Bill, error) {
	start, end = dateOf(start), dateOf(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: invalid date range", ErrInvalidInput)
	}
	return s.filterCustomer(ctx, customerID, func(b Bill) bool {
		return !b.Date.Before(start) && !b.Date.After(end)
	})
}

func (s *Service) filterCustomer(ctx context.Context, customerID string, keep func(Bill) bool) ([]Bill, error) {
	bills, err := s.CustomerBills(ctx, customerID, "")
	if err != nil {
		return nil, err
	}
	out := make([]Bill, 0, len(bills))
	for _, b := range bills {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}
