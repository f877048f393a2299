package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petclinic/internal/ports/directory"
	"petclinic/internal/ports/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("bill not found")
	ErrUnprocessable = errors.New("unprocessable")
)

type Service struct {
	repo Repository
	dir  directory.Resolver
	pub  events.Publisher
	now  func() time.Time
}

type Option func(*Service)

// WithDirectory resuelve nombres de owner/vet contra customers y vets.
func WithDirectory(d directory.Resolver) Option {
	return func(s *Service) { s.dir = d }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today es la fecha de referencia para interés y días restantes.
func (s *Service) Today() time.Time {
	return dateOf(s.now())
}

func (s *Service) View(b Bill) View {
	today := s.Today()
	return View{
		Bill:          b,
		Interest:      Interest(b, today),
		TimeRemaining: TimeRemaining(b, today),
	}
}

type CreateInput struct {
	CustomerID     string
	OwnerFirstName string
	OwnerLastName  string
	VetID          string
	VetFirstName   string
	VetLastName    string
	VisitType      string
	Date           *time.Time
	DueDate        *time.Time
	Amount         float64
	Status         Status
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Bill, error) {
	today := s.Today()

	b := Bill{
		CustomerID:     strings.TrimSpace(in.CustomerID),
		OwnerFirstName: strings.TrimSpace(in.OwnerFirstName),
		OwnerLastName:  strings.TrimSpace(in.OwnerLastName),
		VetID:          strings.TrimSpace(in.VetID),
		VetFirstName:   strings.TrimSpace(in.VetFirstName),
		VetLastName:    strings.TrimSpace(in.VetLastName),
		VisitType:      strings.TrimSpace(in.VisitType),
		Amount:         in.Amount,
		Status:         in.Status,
	}
	if err := validateCore(b); err != nil {
		return Bill{}, err
	}

	if b.Status == "" {
		b.Status = StatusUnpaid
	}
	if b.Status == StatusOverdue {
		return Bill{}, fmt.Errorf("%w: a bill cannot be created as OVERDUE", ErrInvalidInput)
	}

	b.Date = today
	if in.Date != nil {
		b.Date = dateOf(*in.Date)
		if b.Date.Before(today) {
			return Bill{}, fmt.Errorf("%w: bill date cannot be in the past", ErrInvalidInput)
		}
	}
	b.DueDate = b.Date.AddDate(0, 0, DefaultTermDays)
	if in.DueDate != nil {
		b.DueDate = dateOf(*in.DueDate)
		if b.DueDate.Before(b.Date) {
			return Bill{}, fmt.Errorf("%w: due date cannot be before bill date", ErrInvalidInput)
		}
	}

	if err := s.resolveNames(ctx, &b); err != nil {
		return Bill{}, err
	}

	now := s.now()
	b.ID = uuid.NewString()
	b.TaxedAmount = taxed(b.Amount)
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.repo.Create(ctx, b); err != nil {
		return Bill{}, err
	}

	// Si el publish falla el adapter lo loguea; la factura ya quedó persistida.
	_ = events.Publish(ctx, s.pub, events.BillCreated, b.ID, toEvent(b), now)
	return b, nil
}

func validateCore(b Bill) error {
	switch {
	case b.CustomerID == "":
		return fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	case b.VetID == "":
		return fmt.Errorf("%w: vetId is required", ErrInvalidInput)
	case b.VisitType == "":
		return fmt.Errorf("%w: visitType is required", ErrInvalidInput)
	case b.Amount <= 0:
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	return nil
}

// resolveNames completa nombres desde customers/vets cuando hay directorio.
func (s *Service) resolveNames(ctx context.Context, b *Bill) error {
	if s.dir == nil {
		return nil
	}

	owner, err := s.dir.Owner(ctx, b.CustomerID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return fmt.Errorf("%w: owner %s does not exist", ErrInvalidInput, b.CustomerID)
		}
		return fmt.Errorf("billing: resolve owner: %w", err)
	}
	vet, err := s.dir.Vet(ctx, b.VetID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return fmt.Errorf("%w: vet %s does not exist", ErrInvalidInput, b.VetID)
		}
		return fmt.Errorf("billing: resolve vet: %w", err)
	}

	b.OwnerFirstName, b.OwnerLastName = owner.FirstName, owner.LastName
	b.VetFirstName, b.VetLastName = vet.FirstName, vet.LastName
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Bill, error) {
	if strings.TrimSpace(id) == "" {
		return Bill{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Bill, error) {
	return s.repo.List(ctx, f)
}

const DefaultPageSize = 10

func (s *Service) Page(ctx context.Context, f Filter, page, size int) ([]Bill, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: page must be >= 0 and size > 0", ErrInvalidInput)
	}
	return s.repo.Page(ctx, f, page*size, size)
}

func (s *Service) Count(ctx context.Context, f Filter) (int, error) {
	return s.repo.Count(ctx, f)
}

func (s *Service) ListByStatus(ctx context.Context, st Status) ([]Bill, error) {
	return s.repo.List(ctx, Filter{Status: st})
}

// ListByMonth devuelve las facturas con fecha en year/month.
func (s *Service) ListByMonth(ctx context.Context, year, month int) ([]Bill, error) {
	if year < 1 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: invalid year or month", ErrInvalidInput)
	}
	all, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	out := make([]Bill, 0)
	for _, b := range all {
		if b.Date.Year() == year && int(b.Date.Month()) == month {
			out = append(out, b)
		}
	}
	return out, nil
}

type UpdateInput struct {
	CustomerID     string
	OwnerFirstName string
	OwnerLastName  string
	VetID          string
	VetFirstName   string
	VetLastName    string
	VisitType      string
	Date           *time.Time
	DueDate        *time.Time
	Amount         float64
	Status         Status
}

// Update reemplaza los campos mutables y recalcula el monto con impuestos.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Bill, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Bill{}, err
	}

	b := current
	b.CustomerID = strings.TrimSpace(in.CustomerID)
	b.OwnerFirstName = strings.TrimSpace(in.OwnerFirstName)
	b.OwnerLastName = strings.TrimSpace(in.OwnerLastName)
	b.VetID = strings.TrimSpace(in.VetID)
	b.VetFirstName = strings.TrimSpace(in.VetFirstName)
	b.VetLastName = strings.TrimSpace(in.VetLastName)
	b.VisitType = strings.TrimSpace(in.VisitType)
	b.Amount = in.Amount
	if err := validateCore(b); err != nil {
		return Bill{}, err
	}
	if in.Status != "" {
		b.Status = in.Status
	}
	if in.Date != nil {
		b.Date = dateOf(*in.Date)
	}
	if in.DueDate != nil {
		b.DueDate = dateOf(*in.DueDate)
	}
	if b.DueDate.Before(b.Date) {
		return Bill{}, fmt.Errorf("%w: due date cannot be before bill date", ErrInvalidInput)
	}

	if b.CustomerID != current.CustomerID || b.VetID != current.VetID {
		if err := s.resolveNames(ctx, &b); err != nil {
			return Bill{}, err
		}
	}

	b.TaxedAmount = taxed(b.Amount)
	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		return Bill{}, err
	}
	return b, nil
}

// Delete: no se borran facturas pendientes (UNPAID u OVERDUE).
func (s *Service) Delete(ctx context.Context, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if b.Status == StatusUnpaid || b.Status == StatusOverdue {
		return fmt.Errorf("%w: cannot delete a bill that is %s", ErrUnprocessable, b.Status)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	return s.repo.DeleteWhere(ctx, Filter{})
}

func (s *Service) DeleteByVet(ctx context.Context, vetID string) (int, error) {
	if strings.TrimSpace(vetID) == "" {
		return 0, fmt.Errorf("%w: vetId is required", ErrInvalidInput)
	}
	return s.repo.DeleteWhere(ctx, Filter{VetID: vetID})
}

func (s *Service) DeleteByCustomer(ctx context.Context, customerID string) (int, error) {
	if strings.TrimSpace(customerID) == "" {
		return 0, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}
	return s.repo.DeleteWhere(ctx, Filter{CustomerID: customerID})
}

func (s *Service) SetInterestExempt(ctx context.Context, id string, exempt bool) (Bill, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return Bill{}, err
	}
	b.InterestExempt = exempt
	b.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, b); err != nil {
		return Bill{}, err
	}
	return b, nil
}

func (s *Service) Interest(ctx context.Context, id string) (float64, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return Interest(b, s.Today()), nil
}

func (s *Service) Total(ctx context.Context, id string) (float64, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return Total(b, s.Today()), nil
}

// Archive marca como archivadas las facturas PAID anteriores al mes en curso.
func (s *Service) Archive(ctx context.Context) ([]Bill, error) {
	today := s.Today()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	paid, err := s.repo.List(ctx, Filter{Status: StatusPaid})
	if err != nil {
		return nil, err
	}

	out := make([]Bill, 0)
	for _, b := range paid {
		if b.Archive || !b.Date.Before(monthStart) {
			continue
		}
		b.Archive = true
		b.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// MarkOverdue pasa a OVERDUE las UNPAID vencidas. Lo corre el job programado.
func (s *Service) MarkOverdue(ctx context.Context) (int, error) {
	today := s.Today()

	unpaid, err := s.repo.List(ctx, Filter{Status: StatusUnpaid})
	if err != nil {
		return 0, err
	}

	n := 0
	for _, b := range unpaid {
		if b.DueDate.IsZero() || !b.DueDate.Before(today) {
			continue
		}
		b.Status = StatusOverdue
		b.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, b); err != nil {
			return n, err
		}
		n++
		_ = events.Publish(ctx, s.pub, events.BillOverdue, b.ID, toEvent(b), b.UpdatedAt)
	}
	return n, nil
}
