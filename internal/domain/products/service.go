package products

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"petclinic/internal/platform/logger"
	"petclinic/internal/ports/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable")
)

type Service struct {
	repo    Repository
	bundles BundleRepository
	ratings RatingRepository
	subs    SubscriptionRepository
	pub     events.Publisher
	log     logger.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, bundles BundleRepository, ratings RatingRepository, subs SubscriptionRepository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		bundles: bundles,
		ratings: ratings,
		subs:    subs,
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type ProductInput struct {
	Name         string
	Description  string
	SalePrice    float64
	Quantity     int
	Type         string
	ReleaseDate  *time.Time
	IsUnlisted   bool
	DeliveryType string
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = strings.TrimSpace(in.Type)
	in.DeliveryType = strings.ToUpper(strings.TrimSpace(in.DeliveryType))

	switch {
	case in.Name == "":
		return fmt.Errorf("%w: productName is required", ErrInvalidInput)
	case in.SalePrice <= 0:
		return fmt.Errorf("%w: product sale price must be greater than 0", ErrInvalidInput)
	case in.Quantity < 0:
		return fmt.Errorf("%w: productQuantity cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.validate(); err != nil {
		return Product{}, err
	}

	now := s.now()
	p := Product{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Description:  in.Description,
		SalePrice:    in.SalePrice,
		Quantity:     in.Quantity,
		Type:         in.Type,
		Status:       StatusAt(in.ReleaseDate, now),
		ReleaseDate:  in.ReleaseDate,
		IsUnlisted:   in.IsUnlisted,
		DeliveryType: in.DeliveryType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	return s.withAverage(ctx, p)
}

// withAverage completa averageRating desde los ratings.
func (s *Service) withAverage(ctx context.Context, p Product) (Product, error) {
	rs, err := s.ratings.ListByProduct(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	p.AverageRating = Average(rs)
	return p, nil
}

// Average trunca a 2 decimales; 0 sin ratings.
func Average(rs []Rating) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	s := strconv.FormatFloat(float64(sum)/float64(len(rs)), 'f', -1, 64)
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > 2 {
		s = s[:dot+3]
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Product, error) {
	order, err := parseSort(f.Sort)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(all))
	for _, p := range all {
		p, err := s.withAverage(ctx, p)
		if err != nil {
			return nil, err
		}
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	switch order {
	case "asc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].AverageRating < out[j].AverageRating })
	case "desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].AverageRating > out[j].AverageRating })
	}
	return out, nil
}

func (s *Service) ListByType(ctx context.Context, productType string) ([]Product, error) {
	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0)
	for _, p := range all {
		if strings.EqualFold(p.Type, strings.TrimSpace(productType)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update reemplaza el producto. Si baja el precio o sube la cantidad avisa a los suscriptores.
func (s *Service) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := in.validate(); err != nil {
		return Product{}, err
	}

	p := current
	p.Name = in.Name
	p.Description = in.Description
	p.SalePrice = in.SalePrice
	p.Quantity = in.Quantity
	p.Type = in.Type
	p.ReleaseDate = in.ReleaseDate
	p.Status = StatusAt(in.ReleaseDate, s.now())
	p.IsUnlisted = in.IsUnlisted
	p.DeliveryType = in.DeliveryType
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	s.notifyChanges(ctx, current, p)
	return p, nil
}

func (s *Service) SetListingStatus(ctx context.Context, id string, unlisted bool) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.IsUnlisted = unlisted
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// RequestCount suma una consulta al producto.
func (s *Service) RequestCount(ctx context.Context, id string) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.RequestCount++
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Decrease(ctx context.Context, id string) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.Quantity <= 0 {
		return Product{}, fmt.Errorf("%w: product is out of stock", ErrInvalidInput)
	}
	p.Quantity--
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) SetQuantity(ctx context.Context, id string, quantity int) (Product, error) {
	if quantity < 0 {
		return Product{}, fmt.Errorf("%w: productQuantity cannot be negative", ErrInvalidInput)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p := current
	p.Quantity = quantity
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	s.notifyChanges(ctx, current, p)
	return p, nil
}

// Delete borra el producto con sus ratings y suscripciones.
func (s *Service) Delete(ctx context.Context, id string) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.subs.DeleteByProduct(ctx, id); err != nil {
		return Product{}, err
	}
	if err := s.ratings.DeleteByProduct(ctx, id); err != nil {
		return Product{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) notifyChanges(ctx context.Context, before, after Product) {
	priceDropped := after.SalePrice < before.SalePrice
	restocked := after.Quantity > before.Quantity
	if !priceDropped && !restocked {
		return
	}

	subs, err := s.subs.ListByProduct(ctx, after.ID)
	if err != nil {
		s.log.Error("subscribers lookup failed", map[string]any{"productId": after.ID, "error": err})
		return
	}
	at := s.now()
	publish := func(eventType string, ev ProductEvent) {
		if err := events.Publish(ctx, s.pub, eventType, after.ID, ev, at); err != nil {
			s.log.Error("product event publish failed", map[string]any{
				"productId": after.ID, "customerId": ev.CustomerID, "type": eventType, "error": err,
			})
		}
	}
	for _, sub := range subs {
		if priceDropped && sub.Wants(NotifyPrice) {
			publish(events.ProductPriceDropped, ProductEvent{
				ProductID:   after.ID,
				ProductName: after.Name,
				CustomerID:  sub.CustomerID,
				Email:       sub.Email,
				OldValue:    before.SalePrice,
				NewValue:    after.SalePrice,
			})
		}
		if restocked && sub.Wants(NotifyQuantity) {
			publish(events.ProductRestocked, ProductEvent{
				ProductID:   after.ID,
				ProductName: after.Name,
				CustomerID:  sub.CustomerID,
				Email:       sub.Email,
				OldValue:    float64(before.Quantity),
				NewValue:    float64(after.Quantity),
			})
		}
	}
}

// -------------------------
// Jobs programados
// -------------------------

// RefreshStatuses recalcula PRE_ORDER/AVAILABLE según la fecha de hoy.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	n := 0
	for _, p := range all {
		st := StatusAt(p.ReleaseDate, now)
		if st == p.Status {
			continue
		}
		p.Status = st
		p.UpdatedAt = now
		if err := s.repo.Update(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) ResetRequestCounts(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range all {
		if p.RequestCount == 0 {
			continue
		}
		p.RequestCount = 0
		if err := s.repo.Update(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
