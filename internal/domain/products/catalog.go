package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// -------------------------
// Bundles
// -------------------------

type BundleInput struct {
	Name        string
	Description string
	ProductIDs  []string
	BundlePrice float64
}

// priceBundle valida y calcula originalTotalPrice como suma de salePrice.
func (s *Service) priceBundle(ctx context.Context, in *BundleInput) (float64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Name == "":
		return 0, fmt.Errorf("%w: bundleName is required", ErrInvalidInput)
	case len(in.ProductIDs) == 0:
		return 0, fmt.Errorf("%w: a bundle needs at least one product", ErrInvalidInput)
	case in.BundlePrice <= 0:
		return 0, fmt.Errorf("%w: bundlePrice must be greater than 0", ErrInvalidInput)
	}

	total := 0.0
	for _, id := range in.ProductIDs {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return 0, fmt.Errorf("%w: product %s", ErrNotFound, id)
			}
			return 0, err
		}
		total += p.SalePrice
	}
	return total, nil
}

func (s *Service) CreateBundle(ctx context.Context, in BundleInput) (Bundle, error) {
	total, err := s.priceBundle(ctx, &in)
	if err != nil {
		return Bundle{}, err
	}
	b := Bundle{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Description:        in.Description,
		ProductIDs:         in.ProductIDs,
		OriginalTotalPrice: total,
		BundlePrice:        in.BundlePrice,
	}
	if err := s.bundles.Create(ctx, b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

func (s *Service) GetBundle(ctx context.Context, id string) (Bundle, error) {
	if strings.TrimSpace(id) == "" {
		return Bundle{}, ErrNotFound
	}
	return s.bundles.GetByID(ctx, id)
}

func (s *Service) ListBundles(ctx context.Context) ([]Bundle, error) {
	return s.bundles.List(ctx)
}

func (s *Service) UpdateBundle(ctx context.Context, id string, in BundleInput) (Bundle, error) {
	b, err := s.GetBundle(ctx, id)
	if err != nil {
		return Bundle{}, err
	}
	total, err := s.priceBundle(ctx, &in)
	if err != nil {
		return Bundle{}, err
	}
	b.Name = in.Name
	b.Description = in.Description
	b.ProductIDs = in.ProductIDs
	b.OriginalTotalPrice = total
	b.BundlePrice = in.BundlePrice
	if err := s.bundles.Update(ctx, b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

func (s *Service) DeleteBundle(ctx context.Context, id string) error {
	if _, err := s.GetBundle(ctx, id); err != nil {
		return err
	}
	return s.bundles.Delete(ctx, id)
}

// DeleteBundlesWithProduct borra los bundles que incluyen el producto.
func (s *Service) DeleteBundlesWithProduct(ctx context.Context, productID string) (int, error) {
	all, err := s.bundles.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range all {
		for _, id := range b.ProductIDs {
			if id == productID {
				if err := s.bundles.Delete(ctx, b.ID); err != nil {
					return n, err
				}
				n++
				break
			}
		}
	}
	return n, nil
}

// -------------------------
// Ratings
// -------------------------

type RatingInput struct {
	Rating int
	Review string
}

func (in RatingInput) validate() error {
	if in.Rating < MinScore || in.Rating > MaxScore {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinScore, MaxScore)
	}
	if len([]rune(in.Review)) >= MaxReviewLength {
		return fmt.Errorf("%w: review must be shorter than %d characters", ErrInvalidInput, MaxReviewLength)
	}
	return nil
}

func (s *Service) Ratings(ctx context.Context, productID string) ([]Rating, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.ratings.ListByProduct(ctx, productID)
}

func (s *Service) Rating(ctx context.Context, productID, customerID string) (Rating, error) {
	return s.ratings.Get(ctx, productID, customerID)
}

// AddRating: un rating por cliente y producto.
func (s *Service) AddRating(ctx context.Context, productID, customerID string, in RatingInput) (Rating, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return Rating{}, err
	}
	if strings.TrimSpace(customerID) == "" {
		return Rating{}, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}
	if err := in.validate(); err != nil {
		return Rating{}, err
	}
	if _, err := s.ratings.Get(ctx, productID, customerID); err == nil {
		return Rating{}, fmt.Errorf("%w: customer already rated this product", ErrUnprocessable)
	}

	now := s.now()
	r := Rating{
		ProductID:  productID,
		CustomerID: customerID,
		Rating:     in.Rating,
		Review:     strings.TrimSpace(in.Review),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.ratings.Save(ctx, r); err != nil {
		return Rating{}, err
	}
	return r, nil
}

func (s *Service) UpdateRating(ctx context.Context, productID, customerID string, in RatingInput) (Rating, error) {
	r, err := s.ratings.Get(ctx, productID, customerID)
	if err != nil {
		return Rating{}, err
	}
	if err := in.validate(); err != nil {
		return Rating{}, err
	}
	r.Rating = in.Rating
	r.Review = strings.TrimSpace(in.Review)
	r.UpdatedAt = s.now()
	if err := s.ratings.Save(ctx, r); err != nil {
		return Rating{}, err
	}
	return r, nil
}

func (s *Service) DeleteRating(ctx context.Context, productID, customerID string) error {
	if _, err := s.ratings.Get(ctx, productID, customerID); err != nil {
		return err
	}
	return s.ratings.Delete(ctx, productID, customerID)
}

// -------------------------
// Suscripciones a cambios de precio / stock
// -------------------------

type SubscriptionInput struct {
	Email            string
	NotificationType []string
}

func (in SubscriptionInput) normalize() ([]NotificationType, error) {
	if len(in.NotificationType) == 0 {
		return nil, fmt.Errorf("%w: notificationType is required", ErrInvalidInput)
	}
	out := make([]NotificationType, 0, len(in.NotificationType))
	for _, raw := range in.NotificationType {
		switch nt := NotificationType(strings.ToUpper(strings.TrimSpace(raw))); nt {
		case NotifyPrice, NotifyQuantity:
			out = append(out, nt)
		default:
			return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, raw)
		}
	}
	return out, nil
}

func (s *Service) Subscribe(ctx context.Context, productID, customerID string, in SubscriptionInput) (Subscription, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return Subscription{}, err
	}
	types, err := in.normalize()
	if err != nil {
		return Subscription{}, err
	}
	if _, err := s.subs.Get(ctx, productID, customerID); err == nil {
		return Subscription{}, fmt.Errorf("%w: customer is already subscribed to this product", ErrUnprocessable)
	}

	sub := Subscription{
		ProductID:        productID,
		CustomerID:       customerID,
		Email:            strings.TrimSpace(in.Email),
		NotificationType: types,
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

func (s *Service) Subscription(ctx context.Context, productID, customerID string) (Subscription, error) {
	return s.subs.Get(ctx, productID, customerID)
}

func (s *Service) CustomerSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	return s.subs.ListByCustomer(ctx, customerID)
}

func (s *Service) UpdateSubscription(ctx context.Context, productID, customerID string, in SubscriptionInput) (Subscription, error) {
	sub, err := s.subs.Get(ctx, productID, customerID)
	if err != nil {
		return Subscription{}, err
	}
	types, err := in.normalize()
	if err != nil {
		return Subscription{}, err
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		sub.Email = email
	}
	sub.NotificationType = types
	if err := s.subs.Save(ctx, sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

func (s *Service) Unsubscribe(ctx context.Context, productID, customerID string) error {
	if _, err := s.subs.Get(ctx, productID, customerID); err != nil {
		return err
	}
	return s.subs.Delete(ctx, productID, customerID)
}
