package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/products"
)

type productRepo struct {
	mu   sync.RWMutex
	byID map[string]products.Product
}

func NewProductRepo() products.Repository {
	return &productRepo{byID: make(map[string]products.Product)}
}

func (r *productRepo) Create(ctx context.Context, p products.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("product id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("product already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *productRepo) Update(ctx context.Context, p products.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return products.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context) ([]products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]products.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return products.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type bundleRepo struct {
	mu   sync.RWMutex
	byID map[string]products.Bundle
}

func NewBundleRepo() products.BundleRepository {
	return &bundleRepo{byID: make(map[string]products.Bundle)}
}

func (r *bundleRepo) Create(ctx context.Context, b products.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[b.ID]; exists {
		return errors.New("bundle already exists")
	}
	b.ProductIDs = append([]string(nil), b.ProductIDs...)
	r.byID[b.ID] = b
	return nil
}

func (r *bundleRepo) Update(ctx context.Context, b products.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[b.ID]; !exists {
		return products.ErrNotFound
	}
	b.ProductIDs = append([]string(nil), b.ProductIDs...)
	r.byID[b.ID] = b
	return nil
}

func (r *bundleRepo) GetByID(ctx context.Context, id string) (products.Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return products.Bundle{}, products.ErrNotFound
	}
	b.ProductIDs = append([]string(nil), b.ProductIDs...)
	return b, nil
}

func (r *bundleRepo) List(ctx context.Context) ([]products.Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]products.Bundle, 0, len(r.byID))
	for _, b := range r.byID {
		b.ProductIDs = append([]string(nil), b.ProductIDs...)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *bundleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return products.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// pairKey indexa ratings y suscripciones por (producto, cliente).
type pairKey struct {
	productID  string
	customerID string
}

type productRatingRepo struct {
	mu    sync.RWMutex
	byKey map[pairKey]products.Rating
}

func NewProductRatingRepo() products.RatingRepository {
	return &productRatingRepo{byKey: make(map[pairKey]products.Rating)}
}

// Save hace upsert.
func (r *productRatingRepo) Save(ctx context.Context, rt products.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[pairKey{rt.ProductID, rt.CustomerID}] = rt
	return nil
}

func (r *productRatingRepo) Get(ctx context.Context, productID, customerID string) (products.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.byKey[pairKey{productID, customerID}]
	if !ok {
		return products.Rating{}, products.ErrNotFound
	}
	return rt, nil
}

func (r *productRatingRepo) ListByProduct(ctx context.Context, productID string) ([]products.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]products.Rating, 0)
	for k, rt := range r.byKey {
		if k.productID == productID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out, nil
}

func (r *productRatingRepo) Delete(ctx context.Context, productID, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := pairKey{productID, customerID}
	if _, ok := r.byKey[k]; !ok {
		return products.ErrNotFound
	}
	delete(r.byKey, k)
	return nil
}

func (r *productRatingRepo) DeleteByProduct(ctx context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.byKey {
		if k.productID == productID {
			delete(r.byKey, k)
		}
	}
	return nil
}

type subscriptionRepo struct {
	mu    sync.RWMutex
	byKey map[pairKey]products.Subscription
}

func NewSubscriptionRepo() products.SubscriptionRepository {
	return &subscriptionRepo{byKey: make(map[pairKey]products.Subscription)}
}

func (r *subscriptionRepo) Save(ctx context.Context, s products.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.NotificationType = append([]products.NotificationType(nil), s.NotificationType...)
	r.byKey[pairKey{s.ProductID, s.CustomerID}] = s
	return nil
}

func (r *subscriptionRepo) Get(ctx context.Context, productID, customerID string) (products.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byKey[pairKey{productID, customerID}]
	if !ok {
		return products.Subscription{}, products.ErrNotFound
	}
	return s, nil
}

func (r *subscriptionRepo) ListByProduct(ctx context.Context, productID string) ([]products.Subscription, error) {
	return r.filter(func(k pairKey) bool { return k.productID == productID }), nil
}

func (r *subscriptionRepo) ListByCustomer(ctx context.Context, customerID string) ([]products.Subscription, error) {
	return r.filter(func(k pairKey) bool { return k.customerID == customerID }), nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, productID, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := pairKey{productID, customerID}
	if _, ok := r.byKey[k]; !ok {
		return products.ErrNotFound
	}
	delete(r.byKey, k)
	return nil
}

func (r *subscriptionRepo) DeleteByProduct(ctx context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.byKey {
		if k.productID == productID {
			delete(r.byKey, k)
		}
	}
	return nil
}

func (r *subscriptionRepo) filter(keep func(pairKey) bool) []products.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]products.Subscription, 0)
	for k, s := range r.byKey {
		if keep(k) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
