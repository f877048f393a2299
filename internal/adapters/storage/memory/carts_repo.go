package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/carts"
)

type cartRepo struct {
	mu   sync.RWMutex
	byID map[string]carts.Cart
}

func NewCartRepo() carts.Repository {
	return &cartRepo{byID: make(map[string]carts.Cart)}
}

func (r *cartRepo) Create(ctx context.Context, c carts.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cart id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("cart already exists")
	}
	r.byID[c.ID] = cloneCart(c)
	return nil
}

func (r *cartRepo) Update(ctx context.Context, c carts.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return carts.ErrNotFound
	}
	r.byID[c.ID] = cloneCart(c)
	return nil
}

func (r *cartRepo) GetByID(ctx context.Context, id string) (carts.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return carts.Cart{}, carts.ErrNotFound
	}
	return cloneCart(c), nil
}

func (r *cartRepo) GetByCustomer(ctx context.Context, customerID string) (carts.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.CustomerID == customerID {
			return cloneCart(c), nil
		}
	}
	return carts.Cart{}, carts.ErrNotFound
}

func (r *cartRepo) List(ctx context.Context) ([]carts.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]carts.Cart, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, cloneCart(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (r *cartRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return carts.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// cloneCart copia las listas para que el caller no mute el estado guardado.
func cloneCart(c carts.Cart) carts.Cart {
	c.Products = append([]carts.CartProduct(nil), c.Products...)
	c.WishListProducts = append([]carts.CartProduct(nil), c.WishListProducts...)
	c.RecentPurchases = append([]carts.CartProduct(nil), c.RecentPurchases...)
	c.RecommendationPurchase = append([]carts.CartProduct(nil), c.RecommendationPurchase...)
	return c
}

type promoRepo struct {
	mu   sync.RWMutex
	byID map[string]carts.Promo
}

func NewPromoRepo() carts.PromoRepository {
	return &promoRepo{byID: make(map[string]carts.Promo)}
}

func (r *promoRepo) Create(ctx context.Context, p carts.Promo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return errors.New("promo already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *promoRepo) Update(ctx context.Context, p carts.Promo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return carts.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *promoRepo) GetByID(ctx context.Context, id string) (carts.Promo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return carts.Promo{}, carts.ErrNotFound
	}
	return p, nil
}

func (r *promoRepo) GetByCode(ctx context.Context, code string) (carts.Promo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if strings.EqualFold(p.Code, code) {
			return p, nil
		}
	}
	return carts.Promo{}, carts.ErrNotFound
}

func (r *promoRepo) List(ctx context.Context) ([]carts.Promo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]carts.Promo, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpirationDate.Before(out[j].ExpirationDate) })
	return out, nil
}

func (r *promoRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return carts.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
