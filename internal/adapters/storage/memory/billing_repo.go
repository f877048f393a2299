package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/billing"
)

type billRepo struct {
	mu   sync.RWMutex
	byID map[string]billing.Bill
}

func NewBillRepo() billing.Repository {
	return &billRepo{
		byID: make(map[string]billing.Bill),
	}
}

func (r *billRepo) Create(ctx context.Context, b billing.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("bill id required")
	}
	if _, exists := r.byID[b.ID]; exists {
		return errors.New("bill already exists")
	}
	r.byID[b.ID] = b
	return nil
}

func (r *billRepo) Update(ctx context.Context, b billing.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[b.ID]; !exists {
		return billing.ErrNotFound
	}
	r.byID[b.ID] = b
	return nil
}

func (r *billRepo) GetByID(ctx context.Context, id string) (billing.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return billing.Bill{}, billing.ErrNotFound
	}
	return b, nil
}

func (r *billRepo) List(ctx context.Context, f billing.Filter) ([]billing.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.match(f), nil
}

func (r *billRepo) Page(ctx context.Context, f billing.Filter, offset, limit int) ([]billing.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return window(r.match(f), offset, limit), nil
}

func (r *billRepo) Count(ctx context.Context, f billing.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.match(f)), nil
}

func (r *billRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return billing.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *billRepo) DeleteWhere(ctx context.Context, f billing.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, b := range r.byID {
		if f.Matches(b) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// match se llama con el lock tomado. Orden: date asc, created_at asc.
func (r *billRepo) match(f billing.Filter) []billing.Bill {
	out := make([]billing.Bill, 0)
	for _, b := range r.byID {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// window recorta una página. offset fuera de rango => vacío.
func window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
