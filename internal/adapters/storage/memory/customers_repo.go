package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/customers"
)

type ownerRepo struct {
	mu   sync.RWMutex
	byID map[string]customers.Owner
}

func NewOwnerRepo() customers.OwnerRepository {
	return &ownerRepo{byID: make(map[string]customers.Owner)}
}

func (r *ownerRepo) Create(ctx context.Context, o customers.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return errors.New("owner already exists")
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownerRepo) Update(ctx context.Context, o customers.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; !exists {
		return customers.ErrNotFound
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, id string) (customers.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return customers.Owner{}, customers.ErrNotFound
	}
	return o, nil
}

func (r *ownerRepo) List(ctx context.Context, f customers.OwnerFilter) ([]customers.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.match(f), nil
}

func (r *ownerRepo) Page(ctx context.Context, f customers.OwnerFilter, offset, limit int) ([]customers.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return window(r.match(f), offset, limit), nil
}

func (r *ownerRepo) Count(ctx context.Context, f customers.OwnerFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.match(f)), nil
}

func (r *ownerRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return customers.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ownerRepo) match(f customers.OwnerFilter) []customers.Owner {
	out := make([]customers.Owner, 0)
	for _, o := range r.byID {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type petRepo struct {
	mu     sync.RWMutex
	byID   map[string]customers.Pet
	photos map[string]customers.Photo
}

func NewPetRepo() customers.PetRepository {
	return &petRepo{
		byID:   make(map[string]customers.Pet),
		photos: make(map[string]customers.Photo),
	}
}

func (r *petRepo) Create(ctx context.Context, p customers.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, p customers.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return customers.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (customers.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return customers.Pet{}, customers.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) List(ctx context.Context) ([]customers.Pet, error) {
	return r.filter(func(customers.Pet) bool { return true }), nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerID string) ([]customers.Pet, error) {
	return r.filter(func(p customers.Pet) bool { return p.OwnerID == ownerID }), nil
}

func (r *petRepo) CountByType(ctx context.Context, petTypeID string) (int, error) {
	return len(r.filter(func(p customers.Pet) bool { return p.PetTypeID == petTypeID })), nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return customers.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.photos, id)
	return nil
}

func (r *petRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.byID {
		if p.OwnerID == ownerID {
			delete(r.byID, id)
			delete(r.photos, id)
		}
	}
	return nil
}

func (r *petRepo) SavePhoto(ctx context.Context, ph customers.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[ph.PetID]; !ok {
		return customers.ErrNotFound
	}
	ph.Data = append([]byte(nil), ph.Data...)
	r.photos[ph.PetID] = ph
	return nil
}

func (r *petRepo) GetPhoto(ctx context.Context, petID string) (customers.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ph, ok := r.photos[petID]
	if !ok {
		return customers.Photo{}, customers.ErrNotFound
	}
	return ph, nil
}

// filter ordena por created_at asc (estable para dev).
func (r *petRepo) filter(keep func(customers.Pet) bool) []customers.Pet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]customers.Pet, 0)
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type petTypeRepo struct {
	mu   sync.RWMutex
	byID map[string]customers.PetType
}

func NewPetTypeRepo() customers.PetTypeRepository {
	return &petTypeRepo{byID: make(map[string]customers.PetType)}
}

func (r *petTypeRepo) Create(ctx context.Context, t customers.PetType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; exists {
		return errors.New("pet type already exists")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *petTypeRepo) Update(ctx context.Context, t customers.PetType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; !exists {
		return customers.ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *petTypeRepo) GetByID(ctx context.Context, id string) (customers.PetType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return customers.PetType{}, customers.ErrNotFound
	}
	return t, nil
}

func (r *petTypeRepo) List(ctx context.Context) ([]customers.PetType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]customers.PetType, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *petTypeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return customers.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
