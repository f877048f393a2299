package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/vets"
)

type vetRepo struct {
	mu   sync.RWMutex
	byID map[string]vets.Vet
}

func NewVetRepo() vets.Repository {
	return &vetRepo{byID: make(map[string]vets.Vet)}
}

func (r *vetRepo) Create(ctx context.Context, v vets.Vet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("vet id required")
	}
	if _, exists := r.byID[v.ID]; exists {
		return errors.New("vet already exists")
	}
	r.byID[v.ID] = cloneVet(v)
	return nil
}

func (r *vetRepo) Update(ctx context.Context, v vets.Vet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[v.ID]; !exists {
		return vets.ErrNotFound
	}
	r.byID[v.ID] = cloneVet(v)
	return nil
}

func (r *vetRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return vets.Vet{}, vets.ErrNotFound
	}
	return cloneVet(v), nil
}

func (r *vetRepo) GetByEmail(ctx context.Context, email string) (vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, v := range r.byID {
		if strings.EqualFold(v.Email, email) {
			return cloneVet(v), nil
		}
	}
	return vets.Vet{}, vets.ErrNotFound
}

func (r *vetRepo) List(ctx context.Context, active *bool) ([]vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vets.Vet, 0)
	for _, v := range r.byID {
		if active == nil || v.Active == *active {
			out = append(out, cloneVet(v))
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
	return out, nil
}

func (r *vetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return vets.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// cloneVet evita compartir slices entre el repo y el caller.
func cloneVet(v vets.Vet) vets.Vet {
	v.Workday = append([]string(nil), v.Workday...)
	v.Specialties = append([]vets.Specialty(nil), v.Specialties...)
	return v
}

type vetRatingRepo struct {
	mu   sync.RWMutex
	byID map[string]vets.Rating
}

func NewVetRatingRepo() vets.RatingRepository {
	return &vetRatingRepo{byID: make(map[string]vets.Rating)}
}

func (r *vetRatingRepo) Create(ctx context.Context, rt vets.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rt.ID]; exists {
		return errors.New("rating already exists")
	}
	r.byID[rt.ID] = rt
	return nil
}

func (r *vetRatingRepo) Update(ctx context.Context, rt vets.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rt.ID]; !exists {
		return vets.ErrNotFound
	}
	r.byID[rt.ID] = rt
	return nil
}

func (r *vetRatingRepo) GetByID(ctx context.Context, id string) (vets.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.byID[id]
	if !ok {
		return vets.Rating{}, vets.ErrNotFound
	}
	return rt, nil
}

func (r *vetRatingRepo) ListByVet(ctx context.Context, vetID string) ([]vets.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vets.Rating, 0)
	for _, rt := range r.byID {
		if rt.VetID == vetID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RateDate.Equal(out[j].RateDate) {
			return out[i].RateDate.Before(out[j].RateDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *vetRatingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return vets.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *vetRatingRepo) DeleteByVet(ctx context.Context, vetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rt := range r.byID {
		if rt.VetID == vetID {
			delete(r.byID, id)
		}
	}
	return nil
}
