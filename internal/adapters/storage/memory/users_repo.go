package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/users"
)

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]users.User
}

func NewUserRepo() users.Repository {
	return &userRepo{byID: make(map[string]users.User)}
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	u.Roles = append([]string(nil), u.Roles...)
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return users.ErrNotFound
	}
	u.Roles = append([]string(nil), u.Roles...)
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByLogin(ctx context.Context, login string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	login = strings.TrimSpace(login)
	for _, u := range r.byID {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *userRepo) List(ctx context.Context) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return users.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type roleRepo struct {
	mu     sync.RWMutex
	byName map[string]users.Role
}

func NewRoleRepo() users.RoleRepository {
	return &roleRepo{byName: make(map[string]users.Role)}
}

func (r *roleRepo) Create(ctx context.Context, rl users.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[rl.Name]; exists {
		return errors.New("role already exists")
	}
	r.byName[rl.Name] = rl
	return nil
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (users.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rl, ok := r.byName[name]
	if !ok {
		return users.Role{}, users.ErrNotFound
	}
	return rl, nil
}

func (r *roleRepo) List(ctx context.Context) ([]users.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.Role, 0, len(r.byName))
	for _, rl := range r.byName {
		out = append(out, rl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
