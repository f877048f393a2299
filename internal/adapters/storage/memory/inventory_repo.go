package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/inventory"
)

type inventoryRepo struct {
	mu   sync.RWMutex
	byID map[string]inventory.Inventory
}

func NewInventoryRepo() inventory.Repository {
	return &inventoryRepo{byID: make(map[string]inventory.Inventory)}
}

func (r *inventoryRepo) Create(ctx context.Context, inv inventory.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(inv.ID) == "" {
		return errors.New("inventory id required")
	}
	if _, exists := r.byID[inv.ID]; exists {
		return errors.New("inventory already exists")
	}
	r.byID[inv.ID] = inv
	return nil
}

func (r *inventoryRepo) Update(ctx context.Context, inv inventory.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[inv.ID]; !exists {
		return inventory.ErrNotFound
	}
	r.byID[inv.ID] = inv
	return nil
}

func (r *inventoryRepo) GetByID(ctx context.Context, id string) (inventory.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.byID[id]
	if !ok {
		return inventory.Inventory{}, inventory.ErrNotFound
	}
	return inv, nil
}

func (r *inventoryRepo) List(ctx context.Context, f inventory.InventoryFilter) ([]inventory.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]inventory.Inventory, 0)
	for _, inv := range r.byID {
		if f.Matches(inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *inventoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return inventory.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *inventoryRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]inventory.Inventory)
	return nil
}

type inventoryTypeRepo struct {
	mu    sync.RWMutex
	items []inventory.InventoryType
}

func NewInventoryTypeRepo() inventory.TypeRepository {
	return &inventoryTypeRepo{}
}

func (r *inventoryTypeRepo) Create(ctx context.Context, t inventory.InventoryType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.items {
		if strings.EqualFold(it.Type, t.Type) {
			return errors.New("inventory type already exists")
		}
	}
	r.items = append(r.items, t)
	return nil
}

func (r *inventoryTypeRepo) List(ctx context.Context) ([]inventory.InventoryType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]inventory.InventoryType{}, r.items...), nil
}

type inventoryProductRepo struct {
	mu   sync.RWMutex
	byID map[string]inventory.Product
}

func NewInventoryProductRepo() inventory.ProductRepository {
	return &inventoryProductRepo{byID: make(map[string]inventory.Product)}
}

func (r *inventoryProductRepo) Create(ctx context.Context, p inventory.Product) error {
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

func (r *inventoryProductRepo) Update(ctx context.Context, p inventory.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return inventory.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *inventoryProductRepo) GetByID(ctx context.Context, id string) (inventory.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return inventory.Product{}, inventory.ErrNotFound
	}
	return p, nil
}

func (r *inventoryProductRepo) ListByInventory(ctx context.Context, inventoryID string) ([]inventory.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]inventory.Product, 0)
	for _, p := range r.byID {
		if p.InventoryID == inventoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *inventoryProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return inventory.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *inventoryProductRepo) DeleteByInventory(ctx context.Context, inventoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.byID {
		if p.InventoryID == inventoryID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *inventoryProductRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]inventory.Product)
	return nil
}
