package inventory

import "context"

type Repository interface {
	Create(ctx context.Context, inv Inventory) error
	Update(ctx context.Context, inv Inventory) error
	GetByID(ctx context.Context, id string) (Inventory, error)
	// List ordena por name asc.
	List(ctx context.Context, f InventoryFilter) ([]Inventory, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type TypeRepository interface {
	Create(ctx context.Context, t InventoryType) error
	List(ctx context.Context) ([]InventoryType, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	GetByID(ctx context.Context, id string) (Product, error)
	// ListByInventory ordena por name asc.
	ListByInventory(ctx context.Context, inventoryID string) ([]Product, error)
	Delete(ctx context.Context, id string) error
	DeleteByInventory(ctx context.Context, inventoryID string) error
	DeleteAll(ctx context.Context) error
}
