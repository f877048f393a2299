package billing

import "context"

// Repository persiste facturas. Orden de listados: date asc, created_at asc.
type Repository interface {
	Create(ctx context.Context, b Bill) error
	Update(ctx context.Context, b Bill) error
	GetByID(ctx context.Context, id string) (Bill, error)
	List(ctx context.Context, f Filter) ([]Bill, error)
	Page(ctx context.Context, f Filter, offset, limit int) ([]Bill, error)
	Count(ctx context.Context, f Filter) (int, error)
	Delete(ctx context.Context, id string) error
	// DeleteWhere borra todo lo que matchee f (filtro vacío => todo) y devuelve cuántas borró.
	DeleteWhere(ctx context.Context, f Filter) (int, error)
}
