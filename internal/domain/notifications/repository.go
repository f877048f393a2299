package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) error
	Update(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)
	// List ordena por createdAt desc.
	List(ctx context.Context, f Filter) ([]Notification, error)
	Delete(ctx context.Context, id string) error
}
