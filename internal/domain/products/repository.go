package products

import "context"

type Repository interface {
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	GetByID(ctx context.Context, id string) (Product, error)
	// List ordena por name asc.
	List(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, id string) error
}

type BundleRepository interface {
	Create(ctx context.Context, b Bundle) error
	Update(ctx context.Context, b Bundle) error
	GetByID(ctx context.Context, id string) (Bundle, error)
	List(ctx context.Context) ([]Bundle, error)
	Delete(ctx context.Context, id string) error
}

type RatingRepository interface {
	Save(ctx context.Context, r Rating) error
	Get(ctx context.Context, productID, customerID string) (Rating, error)
	ListByProduct(ctx context.Context, productID string) ([]Rating, error)
	Delete(ctx context.Context, productID, customerID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}

type SubscriptionRepository interface {
	Save(ctx context.Context, s Subscription) error
	Get(ctx context.Context, productID, customerID string) (Subscription, error)
	ListByProduct(ctx context.Context, productID string) ([]Subscription, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Subscription, error)
	Delete(ctx context.Context, productID, customerID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
