package carts

import "context"

type Repository interface {
	Create(ctx context.Context, c Cart) error
	Update(ctx context.Context, c Cart) error
	GetByID(ctx context.Context, id string) (Cart, error)
	GetByCustomer(ctx context.Context, customerID string) (Cart, error)
	List(ctx context.Context) ([]Cart, error)
	Delete(ctx context.Context, id string) error
}

type PromoRepository interface {
	Create(ctx context.Context, p Promo) error
	Update(ctx context.Context, p Promo) error
	GetByID(ctx context.Context, id string) (Promo, error)
	GetByCode(ctx context.Context, code string) (Promo, error)
	List(ctx context.Context) ([]Promo, error)
	Delete(ctx context.Context, id string) error
}
