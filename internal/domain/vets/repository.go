package vets

import "context"

type Repository interface {
	Create(ctx context.Context, v Vet) error
	Update(ctx context.Context, v Vet) error
	GetByID(ctx context.Context, id string) (Vet, error)
	GetByEmail(ctx context.Context, email string) (Vet, error)
	// List con active == nil devuelve todos. Orden: last_name, first_name.
	List(ctx context.Context, active *bool) ([]Vet, error)
	Delete(ctx context.Context, id string) error
}

type RatingRepository interface {
	Create(ctx context.Context, r Rating) error
	Update(ctx context.Context, r Rating) error
	GetByID(ctx context.Context, id string) (Rating, error)
	// ListByVet ordena por rate_date asc.
	ListByVet(ctx context.Context, vetID string) ([]Rating, error)
	Delete(ctx context.Context, id string) error
	DeleteByVet(ctx context.Context, vetID string) error
}
