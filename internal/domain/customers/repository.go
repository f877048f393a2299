package customers

import "context"

type OwnerRepository interface {
	Create(ctx context.Context, o Owner) error
	Update(ctx context.Context, o Owner) error
	GetByID(ctx context.Context, id string) (Owner, error)
	// List ordena por last_name, first_name.
	List(ctx context.Context, f OwnerFilter) ([]Owner, error)
	Page(ctx context.Context, f OwnerFilter, offset, limit int) ([]Owner, error)
	Count(ctx context.Context, f OwnerFilter) (int, error)
	Delete(ctx context.Context, id string) error
}

type PetRepository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context) ([]Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	CountByType(ctx context.Context, petTypeID string) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error

	SavePhoto(ctx context.Context, ph Photo) error
	GetPhoto(ctx context.Context, petID string) (Photo, error)
}

type PetTypeRepository interface {
	Create(ctx context.Context, t PetType) error
	Update(ctx context.Context, t PetType) error
	GetByID(ctx context.Context, id string) (PetType, error)
	List(ctx context.Context) ([]PetType, error)
	Delete(ctx context.Context, id string) error
}
