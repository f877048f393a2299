package customers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable")
)

type Service struct {
	owners   OwnerRepository
	pets     PetRepository
	petTypes PetTypeRepository
	now      func() time.Time
}

func NewService(owners OwnerRepository, pets PetRepository, petTypes PetTypeRepository) *Service {
	return &Service{
		owners:   owners,
		pets:     pets,
		petTypes: petTypes,
		now:      time.Now,
	}
}

type OwnerInput struct {
	// ID opcional: el registro desde el gateway lo manda igual al userId.
	ID        string
	FirstName string
	LastName  string
	Address   string
	City      string
	Province  string
	Telephone string
}

var telephoneRe = regexp.MustCompile(`^\d{10}$`)

func (in OwnerInput) normalize() (OwnerInput, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Province = strings.TrimSpace(in.Province)
	in.Telephone = strings.TrimSpace(in.Telephone)

	switch {
	case in.FirstName == "":
		return in, fmt.Errorf("%w: firstName is required", ErrInvalidInput)
	case in.LastName == "":
		return in, fmt.Errorf("%w: lastName is required", ErrInvalidInput)
	case in.Telephone == "":
		return in, fmt.Errorf("%w: telephone is required", ErrInvalidInput)
	case !telephoneRe.MatchString(in.Telephone):
		return in, fmt.Errorf("%w: telephone must have 10 digits", ErrInvalidInput)
	}
	return in, nil
}

func (s *Service) CreateOwner(ctx context.Context, in OwnerInput) (Owner, error) {
	in, err := in.normalize()
	if err != nil {
		return Owner{}, err
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := s.owners.GetByID(ctx, id); err == nil {
		return Owner{}, fmt.Errorf("%w: owner %s already exists", ErrConflict, id)
	}

	now := s.now()
	o := Owner{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Address:   in.Address,
		City:      in.City,
		Province:  in.Province,
		Telephone: in.Telephone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.owners.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetOwner(ctx context.Context, id string) (Owner, error) {
	if strings.TrimSpace(id) == "" {
		return Owner{}, ErrNotFound
	}
	return s.owners.GetByID(ctx, id)
}

func (s *Service) ListOwners(ctx context.Context, f OwnerFilter) ([]Owner, error) {
	return s.owners.List(ctx, f)
}

const DefaultPageSize = 10

func (s *Service) PageOwners(ctx context.Context, f OwnerFilter, page, size int) ([]Owner, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: page must be >= 0 and size > 0", ErrInvalidInput)
	}
	return s.owners.Page(ctx, f, page*size, size)
}

func (s *Service) CountOwners(ctx context.Context, f OwnerFilter) (int, error) {
	return s.owners.Count(ctx, f)
}

func (s *Service) UpdateOwner(ctx context.Context, id string, in OwnerInput) (Owner, error) {
	o, err := s.GetOwner(ctx, id)
	if err != nil {
		return Owner{}, err
	}
	in, err = in.normalize()
	if err != nil {
		return Owner{}, err
	}

	o.FirstName = in.FirstName
	o.LastName = in.LastName
	o.Address = in.Address
	o.City = in.City
	o.Province = in.Province
	o.Telephone = in.Telephone
	o.UpdatedAt = s.now()

	if err := s.owners.Update(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

// DeleteOwner borra el owner y sus mascotas.
func (s *Service) DeleteOwner(ctx context.Context, id string) error {
	if _, err := s.GetOwner(ctx, id); err != nil {
		return err
	}
	if err := s.pets.DeleteByOwner(ctx, id); err != nil {
		return err
	}
	return s.owners.Delete(ctx, id)
}
