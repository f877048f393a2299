package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PetInput struct {
	Name      string
	BirthDate *time.Time
	PetTypeID string
	Weight    float64
	IsActive  *bool
}

func (s *Service) validatePet(ctx context.Context, in *PetInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.PetTypeID = strings.TrimSpace(in.PetTypeID)

	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.PetTypeID == "":
		return fmt.Errorf("%w: petTypeId is required", ErrInvalidInput)
	case in.Weight < 0:
		return fmt.Errorf("%w: weight cannot be negative", ErrInvalidInput)
	}
	if in.BirthDate != nil && in.BirthDate.After(s.now()) {
		return fmt.Errorf("%w: birthDate cannot be in the future", ErrInvalidInput)
	}
	if _, err := s.petTypes.GetByID(ctx, in.PetTypeID); err != nil {
		return fmt.Errorf("%w: pet type %s does not exist", ErrInvalidInput, in.PetTypeID)
	}
	return nil
}

func (s *Service) CreatePet(ctx context.Context, ownerID string, in PetInput) (Pet, error) {
	if _, err := s.GetOwner(ctx, ownerID); err != nil {
		return Pet{}, err
	}
	if err := s.validatePet(ctx, &in); err != nil {
		return Pet{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      in.Name,
		BirthDate: in.BirthDate,
		PetTypeID: in.PetTypeID,
		Weight:    in.Weight,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.pets.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetPet(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, ErrNotFound
	}
	return s.pets.GetByID(ctx, id)
}

// OwnerPet devuelve la mascota solo si pertenece a ownerID; si no, ErrNotFound.
func (s *Service) OwnerPet(ctx context.Context, ownerID, petID string) (Pet, error) {
	p, err := s.GetPet(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != strings.TrimSpace(ownerID) {
		return Pet{}, fmt.Errorf("%w: pet %s does not belong to owner %s", ErrNotFound, petID, ownerID)
	}
	return p, nil
}

func (s *Service) ListPets(ctx context.Context) ([]Pet, error) {
	return s.pets.List(ctx)
}

func (s *Service) ListPetsByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	if _, err := s.GetOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.pets.ListByOwner(ctx, ownerID)
}

func (s *Service) UpdatePet(ctx context.Context, id string, in PetInput) (Pet, error) {
	p, err := s.GetPet(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if err := s.validatePet(ctx, &in); err != nil {
		return Pet{}, err
	}

	p.Name = in.Name
	p.BirthDate = in.BirthDate
	p.PetTypeID = in.PetTypeID
	p.Weight = in.Weight
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = s.now()

	if err := s.pets.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) SetPetActive(ctx context.Context, id string, active bool) (Pet, error) {
	p, err := s.GetPet(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	p.IsActive = active
	p.UpdatedAt = s.now()
	if err := s.pets.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) DeletePet(ctx context.Context, id string) error {
	if _, err := s.GetPet(ctx, id); err != nil {
		return err
	}
	return s.pets.Delete(ctx, id)
}

// SetPhoto guarda la foto de la mascota (máx 1 MiB, image/*).
func (s *Service) SetPhoto(ctx context.Context, petID, contentType string, data []byte) (Photo, error) {
	if _, err := s.GetPet(ctx, petID); err != nil {
		return Photo{}, err
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case len(data) == 0:
		return Photo{}, fmt.Errorf("%w: photo is empty", ErrInvalidInput)
	case len(data) > MaxPhotoBytes:
		return Photo{}, fmt.Errorf("%w: photo exceeds %d bytes", ErrInvalidInput, MaxPhotoBytes)
	case !strings.HasPrefix(contentType, "image/"):
		return Photo{}, fmt.Errorf("%w: photo must be an image", ErrInvalidInput)
	}

	ph := Photo{PetID: petID, ContentType: contentType, Data: data, UpdatedAt: s.now()}
	if err := s.pets.SavePhoto(ctx, ph); err != nil {
		return Photo{}, err
	}
	return ph, nil
}

func (s *Service) GetPhoto(ctx context.Context, petID string) (Photo, error) {
	if _, err := s.GetPet(ctx, petID); err != nil {
		return Photo{}, err
	}
	return s.pets.GetPhoto(ctx, petID)
}

// -------------------------
// Pet types
// -------------------------

type PetTypeInput struct {
	Name        string
	Description string
}

func (in *PetTypeInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

func (s *Service) CreatePetType(ctx context.Context, in PetTypeInput) (PetType, error) {
	if err := in.validate(); err != nil {
		return PetType{}, err
	}
	existing, err := s.petTypes.List(ctx)
	if err != nil {
		return PetType{}, err
	}
	for _, t := range existing {
		if strings.EqualFold(t.Name, in.Name) {
			return PetType{}, fmt.Errorf("%w: pet type %s already exists", ErrUnprocessable, in.Name)
		}
	}

	t := PetType{ID: uuid.NewString(), Name: in.Name, Description: in.Description}
	if err := s.petTypes.Create(ctx, t); err != nil {
		return PetType{}, err
	}
	return t, nil
}

func (s *Service) GetPetType(ctx context.Context, id string) (PetType, error) {
	if strings.TrimSpace(id) == "" {
		return PetType{}, ErrNotFound
	}
	return s.petTypes.GetByID(ctx, id)
}

func (s *Service) ListPetTypes(ctx context.Context) ([]PetType, error) {
	return s.petTypes.List(ctx)
}

func (s *Service) UpdatePetType(ctx context.Context, id string, in PetTypeInput) (PetType, error) {
	t, err := s.GetPetType(ctx, id)
	if err != nil {
		return PetType{}, err
	}
	if err := in.validate(); err != nil {
		return PetType{}, err
	}
	t.Name = in.Name
	t.Description = in.Description
	if err := s.petTypes.Update(ctx, t); err != nil {
		return PetType{}, err
	}
	return t, nil
}

// DeletePetType falla con 422 si alguna mascota usa el tipo.
func (s *Service) DeletePetType(ctx context.Context, id string) error {
	if _, err := s.GetPetType(ctx, id); err != nil {
		return err
	}
	n, err := s.pets.CountByType(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: pet type is used by %d pets", ErrUnprocessable, n)
	}
	return s.petTypes.Delete(ctx, id)
}
