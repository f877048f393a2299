package customers

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type ownerTestRepo struct{ byID map[string]Owner }

func (r *ownerTestRepo) Create(ctx context.Context, o Owner) error { r.byID[o.ID] = o; return nil }
func (r *ownerTestRepo) Update(ctx context.Context, o Owner) error { r.byID[o.ID] = o; return nil }
func (r *ownerTestRepo) GetByID(ctx context.Context, id string) (Owner, error) {
	o, ok := r.byID[id]
	if !ok {
		return Owner{}, ErrNotFound
	}
	return o, nil
}
func (r *ownerTestRepo) List(ctx context.Context, f OwnerFilter) ([]Owner, error) {
	out := make([]Owner, 0)
	for _, o := range r.byID {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r *ownerTestRepo) Page(ctx context.Context, f OwnerFilter, offset, limit int) ([]Owner, error) {
	return r.List(ctx, f)
}
func (r *ownerTestRepo) Count(ctx context.Context, f OwnerFilter) (int, error) {
	all, _ := r.List(ctx, f)
	return len(all), nil
}
func (r *ownerTestRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }

type petTestRepo struct {
	byID   map[string]Pet
	photos map[string]Photo
}

func (r *petTestRepo) Create(ctx context.Context, p Pet) error { r.byID[p.ID] = p; return nil }
func (r *petTestRepo) Update(ctx context.Context, p Pet) error { r.byID[p.ID] = p; return nil }
func (r *petTestRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}
func (r *petTestRepo) List(ctx context.Context) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}
func (r *petTestRepo) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r *petTestRepo) CountByType(ctx context.Context, petTypeID string) (int, error) {
	n := 0
	for _, p := range r.byID {
		if p.PetTypeID == petTypeID {
			n++
		}
	}
	return n, nil
}
func (r *petTestRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }
func (r *petTestRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	for id, p := range r.byID {
		if p.OwnerID == ownerID {
			delete(r.byID, id)
		}
	}
	return nil
}
func (r *petTestRepo) SavePhoto(ctx context.Context, ph Photo) error { r.photos[ph.PetID] = ph; return nil }
func (r *petTestRepo) GetPhoto(ctx context.Context, petID string) (Photo, error) {
	ph, ok := r.photos[petID]
	if !ok {
		return Photo{}, ErrNotFound
	}
	return ph, nil
}

type petTypeTestRepo struct{ byID map[string]PetType }

func (r *petTypeTestRepo) Create(ctx context.Context, t PetType) error { r.byID[t.ID] = t; return nil }
func (r *petTypeTestRepo) Update(ctx context.Context, t PetType) error { r.byID[t.ID] = t; return nil }
func (r *petTypeTestRepo) GetByID(ctx context.Context, id string) (PetType, error) {
	t, ok := r.byID[id]
	if !ok {
		return PetType{}, ErrNotFound
	}
	return t, nil
}
func (r *petTypeTestRepo) List(ctx context.Context) ([]PetType, error) {
	out := make([]PetType, 0)
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out, nil
}
func (r *petTypeTestRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }

func newTestService() (*Service, *petTestRepo) {
	pets := &petTestRepo{byID: map[string]Pet{}, photos: map[string]Photo{}}
	svc := NewService(
		&ownerTestRepo{byID: map[string]Owner{}},
		pets,
		&petTypeTestRepo{byID: map[string]PetType{"dog": {ID: "dog", Name: "Dog"}}},
	)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, pets
}

func validOwner() OwnerInput {
	return OwnerInput{FirstName: "George", LastName: "Franklin", City: "Madison", Telephone: "6085551023"}
}

// -------------------------
// Tests
// -------------------------

func TestService_CreateOwner_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := validOwner()
	in.Telephone = "555-1023"
	if _, err := svc.CreateOwner(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad telephone, got %v", err)
	}

	in = validOwner()
	in.LastName = "  "
	if _, err := svc.CreateOwner(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing last name, got %v", err)
	}
}

func TestService_CreateOwner_WithCallerID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := validOwner()
	in.ID = "user-1"
	o, err := svc.CreateOwner(ctx, in)
	if err != nil {
		t.Fatalf("CreateOwner error: %v", err)
	}
	if o.ID != "user-1" {
		t.Fatalf("expected caller id to be kept, got %s", o.ID)
	}
	if _, err := svc.CreateOwner(ctx, in); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate id, got %v", err)
	}
}

func TestService_DeleteOwner_RemovesPets(t *testing.T) {
	svc, pets := newTestService()
	ctx := context.Background()

	o, _ := svc.CreateOwner(ctx, validOwner())
	if _, err := svc.CreatePet(ctx, o.ID, PetInput{Name: "Leo", PetTypeID: "dog"}); err != nil {
		t.Fatalf("CreatePet error: %v", err)
	}
	if err := svc.DeleteOwner(ctx, o.ID); err != nil {
		t.Fatalf("DeleteOwner error: %v", err)
	}
	if len(pets.byID) != 0 {
		t.Fatalf("expected pets removed, got %d", len(pets.byID))
	}
}

func TestService_CreatePet_Rules(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, _ := svc.CreateOwner(ctx, validOwner())

	future := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreatePet(ctx, o.ID, PetInput{Name: "Leo", PetTypeID: "dog", BirthDate: &future}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for future birth date, got %v", err)
	}
	if _, err := svc.CreatePet(ctx, o.ID, PetInput{Name: "Leo", PetTypeID: "lizard"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}
	if _, err := svc.CreatePet(ctx, "nobody", PetInput{Name: "Leo", PetTypeID: "dog"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
	}

	p, err := svc.CreatePet(ctx, o.ID, PetInput{Name: "Leo", PetTypeID: "dog"})
	if err != nil {
		t.Fatalf("CreatePet error: %v", err)
	}
	if !p.IsActive {
		t.Fatalf("expected new pet to be active")
	}
}

func TestService_DeletePetType_InUse(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, _ := svc.CreateOwner(ctx, validOwner())
	_, _ = svc.CreatePet(ctx, o.ID, PetInput{Name: "Leo", PetTypeID: "dog"})

	if err := svc.DeletePetType(ctx, "dog"); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable, got %v", err)
	}
	if _, err := svc.CreatePetType(ctx, PetTypeInput{Name: "dog"}); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected duplicate type to be rejected, got %v", err)
	}
}

func TestService_SetPhoto(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, _ := svc.CreateOwner(ctx, validOwner())
	p, _ := svc.CreatePet(ctx, o.ID, PetInput{Name: "Leo", PetTypeID: "dog"})

	if _, err := svc.SetPhoto(ctx, p.ID, "text/plain", []byte("x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-image, got %v", err)
	}
	big := bytes.Repeat([]byte{1}, MaxPhotoBytes+1)
	if _, err := svc.SetPhoto(ctx, p.ID, "image/png", big); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for large photo, got %v", err)
	}

	if _, err := svc.SetPhoto(ctx, p.ID, "image/png", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("SetPhoto error: %v", err)
	}
	ph, err := svc.GetPhoto(ctx, p.ID)
	if err != nil || ph.ContentType != "image/png" || len(ph.Data) != 4 {
		t.Fatalf("unexpected photo: %+v (%v)", ph, err)
	}
}

func TestService_OwnerPet_ChecksOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateOwner(ctx, validOwner())
	b, _ := svc.CreateOwner(ctx, validOwner())
	p, _ := svc.CreatePet(ctx, b.ID, PetInput{Name: "Leo", PetTypeID: "dog"})

	if _, err := svc.OwnerPet(ctx, a.ID, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another owner's pet, got %v", err)
	}
	got, err := svc.OwnerPet(ctx, b.ID, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("OwnerPet: %+v (%v)", got, err)
	}
}
