package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable")
)

// RecentWindow es la ventana del mensaje de actualizaciones recientes.
const RecentWindow = 15 * time.Minute

type Service struct {
	repo     Repository
	types    TypeRepository
	products ProductRepository
	now      func() time.Time
}

func NewService(repo Repository, types TypeRepository, products ProductRepository) *Service {
	return &Service{
		repo:     repo,
		types:    types,
		products: products,
		now:      time.Now,
	}
}

type InventoryInput struct {
	Name        string
	Type        string
	Description string
	Image       string
	BackupImage string
	Important   bool
}

func (in *InventoryInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.BackupImage = strings.TrimSpace(in.BackupImage)

	switch {
	case in.Name == "":
		return fmt.Errorf("%w: inventory name is required", ErrInvalidInput)
	case len([]rune(in.Name)) < 3:
		return fmt.Errorf("%w: inventory name must be at least 3 characters long", ErrInvalidInput)
	case in.Type == "":
		return fmt.Errorf("%w: inventory type cannot be blank", ErrInvalidInput)
	case in.Description == "":
		return fmt.Errorf("%w: inventory description is required", ErrInvalidInput)
	case in.Image != "" && !isHTTPURL(in.Image):
		return fmt.Errorf("%w: inventory image must be a valid URL (http/https)", ErrInvalidInput)
	case in.BackupImage != "" && !isHTTPURL(in.BackupImage):
		return fmt.Errorf("%w: inventory backup image must be a valid URL (http/https)", ErrInvalidInput)
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Scheme, "http") || strings.EqualFold(u.Scheme, "https")
}

// ensureNameFree: nombre único sin distinguir mayúsculas (excluye selfID).
func (s *Service) ensureNameFree(ctx context.Context, name, selfID string) error {
	all, err := s.repo.List(ctx, InventoryFilter{})
	if err != nil {
		return err
	}
	for _, inv := range all {
		if inv.ID != selfID && strings.EqualFold(inv.Name, name) {
			return fmt.Errorf("%w: inventory name already exists", ErrUnprocessable)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in InventoryInput) (Inventory, error) {
	if err := in.validate(); err != nil {
		return Inventory{}, err
	}
	if err := s.ensureNameFree(ctx, in.Name, ""); err != nil {
		return Inventory{}, err
	}

	now := s.now()
	inv := Inventory{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		Image:       in.Image,
		BackupImage: in.BackupImage,
		Important:   in.Important,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (Inventory, error) {
	if strings.TrimSpace(id) == "" {
		return Inventory{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f InventoryFilter) ([]Inventory, error) {
	return s.repo.List(ctx, f)
}

const DefaultPageSize = 10

// Search aplica el filtro y pagina en memoria.
func (s *Service) Search(ctx context.Context, f InventoryFilter, page, size int) ([]Inventory, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: page must be >= 0 and size > 0", ErrInvalidInput)
	}
	all, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	start := page * size
	if start >= len(all) {
		return []Inventory{}, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (s *Service) Update(ctx context.Context, id string, in InventoryInput) (Inventory, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return Inventory{}, err
	}
	if err := in.validate(); err != nil {
		return Inventory{}, err
	}
	if err := s.ensureNameFree(ctx, in.Name, inv.ID); err != nil {
		return Inventory{}, err
	}

	inv.Name = in.Name
	inv.Type = in.Type
	inv.Description = in.Description
	inv.Image = in.Image
	inv.BackupImage = in.BackupImage
	inv.Important = in.Important
	inv.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}

func (s *Service) SetImportant(ctx context.Context, id string, important bool) (Inventory, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return Inventory{}, err
	}
	inv.Important = important
	inv.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}

// Delete borra el inventario y sus productos.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.products.DeleteByInventory(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.products.DeleteAll(ctx); err != nil {
		return err
	}
	return s.repo.DeleteAll(ctx)
}

// -------------------------
// Inventory types
// -------------------------

func (s *Service) CreateType(ctx context.Context, name string) (InventoryType, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return InventoryType{}, fmt.Errorf("%w: type name is required", ErrInvalidInput)
	case len([]rune(name)) < 3:
		return InventoryType{}, fmt.Errorf("%w: type name must be at least 3 characters", ErrInvalidInput)
	}

	existing, err := s.types.List(ctx)
	if err != nil {
		return InventoryType{}, err
	}
	for _, t := range existing {
		if strings.EqualFold(t.Type, name) {
			return InventoryType{}, fmt.Errorf("%w: inventory type already exists", ErrUnprocessable)
		}
	}

	t := InventoryType{ID: uuid.NewString(), Type: name}
	if err := s.types.Create(ctx, t); err != nil {
		return InventoryType{}, err
	}
	return t, nil
}

func (s *Service) ListTypes(ctx context.Context) ([]InventoryType, error) {
	return s.types.List(ctx)
}

func (s *Service) TypeNames(ctx context.Context) ([]string, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.Type)
	}
	return out, nil
}
