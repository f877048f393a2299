package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	SalePrice   float64
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Name == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case in.Price <= 0:
		return fmt.Errorf("%w: product price must be greater than 0", ErrInvalidInput)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: product quantity must be greater than 0", ErrInvalidInput)
	case in.SalePrice <= 0:
		return fmt.Errorf("%w: product sale price must be greater than 0", ErrInvalidInput)
	}
	return nil
}

func (s *Service) ensureProductNameFree(ctx context.Context, inventoryID, name, selfID string) error {
	items, err := s.products.ListByInventory(ctx, inventoryID)
	if err != nil {
		return err
	}
	for _, p := range items {
		if p.ID != selfID && strings.EqualFold(p.Name, name) {
			return fmt.Errorf("%w: a product named %s already exists in this inventory", ErrUnprocessable, name)
		}
	}
	return nil
}

func (s *Service) AddProduct(ctx context.Context, inventoryID string, in ProductInput) (Product, error) {
	if _, err := s.Get(ctx, inventoryID); err != nil {
		return Product{}, err
	}
	if err := in.validate(); err != nil {
		return Product{}, err
	}
	if err := s.ensureProductNameFree(ctx, inventoryID, in.Name, ""); err != nil {
		return Product{}, err
	}

	p := Product{
		ID:            uuid.NewString(),
		InventoryID:   inventoryID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		Quantity:      in.Quantity,
		SalePrice:     in.SalePrice,
		Status:        StatusFor(in.Quantity),
		LastUpdatedAt: s.now(),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Product devuelve un producto solo si pertenece al inventario.
func (s *Service) Product(ctx context.Context, inventoryID, productID string) (Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Product{}, err
	}
	if p.InventoryID != inventoryID {
		return Product{}, fmt.Errorf("%w: product %s not found in inventory %s", ErrNotFound, productID, inventoryID)
	}
	return p, nil
}

func (s *Service) Products(ctx context.Context, inventoryID string, f ProductFilter) ([]Product, error) {
	if _, err := s.Get(ctx, inventoryID); err != nil {
		return nil, err
	}
	items, err := s.products.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(items))
	for _, p := range items {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, inventoryID, productID string, in ProductInput) (Product, error) {
	p, err := s.Product(ctx, inventoryID, productID)
	if err != nil {
		return Product{}, err
	}
	if err := in.validate(); err != nil {
		return Product{}, err
	}
	if err := s.ensureProductNameFree(ctx, inventoryID, in.Name, p.ID); err != nil {
		return Product{}, err
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Quantity = in.Quantity
	p.SalePrice = in.SalePrice
	return s.saveStock(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, inventoryID, productID string) error {
	if _, err := s.Product(ctx, inventoryID, productID); err != nil {
		return err
	}
	return s.products.Delete(ctx, productID)
}

func (s *Service) DeleteProducts(ctx context.Context, inventoryID string) error {
	if _, err := s.Get(ctx, inventoryID); err != nil {
		return err
	}
	return s.products.DeleteByInventory(ctx, inventoryID)
}

// saveStock recalcula el status y marca la actualización.
func (s *Service) saveStock(ctx context.Context, p Product) (Product, error) {
	p.Status = StatusFor(p.Quantity)
	p.LastUpdatedAt = s.now()
	if err := s.products.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Consume(ctx context.Context, inventoryID, productID string) (Product, error) {
	p, err := s.Product(ctx, inventoryID, productID)
	if err != nil {
		return Product{}, err
	}
	if p.Quantity <= 0 {
		return Product{}, fmt.Errorf("%w: not enough stock to consume", ErrInvalidInput)
	}
	p.Quantity--
	return s.saveStock(ctx, p)
}

func (s *Service) Restock(ctx context.Context, inventoryID, productID string, quantity int) (Product, error) {
	p, err := s.Product(ctx, inventoryID, productID)
	if err != nil {
		return Product{}, err
	}
	if quantity <= 0 {
		return Product{}, fmt.Errorf("%w: the restock quantity must be greater than 0", ErrInvalidInput)
	}
	p.Quantity += quantity
	return s.saveStock(ctx, p)
}

// Move pasa el producto a otro inventario existente.
func (s *Service) Move(ctx context.Context, inventoryID, productID, newInventoryID string) (Product, error) {
	p, err := s.Product(ctx, inventoryID, productID)
	if err != nil {
		return Product{}, err
	}
	if _, err := s.Get(ctx, newInventoryID); err != nil {
		return Product{}, err
	}
	if err := s.ensureProductNameFree(ctx, newInventoryID, p.Name, p.ID); err != nil {
		return Product{}, err
	}
	p.InventoryID = newInventoryID
	return s.saveStock(ctx, p)
}

// LowStock: productos bajo threshold; ErrNotFound si no hay ninguno.
func (s *Service) LowStock(ctx context.Context, inventoryID string, threshold int) ([]Product, error) {
	if threshold <= 0 {
		threshold = ReOrderThreshold
	}
	items, err := s.Products(ctx, inventoryID, ProductFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0)
	for _, p := range items {
		if p.Quantity < threshold {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no products below threshold in inventory %s", ErrNotFound, inventoryID)
	}
	return out, nil
}

func (s *Service) ProductQuantity(ctx context.Context, inventoryID string) (int, error) {
	items, err := s.Products(ctx, inventoryID, ProductFilter{})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Service) RecentUpdateMessage(ctx context.Context, inventoryID string) (string, error) {
	items, err := s.Products(ctx, inventoryID, ProductFilter{})
	if err != nil {
		return "", err
	}
	since := s.now().Add(-RecentWindow)
	n := 0
	for _, p := range items {
		if p.LastUpdatedAt.After(since) {
			n++
		}
	}
	if n == 0 {
		return "No recent updates.", nil
	}
	return fmt.Sprintf("%d supplies updated in the last 15 min.", n), nil
}
