package catalog

import (
	"context"
	"errors"
)

// ErrNotFound: el servicio de productos respondió 404.
var ErrNotFound = errors.New("catalog: product not found")

// Product es la vista de un producto que necesita carts (precio y stock actuales).
type Product struct {
	ID            string
	Name          string
	Description   string
	SalePrice     float64
	AverageRating float64
	Quantity      int
}

// Catalog consulta productos del servicio products.
type Catalog interface {
	Product(ctx context.Context, productID string) (Product, error)
}
