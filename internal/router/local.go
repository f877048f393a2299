package router

import (
	"context"
	"errors"
	"fmt"

	"petclinic/internal/domain/customers"
	"petclinic/internal/domain/products"
	"petclinic/internal/domain/vets"
	"petclinic/internal/ports/catalog"
	"petclinic/internal/ports/directory"
)

// Adaptadores in-process para cuando products, customers y vets
// corren en el mismo binario que carts y billing.

type localCatalog struct{ svc *products.Service }

func (c localCatalog) Product(ctx context.Context, productID string) (catalog.Product, error) {
	p, err := c.svc.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return catalog.Product{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, productID)
		}
		return catalog.Product{}, err
	}
	return catalog.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SalePrice:     p.SalePrice,
		AverageRating: p.AverageRating,
		Quantity:      p.Quantity,
	}, nil
}

type localDirectory struct {
	owners *customers.Service
	vets   *vets.Service
}

func (d localDirectory) Owner(ctx context.Context, ownerID string) (directory.Person, error) {
	o, err := d.owners.GetOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, customers.ErrNotFound) {
			return directory.Person{}, directory.ErrNotFound
		}
		return directory.Person{}, err
	}
	return directory.Person{FirstName: o.FirstName, LastName: o.LastName}, nil
}

func (d localDirectory) Vet(ctx context.Context, vetID string) (directory.Person, error) {
	v, err := d.vets.Get(ctx, vetID)
	if err != nil {
		if errors.Is(err, vets.ErrNotFound) {
			return directory.Person{}, directory.ErrNotFound
		}
		return directory.Person{}, err
	}
	return directory.Person{FirstName: v.FirstName, LastName: v.LastName}, nil
}
