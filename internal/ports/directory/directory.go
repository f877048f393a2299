package directory

import (
	"context"
	"errors"
)

// ErrNotFound: el servicio dueño del dato respondió 404.
var ErrNotFound = errors.New("directory: not found")

// Person es lo mínimo que billing necesita de un owner o un vet.
type Person struct {
	FirstName string
	LastName  string
}

// Resolver resuelve nombres de owners (customers) y vets por HTTP.
type Resolver interface {
	Owner(ctx context.Context, ownerID string) (Person, error)
	Vet(ctx context.Context, vetID string) (Person, error)
}
