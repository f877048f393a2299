package customers

import (
	"strings"
	"time"
)

// Owner es el cliente de la clínica. Su ID coincide con el userId de auth
// cuando se registra por el gateway.
type Owner struct {
	ID        string
	FirstName string
	LastName  string
	Address   string
	City      string
	Province  string
	Telephone string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerFilter: campos vacíos no filtran.
type OwnerFilter struct {
	OwnerID   string
	FirstName string
	LastName  string
	Telephone string
	City      string
}

func (f OwnerFilter) Matches(o Owner) bool {
	eq := func(want, got string) bool {
		return want == "" || strings.EqualFold(strings.TrimSpace(want), got)
	}
	return eq(f.OwnerID, o.ID) &&
		eq(f.FirstName, o.FirstName) &&
		eq(f.LastName, o.LastName) &&
		eq(f.Telephone, o.Telephone) &&
		eq(f.City, o.City)
}

type Pet struct {
	ID        string
	OwnerID   string
	Name      string
	BirthDate *time.Time
	PetTypeID string
	Weight    float64
	IsActive  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PetType struct {
	ID          string
	Name        string
	Description string
}

// Photo de una mascota. Se guarda aparte para no arrastrar bytes en los listados.
type Photo struct {
	PetID       string
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

const MaxPhotoBytes = 1 << 20
