package vets

import "time"

type Specialty struct {
	ID   string `json:"specialtyId"`
	Name string `json:"name"`
}

type Vet struct {
	ID          string
	VetBillID   string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Resume      string
	Workday     []string
	Active      bool
	Specialties []Specialty

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Rating struct {
	ID              string
	VetID           string
	CustomerName    string
	RateScore       int
	RateDescription string
	RateDate        time.Time
}

// TopVet es un vet con su promedio, para el ranking.
type TopVet struct {
	Vet     Vet
	Average float64
	Count   int
}

const (
	MinScore          = 1
	MaxScore          = 5
	MaxDescriptionLen = 2000
	TopVetsLimit      = 3
)
