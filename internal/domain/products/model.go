package products

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPreOrder  Status = "PRE_ORDER"
	StatusAvailable Status = "AVAILABLE"
)

// StatusAt: PRE_ORDER si la fecha de lanzamiento es posterior a today.
func StatusAt(release *time.Time, today time.Time) Status {
	if release != nil && dateOf(*release).After(dateOf(today)) {
		return StatusPreOrder
	}
	return StatusAvailable
}

type Product struct {
	ID            string
	Name          string
	Description   string
	SalePrice     float64
	AverageRating float64
	Quantity      int
	Type          string
	Status        Status
	ReleaseDate   *time.Time
	IsUnlisted    bool
	RequestCount  int
	DeliveryType  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter: nil no filtra. Sort: asc|desc|default por averageRating.
type ListFilter struct {
	MinPrice     *float64
	MaxPrice     *float64
	MinRating    *float64
	MaxRating    *float64
	DeliveryType string
	Sort         string
}

func (f ListFilter) Matches(p Product) bool {
	switch {
	case f.MinPrice != nil && p.SalePrice < *f.MinPrice:
		return false
	case f.MaxPrice != nil && p.SalePrice > *f.MaxPrice:
		return false
	case f.MinRating != nil && p.AverageRating < *f.MinRating:
		return false
	case f.MaxRating != nil && p.AverageRating > *f.MaxRating:
		return false
	}
	dt := strings.TrimSpace(f.DeliveryType)
	return dt == "" || strings.EqualFold(dt, p.DeliveryType)
}

func parseSort(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return "default", nil
	case "asc":
		return "asc", nil
	case "desc":
		return "desc", nil
	default:
		return "", fmt.Errorf("%w: invalid sort parameter: %s", ErrInvalidInput, s)
	}
}

type Bundle struct {
	ID                 string
	Name               string
	Description        string
	ProductIDs         []string
	OriginalTotalPrice float64
	BundlePrice        float64
}

type Rating struct {
	ProductID  string
	CustomerID string
	Rating     int
	Review     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const (
	MinScore        = 1
	MaxScore        = 5
	MaxReviewLength = 2000
)

type NotificationType string

const (
	NotifyPrice    NotificationType = "PRICE"
	NotifyQuantity NotificationType = "QUANTITY"
)

type Subscription struct {
	ProductID        string
	CustomerID       string
	Email            string
	NotificationType []NotificationType
}

func (s Subscription) Wants(t NotificationType) bool {
	for _, nt := range s.NotificationType {
		if nt == t {
			return true
		}
	}
	return false
}

// ProductEvent es el payload de product.restocked / product.price_dropped.
type ProductEvent struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	CustomerID  string  `json:"customerId"`
	Email       string  `json:"email"`
	OldValue    float64 `json:"oldValue"`
	NewValue    float64 `json:"newValue"`
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
