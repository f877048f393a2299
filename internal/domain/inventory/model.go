package inventory

import (
	"fmt"
	"strings"
	"time"
)

type Inventory struct {
	ID          string
	Name        string
	Type        string
	Description string
	Image       string
	BackupImage string
	Important   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type InventoryType struct {
	ID   string
	Type string
}

// StockStatus se deriva de la cantidad; no se persiste como dato de entrada.
type StockStatus string

const (
	StatusAvailable  StockStatus = "AVAILABLE"
	StatusReOrder    StockStatus = "RE_ORDER"
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

const ReOrderThreshold = 20

// StatusFor: 0 => OUT_OF_STOCK, < 20 => RE_ORDER, resto AVAILABLE.
func StatusFor(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity < ReOrderThreshold:
		return StatusReOrder
	default:
		return StatusAvailable
	}
}

func ParseStockStatus(s string) (StockStatus, error) {
	switch StockStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusReOrder:
		return StatusReOrder, nil
	case StatusOutOfStock:
		return StatusOutOfStock, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
}

type Product struct {
	ID            string
	InventoryID   string
	Name          string
	Description   string
	Price         float64
	Quantity      int
	SalePrice     float64
	Status        StockStatus
	LastUpdatedAt time.Time
}

// InventoryFilter busca por substring sin distinguir mayúsculas.
type InventoryFilter struct {
	Name          string
	Type          string
	Description   string
	ImportantOnly bool
}

func (f InventoryFilter) Matches(inv Inventory) bool {
	if f.ImportantOnly && !inv.Important {
		return false
	}
	return contains(inv.Name, f.Name) &&
		contains(inv.Type, f.Type) &&
		contains(inv.Description, f.Description)
}

type ProductFilter struct {
	Name        string
	Description string
	Status      StockStatus
}

func (f ProductFilter) Matches(p Product) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	return contains(p.Name, f.Name) && contains(p.Description, f.Description)
}

func contains(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
