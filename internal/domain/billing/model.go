package billing

import (
	"fmt"
	"strings"
	"time"
)

// Status de una factura.
type Status string

const (
	StatusPaid    Status = "PAID"
	StatusUnpaid  Status = "UNPAID"
	StatusOverdue Status = "OVERDUE"
)

// ParseStatus acepta cualquier capitalización. Vacío => "".
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case StatusPaid:
		return StatusPaid, nil
	case StatusUnpaid:
		return StatusUnpaid, nil
	case StatusOverdue:
		return StatusOverdue, nil
	default:
		return "", fmt.Errorf("%w: unknown bill status %q", ErrInvalidInput, s)
	}
}

// Bill es una factura de una visita. Date y DueDate son fechas (00:00 UTC).
type Bill struct {
	ID         string
	CustomerID string

	OwnerFirstName string
	OwnerLastName  string

	VetID        string
	VetFirstName string
	VetLastName  string

	VisitType string

	Date    time.Time
	DueDate time.Time

	Amount      float64
	TaxedAmount float64

	Status         Status
	InterestExempt bool
	Archive        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter: campos vacíos no filtran. Los nombres comparan sin distinguir mayúsculas.
type Filter struct {
	BillID         string
	CustomerID     string
	OwnerFirstName string
	OwnerLastName  string
	VisitType      string
	VetID          string
	VetFirstName   string
	VetLastName    string
	Status         Status
}

// Matches aplica el filtro en memoria (repos in-memory y tests).
func (f Filter) Matches(b Bill) bool {
	eq := func(want, got string) bool {
		return want == "" || strings.EqualFold(strings.TrimSpace(want), got)
	}
	return eq(f.BillID, b.ID) &&
		eq(f.CustomerID, b.CustomerID) &&
		eq(f.OwnerFirstName, b.OwnerFirstName) &&
		eq(f.OwnerLastName, b.OwnerLastName) &&
		eq(f.VisitType, b.VisitType) &&
		eq(f.VetID, b.VetID) &&
		eq(f.VetFirstName, b.VetFirstName) &&
		eq(f.VetLastName, b.VetLastName) &&
		(f.Status == "" || f.Status == b.Status)
}

// View agrega los campos calculados a la fecha de referencia.
type View struct {
	Bill
	Interest      float64
	TimeRemaining int
}

// BillEvent es el payload de bill.created / bill.overdue / bill.paid.
type BillEvent struct {
	BillID     string  `json:"billId"`
	CustomerID string  `json:"customerId"`
	VetID      string  `json:"vetId"`
	Amount     float64 `json:"amount"`
	Status     Status  `json:"billStatus"`
	DueDate    string  `json:"dueDate"`
}

func toEvent(b Bill) BillEvent {
	return BillEvent{
		BillID:     b.ID,
		CustomerID: b.CustomerID,
		VetID:      b.VetID,
		Amount:     b.Amount,
		Status:     b.Status,
		DueDate:    b.DueDate.Format(DateLayout),
	}
}

const DateLayout = "2006-01-02"

// dateOf trunca a fecha en UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
