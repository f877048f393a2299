package notifications

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusRead    Status = "READ"
)

// TypeEmail es el tipo de las notificaciones creadas directo por POST.
const TypeEmail = "email"

type Notification struct {
	ID        string
	Type      string
	Recipient string
	Subject   string
	Body      string
	Status    Status
	Reference string // id de la entidad que la originó (bill, cart, product)
	CreatedAt time.Time
	ReadAt    *time.Time
}

// Filter: campos vacíos no filtran.
type Filter struct {
	Recipient string
	Type      string
}

func (f Filter) Matches(n Notification) bool {
	if r := strings.TrimSpace(f.Recipient); r != "" && !strings.EqualFold(r, n.Recipient) {
		return false
	}
	if t := strings.TrimSpace(f.Type); t != "" && !strings.EqualFold(t, n.Type) {
		return false
	}
	return true
}
