package auth

import "strings"

// Roles conocidos.
const (
	RoleAdmin            = "ADMIN"
	RoleVet              = "VET"
	RoleOwner            = "OWNER"
	RoleInventoryManager = "INVENTORY_MANAGER"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string   `json:"id"`
	Username string   `json:"sub"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// HasAnyRole: true si roles está vacío o el usuario tiene alguno.
func (c Claims) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

func (c Claims) IsAdmin() bool { return c.HasRole(RoleAdmin) }
