package users

import (
	"time"

	"petclinic/internal/ports/auth"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	Disabled     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) Claims() auth.Claims {
	return auth.Claims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.Roles,
	}
}

type Role struct {
	ID   string
	Name string
}

// BuiltinRoles se siembran al arrancar.
var BuiltinRoles = []string{auth.RoleAdmin, auth.RoleVet, auth.RoleOwner, auth.RoleInventoryManager}

const (
	MinUsernameLen = 3
	MinPasswordLen = 8
	DefaultRole    = auth.RoleOwner
	AdminUsername  = "admin"
)
