package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken: token mal formado, con firma inválida o vencido.
var ErrInvalidToken = errors.New("invalid token")

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
