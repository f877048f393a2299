package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petclinic/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSecret = errors.New("jwt secret is empty")

// tokenClaims es el payload firmado: sub, id, email, roles + exp/iat.
type tokenClaims struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Signer firma y verifica tokens HS256 con un secreto compartido.
// Lo usan el servicio auth (emisión) y el gateway en modo local (verificación).
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ auth.AuthVerifier = (*Signer)(nil)

func New(secret string, ttl time.Duration) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign devuelve el token y su vencimiento.
func (s *Signer) Sign(c auth.Claims) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		ID:    c.UserID,
		Email: c.Email,
		Roles: c.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

func (s *Signer) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if strings.TrimSpace(tc.ID) == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing user id", auth.ErrInvalidToken)
	}

	return auth.Claims{
		UserID:   tc.ID,
		Username: tc.Subject,
		Email:    tc.Email,
		Roles:    tc.Roles,
	}, nil
}
