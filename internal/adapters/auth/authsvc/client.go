package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"petclinic/internal/platform/httpclient"
	"petclinic/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("auth service client not configured")
	ErrUpstream      = errors.New("auth service upstream error")
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier preguntando al servicio auth
// (POST /users/validate-token). Lo usa el gateway en modo remote.
type Verifier struct {
	http *httpclient.Client
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func NewVerifier(cfg Config) (*Verifier, error) {
	c, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Verifier{http: c}, nil
}

func (v *Verifier) IsConfigured() bool {
	return v != nil && v.http != nil && v.http.BaseURL != ""
}

type claimsResponse struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if !v.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	var out claimsResponse
	err := v.http.DoJSON(ctx, http.MethodPost, "/users/validate-token",
		map[string]string{"Authorization": "Bearer " + token}, nil, &out)
	switch status := httpclient.StatusOf(err); {
	case err == nil:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return auth.Claims{}, auth.ErrInvalidToken
	default:
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing userId", ErrUpstream)
	}
	return auth.Claims{
		UserID:   out.UserID,
		Username: strings.TrimSpace(out.Username),
		Email:    strings.TrimSpace(out.Email),
		Roles:    out.Roles,
	}, nil
}
