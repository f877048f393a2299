package authsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"petclinic/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/validate-token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"userId":"u-1","username":"milo","email":"milo@test","roles":["OWNER"]}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	v, err := NewVerifier(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	c, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, []string{"OWNER"}, c.Roles)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = v.Verify(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestVerifier_NotConfigured(t *testing.T) {
	v, err := NewVerifier(Config{})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	v, err := NewVerifier(Config{BaseURL: url})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), "good")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, auth.ErrInvalidToken)
}
