package jwtverifier

import (
	"context"
	"testing"
	"time"

	"petclinic/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s, err := New("s3cret", time.Hour)
	require.NoError(t, err)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tok, exp, err := s.Sign(auth.Claims{UserID: "u-1", Username: "milo", Email: "milo@test", Roles: []string{auth.RoleOwner}})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	c, err := s.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "milo", c.Username)
	assert.True(t, c.HasRole("owner"))
}

func TestSigner_Rejects(t *testing.T) {
	s, err := New("s3cret", time.Minute)
	require.NoError(t, err)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tok, _, err := s.Sign(auth.Claims{UserID: "u-1", Username: "milo"})
	require.NoError(t, err)

	other, _ := New("other", time.Minute)
	_, err = other.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = s.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = s.Verify(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = New(" ", time.Minute)
	assert.ErrorIs(t, err, ErrNoSecret)
}
