package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"petclinic/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

// ---- Test repos (in-memory) ----

type testRepo struct{ byID map[string]User }

func (r *testRepo) Create(ctx context.Context, u User) error { r.byID[u.ID] = u; return nil }
func (r *testRepo) Update(ctx context.Context, u User) error { r.byID[u.ID] = u; return nil }
func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}
func (r *testRepo) GetByLogin(ctx context.Context, login string) (User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}
func (r *testRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}
func (r *testRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }

type roleTestRepo struct{ byName map[string]Role }

func (r *roleTestRepo) Create(ctx context.Context, rl Role) error { r.byName[rl.Name] = rl; return nil }
func (r *roleTestRepo) GetByName(ctx context.Context, name string) (Role, error) {
	rl, ok := r.byName[name]
	if !ok {
		return Role{}, ErrNotFound
	}
	return rl, nil
}
func (r *roleTestRepo) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(r.byName))
	for _, rl := range r.byName {
		out = append(out, rl)
	}
	return out, nil
}

// fakeTokens: el token es "tok:<userId>".
type fakeTokens struct{ claims map[string]auth.Claims }

func (f *fakeTokens) Sign(c auth.Claims) (string, time.Time, error) {
	tok := "tok:" + c.UserID
	f.claims[tok] = c
	return tok, fixedNow.Add(time.Hour), nil
}
func (f *fakeTokens) Verify(ctx context.Context, token string) (auth.Claims, error) {
	c, ok := f.claims[token]
	if !ok {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return c, nil
}

var fixedNow = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(
		&testRepo{byID: map[string]User{}},
		&roleTestRepo{byName: map[string]Role{}},
		&fakeTokens{claims: map[string]auth.Claims{}},
		WithHashCost(bcrypt.MinCost),
	)
	svc.now = func() time.Time { return fixedNow }
	if err := svc.SeedRoles(context.Background()); err != nil {
		t.Fatalf("SeedRoles: %v", err)
	}
	return svc
}

func mustRegister(t *testing.T, svc *Service, username, email string) User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

// ---- Tests ----

func TestService_Register_Validation(t *testing.T) {
	svc := newTestService(t)

	cases := []RegisterInput{
		{Username: "ab", Email: "a@b.test", Password: "secret123"},
		{Username: "milo", Email: "nope", Password: "secret123"},
		{Username: "milo", Email: "milo@test.io", Password: "short1"},
		{Username: "milo", Email: "milo@test.io", Password: "onlyletters"},
		{Username: "milo", Email: "milo@test.io", Password: "12345678"},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}

	u := mustRegister(t, svc, "milo", "Milo@Test.io")
	if u.Email != "milo@test.io" || len(u.Roles) != 1 || u.Roles[0] != auth.RoleOwner {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash == "secret123" {
		t.Fatalf("password must be hashed")
	}

	if _, err := svc.Register(context.Background(), RegisterInput{Username: "MILO", Email: "x@test.io", Password: "secret123"}); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable for duplicate username, got %v", err)
	}
}

func TestService_Register_CallerID(t *testing.T) {
	svc := newTestService(t)
	u, err := svc.Register(context.Background(), RegisterInput{UserID: "owner-1", Username: "milo", Email: "milo@test.io", Password: "secret123"})
	if err != nil || u.ID != "owner-1" {
		t.Fatalf("Register: %+v %v", u, err)
	}
}

func TestService_Login(t *testing.T) {
	svc := newTestService(t)
	u := mustRegister(t, svc, "milo", "milo@test.io")
	ctx := context.Background()

	sess, err := svc.Login(ctx, "milo@test.io", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token != "tok:"+u.ID || sess.User.ID != u.ID {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := svc.Login(ctx, "milo", "wrong-pass1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost", "secret123"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}

	c, err := svc.ValidateToken(ctx, sess.Token)
	if err != nil || c.UserID != u.ID {
		t.Fatalf("ValidateToken: %+v %v", c, err)
	}

	if _, err := svc.SetDisabled(ctx, u.ID, true); err != nil {
		t.Fatalf("SetDisabled: %v", err)
	}
	if _, err := svc.Login(ctx, "milo", "secret123"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for disabled user, got %v", err)
	}
	if _, err := svc.ValidateToken(ctx, sess.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("disabled user token must not validate, got %v", err)
	}
}

func TestService_Roles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "milo", "milo@test.io")

	if _, err := svc.CreateRole(ctx, "vet"); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable for builtin role, got %v", err)
	}
	r, err := svc.CreateRole(ctx, " receptionist ")
	if err != nil || r.Name != "RECEPTIONIST" {
		t.Fatalf("CreateRole: %+v %v", r, err)
	}

	if _, err := svc.UpdateRoles(ctx, u.ID, []string{"vet", "ghost"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
	got, err := svc.UpdateRoles(ctx, u.ID, []string{"vet", "VET", "receptionist"})
	if err != nil {
		t.Fatalf("UpdateRoles: %v", err)
	}
	if len(got.Roles) != 2 || got.Roles[0] != auth.RoleVet || got.Roles[1] != "RECEPTIONIST" {
		t.Fatalf("unexpected roles: %v", got.Roles)
	}
}

func TestService_SeedAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.SeedAdmin(ctx, "", "adminpass1")
	if err != nil || !created {
		t.Fatalf("SeedAdmin: created=%v err=%v", created, err)
	}
	created, err = svc.SeedAdmin(ctx, "", "adminpass1")
	if err != nil || created {
		t.Fatalf("second SeedAdmin must be a no-op: created=%v err=%v", created, err)
	}

	sess, err := svc.Login(ctx, AdminUsername, "adminpass1")
	if err != nil || !sess.User.Claims().IsAdmin() {
		t.Fatalf("admin login: %+v %v", sess, err)
	}
}
