package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"petclinic/internal/platform/validate"
	"petclinic/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable")
	ErrUnauthorized  = errors.New("unauthorized")
)

// TokenIssuer firma y verifica tokens de sesión.
type TokenIssuer interface {
	Sign(c auth.Claims) (string, time.Time, error)
	Verify(ctx context.Context, token string) (auth.Claims, error)
}

type Service struct {
	repo     Repository
	roles    RoleRepository
	tokens   TokenIssuer
	hashCost int
	now      func() time.Time
}

type Option func(*Service)

// WithHashCost cambia el costo de bcrypt (los tests usan bcrypt.MinCost).
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(repo Repository, roles RoleRepository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		roles:    roles,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type RegisterInput struct {
	UserID   string // opcional: lo manda el gateway para alinear con el owner
	Username string
	Email    string
	Password string
}

func validatePassword(p string) error {
	if len(p) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLen)
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("%w: password must contain a letter and a digit", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	return s.create(ctx, in, []string{DefaultRole})
}

func (s *Service) create(ctx context.Context, in RegisterInput, roles []string) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.UserID = strings.TrimSpace(in.UserID)

	if len([]rune(in.Username)) < MinUsernameLen {
		return User{}, fmt.Errorf("%w: username must be at least %d characters", ErrInvalidInput, MinUsernameLen)
	}
	if !validate.Email(in.Email) {
		return User{}, fmt.Errorf("%w: email must be a valid email", ErrInvalidInput)
	}
	if err := validatePassword(in.Password); err != nil {
		return User{}, err
	}

	for _, login := range []string{in.Username, in.Email} {
		if _, err := s.repo.GetByLogin(ctx, login); err == nil {
			return User{}, fmt.Errorf("%w: username or email already in use", ErrUnprocessable)
		} else if !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
	}
	if in.UserID != "" {
		if _, err := s.repo.GetByID(ctx, in.UserID); err == nil {
			return User{}, fmt.Errorf("%w: user %s already exists", ErrUnprocessable, in.UserID)
		}
	} else {
		in.UserID = uuid.NewString()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	now := s.now()
	u := User{
		ID:           in.UserID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Session es el resultado de un login exitoso.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// Login acepta username o email. Cualquier falla es ErrUnauthorized.
func (s *Service) Login(ctx context.Context, login, password string) (Session, error) {
	u, err := s.repo.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if u.Disabled {
		return Session{}, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}

	tok, exp, err := s.tokens.Sign(u.Claims())
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

// ValidateToken verifica firma/vencimiento y que el usuario siga habilitado.
func (s *Service) ValidateToken(ctx context.Context, token string) (auth.Claims, error) {
	c, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	u, err := s.repo.GetByID(ctx, c.UserID)
	if err != nil || u.Disabled {
		return auth.Claims{}, fmt.Errorf("%w: user is not active", ErrUnauthorized)
	}
	return u.Claims(), nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Disabled = disabled
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateRoles reemplaza los roles; todos deben existir.
func (s *Service) UpdateRoles(ctx context.Context, id string, roles []string) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if len(roles) == 0 {
		return User{}, fmt.Errorf("%w: at least one role is required", ErrInvalidInput)
	}

	out := make([]string, 0, len(roles))
	seen := map[string]bool{}
	for _, raw := range roles {
		name := normalizeRole(raw)
		if seen[name] {
			continue
		}
		if _, err := s.roles.GetByName(ctx, name); err != nil {
			if errors.Is(err, ErrNotFound) {
				return User{}, fmt.Errorf("%w: role %s does not exist", ErrInvalidInput, name)
			}
			return User{}, err
		}
		seen[name] = true
		out = append(out, name)
	}

	u.Roles = out
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// -------------------------
// Roles
// -------------------------

func normalizeRole(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func (s *Service) CreateRole(ctx context.Context, name string) (Role, error) {
	name = normalizeRole(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return Role{}, fmt.Errorf("%w: role %s already exists", ErrUnprocessable, name)
	} else if !errors.Is(err, ErrNotFound) {
		return Role{}, err
	}

	r := Role{ID: uuid.NewString(), Name: name}
	if err := s.roles.Create(ctx, r); err != nil {
		return Role{}, err
	}
	return r, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.List(ctx)
}

// SeedRoles crea los roles de sistema que falten.
func (s *Service) SeedRoles(ctx context.Context) error {
	for _, name := range BuiltinRoles {
		if _, err := s.CreateRole(ctx, name); err != nil && !errors.Is(err, ErrUnprocessable) {
			return err
		}
	}
	return nil
}

// SeedAdmin crea el usuario admin si no existe. Devuelve false si ya estaba.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	if _, err := s.repo.GetByLogin(ctx, AdminUsername); err == nil {
		return false, nil
	}
	if strings.TrimSpace(email) == "" {
		email = "admin@petclinic.local"
	}
	_, err := s.create(ctx, RegisterInput{Username: AdminUsername, Email: email, Password: password}, []string{auth.RoleAdmin})
	if err != nil {
		return false, err
	}
	return true, nil
}
