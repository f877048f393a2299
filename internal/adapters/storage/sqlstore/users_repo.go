package sqlstore

import (
	"context"
	"time"

	"petclinic/internal/domain/users"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, roles, disabled, created_at, updated_at`

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Roles        string    `db:"roles"`
	Disabled     bool      `db:"disabled"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() (users.User, error) {
	u := users.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Disabled:     r.Disabled,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if err := decodeJSON(r.Roles, &u.Roles); err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u users.User) error {
	roles, err := encodeJSON(nonNil(u.Roles))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?,?,?)
	`), u.ID, u.Username, u.Email, u.PasswordHash, roles, u.Disabled, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UserRepo) Update(ctx context.Context, u users.User) error {
	roles, err := encodeJSON(nonNil(u.Roles))
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET username = ?, email = ?, password_hash = ?, roles = ?, disabled = ?, updated_at = ?
		WHERE id = ?
	`), u.Username, u.Email, u.PasswordHash, roles, u.Disabled, u.UpdatedAt, u.ID)
	return affected(res, err, users.ErrNotFound)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (users.User, error) {
	var row userRow
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)`
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), login, login); err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return row.toDomain()
}

func (r *UserRepo) List(ctx context.Context) ([]users.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY username`); err != nil {
		return nil, err
	}
	out := make([]users.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	return affected(res, err, users.ErrNotFound)
}

func (r *UserRepo) getOne(ctx context.Context, q, arg string) (users.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), arg); err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return row.toDomain()
}

type RoleRepo struct {
	db *sqlx.DB
}

func NewRoleRepo(db *sqlx.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

type roleRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func (r *RoleRepo) Create(ctx context.Context, rl users.Role) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO roles (id, name) VALUES (?,?)`), rl.ID, rl.Name)
	return err
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (users.Role, error) {
	var row roleRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT id, name FROM roles WHERE name = ?`), name); err != nil {
		return users.Role{}, notFound(err, users.ErrNotFound)
	}
	return users.Role(row), nil
}

func (r *RoleRepo) List(ctx context.Context) ([]users.Role, error) {
	var rows []roleRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name FROM roles ORDER BY name`); err != nil {
		return nil, err
	}
	out := make([]users.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, users.Role(row))
	}
	return out, nil
}
