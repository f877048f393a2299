package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"petclinic/internal/domain/customers"

	"github.com/jmoiron/sqlx"
)

type OwnerRepo struct {
	db *sqlx.DB
}

func NewOwnerRepo(db *sqlx.DB) *OwnerRepo {
	return &OwnerRepo{db: db}
}

const ownerColumns = `id, first_name, last_name, address, city, province, telephone, created_at, updated_at`

type ownerRow struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Address   string    `db:"address"`
	City      string    `db:"city"`
	Province  string    `db:"province"`
	Telephone string    `db:"telephone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r ownerRow) toDomain() customers.Owner {
	return customers.Owner(r)
}

func (r *OwnerRepo) Create(ctx context.Context, o customers.Owner) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO owners (`+ownerColumns+`) VALUES (?,?,?,?,?,?,?,?,?)
	`), o.ID, o.FirstName, o.LastName, o.Address, o.City, o.Province, o.Telephone, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OwnerRepo) Update(ctx context.Context, o customers.Owner) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE owners SET
			first_name = ?, last_name = ?, address = ?, city = ?,
			province = ?, telephone = ?, updated_at = ?
		WHERE id = ?
	`), o.FirstName, o.LastName, o.Address, o.City, o.Province, o.Telephone, o.UpdatedAt, o.ID)
	return affected(res, err, customers.ErrNotFound)
}

func (r *OwnerRepo) GetByID(ctx context.Context, id string) (customers.Owner, error) {
	var row ownerRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+ownerColumns+` FROM owners WHERE id = ?`), id); err != nil {
		return customers.Owner{}, notFound(err, customers.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *OwnerRepo) List(ctx context.Context, f customers.OwnerFilter) ([]customers.Owner, error) {
	w := ownerWhere(f)
	return r.selectOwners(ctx, `SELECT `+ownerColumns+` FROM owners`+w.String()+` ORDER BY last_name, first_name, id`, w.args...)
}

func (r *OwnerRepo) Page(ctx context.Context, f customers.OwnerFilter, offset, limit int) ([]customers.Owner, error) {
	w := ownerWhere(f)
	args := append(w.args, limit, offset)
	return r.selectOwners(ctx, `SELECT `+ownerColumns+` FROM owners`+w.String()+` ORDER BY last_name, first_name, id LIMIT ? OFFSET ?`, args...)
}

func (r *OwnerRepo) Count(ctx context.Context, f customers.OwnerFilter) (int, error) {
	w := ownerWhere(f)
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM owners`+w.String()), w.args...)
	return n, err
}

func (r *OwnerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM owners WHERE id = ?`), id)
	return affected(res, err, customers.ErrNotFound)
}

func (r *OwnerRepo) selectOwners(ctx context.Context, q string, args ...any) ([]customers.Owner, error) {
	var rows []ownerRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]customers.Owner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func ownerWhere(f customers.OwnerFilter) *where {
	w := &where{}
	w.eqFold("id", f.OwnerID)
	w.eqFold("first_name", f.FirstName)
	w.eqFold("last_name", f.LastName)
	w.eqFold("telephone", f.Telephone)
	w.eqFold("city", f.City)
	return w
}

type PetRepo struct {
	db *sqlx.DB
}

func NewPetRepo(db *sqlx.DB) *PetRepo {
	return &PetRepo{db: db}
}

const petColumns = `id, owner_id, name, birth_date, pet_type_id, weight, is_active, created_at, updated_at`

type petRow struct {
	ID        string       `db:"id"`
	OwnerID   string       `db:"owner_id"`
	Name      string       `db:"name"`
	BirthDate sql.NullTime `db:"birth_date"`
	PetTypeID string       `db:"pet_type_id"`
	Weight    float64      `db:"weight"`
	IsActive  bool         `db:"is_active"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func (r petRow) toDomain() customers.Pet {
	p := customers.Pet{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		PetTypeID: r.PetTypeID,
		Weight:    r.Weight,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.BirthDate.Valid {
		// birth_date es DATE; el driver lo devuelve a medianoche
		t := r.BirthDate.Time.UTC()
		p.BirthDate = &t
	}
	return p
}

func (r *PetRepo) Create(ctx context.Context, p customers.Pet) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO pets (`+petColumns+`) VALUES (?,?,?,?,?,?,?,?,?)
	`), p.ID, p.OwnerID, p.Name, toNullDate(p.BirthDate), p.PetTypeID, p.Weight, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PetRepo) Update(ctx context.Context, p customers.Pet) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE pets SET
			owner_id = ?, name = ?, birth_date = ?, pet_type_id = ?,
			weight = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`), p.OwnerID, p.Name, toNullDate(p.BirthDate), p.PetTypeID, p.Weight, p.IsActive, p.UpdatedAt, p.ID)
	return affected(res, err, customers.ErrNotFound)
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (customers.Pet, error) {
	var row petRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+petColumns+` FROM pets WHERE id = ?`), id); err != nil {
		return customers.Pet{}, notFound(err, customers.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *PetRepo) List(ctx context.Context) ([]customers.Pet, error) {
	return r.selectPets(ctx, `SELECT `+petColumns+` FROM pets ORDER BY created_at, id`)
}

func (r *PetRepo) ListByOwner(ctx context.Context, ownerID string) ([]customers.Pet, error) {
	return r.selectPets(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
}

func (r *PetRepo) CountByType(ctx context.Context, petTypeID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM pets WHERE pet_type_id = ?`), petTypeID)
	return n, err
}

func (r *PetRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM pet_photos WHERE pet_id = ?`), id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM pets WHERE id = ?`), id)
	return affected(res, err, customers.ErrNotFound)
}

func (r *PetRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM pet_photos WHERE pet_id IN (SELECT id FROM pets WHERE owner_id = ?)
	`), ownerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM pets WHERE owner_id = ?`), ownerID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PetRepo) SavePhoto(ctx context.Context, ph customers.Photo) error {
	if _, err := r.GetByID(ctx, ph.PetID); err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM pet_photos WHERE pet_id = ?`), ph.PetID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO pet_photos (pet_id, content_type, data, updated_at) VALUES (?,?,?,?)
	`), ph.PetID, ph.ContentType, ph.Data, ph.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PetRepo) GetPhoto(ctx context.Context, petID string) (customers.Photo, error) {
	var ph struct {
		PetID       string    `db:"pet_id"`
		ContentType string    `db:"content_type"`
		Data        []byte    `db:"data"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
	err := r.db.GetContext(ctx, &ph, r.db.Rebind(`
		SELECT pet_id, content_type, data, updated_at FROM pet_photos WHERE pet_id = ?
	`), petID)
	if err != nil {
		return customers.Photo{}, notFound(err, customers.ErrNotFound)
	}
	return customers.Photo(ph), nil
}

func (r *PetRepo) selectPets(ctx context.Context, q string, args ...any) ([]customers.Pet, error) {
	var rows []petRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]customers.Pet, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// toNullDate: birth_date es DATE y puede faltar.
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

type PetTypeRepo struct {
	db *sqlx.DB
}

func NewPetTypeRepo(db *sqlx.DB) *PetTypeRepo {
	return &PetTypeRepo{db: db}
}

type petTypeRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

func (r *PetTypeRepo) Create(ctx context.Context, t customers.PetType) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO pet_types (id, name, description) VALUES (?,?,?)`),
		t.ID, t.Name, t.Description)
	return err
}

func (r *PetTypeRepo) Update(ctx context.Context, t customers.PetType) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE pet_types SET name = ?, description = ? WHERE id = ?`),
		t.Name, t.Description, t.ID)
	return affected(res, err, customers.ErrNotFound)
}

func (r *PetTypeRepo) GetByID(ctx context.Context, id string) (customers.PetType, error) {
	var row petTypeRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT id, name, description FROM pet_types WHERE id = ?`), id); err != nil {
		return customers.PetType{}, notFound(err, customers.ErrNotFound)
	}
	return customers.PetType(row), nil
}

func (r *PetTypeRepo) List(ctx context.Context) ([]customers.PetType, error) {
	var rows []petTypeRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, description FROM pet_types ORDER BY name`); err != nil {
		return nil, err
	}
	out := make([]customers.PetType, 0, len(rows))
	for _, row := range rows {
		out = append(out, customers.PetType(row))
	}
	return out, nil
}

func (r *PetTypeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM pet_types WHERE id = ?`), id)
	return affected(res, err, customers.ErrNotFound)
}
