package sqlstore

import (
	"context"
	"time"

	"petclinic/internal/domain/vets"

	"github.com/jmoiron/sqlx"
)

type VetRepo struct {
	db *sqlx.DB
}

func NewVetRepo(db *sqlx.DB) *VetRepo {
	return &VetRepo{db: db}
}

const vetColumns = `id, vet_bill_id, first_name, last_name, email, phone_number, resume,
	workday, active, specialties, created_at, updated_at`

type vetRow struct {
	ID          string    `db:"id"`
	VetBillID   string    `db:"vet_bill_id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Email       string    `db:"email"`
	PhoneNumber string    `db:"phone_number"`
	Resume      string    `db:"resume"`
	Workday     string    `db:"workday"`
	Active      bool      `db:"active"`
	Specialties string    `db:"specialties"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r vetRow) toDomain() (vets.Vet, error) {
	v := vets.Vet{
		ID:          r.ID,
		VetBillID:   r.VetBillID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Resume:      r.Resume,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := decodeJSON(r.Workday, &v.Workday); err != nil {
		return vets.Vet{}, err
	}
	if err := decodeJSON(r.Specialties, &v.Specialties); err != nil {
		return vets.Vet{}, err
	}
	return v, nil
}

func (r *VetRepo) Create(ctx context.Context, v vets.Vet) error {
	workday, specialties, err := encodeVetLists(v)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO vets (`+vetColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`), v.ID, v.VetBillID, v.FirstName, v.LastName, v.Email, v.PhoneNumber, v.Resume,
		workday, v.Active, specialties, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *VetRepo) Update(ctx context.Context, v vets.Vet) error {
	workday, specialties, err := encodeVetLists(v)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE vets SET
			vet_bill_id = ?, first_name = ?, last_name = ?, email = ?, phone_number = ?,
			resume = ?, workday = ?, active = ?, specialties = ?, updated_at = ?
		WHERE id = ?
	`), v.VetBillID, v.FirstName, v.LastName, v.Email, v.PhoneNumber,
		v.Resume, workday, v.Active, specialties, v.UpdatedAt, v.ID)
	return affected(res, err, vets.ErrNotFound)
}

func (r *VetRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	return r.getOne(ctx, `SELECT `+vetColumns+` FROM vets WHERE id = ?`, id)
}

func (r *VetRepo) GetByEmail(ctx context.Context, email string) (vets.Vet, error) {
	return r.getOne(ctx, `SELECT `+vetColumns+` FROM vets WHERE LOWER(email) = LOWER(?)`, email)
}

func (r *VetRepo) List(ctx context.Context, active *bool) ([]vets.Vet, error) {
	w := &where{}
	if active != nil {
		w.add("active = ?", *active)
	}
	var rows []vetRow
	q := `SELECT ` + vetColumns + ` FROM vets` + w.String() + ` ORDER BY last_name, first_name, id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), w.args...); err != nil {
		return nil, err
	}
	out := make([]vets.Vet, 0, len(rows))
	for _, row := range rows {
		v, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *VetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM vets WHERE id = ?`), id)
	return affected(res, err, vets.ErrNotFound)
}

func (r *VetRepo) getOne(ctx context.Context, q string, arg any) (vets.Vet, error) {
	var row vetRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), arg); err != nil {
		return vets.Vet{}, notFound(err, vets.ErrNotFound)
	}
	return row.toDomain()
}

func encodeVetLists(v vets.Vet) (string, string, error) {
	workday := v.Workday
	if workday == nil {
		workday = []string{}
	}
	w, err := encodeJSON(workday)
	if err != nil {
		return "", "", err
	}
	specialties := v.Specialties
	if specialties == nil {
		specialties = []vets.Specialty{}
	}
	s, err := encodeJSON(specialties)
	if err != nil {
		return "", "", err
	}
	return w, s, nil
}

type VetRatingRepo struct {
	db *sqlx.DB
}

func NewVetRatingRepo(db *sqlx.DB) *VetRatingRepo {
	return &VetRatingRepo{db: db}
}

const vetRatingColumns = `id, vet_id, customer_name, rate_score, rate_description, rate_date`

type vetRatingRow struct {
	ID              string    `db:"id"`
	VetID           string    `db:"vet_id"`
	CustomerName    string    `db:"customer_name"`
	RateScore       int       `db:"rate_score"`
	RateDescription string    `db:"rate_description"`
	RateDate        time.Time `db:"rate_date"`
}

func (r *VetRatingRepo) Create(ctx context.Context, rt vets.Rating) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO vet_ratings (`+vetRatingColumns+`) VALUES (?,?,?,?,?,?)
	`), rt.ID, rt.VetID, rt.CustomerName, rt.RateScore, rt.RateDescription, rt.RateDate)
	return err
}

func (r *VetRatingRepo) Update(ctx context.Context, rt vets.Rating) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE vet_ratings SET customer_name = ?, rate_score = ?, rate_description = ?, rate_date = ?
		WHERE id = ?
	`), rt.CustomerName, rt.RateScore, rt.RateDescription, rt.RateDate, rt.ID)
	return affected(res, err, vets.ErrNotFound)
}

func (r *VetRatingRepo) GetByID(ctx context.Context, id string) (vets.Rating, error) {
	var row vetRatingRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+vetRatingColumns+` FROM vet_ratings WHERE id = ?`), id); err != nil {
		return vets.Rating{}, notFound(err, vets.ErrNotFound)
	}
	return vets.Rating(row), nil
}

func (r *VetRatingRepo) ListByVet(ctx context.Context, vetID string) ([]vets.Rating, error) {
	var rows []vetRatingRow
	q := `SELECT ` + vetRatingColumns + ` FROM vet_ratings WHERE vet_id = ? ORDER BY rate_date, id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), vetID); err != nil {
		return nil, err
	}
	out := make([]vets.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, vets.Rating(row))
	}
	return out, nil
}

func (r *VetRatingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM vet_ratings WHERE id = ?`), id)
	return affected(res, err, vets.ErrNotFound)
}

func (r *VetRatingRepo) DeleteByVet(ctx context.Context, vetID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM vet_ratings WHERE vet_id = ?`), vetID)
	return err
}
