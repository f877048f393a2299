package sqlstore

import (
	"context"
	"time"

	"petclinic/internal/domain/billing"

	"github.com/jmoiron/sqlx"
)

type BillRepo struct {
	db *sqlx.DB
}

func NewBillRepo(db *sqlx.DB) *BillRepo {
	return &BillRepo{db: db}
}

const billColumns = `id, customer_id, owner_first_name, owner_last_name,
	vet_id, vet_first_name, vet_last_name, visit_type,
	bill_date, due_date, amount, taxed_amount,
	status, interest_exempt, archive, created_at, updated_at`

type billRow struct {
	ID             string    `db:"id"`
	CustomerID     string    `db:"customer_id"`
	OwnerFirstName string    `db:"owner_first_name"`
	OwnerLastName  string    `db:"owner_last_name"`
	VetID          string    `db:"vet_id"`
	VetFirstName   string    `db:"vet_first_name"`
	VetLastName    string    `db:"vet_last_name"`
	VisitType      string    `db:"visit_type"`
	Date           time.Time `db:"bill_date"`
	DueDate        time.Time `db:"due_date"`
	Amount         float64   `db:"amount"`
	TaxedAmount    float64   `db:"taxed_amount"`
	Status         string    `db:"status"`
	InterestExempt bool      `db:"interest_exempt"`
	Archive        bool      `db:"archive"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r billRow) toDomain() billing.Bill {
	return billing.Bill{
		ID:             r.ID,
		CustomerID:     r.CustomerID,
		OwnerFirstName: r.OwnerFirstName,
		OwnerLastName:  r.OwnerLastName,
		VetID:          r.VetID,
		VetFirstName:   r.VetFirstName,
		VetLastName:    r.VetLastName,
		VisitType:      r.VisitType,
		Date:           r.Date.UTC(),
		DueDate:        r.DueDate.UTC(),
		Amount:         r.Amount,
		TaxedAmount:    r.TaxedAmount,
		Status:         billing.Status(r.Status),
		InterestExempt: r.InterestExempt,
		Archive:        r.Archive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r *BillRepo) Create(ctx context.Context, b billing.Bill) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO bills (`+billColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`),
		b.ID, b.CustomerID, b.OwnerFirstName, b.OwnerLastName,
		b.VetID, b.VetFirstName, b.VetLastName, b.VisitType,
		b.Date, b.DueDate, b.Amount, b.TaxedAmount,
		string(b.Status), b.InterestExempt, b.Archive, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (r *BillRepo) Update(ctx context.Context, b billing.Bill) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE bills SET
			customer_id = ?, owner_first_name = ?, owner_last_name = ?,
			vet_id = ?, vet_first_name = ?, vet_last_name = ?, visit_type = ?,
			bill_date = ?, due_date = ?, amount = ?, taxed_amount = ?,
			status = ?, interest_exempt = ?, archive = ?, updated_at = ?
		WHERE id = ?
	`),
		b.CustomerID, b.OwnerFirstName, b.OwnerLastName,
		b.VetID, b.VetFirstName, b.VetLastName, b.VisitType,
		b.Date, b.DueDate, b.Amount, b.TaxedAmount,
		string(b.Status), b.InterestExempt, b.Archive, b.UpdatedAt,
		b.ID,
	)
	return affected(res, err, billing.ErrNotFound)
}

func (r *BillRepo) GetByID(ctx context.Context, id string) (billing.Bill, error) {
	var row billRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+billColumns+` FROM bills WHERE id = ?`), id)
	if err != nil {
		return billing.Bill{}, notFound(err, billing.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *BillRepo) List(ctx context.Context, f billing.Filter) ([]billing.Bill, error) {
	w := billWhere(f)
	return r.selectBills(ctx, `SELECT `+billColumns+` FROM bills`+w.String()+` ORDER BY bill_date, created_at`, w.args...)
}

func (r *BillRepo) Page(ctx context.Context, f billing.Filter, offset, limit int) ([]billing.Bill, error) {
	w := billWhere(f)
	args := append(w.args, limit, offset)
	return r.selectBills(ctx, `SELECT `+billColumns+` FROM bills`+w.String()+` ORDER BY bill_date, created_at LIMIT ? OFFSET ?`, args...)
}

func (r *BillRepo) Count(ctx context.Context, f billing.Filter) (int, error) {
	w := billWhere(f)
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM bills`+w.String()), w.args...)
	return n, err
}

func (r *BillRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM bills WHERE id = ?`), id)
	return affected(res, err, billing.ErrNotFound)
}

func (r *BillRepo) DeleteWhere(ctx context.Context, f billing.Filter) (int, error) {
	w := billWhere(f)
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM bills`+w.String()), w.args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *BillRepo) selectBills(ctx context.Context, q string, args ...any) ([]billing.Bill, error) {
	var rows []billRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]billing.Bill, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func billWhere(f billing.Filter) *where {
	w := &where{}
	w.eqFold("id", f.BillID)
	w.eqFold("customer_id", f.CustomerID)
	w.eqFold("owner_first_name", f.OwnerFirstName)
	w.eqFold("owner_last_name", f.OwnerLastName)
	w.eqFold("visit_type", f.VisitType)
	w.eqFold("vet_id", f.VetID)
	w.eqFold("vet_first_name", f.VetFirstName)
	w.eqFold("vet_last_name", f.VetLastName)
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	return w
}
