package sqlstore

import (
	"context"
	"time"

	"petclinic/internal/domain/carts"

	"github.com/jmoiron/sqlx"
)

type PromoRepo struct {
	db *sqlx.DB
}

func NewPromoRepo(db *sqlx.DB) *PromoRepo {
	return &PromoRepo{db: db}
}

const promoColumns = `id, name, code, discount, expiration_date`

type promoRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Code           string    `db:"code"`
	Discount       float64   `db:"discount"`
	ExpirationDate time.Time `db:"expiration_date"`
}

func (r *PromoRepo) Create(ctx context.Context, p carts.Promo) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO promos (`+promoColumns+`) VALUES (?,?,?,?,?)`),
		p.ID, p.Name, p.Code, p.Discount, p.ExpirationDate)
	return err
}

func (r *PromoRepo) Update(ctx context.Context, p carts.Promo) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE promos SET name = ?, code = ?, discount = ?, expiration_date = ? WHERE id = ?
	`), p.Name, p.Code, p.Discount, p.ExpirationDate, p.ID)
	return affected(res, err, carts.ErrNotFound)
}

func (r *PromoRepo) GetByID(ctx context.Context, id string) (carts.Promo, error) {
	return r.getOne(ctx, `SELECT `+promoColumns+` FROM promos WHERE id = ?`, id)
}

func (r *PromoRepo) GetByCode(ctx context.Context, code string) (carts.Promo, error) {
	return r.getOne(ctx, `SELECT `+promoColumns+` FROM promos WHERE UPPER(code) = UPPER(?)`, code)
}

func (r *PromoRepo) List(ctx context.Context) ([]carts.Promo, error) {
	var rows []promoRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+promoColumns+` FROM promos ORDER BY expiration_date, id`); err != nil {
		return nil, err
	}
	out := make([]carts.Promo, 0, len(rows))
	for _, row := range rows {
		out = append(out, carts.Promo(row))
	}
	return out, nil
}

func (r *PromoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM promos WHERE id = ?`), id)
	return affected(res, err, carts.ErrNotFound)
}

func (r *PromoRepo) getOne(ctx context.Context, q, arg string) (carts.Promo, error) {
	var row promoRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), arg); err != nil {
		return carts.Promo{}, notFound(err, carts.ErrNotFound)
	}
	return carts.Promo(row), nil
}
