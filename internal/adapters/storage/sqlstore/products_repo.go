package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"petclinic/internal/domain/products"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct {
	db *sqlx.DB
}

func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, description, sale_price, average_rating, quantity, product_type,
	status, release_date, is_unlisted, request_count, delivery_type, created_at, updated_at`

type productRow struct {
	ID            string       `db:"id"`
	Name          string       `db:"name"`
	Description   string       `db:"description"`
	SalePrice     float64      `db:"sale_price"`
	AverageRating float64      `db:"average_rating"`
	Quantity      int          `db:"quantity"`
	Type          string       `db:"product_type"`
	Status        string       `db:"status"`
	ReleaseDate   sql.NullTime `db:"release_date"`
	IsUnlisted    bool         `db:"is_unlisted"`
	RequestCount  int          `db:"request_count"`
	DeliveryType  string       `db:"delivery_type"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func (r productRow) toDomain() products.Product {
	p := products.Product{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		SalePrice:     r.SalePrice,
		AverageRating: r.AverageRating,
		Quantity:      r.Quantity,
		Type:          r.Type,
		Status:        products.Status(r.Status),
		IsUnlisted:    r.IsUnlisted,
		RequestCount:  r.RequestCount,
		DeliveryType:  r.DeliveryType,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.ReleaseDate.Valid {
		t := r.ReleaseDate.Time.UTC()
		p.ReleaseDate = &t
	}
	return p
}

func (r *ProductRepo) Create(ctx context.Context, p products.Product) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products (`+productColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`), p.ID, p.Name, p.Description, p.SalePrice, p.AverageRating, p.Quantity, p.Type,
		string(p.Status), toNullDate(p.ReleaseDate), p.IsUnlisted, p.RequestCount, p.DeliveryType, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProductRepo) Update(ctx context.Context, p products.Product) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET
			name = ?, description = ?, sale_price = ?, average_rating = ?, quantity = ?, product_type = ?,
			status = ?, release_date = ?, is_unlisted = ?, request_count = ?, delivery_type = ?, updated_at = ?
		WHERE id = ?
	`), p.Name, p.Description, p.SalePrice, p.AverageRating, p.Quantity, p.Type,
		string(p.Status), toNullDate(p.ReleaseDate), p.IsUnlisted, p.RequestCount, p.DeliveryType, p.UpdatedAt, p.ID)
	return affected(res, err, products.ErrNotFound)
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (products.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id); err != nil {
		return products.Product{}, notFound(err, products.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) List(ctx context.Context) ([]products.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products ORDER BY name, id`); err != nil {
		return nil, err
	}
	out := make([]products.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	return affected(res, err, products.ErrNotFound)
}

type BundleRepo struct {
	db *sqlx.DB
}

func NewBundleRepo(db *sqlx.DB) *BundleRepo {
	return &BundleRepo{db: db}
}

const bundleColumns = `id, name, description, product_ids, original_total_price, bundle_price`

type bundleRow struct {
	ID                 string  `db:"id"`
	Name               string  `db:"name"`
	Description        string  `db:"description"`
	ProductIDs         string  `db:"product_ids"`
	OriginalTotalPrice float64 `db:"original_total_price"`
	BundlePrice        float64 `db:"bundle_price"`
}

func (r bundleRow) toDomain() (products.Bundle, error) {
	b := products.Bundle{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		OriginalTotalPrice: r.OriginalTotalPrice,
		BundlePrice:        r.BundlePrice,
	}
	if err := decodeJSON(r.ProductIDs, &b.ProductIDs); err != nil {
		return products.Bundle{}, err
	}
	return b, nil
}

func (r *BundleRepo) Create(ctx context.Context, b products.Bundle) error {
	ids, err := encodeJSON(nonNil(b.ProductIDs))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO bundles (`+bundleColumns+`) VALUES (?,?,?,?,?,?)
	`), b.ID, b.Name, b.Description, ids, b.OriginalTotalPrice, b.BundlePrice)
	return err
}

func (r *BundleRepo) Update(ctx context.Context, b products.Bundle) error {
	ids, err := encodeJSON(nonNil(b.ProductIDs))
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE bundles SET name = ?, description = ?, product_ids = ?, original_total_price = ?, bundle_price = ?
		WHERE id = ?
	`), b.Name, b.Description, ids, b.OriginalTotalPrice, b.BundlePrice, b.ID)
	return affected(res, err, products.ErrNotFound)
}

func (r *BundleRepo) GetByID(ctx context.Context, id string) (products.Bundle, error) {
	var row bundleRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+bundleColumns+` FROM bundles WHERE id = ?`), id); err != nil {
		return products.Bundle{}, notFound(err, products.ErrNotFound)
	}
	return row.toDomain()
}

func (r *BundleRepo) List(ctx context.Context) ([]products.Bundle, error) {
	var rows []bundleRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+bundleColumns+` FROM bundles ORDER BY name, id`); err != nil {
		return nil, err
	}
	out := make([]products.Bundle, 0, len(rows))
	for _, row := range rows {
		b, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BundleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM bundles WHERE id = ?`), id)
	return affected(res, err, products.ErrNotFound)
}

type ProductRatingRepo struct {
	db *sqlx.DB
}

func NewProductRatingRepo(db *sqlx.DB) *ProductRatingRepo {
	return &ProductRatingRepo{db: db}
}

const productRatingColumns = `product_id, customer_id, rating, review, created_at, updated_at`

type productRatingRow struct {
	ProductID  string    `db:"product_id"`
	CustomerID string    `db:"customer_id"`
	Rating     int       `db:"rating"`
	Review     string    `db:"review"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Save es un upsert portable: delete + insert en la misma transacción.
func (r *ProductRatingRepo) Save(ctx context.Context, rt products.Rating) error {
	return upsertPair(ctx, r.db, "product_ratings", rt.ProductID, rt.CustomerID,
		`INSERT INTO product_ratings (`+productRatingColumns+`) VALUES (?,?,?,?,?,?)`,
		rt.ProductID, rt.CustomerID, rt.Rating, rt.Review, rt.CreatedAt, rt.UpdatedAt)
}

func (r *ProductRatingRepo) Get(ctx context.Context, productID, customerID string) (products.Rating, error) {
	var row productRatingRow
	q := `SELECT ` + productRatingColumns + ` FROM product_ratings WHERE product_id = ? AND customer_id = ?`
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), productID, customerID); err != nil {
		return products.Rating{}, notFound(err, products.ErrNotFound)
	}
	return products.Rating(row), nil
}

func (r *ProductRatingRepo) ListByProduct(ctx context.Context, productID string) ([]products.Rating, error) {
	var rows []productRatingRow
	q := `SELECT ` + productRatingColumns + ` FROM product_ratings WHERE product_id = ? ORDER BY created_at, customer_id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), productID); err != nil {
		return nil, err
	}
	out := make([]products.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, products.Rating(row))
	}
	return out, nil
}

func (r *ProductRatingRepo) Delete(ctx context.Context, productID, customerID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_ratings WHERE product_id = ? AND customer_id = ?`), productID, customerID)
	return affected(res, err, products.ErrNotFound)
}

func (r *ProductRatingRepo) DeleteByProduct(ctx context.Context, productID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_ratings WHERE product_id = ?`), productID)
	return err
}

type SubscriptionRepo struct {
	db *sqlx.DB
}

func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

const subscriptionColumns = `product_id, customer_id, email, notification_types`

type subscriptionRow struct {
	ProductID         string `db:"product_id"`
	CustomerID        string `db:"customer_id"`
	Email             string `db:"email"`
	NotificationTypes string `db:"notification_types"`
}

func (r subscriptionRow) toDomain() (products.Subscription, error) {
	s := products.Subscription{ProductID: r.ProductID, CustomerID: r.CustomerID, Email: r.Email}
	if err := decodeJSON(r.NotificationTypes, &s.NotificationType); err != nil {
		return products.Subscription{}, err
	}
	return s, nil
}

func (r *SubscriptionRepo) Save(ctx context.Context, s products.Subscription) error {
	types := s.NotificationType
	if types == nil {
		types = []products.NotificationType{}
	}
	raw, err := encodeJSON(types)
	if err != nil {
		return err
	}
	return upsertPair(ctx, r.db, "product_subscriptions", s.ProductID, s.CustomerID,
		`INSERT INTO product_subscriptions (`+subscriptionColumns+`) VALUES (?,?,?,?)`,
		s.ProductID, s.CustomerID, s.Email, raw)
}

func (r *SubscriptionRepo) Get(ctx context.Context, productID, customerID string) (products.Subscription, error) {
	var row subscriptionRow
	q := `SELECT ` + subscriptionColumns + ` FROM product_subscriptions WHERE product_id = ? AND customer_id = ?`
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), productID, customerID); err != nil {
		return products.Subscription{}, notFound(err, products.ErrNotFound)
	}
	return row.toDomain()
}

func (r *SubscriptionRepo) ListByProduct(ctx context.Context, productID string) ([]products.Subscription, error) {
	return r.list(ctx, `WHERE product_id = ?`, productID)
}

func (r *SubscriptionRepo) ListByCustomer(ctx context.Context, customerID string) ([]products.Subscription, error) {
	return r.list(ctx, `WHERE customer_id = ?`, customerID)
}

func (r *SubscriptionRepo) Delete(ctx context.Context, productID, customerID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_subscriptions WHERE product_id = ? AND customer_id = ?`), productID, customerID)
	return affected(res, err, products.ErrNotFound)
}

func (r *SubscriptionRepo) DeleteByProduct(ctx context.Context, productID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM product_subscriptions WHERE product_id = ?`), productID)
	return err
}

func (r *SubscriptionRepo) list(ctx context.Context, cond string, arg string) ([]products.Subscription, error) {
	var rows []subscriptionRow
	q := `SELECT ` + subscriptionColumns + ` FROM product_subscriptions ` + cond + ` ORDER BY product_id, customer_id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), arg); err != nil {
		return nil, err
	}
	out := make([]products.Subscription, 0, len(rows))
	for _, row := range rows {
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// upsertPair reemplaza la fila (product_id, customer_id) de table.
func upsertPair(ctx context.Context, db *sqlx.DB, table, productID, customerID, insert string, args ...any) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE product_id = ? AND customer_id = ?`), productID, customerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(insert), args...); err != nil {
		return err
	}
	return tx.Commit()
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
