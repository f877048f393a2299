package sqlstore

import (
	"context"
	"time"

	"petclinic/internal/domain/inventory"

	"github.com/jmoiron/sqlx"
)

type InventoryRepo struct {
	db *sqlx.DB
}

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

const inventoryColumns = `id, name, type, description, image, backup_image, important, created_at, updated_at`

type inventoryRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Type        string    `db:"type"`
	Description string    `db:"description"`
	Image       string    `db:"image"`
	BackupImage string    `db:"backup_image"`
	Important   bool      `db:"important"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *InventoryRepo) Create(ctx context.Context, inv inventory.Inventory) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO inventories (`+inventoryColumns+`) VALUES (?,?,?,?,?,?,?,?,?)
	`), inv.ID, inv.Name, inv.Type, inv.Description, inv.Image, inv.BackupImage, inv.Important, inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *InventoryRepo) Update(ctx context.Context, inv inventory.Inventory) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE inventories SET
			name = ?, type = ?, description = ?, image = ?, backup_image = ?, important = ?, updated_at = ?
		WHERE id = ?
	`), inv.Name, inv.Type, inv.Description, inv.Image, inv.BackupImage, inv.Important, inv.UpdatedAt, inv.ID)
	return affected(res, err, inventory.ErrNotFound)
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (inventory.Inventory, error) {
	var row inventoryRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+inventoryColumns+` FROM inventories WHERE id = ?`), id); err != nil {
		return inventory.Inventory{}, notFound(err, inventory.ErrNotFound)
	}
	return inventory.Inventory(row), nil
}

func (r *InventoryRepo) List(ctx context.Context, f inventory.InventoryFilter) ([]inventory.Inventory, error) {
	w := &where{}
	w.like("name", f.Name)
	w.like("type", f.Type)
	w.like("description", f.Description)
	if f.ImportantOnly {
		w.add("important = ?", true)
	}

	var rows []inventoryRow
	q := `SELECT ` + inventoryColumns + ` FROM inventories` + w.String() + ` ORDER BY name, id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), w.args...); err != nil {
		return nil, err
	}
	out := make([]inventory.Inventory, 0, len(rows))
	for _, row := range rows {
		out = append(out, inventory.Inventory(row))
	}
	return out, nil
}

func (r *InventoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM inventories WHERE id = ?`), id)
	return affected(res, err, inventory.ErrNotFound)
}

func (r *InventoryRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM inventories`)
	return err
}

type InventoryTypeRepo struct {
	db *sqlx.DB
}

func NewInventoryTypeRepo(db *sqlx.DB) *InventoryTypeRepo {
	return &InventoryTypeRepo{db: db}
}

type inventoryTypeRow struct {
	ID   string `db:"id"`
	Type string `db:"type"`
}

func (r *InventoryTypeRepo) Create(ctx context.Context, t inventory.InventoryType) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO inventory_types (id, type) VALUES (?,?)`), t.ID, t.Type)
	return err
}

func (r *InventoryTypeRepo) List(ctx context.Context) ([]inventory.InventoryType, error) {
	var rows []inventoryTypeRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, type FROM inventory_types ORDER BY type`); err != nil {
		return nil, err
	}
	out := make([]inventory.InventoryType, 0, len(rows))
	for _, row := range rows {
		out = append(out, inventory.InventoryType(row))
	}
	return out, nil
}

type InventoryProductRepo struct {
	db *sqlx.DB
}

func NewInventoryProductRepo(db *sqlx.DB) *InventoryProductRepo {
	return &InventoryProductRepo{db: db}
}

const inventoryProductColumns = `id, inventory_id, name, description, price, quantity, sale_price, status, last_updated_at`

type inventoryProductRow struct {
	ID            string    `db:"id"`
	InventoryID   string    `db:"inventory_id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	Price         float64   `db:"price"`
	Quantity      int       `db:"quantity"`
	SalePrice     float64   `db:"sale_price"`
	Status        string    `db:"status"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func (r inventoryProductRow) toDomain() inventory.Product {
	return inventory.Product{
		ID:            r.ID,
		InventoryID:   r.InventoryID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Quantity:      r.Quantity,
		SalePrice:     r.SalePrice,
		Status:        inventory.StockStatus(r.Status),
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *InventoryProductRepo) Create(ctx context.Context, p inventory.Product) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO inventory_products (`+inventoryProductColumns+`) VALUES (?,?,?,?,?,?,?,?,?)
	`), p.ID, p.InventoryID, p.Name, p.Description, p.Price, p.Quantity, p.SalePrice, string(p.Status), p.LastUpdatedAt)
	return err
}

func (r *InventoryProductRepo) Update(ctx context.Context, p inventory.Product) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE inventory_products SET
			inventory_id = ?, name = ?, description = ?, price = ?, quantity = ?,
			sale_price = ?, status = ?, last_updated_at = ?
		WHERE id = ?
	`), p.InventoryID, p.Name, p.Description, p.Price, p.Quantity, p.SalePrice, string(p.Status), p.LastUpdatedAt, p.ID)
	return affected(res, err, inventory.ErrNotFound)
}

func (r *InventoryProductRepo) GetByID(ctx context.Context, id string) (inventory.Product, error) {
	var row inventoryProductRow
	q := `SELECT ` + inventoryProductColumns + ` FROM inventory_products WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), id); err != nil {
		return inventory.Product{}, notFound(err, inventory.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *InventoryProductRepo) ListByInventory(ctx context.Context, inventoryID string) ([]inventory.Product, error) {
	var rows []inventoryProductRow
	q := `SELECT ` + inventoryProductColumns + ` FROM inventory_products WHERE inventory_id = ? ORDER BY name, id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), inventoryID); err != nil {
		return nil, err
	}
	out := make([]inventory.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *InventoryProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM inventory_products WHERE id = ?`), id)
	return affected(res, err, inventory.ErrNotFound)
}

func (r *InventoryProductRepo) DeleteByInventory(ctx context.Context, inventoryID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM inventory_products WHERE inventory_id = ?`), inventoryID)
	return err
}

func (r *InventoryProductRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM inventory_products`)
	return err
}
