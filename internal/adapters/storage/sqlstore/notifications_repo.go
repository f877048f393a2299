package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"petclinic/internal/domain/notifications"

	"github.com/jmoiron/sqlx"
)

type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, type, recipient, subject, body, status, reference, created_at, read_at`

type notificationRow struct {
	ID        string       `db:"id"`
	Type      string       `db:"type"`
	Recipient string       `db:"recipient"`
	Subject   string       `db:"subject"`
	Body      string       `db:"body"`
	Status    string       `db:"status"`
	Reference string       `db:"reference"`
	CreatedAt time.Time    `db:"created_at"`
	ReadAt    sql.NullTime `db:"read_at"`
}

func (r notificationRow) toDomain() notifications.Notification {
	n := notifications.Notification{
		ID:        r.ID,
		Type:      r.Type,
		Recipient: r.Recipient,
		Subject:   r.Subject,
		Body:      r.Body,
		Status:    notifications.Status(r.Status),
		Reference: r.Reference,
		CreatedAt: r.CreatedAt,
	}
	if r.ReadAt.Valid {
		t := r.ReadAt.Time
		n.ReadAt = &t
	}
	return n
}

func (r *NotificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO notifications (`+notificationColumns+`) VALUES (?,?,?,?,?,?,?,?,?)
	`), n.ID, n.Type, n.Recipient, n.Subject, n.Body, string(n.Status), n.Reference, n.CreatedAt, toNullDate(n.ReadAt))
	return err
}

func (r *NotificationRepo) Update(ctx context.Context, n notifications.Notification) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE notifications SET status = ?, read_at = ? WHERE id = ?
	`), string(n.Status), toNullDate(n.ReadAt), n.ID)
	return affected(res, err, notifications.ErrNotFound)
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	var row notificationRow
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), id); err != nil {
		return notifications.Notification{}, notFound(err, notifications.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *NotificationRepo) List(ctx context.Context, f notifications.Filter) ([]notifications.Notification, error) {
	w := &where{}
	w.eqFold("recipient", f.Recipient)
	w.eqFold("type", f.Type)

	var rows []notificationRow
	q := `SELECT ` + notificationColumns + ` FROM notifications` + w.String() + ` ORDER BY created_at DESC, id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), w.args...); err != nil {
		return nil, err
	}
	out := make([]notifications.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM notifications WHERE id = ?`), id)
	return affected(res, err, notifications.ErrNotFound)
}
