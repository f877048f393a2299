package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// Open abre un pool con sqlx. Para MySQL normaliza el DSN con mysqlDSN.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverMySQL:
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// mysqlDSN fuerza parseTime, multiStatements (las migraciones traen varios
// statements por archivo) y clientFoundRows: un UPDATE que no cambia valores
// tiene que reportar la fila encontrada, igual que Postgres, o affected lo toma
// como ErrNotFound.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("sqlstore: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// notFound traduce sql.ErrNoRows al ErrNotFound del dominio.
func notFound(err, domainErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domainErr
	}
	return err
}

// affected devuelve domainErr si el UPDATE/DELETE no tocó filas.
func affected(res sql.Result, err, domainErr error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domainErr
	}
	return nil
}

// where arma condiciones AND con placeholders "?"; el repo hace Rebind al final.
type where struct {
	conds []string
	args  []any
}

// eqFold agrega LOWER(col) = LOWER(?) si v no está vacío.
func (w *where) eqFold(col, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	w.conds = append(w.conds, "LOWER("+col+") = LOWER(?)")
	w.args = append(w.args, v)
}

// like agrega un substring case-insensitive.
func (w *where) like(col, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	w.conds = append(w.conds, "LOWER("+col+") LIKE ?")
	w.args = append(w.args, "%"+strings.ToLower(v)+"%")
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
