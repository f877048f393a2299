// Package migrations aplica el esquema SQL embebido con golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// dirFor mapea el driver de database/sql al directorio de migraciones.
func dirFor(driver string) (string, error) {
	switch driver {
	case "pgx":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// Files lista los archivos embebidos para el driver, ordenados.
func Files(driver string) ([]string, error) {
	dir, err := dirFor(driver)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, error) {
	dir, err := dirFor(driver)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: source: %w", err)
	}

	var target database.Driver
	switch driver {
	case "pgx":
		target, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case "mysql":
		target, err = mysql.WithInstance(db, &mysql.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, driver, target)
}

// Up aplica todo lo pendiente. Sin cambios no es error.
func Up(db *sql.DB, driver string) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Down revierte todas las migraciones.
func Down(db *sql.DB, driver string) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}
