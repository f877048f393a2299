package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestFiles_PairedUpAndDown(t *testing.T) {
	for _, driver := range []string{"pgx", "mysql"} {
		names, err := Files(driver)
		if err != nil {
			t.Fatalf("%s: Files: %v", driver, err)
		}
		if len(names) == 0 || len(names)%2 != 0 {
			t.Fatalf("%s: expected up/down pairs, got %v", driver, names)
		}
		ups := map[string]bool{}
		for _, n := range names {
			if base, ok := strings.CutSuffix(n, ".up.sql"); ok {
				ups[base] = true
			}
		}
		for _, n := range names {
			if base, ok := strings.CutSuffix(n, ".down.sql"); ok && !ups[base] {
				t.Fatalf("%s: %s has no up migration", driver, n)
			}
		}
	}
}

func TestFiles_SameTablesOnBothDrivers(t *testing.T) {
	pg, err := fs.ReadFile(files, "postgres/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read postgres: %v", err)
	}
	my, err := fs.ReadFile(files, "mysql/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read mysql: %v", err)
	}
	for _, table := range []string{"bills", "owners", "pets", "vets", "inventories", "products", "promos", "users", "notifications"} {
		stmt := "CREATE TABLE IF NOT EXISTS " + table + " ("
		if !strings.Contains(string(pg), stmt) || !strings.Contains(string(my), stmt) {
			t.Fatalf("table %s missing in one of the schemas", table)
		}
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := Files("sqlite"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if err := Up(nil, "sqlite"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
