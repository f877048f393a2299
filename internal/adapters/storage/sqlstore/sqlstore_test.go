package sqlstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"petclinic/internal/domain/billing"
	"petclinic/internal/domain/customers"
	"petclinic/internal/domain/products"
	"petclinic/internal/domain/users"
	"petclinic/internal/domain/vets"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, driver), mock
}

var billCols = []string{
	"id", "customer_id", "owner_first_name", "owner_last_name",
	"vet_id", "vet_first_name", "vet_last_name", "visit_type",
	"bill_date", "due_date", "amount", "taxed_amount",
	"status", "interest_exempt", "archive", "created_at", "updated_at",
}

func TestBillRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t, DriverPostgres)
	repo := NewBillRepo(db)

	mock.ExpectQuery(`SELECT .* FROM bills WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(billCols))

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, billing.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepo_List_FilterPostgres(t *testing.T) {
	db, mock := newMock(t, DriverPostgres)
	repo := NewBillRepo(db)
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bills WHERE LOWER(customer_id) = LOWER($1) AND status = $2 ORDER BY bill_date, created_at`)).
		WithArgs("c-1", "UNPAID").
		WillReturnRows(sqlmock.NewRows(billCols).AddRow(
			"b-1", "c-1", "George", "Franklin",
			"v-1", "James", "Carter", "general",
			date, date.AddDate(0, 0, 15), 100.0, 113.0,
			"UNPAID", false, false, created, created,
		))

	got, err := repo.List(context.Background(), billing.Filter{CustomerID: "c-1", Status: billing.StatusUnpaid})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b-1", got[0].ID)
	require.Equal(t, billing.StatusUnpaid, got[0].Status)
	require.Equal(t, 113.0, got[0].TaxedAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepo_Page_MySQLPlaceholders(t *testing.T) {
	db, mock := newMock(t, DriverMySQL)
	repo := NewBillRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bills ORDER BY bill_date, created_at LIMIT ? OFFSET ?`)).
		WithArgs(5, 10).
		WillReturnRows(sqlmock.NewRows(billCols))

	got, err := repo.Page(context.Background(), billing.Filter{}, 10, 5)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepo_Update_NoRows(t *testing.T) {
	db, mock := newMock(t, DriverPostgres)
	repo := NewBillRepo(db)

	mock.ExpectExec(`UPDATE bills SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), billing.Bill{ID: "ghost"})
	require.ErrorIs(t, err, billing.ErrNotFound)
}

func TestVetRepo_GetByID_DecodesLists(t *testing.T) {
	db, mock := newMock(t, DriverPostgres)
	repo := NewVetRepo(db)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "vet_bill_id", "first_name", "last_name", "email", "phone_number", "resume",
		"workday", "active", "specialties", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM vets WHERE id = \$1`).
		WithArgs("v-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"v-1", "bill-1", "James", "Carter", "james@clinic.test", "555-0101", "",
			`["Monday","Friday"]`, true, `[{"specialtyId":"s1","name":"radiology"}]`, now, now,
		))

	v, err := repo.GetByID(context.Background(), "v-1")
	require.NoError(t, err)
	require.Equal(t, []string{"Monday", "Friday"}, v.Workday)
	require.Equal(t, []vets.Specialty{{ID: "s1", Name: "radiology"}}, v.Specialties)
}

func TestProductRatingRepo_Save_ReplacesInTx(t *testing.T) {
	db, mock := newMock(t, DriverPostgres)
	repo := NewProductRatingRepo(db)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM product_ratings WHERE product_id = $1 AND customer_id = $2`)).
		WithArgs("p-1", "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO product_ratings`).
		WithArgs("p-1", "c-1", 4, "good", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), products.Rating{
		ProductID: "p-1", CustomerID: "c-1", Rating: 4, Review: "good", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByLogin(t *testing.T) {
	db, mock := newMock(t, DriverMySQL)
	repo := NewUserRepo(db)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "username", "email", "password_hash", "roles", "disabled", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)`)).
		WithArgs("milo@test.io", "milo@test.io").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u-1", "milo", "milo@test.io", "hash", `["OWNER"]`, false, now, now))

	u, err := repo.GetByLogin(context.Background(), "milo@test.io")
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
	require.Equal(t, []string{"OWNER"}, u.Roles)

	mock.ExpectQuery(`FROM users WHERE id = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("sqlite", "file::memory:")
	require.Error(t, err)
}

func TestMySQLDSN_ReportsFoundRows(t *testing.T) {
	dsn, err := mysqlDSN("petclinic:secret@tcp(db:3306)/petclinic")
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	require.True(t, cfg.ClientFoundRows)
	require.True(t, cfg.ParseTime)
	require.True(t, cfg.MultiStatements)
}

func TestPetTypeRepo_Update_UnchangedRowIsFound(t *testing.T) {
	db, mock := newMock(t, DriverMySQL)
	repo := NewPetTypeRepo(db)

	// con clientFoundRows MySQL devuelve filas encontradas aunque no cambie nada
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE pet_types SET name = ?, description = ? WHERE id = ?`)).
		WithArgs("Dog", "Canine", "pt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE pet_types SET name = ?, description = ? WHERE id = ?`)).
		WithArgs("Dog", "Canine", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(context.Background(), customers.PetType{ID: "pt-1", Name: "Dog", Description: "Canine"}))
	err := repo.Update(context.Background(), customers.PetType{ID: "ghost", Name: "Dog", Description: "Canine"})
	require.ErrorIs(t, err, customers.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
