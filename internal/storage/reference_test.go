package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRef(t *testing.T) (*referenceRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &referenceRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

func TestGetUserByUsername_SQLMock(t *testing.T) {
	repo, mock, done := newMockRef(t)
	defer done()

	userQuery := `SELECT id, username, password_hash, role, COALESCE\(trader_name, ''\), activo FROM users WHERE username = \$1`
	cols := []string{"id", "username", "password_hash", "role", "trader_name", "activo"}

	// Found
	mock.ExpectQuery(userQuery).
		WithArgs("amartinez").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(7, "amartinez", "$2a$04$hash", "business_intelligence", "MARTINEZ", true))

	u, err := repo.GetUserByUsername(context.Background(), "amartinez")
	if err != nil || u == nil {
		t.Fatalf("found: u=%+v err=%v", u, err)
	}
	if u.ID != 7 || u.Role != "business_intelligence" || !u.Activo {
		t.Fatalf("fields: %+v", u)
	}

	// Not found is nil,nil, never an error
	mock.ExpectQuery(userQuery).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(cols))

	u, err = repo.GetUserByUsername(context.Background(), "ghost")
	if err != nil || u != nil {
		t.Fatalf("absent: u=%+v err=%v", u, err)
	}

	// Store failure surfaces as error
	mock.ExpectQuery(userQuery).
		WithArgs("amartinez").
		WillReturnError(dummyErr{})

	if _, err := repo.GetUserByUsername(context.Background(), "amartinez"); err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLayout_SQLMock(t *testing.T) {
	repo, mock, done := newMockRef(t)
	defer done()

	payload := []byte(`{"widgets":[{"id":"kpi","w":4}]}`)

	// Save (upsert)
	mock.ExpectExec(`INSERT INTO dashboard_layouts \(user_id, layout\) VALUES \(\$1, \$2\) ON CONFLICT \(user_id\) DO UPDATE SET`).
		WithArgs("42", payload).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.SaveLayout(context.Background(), "42", payload); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Get returns the stored bytes verbatim
	mock.ExpectQuery(regexp.QuoteMeta("SELECT layout FROM dashboard_layouts WHERE user_id = $1")).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"layout"}).AddRow(payload))

	got, err := repo.GetLayout(context.Background(), "42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("layout altered: %s", got)
	}

	// Absent layout is nil,nil
	mock.ExpectQuery(regexp.QuoteMeta("SELECT layout FROM dashboard_layouts WHERE user_id = $1")).
		WithArgs("99").
		WillReturnRows(sqlmock.NewRows([]string{"layout"}))

	got, err = repo.GetLayout(context.Background(), "99")
	if err != nil || got != nil {
		t.Fatalf("absent: got=%v err=%v", got, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSnapshot_SQLMock(t *testing.T) {
	repo, mock, done := newMockRef(t)
	defer done()

	query := regexp.QuoteMeta("SELECT payload FROM benchmark_snapshots WHERE kind = $1 AND year = $2")

	mock.ExpectQuery(query).
		WithArgs("sectors", 2024).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"sectors":[]}`)))

	got, err := repo.GetSnapshot(context.Background(), "sectors", 2024)
	if err != nil || string(got) != `{"sectors":[]}` {
		t.Fatalf("snapshot: got=%s err=%v", got, err)
	}

	// No snapshot loaded for the year
	mock.ExpectQuery(query).
		WithArgs("products", 2024).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	got, err = repo.GetSnapshot(context.Background(), "products", 2024)
	if err != nil || got != nil {
		t.Fatalf("absent: got=%v err=%v", got, err)
	}
}

func TestBudgetRows_SQLMock(t *testing.T) {
	repo, mock, done := newMockRef(t)
	defer done()

	cols := []string{"nit", "corredor", "mes", "negociado", "transado_presupuesto", "comision", "comision_presupuesto"}

	mock.ExpectQuery(`SELECT p.nit, p.corredor, p.mes, .* FROM presupuestos p LEFT JOIN orfs_transactions t`).
		WithArgs(2024, 3).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("900123456", "PEREZ", 3, "120", "100", "4", "6").
			AddRow("800987654", "PEREZ", 3, "0", "50", "0", "2"))

	rows, err := repo.BudgetRows(context.Background(), Filter{Year: 2024, Month: 3})
	if err != nil {
		t.Fatalf("BudgetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: %d", len(rows))
	}
	if rows[0].Nit != "900123456" || rows[0].Negociado.String() != "120" {
		t.Fatalf("first row: %+v", rows[0])
	}
	// Variance columns stay zero here; the service derives them
	if !rows[0].Variance.IsZero() {
		t.Fatalf("variance must not be set by the store: %+v", rows[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
