package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jfcardenasg/corredash/internal/domain/models"
)

// ReferenceRepository covers the dimension and per-user tables that sit
// next to the transaction store: users, budgets, persisted dashboard
// layouts, and pre-built benchmark snapshots (sectors/products payloads).
//
// "Absent" is modelled as nil results throughout, never as an error.
type ReferenceRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetLayout(ctx context.Context, userID string) ([]byte, error)
	SaveLayout(ctx context.Context, userID string, layout []byte) error
	GetSnapshot(ctx context.Context, kind string, year int) ([]byte, error)
	BudgetRows(ctx context.Context, f Filter) ([]models.BudgetVariance, error)
}

type referenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

// GetUserByUsername loads one account row, or (nil, nil) when no such user
// exists.
func (r *referenceRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, COALESCE(trader_name, ''), activo
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.TraderName, &u.Activo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetLayout returns the stored layout blob exactly as it was saved, or nil
// when the user never persisted one. The column is text, not jsonb, so the
// bytes survive the round trip untouched.
func (r *referenceRepository) GetLayout(ctx context.Context, userID string) ([]byte, error) {
	var layout []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT layout FROM dashboard_layouts WHERE user_id = $1`, userID,
	).Scan(&layout)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// SaveLayout upserts the layout blob for a user.
func (r *referenceRepository) SaveLayout(ctx context.Context, userID string, layout []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dashboard_layouts (user_id, layout)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET layout = EXCLUDED.layout,
					  updated_at = NOW()
	`, userID, layout)
	return err
}

// GetSnapshot returns the stored benchmark payload for (kind, year), or nil
// when none was loaded. Sector and product breakdowns are produced by an
// upstream process and served as-is.
func (r *referenceRepository) GetSnapshot(ctx context.Context, kind string, year int) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM benchmark_snapshots WHERE kind = $1 AND year = $2`, kind, year,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// BudgetRows joins budgets against aggregated transactions for the filtered
// period. Variance columns are left zero; the service derives them so the
// arithmetic stays in one place.
func (r *referenceRepository) BudgetRows(ctx context.Context, f Filter) ([]models.BudgetVariance, error) {
	conds := "p.year = $1"
	args := []interface{}{f.Year}
	if f.Month > 0 {
		args = append(args, f.Month)
		conds += fmt.Sprintf(" AND p.mes = $%d", len(args))
	}
	if f.Trader != "" {
		args = append(args, f.Trader)
		conds += fmt.Sprintf(" AND p.corredor = $%d", len(args))
	}

	query := fmt.Sprintf(`
		SELECT
			p.nit,
			p.corredor,
			p.mes,
			COALESCE(SUM(t.negociado), 0),
			p.transado_presupuesto,
			COALESCE(SUM(t.comi_corr_neto), 0),
			p.comision_presupuesto
		FROM presupuestos p
		LEFT JOIN orfs_transactions t
			ON t.nit = p.nit AND t.corredor = p.corredor AND t.mes = p.mes AND t.year = p.year
		WHERE %s
		GROUP BY p.nit, p.corredor, p.mes, p.transado_presupuesto, p.comision_presupuesto
		ORDER BY p.corredor ASC, p.mes ASC, p.nit ASC
	`, conds)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.BudgetVariance
	for rows.Next() {
		var b models.BudgetVariance
		if err := rows.Scan(
			&b.Nit,
			&b.Corredor,
			&b.Mes,
			&b.Negociado,
			&b.TransadoPresupuesto,
			&b.Comision,
			&b.ComisionPresupuesto,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
