package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jfcardenasg/corredash/internal/domain/models"
	pq "github.com/lib/pq"
)

// Filter restricts aggregation queries to a year and, optionally, a single
// month and/or corredor. Year is always required; Month 0 and an empty
// Trader mean "all".
type Filter struct {
	Year   int
	Month  int
	Trader string
}

// where renders the filter as SQL conditions against table alias "t",
// returning the clause and its positional arguments.
func (f Filter) where() (string, []interface{}) {
	conds := "t.year = $1"
	args := []interface{}{f.Year}
	if f.Month > 0 {
		args = append(args, f.Month)
		conds += fmt.Sprintf(" AND t.mes = $%d", len(args))
	}
	if f.Trader != "" {
		args = append(args, f.Trader)
		conds += fmt.Sprintf(" AND t.corredor = $%d", len(args))
	}
	return conds, args
}

// Ranking dimensions and metrics. They index private whitelists of SQL
// snippets, so handler input can never reach the query text directly.
type (
	RankingDimension string
	RankingMetric    string
)

const (
	DimensionTrader RankingDimension = "trader"
	DimensionClient RankingDimension = "client"

	MetricVolume     RankingMetric = "volume"
	MetricCommission RankingMetric = "commission"
)

var dimensionExpr = map[RankingDimension]string{
	// Clients rank by display name; rows imported without one fall back to
	// the tax id so they still aggregate under a stable key.
	DimensionTrader: "t.corredor",
	DimensionClient: "COALESCE(NULLIF(t.nombre, ''), t.nit)",
}

var metricExpr = map[RankingMetric]string{
	MetricVolume:     "t.negociado",
	MetricCommission: "t.comi_corr_neto",
}

// TransactionsRepository defines the contract for transaction-store access:
// batch loading on the ingestion side, and the grouped aggregation queries
// that feed the dashboard and benchmark services.
type TransactionsRepository interface {
	InsertTransactionsBatch(txs []models.Transaction) error
	HasIngestionFor(year, mes int) (bool, error)
	UpsertIngestionLog(year, mes int, filename string, rowCount int) error
	DeleteTransactions(year, mes int) error

	KPIs(ctx context.Context, f Filter) (*models.KPISet, error)
	Ranking(ctx context.Context, f Filter, dim RankingDimension, metric RankingMetric, limit int) ([]models.RankingEntry, error)
	MonthlyBuckets(ctx context.Context, f Filter) ([]models.MonthlyBucket, error)
	TraderVolumes(ctx context.Context, year, mes int) ([]models.TraderVolume, error)
	MonthlyTraderVolumes(ctx context.Context, year int) ([]models.MonthlyTraderVolume, error)
	TrailingTraderVolumes(ctx context.Context, names []string, sinceIndex int) ([]models.MonthlyTraderVolume, error)
}

type transactionsRepository struct {
	db *sql.DB
}

func NewTransactionsRepository(db *sql.DB) TransactionsRepository {
	return &transactionsRepository{db: db}
}

// InsertTransactionsBatch inserts multiple transactions into DB in a single
// transaction using COPY.
func (r *transactionsRepository) InsertTransactionsBatch(txs []models.Transaction) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn(
		"orfs_transactions",
		"nit",
		"nombre",
		"corredor",
		"fecha",
		"rueda_no",
		"mes",
		"year",
		"negociado",
		"comi_bna",
		"campo209",
		"comi_corr",
		"iva_bna",
		"iva_comi",
		"iva_cama",
		"facturado",
		"comi_corr_neto",
		"comi_porcentual",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, rec := range txs {
		if _, err := stmt.Exec(
			rec.Nit,
			rec.Nombre,
			rec.Corredor,
			rec.Fecha,
			rec.RuedaNo,
			rec.Mes,
			rec.Year,
			rec.Negociado,
			rec.ComiBna,
			rec.Campo209,
			rec.ComiCorr,
			rec.IvaBna,
			rec.IvaComi,
			rec.IvaCama,
			rec.Facturado,
			rec.ComiCorrNeto,
			rec.ComiPorcentual,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// HasIngestionFor checks if an ingestion was already recorded for a given month.
func (r *transactionsRepository) HasIngestionFor(year, mes int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE year = $1 AND mes = $2)`, year, mes).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) an ingestion entry for a given month.
func (r *transactionsRepository) UpsertIngestionLog(year, mes int, filename string, rowCount int) error {
	_, err := r.db.Exec(`
		INSERT INTO ingestion_log (year, mes, filename, row_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, mes)
		DO UPDATE SET filename = EXCLUDED.filename,
					  row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, year, mes, filename, rowCount)
	return err
}

// DeleteTransactions removes all transactions for a given month.
func (r *transactionsRepository) DeleteTransactions(year, mes int) error {
	_, err := r.db.Exec(`DELETE FROM orfs_transactions WHERE year = $1 AND mes = $2`, year, mes)
	return err
}

// KPIs computes the headline numbers over the filtered set. An empty set
// yields a zero-valued KPISet; errors are only I/O failures, so the caller
// can always tell "no data" from "store unreachable".
func (r *transactionsRepository) KPIs(ctx context.Context, f Filter) (*models.KPISet, error) {
	conds, args := f.where()

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(t.negociado), 0)                        AS total_volume,
			COALESCE(SUM(t.comi_corr_neto), 0)                   AS total_commission,
			COUNT(*)                                             AS total_transactions,
			COUNT(DISTINCT (t.fecha, t.rueda_no))                AS total_ruedas,
			COUNT(DISTINCT t.corredor) FILTER (WHERE tr.activo)  AS active_traders
		FROM orfs_transactions t
		LEFT JOIN traders tr ON tr.nombre = t.corredor
		WHERE %s
	`, conds)

	var k models.KPISet
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&k.TotalVolume,
		&k.TotalCommission,
		&k.TotalTransactions,
		&k.TotalRuedas,
		&k.ActiveTraders,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// Ranking returns the top-N entries for one dimension/metric pair,
// ordered value descending with name ascending as the tie-break.
func (r *transactionsRepository) Ranking(ctx context.Context, f Filter, dim RankingDimension, metric RankingMetric, limit int) ([]models.RankingEntry, error) {
	dimExpr, ok := dimensionExpr[dim]
	if !ok {
		return nil, fmt.Errorf("unknown ranking dimension %q", dim)
	}
	metExpr, ok := metricExpr[metric]
	if !ok {
		return nil, fmt.Errorf("unknown ranking metric %q", metric)
	}

	conds, args := f.where()
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s AS name, COALESCE(SUM(%s), 0) AS value
		FROM orfs_transactions t
		WHERE %s
		GROUP BY name
		ORDER BY value DESC, name ASC
		LIMIT $%d
	`, dimExpr, metExpr, conds, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.RankingEntry
	for rows.Next() {
		var e models.RankingEntry
		if err := rows.Scan(&e.Name, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MonthlyBuckets returns one row per calendar month that has transactions in
// the filtered set, chronologically ordered. Zero-filling absent months is
// the service's job.
func (r *transactionsRepository) MonthlyBuckets(ctx context.Context, f Filter) ([]models.MonthlyBucket, error) {
	conds, args := f.where()

	query := fmt.Sprintf(`
		SELECT
			t.mes,
			COALESCE(SUM(t.negociado), 0),
			COALESCE(SUM(t.comi_corr_neto), 0),
			COUNT(*),
			COUNT(DISTINCT (t.fecha, t.rueda_no))
		FROM orfs_transactions t
		WHERE %s
		GROUP BY t.mes
		ORDER BY t.mes ASC
	`, conds)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.MonthlyBucket
	for rows.Next() {
		var b models.MonthlyBucket
		if err := rows.Scan(&b.Month, &b.Volume, &b.Commission, &b.Transactions, &b.Ruedas); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// TraderVolumes returns total negociado per corredor for a year (and
// optionally one month), ordered volume descending, name ascending. The
// full list is returned; callers slice it for limits.
func (r *transactionsRepository) TraderVolumes(ctx context.Context, year, mes int) ([]models.TraderVolume, error) {
	conds := "t.year = $1"
	args := []interface{}{year}
	if mes > 0 {
		args = append(args, mes)
		conds += fmt.Sprintf(" AND t.mes = $%d", len(args))
	}

	query := fmt.Sprintf(`
		SELECT t.corredor, COALESCE(SUM(t.negociado), 0) AS volume
		FROM orfs_transactions t
		WHERE %s
		GROUP BY t.corredor
		ORDER BY volume DESC, t.corredor ASC
	`, conds)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.TraderVolume
	for rows.Next() {
		var v models.TraderVolume
		if err := rows.Scan(&v.Name, &v.Volume); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// MonthlyTraderVolumes returns one (corredor, mes) volume cell per group for
// a full year, feeding the benchmark trend series.
func (r *transactionsRepository) MonthlyTraderVolumes(ctx context.Context, year int) ([]models.MonthlyTraderVolume, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.corredor, t.mes, COALESCE(SUM(t.negociado), 0) AS volume
		FROM orfs_transactions t
		WHERE t.year = $1
		GROUP BY t.corredor, t.mes
		ORDER BY t.corredor ASC, t.mes ASC
	`, year)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.MonthlyTraderVolume
	for rows.Next() {
		v := models.MonthlyTraderVolume{Year: year}
		if err := rows.Scan(&v.Name, &v.Mes, &v.Volume); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// TrailingTraderVolumes returns monthly volume cells for the named traders
// where year*12+mes > sinceIndex, chronologically ordered per trader.
// The month-index arithmetic keeps trailing windows correct across year
// boundaries.
func (r *transactionsRepository) TrailingTraderVolumes(ctx context.Context, names []string, sinceIndex int) ([]models.MonthlyTraderVolume, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.corredor, t.year, t.mes, COALESCE(SUM(t.negociado), 0) AS volume
		FROM orfs_transactions t
		WHERE t.corredor = ANY($1) AND (t.year * 12 + t.mes) > $2
		GROUP BY t.corredor, t.year, t.mes
		ORDER BY t.corredor ASC, t.year ASC, t.mes ASC
	`, pq.Array(names), sinceIndex)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.MonthlyTraderVolume
	for rows.Next() {
		var v models.MonthlyTraderVolume
		if err := rows.Scan(&v.Name, &v.Year, &v.Mes, &v.Volume); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
