package service

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jfcardenasg/corredash/internal/apperrors"
	"github.com/jfcardenasg/corredash/internal/domain/models"
	"github.com/jfcardenasg/corredash/internal/storage"
)

// DashboardService is the aggregation engine: it turns raw transaction rows
// into the KPI/ranking/trend payload the dashboard renders, and owns the
// per-user layout blob and the budget comparison.
type DashboardService interface {
	GetSummary(ctx context.Context, f storage.Filter, withGroups bool) (*models.DashboardSummary, error)
	GetLayout(ctx context.Context, userID string) (json.RawMessage, error)
	SaveLayout(ctx context.Context, userID string, layout json.RawMessage) error
	BudgetComparison(ctx context.Context, f storage.Filter) ([]models.BudgetVariance, error)
}

type dashboardService struct {
	repo storage.TransactionsRepository
	ref  storage.ReferenceRepository
	topN int
}

// NewDashboardService builds the aggregation engine. topN caps every
// ranking list; values below 1 fall back to 10.
func NewDashboardService(repo storage.TransactionsRepository, ref storage.ReferenceRepository, topN int) DashboardService {
	if topN < 1 {
		topN = 10
	}
	return &dashboardService{repo: repo, ref: ref, topN: topN}
}

// validate enforces the engine's parameter contract before any query runs.
func validate(f storage.Filter) error {
	if f.Year <= 0 {
		return apperrors.InvalidParameterf("year", "must be a positive integer, got %d", f.Year)
	}
	if f.Month < 0 || f.Month > 12 {
		return apperrors.InvalidParameterf("month", "must be 1-12 or all, got %d", f.Month)
	}
	return nil
}

// GetSummary computes KPIs, the four ranking lists and the monthly trend
// series for the filtered set. The six underlying queries run concurrently;
// the first store failure cancels the rest and surfaces as
// ErrUpstreamUnavailable so an unreachable store is never mistaken for an
// empty result.
//
// With withGroups=true the monthly series always holds exactly 12 entries
// (January through December), zero-filled where no transactions exist, so
// charts keep their continuity. With false, only months with data appear.
func (s *dashboardService) GetSummary(ctx context.Context, f storage.Filter, withGroups bool) (*models.DashboardSummary, error) {
	if err := validate(f); err != nil {
		return nil, err
	}

	rankingSpecs := []struct {
		dim    storage.RankingDimension
		metric storage.RankingMetric
	}{
		{storage.DimensionTrader, storage.MetricVolume},
		{storage.DimensionTrader, storage.MetricCommission},
		{storage.DimensionClient, storage.MetricVolume},
		{storage.DimensionClient, storage.MetricCommission},
	}

	var (
		kpis     *models.KPISet
		buckets  []models.MonthlyBucket
		rankings = make([][]models.RankingEntry, len(rankingSpecs))
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		k, err := s.repo.KPIs(gctx, f)
		if err != nil {
			return apperrors.Upstream(err)
		}
		kpis = k
		return nil
	})

	for i, spec := range rankingSpecs {
		i, spec := i, spec
		g.Go(func() error {
			entries, err := s.repo.Ranking(gctx, f, spec.dim, spec.metric, s.topN)
			if err != nil {
				return apperrors.Upstream(err)
			}
			rankings[i] = entries
			return nil
		})
	}

	g.Go(func() error {
		b, err := s.repo.MonthlyBuckets(gctx, f)
		if err != nil {
			return apperrors.Upstream(err)
		}
		buckets = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if withGroups {
		buckets = fillMonths(buckets)
	}

	return &models.DashboardSummary{
		KPIs: *kpis,
		Rankings: models.Rankings{
			TradersByVolume:     rankings[0],
			TradersByCommission: rankings[1],
			ClientsByVolume:     rankings[2],
			ClientsByCommission: rankings[3],
		},
		MonthlySummary: buckets,
	}, nil
}

// fillMonths expands a sparse month list into exactly 12 chronological
// buckets, zero-valued where no data exists.
func fillMonths(in []models.MonthlyBucket) []models.MonthlyBucket {
	out := make([]models.MonthlyBucket, 12)
	for i := range out {
		out[i] = models.MonthlyBucket{
			Month:      i + 1,
			Volume:     decimal.Zero,
			Commission: decimal.Zero,
		}
	}
	for _, b := range in {
		if b.Month >= 1 && b.Month <= 12 {
			out[b.Month-1] = b
		}
	}
	return out
}

// GetLayout returns the user's stored layout blob, or nil when none exists.
func (s *dashboardService) GetLayout(ctx context.Context, userID string) (json.RawMessage, error) {
	if userID == "" {
		return nil, apperrors.InvalidParameterf("userId", "is required")
	}
	raw, err := s.ref.GetLayout(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return raw, nil
}

// SaveLayout persists the layout blob verbatim. Only well-formed JSON is
// accepted; the bytes themselves are not normalized, so a later GetLayout
// returns them identically.
func (s *dashboardService) SaveLayout(ctx context.Context, userID string, layout json.RawMessage) error {
	if userID == "" {
		return apperrors.InvalidParameterf("userId", "is required")
	}
	if !json.Valid(layout) {
		return apperrors.InvalidParameterf("layout", "must be valid JSON")
	}
	if err := s.ref.SaveLayout(ctx, userID, layout); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

// BudgetComparison joins budgets against actuals for the filtered period and
// derives the variance columns (actual minus target).
func (s *dashboardService) BudgetComparison(ctx context.Context, f storage.Filter) ([]models.BudgetVariance, error) {
	if err := validate(f); err != nil {
		return nil, err
	}
	rows, err := s.ref.BudgetRows(ctx, f)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	for i := range rows {
		rows[i].Variance = rows[i].Negociado.Sub(rows[i].TransadoPresupuesto)
		rows[i].ComisionVariance = rows[i].Comision.Sub(rows[i].ComisionPresupuesto)
	}
	return rows, nil
}
