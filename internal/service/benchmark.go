package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfcardenasg/corredash/internal/apperrors"
	"github.com/jfcardenasg/corredash/internal/domain/models"
	"github.com/jfcardenasg/corredash/internal/storage"
)

// Spanish month labels used by the trend series.
var monthLabels = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// BenchmarkService derives market-wide competitive metrics: rankings with
// shares, trend series, the reference brokerage's position and gaps, and
// head-to-head comparisons over a trailing window.
//
// Every operation returns nil (with no error) when the requested scope has
// no data; errors always mean the store could not be queried.
type BenchmarkService interface {
	Summary(ctx context.Context, year int) (*models.MarketSummary, error)
	Ranking(ctx context.Context, year, mes, limit int) ([]models.MarketRankingRow, error)
	Trends(ctx context.Context, year int) (*models.TrendData, error)
	Correagro(ctx context.Context, year int) (*models.CorreagroStats, error)
	Compare(ctx context.Context, names []string, periodMonths int) (*models.ComparisonData, error)
	Snapshot(ctx context.Context, kind string, year int) (json.RawMessage, error)
}

type benchmarkService struct {
	repo      storage.TransactionsRepository
	ref       storage.ReferenceRepository
	reference string // corredor name of the reference brokerage
	now       func() time.Time
}

// NewBenchmarkService builds the benchmark module. reference is the
// corredor name whose competitive position Correagro() reports.
func NewBenchmarkService(repo storage.TransactionsRepository, ref storage.ReferenceRepository, reference string) BenchmarkService {
	return &benchmarkService{repo: repo, ref: ref, reference: reference, now: time.Now}
}

func validateYear(year int) error {
	if year <= 0 {
		return apperrors.InvalidParameterf("year", "must be a positive integer, got %d", year)
	}
	return nil
}

// Summary reports market totals for one year: distinct traders, combined
// volume, and the month with the largest traded volume.
func (s *benchmarkService) Summary(ctx context.Context, year int) (*models.MarketSummary, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	cells, err := s.repo.MonthlyTraderVolumes(ctx, year)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	traders := map[string]struct{}{}
	perMonth := [13]decimal.Decimal{}
	total := decimal.Zero
	for _, c := range cells {
		traders[c.Name] = struct{}{}
		perMonth[c.Mes] = perMonth[c.Mes].Add(c.Volume)
		total = total.Add(c.Volume)
	}

	active := 1
	for m := 2; m <= 12; m++ {
		if perMonth[m].GreaterThan(perMonth[active]) {
			active = m
		}
	}

	return &models.MarketSummary{
		TotalTraders: int64(len(traders)),
		TotalVolume:  total,
		ActiveMonth:  active,
	}, nil
}

// Ranking returns the market-wide ranking for a year (optionally one
// month), each row carrying its share of the market total and a 1-indexed
// position. The repository orders rows volume descending, name ascending;
// positions follow that order.
func (s *benchmarkService) Ranking(ctx context.Context, year, mes, limit int) ([]models.MarketRankingRow, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if mes < 0 || mes > 12 {
		return nil, apperrors.InvalidParameterf("month", "must be 1-12 or all, got %d", mes)
	}
	volumes, err := s.repo.TraderVolumes(ctx, year, mes)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	if len(volumes) == 0 {
		return nil, nil
	}

	total := decimal.Zero
	for _, v := range volumes {
		total = total.Add(v.Volume)
	}

	if limit <= 0 || limit > len(volumes) {
		limit = len(volumes)
	}

	out := make([]models.MarketRankingRow, 0, limit)
	for i, v := range volumes[:limit] {
		row := models.MarketRankingRow{
			Name:     v.Name,
			Volume:   v.Volume,
			Position: i + 1,
		}
		if total.IsPositive() {
			row.Share = v.Volume.Div(total).InexactFloat64()
		}
		out = append(out, row)
	}
	return out, nil
}

// Trends returns the month-by-month volume series for the whole market and
// for each trader, keyed by Spanish month label.
func (s *benchmarkService) Trends(ctx context.Context, year int) (*models.TrendData, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	cells, err := s.repo.MonthlyTraderVolumes(ctx, year)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	trend := &models.TrendData{
		Market:  make(map[string]decimal.Decimal, 12),
		Traders: make(map[string]map[string]decimal.Decimal),
		Months:  monthLabels[:],
	}
	for _, label := range monthLabels {
		trend.Market[label] = decimal.Zero
	}
	for _, c := range cells {
		label := monthLabels[c.Mes-1]
		trend.Market[label] = trend.Market[label].Add(c.Volume)
		series, ok := trend.Traders[c.Name]
		if !ok {
			series = make(map[string]decimal.Decimal, 12)
			trend.Traders[c.Name] = series
		}
		series[label] = c.Volume
	}
	return trend, nil
}

// Correagro reports the reference brokerage's position for one year:
// 1-indexed rank, market share in [0,1], the volume gaps to the one and two
// next-higher-ranked competitors, and last year's gap for trend context.
//
// A nil result means the brokerage had no transactions that year. That is a
// reportable state, not a failure.
func (s *benchmarkService) Correagro(ctx context.Context, year int) (*models.CorreagroStats, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	volumes, err := s.repo.TraderVolumes(ctx, year, 0)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}

	stats := referenceGaps(volumes, s.reference)
	if stats == nil {
		return nil, nil
	}

	// Same reference point, prior year. An empty prior year leaves the
	// gap at zero.
	prev, err := s.repo.TraderVolumes(ctx, year-1, 0)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	if prevStats := referenceGaps(prev, s.reference); prevStats != nil {
		stats.PrevGap = prevStats.Gap1
	} else {
		stats.PrevGap = decimal.Zero
	}
	return stats, nil
}

// referenceGaps locates the reference brokerage inside an ordered volume
// list and computes its share and gaps. It returns nil when the reference
// is absent or has zero volume.
func referenceGaps(volumes []models.TraderVolume, reference string) *models.CorreagroStats {
	pos := -1
	total := decimal.Zero
	for i, v := range volumes {
		total = total.Add(v.Volume)
		if v.Name == reference {
			pos = i
		}
	}
	if pos < 0 || volumes[pos].Volume.IsZero() {
		return nil
	}

	stats := &models.CorreagroStats{
		Position: pos + 1,
		Gap1:     decimal.Zero,
		Gap2:     decimal.Zero,
	}
	if total.IsPositive() {
		stats.Share = volumes[pos].Volume.Div(total).InexactFloat64()
	}
	if pos >= 1 {
		stats.Gap1 = volumes[pos-1].Volume.Sub(volumes[pos].Volume)
	}
	if pos >= 2 {
		stats.Gap2 = volumes[pos-2].Volume.Sub(volumes[pos].Volume)
	}
	return stats
}

// Compare builds head-to-head metrics for a set of traders over the
// trailing periodMonths window (ending in the current month): each
// trader's share of the combined volume, a zero-filled monthly history,
// latest volumes ordered descending, and the gap between the top two.
// A requested trader with no volume in the window is still reported,
// zeroed. nil means nobody in the list had any data.
//
// Months-to-close is a linear extrapolation: the chaser gains on the
// leader at the difference of their average monthly volume deltas over the
// window. A non-positive closing rate means the gap never closes and is
// reported as unreachable rather than a negative month count.
func (s *benchmarkService) Compare(ctx context.Context, names []string, periodMonths int) (*models.ComparisonData, error) {
	if len(names) == 0 {
		return nil, apperrors.InvalidParameterf("ids", "at least one trader is required")
	}
	if periodMonths < 2 || periodMonths > 36 {
		return nil, apperrors.InvalidParameterf("period", "must be 2-36 months, got %d", periodMonths)
	}

	now := s.now()
	nowIndex := now.Year()*12 + int(now.Month())
	sinceIndex := nowIndex - periodMonths

	cells, err := s.repo.TrailingTraderVolumes(ctx, names, sinceIndex)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	// Every requested trader gets an entry, so a trader with no rows in
	// the window still shows up with zero share and a flat history.
	byTrader := make(map[string]map[int]decimal.Decimal, len(names))
	for _, name := range names {
		byTrader[name] = make(map[int]decimal.Decimal, periodMonths)
	}
	for _, c := range cells {
		idx := c.Year*12 + c.Mes
		if byTrader[c.Name] == nil {
			byTrader[c.Name] = make(map[int]decimal.Decimal, periodMonths)
		}
		byTrader[c.Name][idx] = c.Volume
	}

	type traderAgg struct {
		name   string
		total  decimal.Decimal
		series []decimal.Decimal // zero-filled, chronological
	}

	aggs := make([]traderAgg, 0, len(byTrader))
	combined := decimal.Zero
	for name, months := range byTrader {
		agg := traderAgg{name: name, total: decimal.Zero, series: make([]decimal.Decimal, periodMonths)}
		for i := 0; i < periodMonths; i++ {
			v, ok := months[sinceIndex+1+i]
			if !ok {
				v = decimal.Zero
			}
			agg.series[i] = v
			agg.total = agg.total.Add(v)
		}
		combined = combined.Add(agg.total)
		aggs = append(aggs, agg)
	}

	// Total volume descending, name ascending for reproducible output.
	sort.Slice(aggs, func(i, j int) bool {
		if c := aggs[i].total.Cmp(aggs[j].total); c != 0 {
			return c > 0
		}
		return aggs[i].name < aggs[j].name
	})

	data := &models.ComparisonData{}
	for _, agg := range aggs {
		share := models.TraderShare{Name: agg.name, Value: agg.total}
		if combined.IsPositive() {
			share.Percentage = agg.total.Div(combined).InexactFloat64()
		}
		data.MarketShare = append(data.MarketShare, share)

		series := models.TraderSeries{Name: agg.name, Points: make([]models.VolumePoint, periodMonths)}
		for i, v := range agg.series {
			idx := sinceIndex + 1 + i
			series.Points[i] = models.VolumePoint{
				Month: fmt.Sprintf("%04d-%02d", (idx-1)/12, (idx-1)%12+1),
				Value: v,
			}
		}
		data.VolumeHistory = append(data.VolumeHistory, series)
	}

	growth := make([]models.GrowthEntry, 0, len(aggs))
	for _, agg := range aggs {
		growth = append(growth, models.GrowthEntry{Name: agg.name, Latest: agg.series[periodMonths-1]})
	}
	sort.Slice(growth, func(i, j int) bool {
		if c := growth[i].Latest.Cmp(growth[j].Latest); c != 0 {
			return c > 0
		}
		return growth[i].Name < growth[j].Name
	})
	data.Growth = growth

	if len(aggs) >= 2 {
		leader, chaser := aggs[0], aggs[1]
		gap := &models.CompareGap{
			Leader: leader.name,
			Chaser: chaser.name,
			Volume: leader.total.Sub(chaser.total),
		}
		closing := avgMonthlyDelta(chaser.series).Sub(avgMonthlyDelta(leader.series))
		if closing.IsPositive() && gap.Volume.IsPositive() {
			months, _ := gap.Volume.Div(closing).Float64()
			gap.MonthsToReach = &months
			gap.Reachable = true
		} else if !gap.Volume.IsPositive() {
			zero := 0.0
			gap.MonthsToReach = &zero
			gap.Reachable = true
		}
		data.Gaps = gap
	}

	return data, nil
}

// avgMonthlyDelta is the mean month-over-month volume change across a
// series, the slope of the linear extrapolation.
func avgMonthlyDelta(series []decimal.Decimal) decimal.Decimal {
	if len(series) < 2 {
		return decimal.Zero
	}
	span := series[len(series)-1].Sub(series[0])
	return span.Div(decimal.NewFromInt(int64(len(series) - 1)))
}

// Snapshot serves the stored sectors/products payload for a year
// unmodified, or nil when none was loaded.
func (s *benchmarkService) Snapshot(ctx context.Context, kind string, year int) (json.RawMessage, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	raw, err := s.ref.GetSnapshot(ctx, kind, year)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return raw, nil
}
