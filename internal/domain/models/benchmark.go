package models

import "github.com/shopspring/decimal"

// TraderVolume is a raw aggregation row: total negociado for one corredor.
// Repository queries return these ordered by volume descending, name
// ascending; services derive shares, positions and gaps from them.
type TraderVolume struct {
	Name   string
	Volume decimal.Decimal
}

// MonthlyTraderVolume is one (corredor, year, mes) volume cell, the input
// for trend series and trailing-period comparisons.
type MonthlyTraderVolume struct {
	Name   string
	Year   int
	Mes    int
	Volume decimal.Decimal
}

// MarketRankingRow is one entry of GET /api/v1/benchmark/ranking.
type MarketRankingRow struct {
	Name     string          `json:"name"`
	Volume   decimal.Decimal `json:"volume"`
	Share    float64         `json:"share"`
	Position int             `json:"position"`
}

// MarketSummary is the payload of GET /api/v1/benchmark/summary.
// ActiveMonth is the month (1-12) with the largest traded volume.
type MarketSummary struct {
	TotalTraders int64           `json:"total_traders"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
	ActiveMonth  int             `json:"active_month"`
}

// TrendData is the payload of GET /api/v1/benchmark/trends: one market-wide
// series plus one series per trader, all keyed by month label.
type TrendData struct {
	Market  map[string]decimal.Decimal            `json:"market"`
	Traders map[string]map[string]decimal.Decimal `json:"traders"`
	Months  []string                              `json:"months"`
}

// CorreagroStats describes the competitive position of the reference
// brokerage for one year. A nil value means the brokerage had no
// transactions that year ("no data", not a failure).
//
// Gap1 is the volume distance to the next-higher-ranked competitor (zero at
// rank 1), Gap2 the distance to the one above that (zero at rank <= 2), and
// PrevGap is Gap1 recomputed for the prior year.
type CorreagroStats struct {
	Position int             `json:"position"`
	Share    float64         `json:"share"`
	Gap1     decimal.Decimal `json:"gap1"`
	Gap2     decimal.Decimal `json:"gap2"`
	PrevGap  decimal.Decimal `json:"prevGap"`
}

// TraderShare is one trader's slice of the combined volume of a compared
// set.
type TraderShare struct {
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
}

// VolumePoint is one month of a trader's volume history.
type VolumePoint struct {
	Month string          `json:"month"`
	Value decimal.Decimal `json:"value"`
}

// TraderSeries is the chronological volume history of one trader.
type TraderSeries struct {
	Name   string        `json:"name"`
	Points []VolumePoint `json:"points"`
}

// GrowthEntry pairs a trader with its latest monthly volume.
type GrowthEntry struct {
	Name   string          `json:"name"`
	Latest decimal.Decimal `json:"latest"`
}

// CompareGap describes the distance between the two largest traders in a
// compared set. MonthsToReach is a linear extrapolation over the trailing
// period; it is nil (and Reachable false) when the chaser's growth never
// closes the gap.
type CompareGap struct {
	Leader        string          `json:"leader"`
	Chaser        string          `json:"chaser"`
	Volume        decimal.Decimal `json:"volume"`
	MonthsToReach *float64        `json:"monthsToReach"`
	Reachable     bool            `json:"reachable"`
}

// ComparisonData is the payload of GET /api/v1/benchmark/compare.
//
// swagger:model ComparisonData
type ComparisonData struct {
	MarketShare   []TraderShare  `json:"marketShare"`
	VolumeHistory []TraderSeries `json:"volumeHistory"`
	Growth        []GrowthEntry  `json:"growth"`
	Gaps          *CompareGap    `json:"gaps"`
}
