package models

import "github.com/shopspring/decimal"

// KPISet holds the headline numbers of the dashboard for a filtered set of
// transactions.
//
// Fields:
//   - TotalVolume: sum of negociado over the filtered set.
//   - TotalCommission: sum of comi_corr_neto.
//   - TotalTransactions: row count.
//   - TotalRuedas: count of distinct (fecha, rueda_no) pairs.
//   - ActiveTraders: distinct corredor values present in the set whose
//     trader dimension row has activo=true.
//
// swagger:model KPISet
type KPISet struct {
	TotalVolume       decimal.Decimal `json:"total_volume"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalRuedas       int64           `json:"total_ruedas"`
	ActiveTraders     int64           `json:"active_traders"`
}

// RankingEntry is one row of an ordered ranking list.
// Lists are sorted by Value descending; ties break by Name ascending so the
// output is reproducible for identical input sets.
type RankingEntry struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Rankings groups the four top-N lists served on the dashboard.
type Rankings struct {
	TradersByVolume     []RankingEntry `json:"traders_by_volume"`
	TradersByCommission []RankingEntry `json:"traders_by_commission"`
	ClientsByVolume     []RankingEntry `json:"clients_by_volume"`
	ClientsByCommission []RankingEntry `json:"clients_by_commission"`
}

// MonthlyBucket is one calendar month of the trend series.
type MonthlyBucket struct {
	Month        int             `json:"month"`
	Volume       decimal.Decimal `json:"volume"`
	Commission   decimal.Decimal `json:"commission"`
	Transactions int64           `json:"transactions"`
	Ruedas       int64           `json:"ruedas"`
}

// DashboardSummary is the full payload of GET /api/v1/dashboard/summary.
//
// swagger:model DashboardSummary
type DashboardSummary struct {
	KPIs           KPISet          `json:"kpis"`
	Rankings       Rankings        `json:"rankings"`
	MonthlySummary []MonthlyBucket `json:"monthly_summary"`
}
