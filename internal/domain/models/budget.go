package models

import "github.com/shopspring/decimal"

// Budget (presupuesto) holds target values per (nit, corredor, mes, year).
type Budget struct {
	ID                  int64
	Nit                 string
	Corredor            string
	Mes                 int
	Year                int
	TransadoPresupuesto decimal.Decimal
	ComisionPresupuesto decimal.Decimal
}

// BudgetVariance is one actual-vs-target row produced by the budget
// comparison query. Variance fields are actual minus target, so negative
// values mean the target was missed.
type BudgetVariance struct {
	Nit                 string          `json:"nit"`
	Corredor            string          `json:"corredor"`
	Mes                 int             `json:"mes"`
	Negociado           decimal.Decimal `json:"negociado"`
	TransadoPresupuesto decimal.Decimal `json:"transado_presupuesto"`
	Variance            decimal.Decimal `json:"variance"`
	Comision            decimal.Decimal `json:"comision"`
	ComisionPresupuesto decimal.Decimal `json:"comision_presupuesto"`
	ComisionVariance    decimal.Decimal `json:"comision_variance"`
}
