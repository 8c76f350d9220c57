package models

import "github.com/shopspring/decimal"

// Trader is a dimension row joined against transactions through the
// corredor column (Nombre is the join key and is unique).
//
// Activo is a soft-delete flag: inactive traders are excluded from the
// "active traders" KPI but still appear in historical aggregations.
type Trader struct {
	ID                 int64
	Nombre             string
	Nit                string
	PorcentajeComision decimal.Decimal
	Activo             bool
}
