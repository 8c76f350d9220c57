package models

import "github.com/shopspring/decimal"

// Transaction represents a single row in an ORFS reassignment file.
// Each field matches one column in the .txt file.
//
// Column order:
//  1. Nit
//  2. Nombre
//  3. Corredor
//  4. Fecha
//  5. RuedaNo
//  6. Negociado
//  7. ComiBna
//  8. Campo209
//  9. ComiCorr
//  10. IvaBna
//  11. IvaComi
//  12. IvaCama
//  13. Facturado
//  14. ComiCorrNeto
//  15. ComiPorcentual
//
// Fecha is kept as ISO-8601 text ("2006-01-02") because that is how the
// store persists it; Mes and Year are denormalized from Fecha at ingestion
// time and re-derived (never trusted) when a file is loaded.
type Transaction struct {
	ID             int64
	Nit            string
	Nombre         string
	Corredor       string
	Fecha          string
	RuedaNo        int
	Mes            int
	Year           int
	Negociado      decimal.Decimal
	ComiBna        decimal.Decimal
	Campo209       decimal.Decimal
	ComiCorr       decimal.Decimal
	IvaBna         decimal.Decimal
	IvaComi        decimal.Decimal
	IvaCama        decimal.Decimal
	Facturado      decimal.Decimal
	ComiCorrNeto   decimal.Decimal
	ComiPorcentual decimal.Decimal
}
