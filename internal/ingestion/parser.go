package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfcardenasg/corredash/internal/domain/models"
	"github.com/jfcardenasg/corredash/internal/storage"
)

// expectedHeaders enforces strict column ordering for ORFS reassignment
// files. If the header doesn't match EXACTLY (order + count), ingestion must
// fail.
var expectedHeaders = []string{
	"Nit",
	"Nombre",
	"Corredor",
	"Fecha",
	"RuedaNo",
	"Negociado",
	"ComiBna",
	"Campo209",
	"ComiCorr",
	"IvaBna",
	"IvaComi",
	"IvaCama",
	"Facturado",
	"ComiCorrNeto",
	"ComiPorcentual",
}

// parseAndPersistFile opens, validates, parses, and persists one file in batches.
// It fails on:
//   - header not matching expected order/length
//   - rows whose fecha does not belong to the month the filename claims
//   - unrecoverable I/O errors
//
// It tolerates:
//   - empty monetary cells (they become zero values)
//
// Parameters:
//   - ctx:   context for cancellation/timeouts.
//   - path:  file path.
//   - repo:  repository for DB insertion.
//   - year:  calendar year the file must belong to.
//   - mes:   month (1-12) the file must belong to.
//   - batch: batch size for inserts (e.g., 5000).
func parseAndPersistFile(ctx context.Context, path string, repo storage.TransactionsRepository, year, mes, batch int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1 // allow variable but we check explicitly

	// Validate headers strictly.
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return 0, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expectedHeaders[i] {
			return 0, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	// Parse rows streaming; flush batches to DB.
	buf := make([]models.Transaction, 0, batch)
	lineNumber := 1 // header already read

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := repo.InsertTransactionsBatch(buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	total := 0

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		// Enforce structure: exactly 15 columns. If not, fail entire ingestion.
		if len(rec) != len(expectedHeaders) {
			return 0, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		tr, err := recordToTransaction(rec, year, mes)
		if err != nil {
			// Structural/format error → fail the whole pipeline.
			return 0, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		buf = append(buf, tr)
		total++
		if len(buf) >= batch {
			if err := flush(); err != nil {
				return 0, fmt.Errorf("flush batch ending line %d: %w", lineNumber, err)
			}
		}
	}

	// Final flush
	if err := flush(); err != nil {
		return 0, fmt.Errorf("final flush: %w", err)
	}

	return total, nil
}

// recordToTransaction converts a single CSV record (already validated
// length==15) into a models.Transaction. It is STRICT about identity and
// date columns but TOLERATES empty monetary cells, mapping them to zero.
//
// Mes and Year are always recomputed from Fecha and checked against the
// month the filename claims; a mismatch rejects the file. The denormalized
// columns are cache fields, never an independent source of truth.
//
// Column order:
//
//	 0 Nit             → Nit (string, required)
//	 1 Nombre          → Nombre (string)
//	 2 Corredor        → Corredor (string, required)
//	 3 Fecha           → Fecha (DATE, "2006-01-02", required)
//	 4 RuedaNo         → RuedaNo (int, empty→0)
//	 5 Negociado       → Negociado (decimal, comma→dot, empty→0)
//	 6 ComiBna         → ComiBna
//	 7 Campo209        → Campo209
//	 8 ComiCorr        → ComiCorr
//	 9 IvaBna          → IvaBna
//	10 IvaComi         → IvaComi
//	11 IvaCama         → IvaCama
//	12 Facturado       → Facturado
//	13 ComiCorrNeto    → ComiCorrNeto
//	14 ComiPorcentual  → ComiPorcentual
func recordToTransaction(rec []string, year, mes int) (models.Transaction, error) {
	var t models.Transaction

	// Nit (0) — required, client join key
	t.Nit = strings.TrimSpace(rec[0])
	if t.Nit == "" {
		return t, fmt.Errorf("missing Nit")
	}

	// Nombre (1)
	t.Nombre = strings.TrimSpace(rec[1])

	// Corredor (2) — required, trader join key
	t.Corredor = strings.TrimSpace(rec[2])
	if t.Corredor == "" {
		return t, fmt.Errorf("missing Corredor")
	}

	// Fecha (3) — required; mes/year are derived here, not read from the file
	s := strings.TrimSpace(rec[3])
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return t, fmt.Errorf("invalid Fecha: %v", err)
	}
	t.Fecha = d.Format("2006-01-02")
	t.Year = d.Year()
	t.Mes = int(d.Month())
	if t.Year != year || t.Mes != mes {
		return t, fmt.Errorf("Fecha %s outside file month %02d-%04d", t.Fecha, mes, year)
	}

	// RuedaNo (4) — may be empty
	if s := strings.TrimSpace(rec[4]); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return t, fmt.Errorf("invalid RuedaNo: %v", err)
		}
		t.RuedaNo = v
	}

	// Monetary columns (5-14) — may be empty, use comma as decimal separator
	monies := []*decimal.Decimal{
		&t.Negociado,
		&t.ComiBna,
		&t.Campo209,
		&t.ComiCorr,
		&t.IvaBna,
		&t.IvaComi,
		&t.IvaCama,
		&t.Facturado,
		&t.ComiCorrNeto,
		&t.ComiPorcentual,
	}
	for i, target := range monies {
		col := 5 + i
		s := strings.TrimSpace(rec[col])
		if s == "" {
			*target = decimal.Zero
			continue
		}
		s = strings.ReplaceAll(s, ",", ".")
		v, err := decimal.NewFromString(s)
		if err != nil {
			return t, fmt.Errorf("invalid %s: %v", expectedHeaders[col], err)
		}
		*target = v
	}

	return t, nil
}
