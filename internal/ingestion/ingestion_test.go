package ingestion

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jfcardenasg/corredash/internal/storage"
)

// dummyDB satisfies *sql.DB usage but is nil internally; we never call db methods directly in tests due to repoCtor override.
func dummyDB() *sql.DB { return (*sql.DB)(nil) }

func writeFile(t *testing.T, dir, name string, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// monthly file with valid header and 2 rows for 03-2024
func sampleFile() string {
	return validHeader +
		"900123456;AGRO SAS;PEREZ;2024-03-04;1;1000,0;;;;;;;;;\n" +
		"800987654;GANADERA LTDA;GOMEZ;2024-03-05;2;2000,0;;;;;;;;;\n"
}

func TestMonthFileNameRoundTrip(t *testing.T) {
	name := monthFileName(2024, 3)
	if name != "03-2024_ORFS.txt" {
		t.Fatalf("unexpected name %q", name)
	}
	y, m, err := parseMonthFileName(name)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if y != 2024 || m != 3 {
		t.Fatalf("got %d/%d", y, m)
	}
}

func TestProcessDirectory_SkipIfAlreadyIngested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, monthFileName(2024, 3), sampleFile())

	fr := &fakeRepo{ingested: map[int]bool{3: true}}
	old := repoCtor
	repoCtor = func(_ *sql.DB) storage.TransactionsRepository { return fr }
	t.Cleanup(func() { repoCtor = old })

	if err := ProcessDirectory(context.Background(), dir, dummyDB(), 2024, runtime.NumCPU(), false); err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if len(fr.batches) != 0 {
		t.Fatalf("expected no inserts when already ingested, got %d batches", len(fr.batches))
	}
}

func TestProcessDirectory_ForceReprocess(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, monthFileName(2024, 3), sampleFile())

	fr := &fakeRepo{ingested: map[int]bool{3: true}}
	old := repoCtor
	repoCtor = func(_ *sql.DB) storage.TransactionsRepository { return fr }
	t.Cleanup(func() { repoCtor = old })

	if err := ProcessDirectory(context.Background(), dir, dummyDB(), 2024, 1, true); err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if len(fr.deleted) != 1 || fr.deleted[0] != 3 {
		t.Fatalf("expected delete for month 3, got %v", fr.deleted)
	}
	rows := 0
	for _, b := range fr.batches {
		rows += len(b)
	}
	if rows != 2 {
		t.Fatalf("expected 2 inserted rows, got %d", rows)
	}
	if len(fr.logged) != 1 || fr.logged[0] != 3 {
		t.Fatalf("expected ingestion log for month 3, got %v", fr.logged)
	}
}

func TestProcessDirectory_PartialYear(t *testing.T) {
	dir := t.TempDir()
	// only two of twelve months present; the rest must be skipped silently
	writeFile(t, dir, monthFileName(2024, 1), validHeader+"900123456;AGRO SAS;PEREZ;2024-01-10;1;10,0;;;;;;;;;\n")
	writeFile(t, dir, monthFileName(2024, 6), validHeader+"900123456;AGRO SAS;PEREZ;2024-06-10;1;20,0;;;;;;;;;\n")

	fr := &fakeRepo{}
	old := repoCtor
	repoCtor = func(_ *sql.DB) storage.TransactionsRepository { return fr }
	t.Cleanup(func() { repoCtor = old })

	if err := ProcessDirectory(context.Background(), dir, dummyDB(), 2024, 2, false); err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if len(fr.logged) != 2 {
		t.Fatalf("expected 2 ingested months, got %v", fr.logged)
	}
}

func TestProcessDirectory_NoFiles(t *testing.T) {
	dir := t.TempDir()
	// no files created => should report nothing to ingest
	err := ProcessDirectory(context.Background(), dir, (*sql.DB)(nil), 2024, runtime.NumCPU(), false)
	if err == nil || !strings.Contains(err.Error(), "no ORFS files") {
		t.Fatalf("expected no-files error, got %v", err)
	}
}

// minimal fake repo to inject specific errors
type errRepo struct {
	fakeRepo
	hasErr    error
	upsertErr error
}

func (e *errRepo) HasIngestionFor(year, mes int) (bool, error) {
	if e.hasErr != nil {
		return false, e.hasErr
	}
	return false, nil
}
func (e *errRepo) UpsertIngestionLog(int, int, string, int) error { return e.upsertErr }

func TestProcessDirectory_HasIngestionError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, monthFileName(2024, 3), validHeader)

	old := repoCtor
	repoCtor = func(_ *sql.DB) storage.TransactionsRepository {
		return &errRepo{hasErr: context.DeadlineExceeded}
	}
	t.Cleanup(func() { repoCtor = old })

	if err := ProcessDirectory(context.Background(), dir, (*sql.DB)(nil), 2024, 1, false); err == nil {
		t.Fatalf("expected error from HasIngestionFor")
	}
}

func TestProcessDirectory_UpsertLogError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, monthFileName(2024, 3), sampleFile())

	old := repoCtor
	repoCtor = func(_ *sql.DB) storage.TransactionsRepository {
		return &errRepo{upsertErr: context.Canceled}
	}
	t.Cleanup(func() { repoCtor = old })

	if err := ProcessDirectory(context.Background(), dir, (*sql.DB)(nil), 2024, 1, false); err == nil {
		t.Fatalf("expected error from UpsertIngestionLog")
	}
}

func TestProcessDirectory_InvalidYear(t *testing.T) {
	if err := ProcessDirectory(context.Background(), t.TempDir(), (*sql.DB)(nil), 0, 1, false); err == nil {
		t.Fatalf("expected invalid year error")
	}
}
