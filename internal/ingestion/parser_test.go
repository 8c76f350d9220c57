package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jfcardenasg/corredash/internal/domain/models"
	"github.com/jfcardenasg/corredash/internal/storage"
)

type fakeRepo struct {
	batches  [][]models.Transaction
	err      error
	ingested map[int]bool
	deleted  []int
	logged   []int
}

func (f *fakeRepo) InsertTransactionsBatch(txs []models.Transaction) error {
	f.batches = append(f.batches, append([]models.Transaction(nil), txs...))
	return f.err
}
func (f *fakeRepo) HasIngestionFor(year, mes int) (bool, error) { return f.ingested[mes], nil }
func (f *fakeRepo) UpsertIngestionLog(year, mes int, filename string, rowCount int) error {
	f.logged = append(f.logged, mes)
	return nil
}
func (f *fakeRepo) DeleteTransactions(year, mes int) error {
	f.deleted = append(f.deleted, mes)
	return nil
}
func (f *fakeRepo) KPIs(context.Context, storage.Filter) (*models.KPISet, error) { return nil, nil }
func (f *fakeRepo) Ranking(context.Context, storage.Filter, storage.RankingDimension, storage.RankingMetric, int) ([]models.RankingEntry, error) {
	return nil, nil
}
func (f *fakeRepo) MonthlyBuckets(context.Context, storage.Filter) ([]models.MonthlyBucket, error) {
	return nil, nil
}
func (f *fakeRepo) TraderVolumes(context.Context, int, int) ([]models.TraderVolume, error) {
	return nil, nil
}
func (f *fakeRepo) MonthlyTraderVolumes(context.Context, int) ([]models.MonthlyTraderVolume, error) {
	return nil, nil
}
func (f *fakeRepo) TrailingTraderVolumes(context.Context, []string, int) ([]models.MonthlyTraderVolume, error) {
	return nil, nil
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return p
}

const validHeader = "Nit;Nombre;Corredor;Fecha;RuedaNo;Negociado;ComiBna;Campo209;ComiCorr;IvaBna;IvaComi;IvaCama;Facturado;ComiCorrNeto;ComiPorcentual\n"

func TestParseAndPersistFile_TableDriven(t *testing.T) {
	dir := t.TempDir()
	validRow := "900123456;AGRO SAS;PEREZ;2024-03-15;12;1500000,50;100;0;200;19;38;0;1700;180,25;1,5\n"

	cases := []struct {
		name        string
		content     string
		wantErr     bool
		wantBatches int
		wantRows    int
	}{
		{name: "ok single row", content: validHeader + validRow, wantErr: false, wantBatches: 1, wantRows: 1},
		{name: "bad header order", content: "X;Y;Z\n", wantErr: true},
		{name: "bad col count", content: validHeader + "a;b\n", wantErr: true},
		{name: "empty monetary tolerated", content: validHeader + "900123456;AGRO SAS;PEREZ;2024-03-15;;;;;;;;;;;\n", wantErr: false, wantBatches: 1, wantRows: 1},
		{name: "missing nit", content: validHeader + ";AGRO SAS;PEREZ;2024-03-15;12;10;;;;;;;;;\n", wantErr: true},
		{name: "missing corredor", content: validHeader + "900123456;AGRO SAS;;2024-03-15;12;10;;;;;;;;;\n", wantErr: true},
		{name: "invalid fecha", content: validHeader + "900123456;AGRO SAS;PEREZ;15/03/2024;12;10;;;;;;;;;\n", wantErr: true},
		{name: "fecha outside month", content: validHeader + "900123456;AGRO SAS;PEREZ;2024-04-01;12;10;;;;;;;;;\n", wantErr: true},
		{name: "fecha outside year", content: validHeader + "900123456;AGRO SAS;PEREZ;2023-03-15;12;10;;;;;;;;;\n", wantErr: true},
		{name: "invalid negociado", content: validHeader + "900123456;AGRO SAS;PEREZ;2024-03-15;12;abc;;;;;;;;;\n", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, dir, "file.txt", tc.content)
			repo := &fakeRepo{}
			n, err := parseAndPersistFile(context.Background(), path, repo, 2024, 3, 5)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if n != tc.wantRows {
				t.Fatalf("rows: want %d got %d", tc.wantRows, n)
			}
			if len(repo.batches) != tc.wantBatches {
				t.Fatalf("batches: want %d got %d", tc.wantBatches, len(repo.batches))
			}
		})
	}
}

func TestParseAndPersistFile_DerivesMonthFromFecha(t *testing.T) {
	dir := t.TempDir()
	content := validHeader + "900123456;AGRO SAS;PEREZ;2024-03-15;7;2500,75;;;;;;;;;\n"
	path := writeTempFile(t, dir, "03-2024_ORFS.txt", content)

	repo := &fakeRepo{}
	if _, err := parseAndPersistFile(context.Background(), path, repo, 2024, 3, 10); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != 1 {
		t.Fatalf("expected one row, got %+v", repo.batches)
	}
	tr := repo.batches[0][0]
	if tr.Year != 2024 || tr.Mes != 3 {
		t.Fatalf("year/mes: got %d/%d", tr.Year, tr.Mes)
	}
	if tr.Fecha != "2024-03-15" {
		t.Fatalf("fecha: got %q", tr.Fecha)
	}
	if got := tr.Negociado.String(); got != "2500.75" {
		t.Fatalf("negociado: got %s", got)
	}
}

func TestParseAndPersistFile_ContextCanceled(t *testing.T) {
	dir := t.TempDir()
	// many rows to ensure loop would run if not canceled
	var sb strings.Builder
	sb.WriteString(validHeader)
	for i := 0; i < 1000; i++ {
		sb.WriteString("900123456;AGRO SAS;PEREZ;2024-03-15;1;10,5;;;;;;;;;\n")
	}
	path := writeTempFile(t, dir, "big.txt", sb.String())

	repo := &fakeRepo{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // immediately canceled
	if _, err := parseAndPersistFile(ctx, path, repo, 2024, 3, 100); err == nil {
		t.Fatalf("expected context canceled error")
	}
}
