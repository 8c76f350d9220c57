package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jfcardenasg/corredash/internal/logger"
	"github.com/jfcardenasg/corredash/internal/storage"
)

const (
	fileSuffix       = "_ORFS.txt"
	defaultBatchSize = 5000
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.TransactionsRepository {
	return storage.NewTransactionsRepository(db)
}

// monthFileName builds the expected name of a monthly ORFS file, "MM-YYYY_ORFS.txt".
func monthFileName(year, mes int) string {
	return fmt.Sprintf("%02d-%04d%s", mes, year, fileSuffix)
}

// parseMonthFileName extracts (year, mes) from a "MM-YYYY_ORFS.txt" base name.
func parseMonthFileName(base string) (int, int, error) {
	datePart := strings.TrimSuffix(base, fileSuffix)
	d, err := time.Parse("01-2006", datePart)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month from filename: %w", err)
	}
	return d.Year(), int(d.Month()), nil
}

// ProcessDirectory ingests the monthly ORFS files of one calendar year.
//
// Parameters:
//   - dir:  directory containing "MM-YYYY_ORFS.txt" input files.
//   - db:   open *sql.DB (PostgreSQL).
//   - year: calendar year to ingest.
//
// Behavior:
//   - Scans dir for the twelve possible monthly files of the year; months
//     without a file are skipped (brokerage history is often partial).
//   - Fails upfront if the year has no files at all.
//   - Uses a concurrency limit based on CPU count (min(6, NumCPU)).
//   - For each file, parses & inserts transactions in batches via repository.
//   - A month already recorded in ingestion_log is skipped unless force is
//     set, in which case its transactions are deleted and reloaded.
//   - If any file returns error, cancels the rest and returns that error.
//
// Returns:
//   - error: first error encountered (if any).
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, year int, parallel int, force bool) error {
	// use indirection to allow tests to swap repository constructor
	repo := repoCtor(db)

	if year < 2000 || year > 2100 {
		return fmt.Errorf("invalid year %d", year)
	}

	// Collect the monthly files actually present for the year.
	type monthFile struct {
		path string
		mes  int
	}
	var files []monthFile

	for mes := 1; mes <= 12; mes++ {
		name := monthFileName(year, mes)
		full := filepath.Join(dir, name)

		if _, err := os.Stat(full); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat failed for %s: %w", full, err)
		}
		files = append(files, monthFile{path: full, mes: mes})
	}

	if len(files) == 0 {
		return fmt.Errorf("no ORFS files found in %s for year %d", dir, year)
	}

	logger.L().Info().Int("files", len(files)).Int("year", year).Str("dir", dir).Msg("ingestion start")

	// Concurrency: default to min(6, NumCPU), or use provided clamp(1..6)
	maxParallel := 6
	if parallel > 0 {
		if parallel > 6 {
			parallel = 6
		}
		maxParallel = parallel
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	logger.L().Info().Int("max_parallel", maxParallel).Msg("ingestion configured")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, file := range files {
		idx := i
		mf := file
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(mf.path)
			logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Msg("file start")

			// Idempotency: skip if already ingested, unless force
			exists, err := repo.HasIngestionFor(year, mf.mes)
			if err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", mf.path, err)
			}
			if exists && !force {
				logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Bool("skipped", true).Msg("already ingested")
				return nil
			}
			if exists && force {
				// Delete existing data for that month and reprocess
				if err := repo.DeleteTransactions(year, mf.mes); err != nil {
					logger.L().Error().Str("file", base).Err(err).Msg("delete existing failed")
					return fmt.Errorf("file %s: delete existing: %w", mf.path, err)
				}
			}

			// Process each file; this function:
			// - validates header/order/columns strictly
			// - rejects rows dated outside the file's month
			// - inserts in batches (defaultBatchSize)
			total, err := parseAndPersistFile(gctx, mf.path, repo, year, mf.mes, defaultBatchSize)
			if err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", mf.path, err)
			}
			if err := repo.UpsertIngestionLog(year, mf.mes, base, total); err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("update ingestion log failed")
				return fmt.Errorf("file %s: upsert ingestion log: %w", mf.path, err)
			}
			logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Int("rows", total).Dur("elapsed", time.Since(start)).Bool("force", force).Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return nil
}
