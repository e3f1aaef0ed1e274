package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/jumpstats/internal/model"
	"github.com/verte-zerg/jumpstats/internal/store"
)

// MergeResult summarizes a merge run.
type MergeResult struct {
	Files   int
	Rows    int
	Skipped int
}

// Merge concatenates the data rows of files into a single CSV at out with one
// header row. Row order is preserved within and across files. Rows with the
// wrong number of fields are logged and dropped. The output file itself is
// never read as an input.
func Merge(files []string, out string, log hclog.Logger) (MergeResult, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	var res MergeResult
	outAbs, err := filepath.Abs(out)
	if err != nil {
		return res, fmt.Errorf("failed to resolve output path: %w", err)
	}

	var rows [][]string
	for _, path := range files {
		if abs, err := filepath.Abs(path); err == nil && abs == outAbs {
			continue
		}
		fileRows, skipped, err := readRawRows(path, log)
		if err != nil {
			return res, err
		}
		res.Files++
		res.Skipped += skipped
		rows = append(rows, fileRows...)
	}
	log.Info("read rows for merge", "rows", len(rows), "files", res.Files)

	if err := writeCSV(out, rows); err != nil {
		return res, err
	}
	res.Rows = len(rows)
	return res, nil
}

// MergeDB parses files and writes their records to a fresh SQLite database at
// out, replacing any existing file. Unlike Merge, rows must fully parse;
// invalid rows are logged and dropped.
func MergeDB(ctx context.Context, files []string, out string, log hclog.Logger) (MergeResult, error) {
	reader := NewReader(log)
	var (
		res     MergeResult
		records []model.Record
	)
	for _, path := range files {
		read, err := reader.ReadFile(path, func(r model.Record) {
			records = append(records, r)
		})
		if err != nil {
			return res, err
		}
		res.Files++
		res.Skipped += read.Skipped
	}
	reader.log.Info("read rows for merge", "rows", len(records), "files", res.Files)

	if err := writeDB(ctx, out, records); err != nil {
		return res, err
	}
	res.Rows = len(records)
	return res, nil
}

// writeDB builds the database next to path and renames it into place.
func writeDB(ctx context.Context, path string, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "merged-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp output: %w", err)
	}

	st, err := store.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	if err := st.InsertRecords(ctx, records); err != nil {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close; the temp file is removed anyway.
			_ = cerr
		}
		return fmt.Errorf("failed to insert records: %w", err)
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func readRawRows(path string, log hclog.Logger) ([][]string, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open stats file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only stats file.
			_ = cerr
		}
	}()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return nil, 0, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
	}
	var (
		rows    [][]string
		skipped int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, skipped, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
			}
			skipped++
			log.Warn("skipping unreadable row", "file", path, "line", perr.Line, "error", perr.Err)
			continue
		}
		if len(row) != FieldCount {
			line, _ := cr.FieldPos(0)
			skipped++
			log.Warn("skipping row with wrong field count", "file", path, "line", line, "fields", len(row))
			continue
		}
		rows = append(rows, row)
	}
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "merged-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := csv.NewWriter(tmpFile)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
