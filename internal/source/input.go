package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/jumpstats/internal/model"
	"github.com/verte-zerg/jumpstats/internal/store"
)

// Input is one source of jumpstat records.
type Input interface {
	Name() string
	Each(ctx context.Context, r *Reader, fn func(model.Record)) (ReadResult, error)
}

// CSVFile is a jumpstat CSV file on disk.
type CSVFile struct {
	Path string
}

// Name returns the file path.
func (f CSVFile) Name() string { return f.Path }

// Each parses the file.
func (f CSVFile) Each(_ context.Context, r *Reader, fn func(model.Record)) (ReadResult, error) {
	return r.ReadFile(f.Path, fn)
}

// CSVData is jumpstat CSV content held in memory, such as a downloaded upload.
type CSVData struct {
	Label string
	Data  []byte
}

// Name returns the label.
func (d CSVData) Name() string { return d.Label }

// Each parses the buffered content.
func (d CSVData) Each(_ context.Context, r *Reader, fn func(model.Record)) (ReadResult, error) {
	return r.Read(d.Label, bytes.NewReader(d.Data), fn)
}

// SQLiteFile is a jumpstat database written by `jumpstats merge -o x.db`.
type SQLiteFile struct {
	Path string
}

// Name returns the file path.
func (f SQLiteFile) Name() string { return f.Path }

// Each reads every stored record.
func (f SQLiteFile) Each(ctx context.Context, _ *Reader, fn func(model.Record)) (ReadResult, error) {
	if _, err := os.Stat(f.Path); err != nil {
		return ReadResult{}, fmt.Errorf("failed to stat database: %w", err)
	}
	st, err := store.Open(f.Path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close for read-only use.
			_ = cerr
		}
	}()
	n, err := st.EachRecord(ctx, fn)
	if err != nil {
		return ReadResult{}, fmt.Errorf("failed to read db: %w", err)
	}
	return ReadResult{Rows: n, Records: n}, nil
}

// IsSQLitePath reports whether path names a jumpstat database.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

// Resolve expands paths into inputs. Directories are searched for CSV files;
// database files are read through the store; anything else is read as CSV.
func Resolve(paths []string) ([]Input, error) {
	var inputs []Input
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			files, err := Discover(path)
			if err != nil {
				return nil, err
			}
			for _, file := range files {
				inputs = append(inputs, CSVFile{Path: file})
			}
			continue
		}
		if IsSQLitePath(path) {
			inputs = append(inputs, SQLiteFile{Path: path})
			continue
		}
		inputs = append(inputs, CSVFile{Path: path})
	}
	return inputs, nil
}
