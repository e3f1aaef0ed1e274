package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/jumpstats/internal/model"
)

// ReadResult summarizes one file or upload.
type ReadResult struct {
	Rows    int
	Records int
	Skipped int
}

// Add accumulates another result.
func (r *ReadResult) Add(other ReadResult) {
	r.Rows += other.Rows
	r.Records += other.Records
	r.Skipped += other.Skipped
}

// Reader parses jumpstat CSV input and logs rows it has to skip.
type Reader struct {
	log hclog.Logger
}

// NewReader returns a Reader that reports skipped rows to log.
func NewReader(log hclog.Logger) *Reader {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Reader{log: log}
}

// Discover returns every .csv file below dir in lexical order.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat stats directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk stats directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile parses a CSV file and passes each valid record to fn.
func (r *Reader) ReadFile(path string, fn func(model.Record)) (ReadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("failed to open stats file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only stats file.
			_ = cerr
		}
	}()
	return r.Read(path, file, fn)
}

// Read parses CSV input named name. The first row is a header and is skipped.
// Rows that fail to parse are logged and skipped.
func (r *Reader) Read(name string, in io.Reader, fn func(model.Record)) (ReadResult, error) {
	var res ReadResult
	cr := newCSVReader(in)
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return res, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		res.Rows++
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return res, fmt.Errorf("failed to read %s: %w", name, err)
			}
			res.Skipped++
			r.log.Warn("skipping unreadable row", "file", name, "line", perr.Line, "error", perr.Err)
			continue
		}
		rec, err := ParseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			res.Skipped++
			r.log.Warn("skipping invalid row", "file", name, "line", line, "error", err)
			continue
		}
		res.Records++
		fn(rec)
	}
}

func newCSVReader(in io.Reader) *csv.Reader {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}
