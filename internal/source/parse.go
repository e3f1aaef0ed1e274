// Package source reads jumpstat rows from CSV files and remote uploads.
package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/verte-zerg/jumpstats/internal/model"
)

// FieldCount is the number of columns in a jumpstat row.
const FieldCount = 9

// Header is the column header written by the game plugin and by Merge.
var Header = []string{"time", "distance", "strafes", "pre", "max", "height", "sync", "crouchjump", "-forward"}

// ErrInvalidRow matches every row-level parse failure.
var ErrInvalidRow = errors.New("invalid row")

// MalformedRowError reports a row with the wrong number of fields.
type MalformedRowError struct {
	Fields int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("expected %d fields, got %d", FieldCount, e.Fields)
}

// Is lets errors.Is match ErrInvalidRow.
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrInvalidRow
}

// FieldFormatError reports a field that could not be converted.
type FieldFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldFormatError) Error() string {
	return fmt.Sprintf("field %s: invalid value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldFormatError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrInvalidRow.
func (e *FieldFormatError) Is(target error) bool {
	return target == ErrInvalidRow
}

var (
	errNegative  = errors.New("must not be negative")
	errNotFinite = errors.New("must be a finite number")
)

// ParseRow converts one data row into a Record.
//
// Boolean columns are true only for the exact string "yes". Any other value,
// including "Yes" and "no", is read as false; the game plugin writes "yes"/"no"
// and nothing else.
func ParseRow(row []string) (model.Record, error) {
	if len(row) != FieldCount {
		return model.Record{}, &MalformedRowError{Fields: len(row)}
	}
	var (
		rec model.Record
		err error
	)
	if rec.Timestamp, err = parseInt64(0, row[0]); err != nil {
		return model.Record{}, err
	}
	if rec.Distance, err = parseFloat(1, row[1]); err != nil {
		return model.Record{}, err
	}
	if rec.Strafes, err = parseInt(2, row[2]); err != nil {
		return model.Record{}, err
	}
	if rec.Pre, err = parseFloat(3, row[3]); err != nil {
		return model.Record{}, err
	}
	if rec.MaxVelocity, err = parseInt(4, row[4]); err != nil {
		return model.Record{}, err
	}
	if rec.Height, err = parseFloat(5, row[5]); err != nil {
		return model.Record{}, err
	}
	sync, err := strconv.Atoi(row[6])
	if err != nil {
		return model.Record{}, &FieldFormatError{Field: Header[6], Value: row[6], Err: err}
	}
	rec.Sync = sync
	rec.CrouchJump = row[7] == "yes"
	rec.MinForward = row[8] == "yes"
	return rec, nil
}

func parseInt64(idx int, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &FieldFormatError{Field: Header[idx], Value: value, Err: err}
	}
	if n < 0 {
		return 0, &FieldFormatError{Field: Header[idx], Value: value, Err: errNegative}
	}
	return n, nil
}

func parseInt(idx int, value string) (int, error) {
	n, err := parseInt64(idx, value)
	return int(n), err
}

func parseFloat(idx int, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &FieldFormatError{Field: Header[idx], Value: value, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldFormatError{Field: Header[idx], Value: value, Err: errNotFinite}
	}
	if f < 0 {
		return 0, &FieldFormatError{Field: Header[idx], Value: value, Err: errNegative}
	}
	return f, nil
}
