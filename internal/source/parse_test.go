package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/jumpstats/internal/model"
)

func TestParseRow(t *testing.T) {
	rec, err := ParseRow(strings.Split("1700000000,276.125,5,276.1,350,56.2,82,yes,no", ","))
	if err != nil {
		t.Fatalf("parse row: %v", err)
	}
	want := model.Record{
		Timestamp:   1700000000,
		Distance:    276.125,
		Strafes:     5,
		Pre:         276.1,
		MaxVelocity: 350,
		Height:      56.2,
		Sync:        82,
		CrouchJump:  true,
	}
	if rec != want {
		t.Fatalf("unexpected record:\n got %+v\nwant %+v", rec, want)
	}
}

func TestParseRowBooleansRequireExactYes(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"yes", true},
		{"no", false},
		{"maybe", false},
		{"Yes", false},
		{"", false},
	}
	for _, tc := range tests {
		row := []string{"1", "250", "3", "250", "300", "50", "60", tc.value, tc.value}
		rec, err := ParseRow(row)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.value, err)
		}
		if rec.CrouchJump != tc.want || rec.MinForward != tc.want {
			t.Fatalf("value %q: got crouchjump=%v min_forward=%v", tc.value, rec.CrouchJump, rec.MinForward)
		}
	}
}

func TestParseRowWrongFieldCount(t *testing.T) {
	_, err := ParseRow([]string{"1", "250", "3", "250", "300", "50", "60", "yes"})
	var malformed *MalformedRowError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRowError, got %v", err)
	}
	if malformed.Fields != 8 {
		t.Fatalf("expected 8 fields, got %d", malformed.Fields)
	}
	if !errors.Is(err, ErrInvalidRow) {
		t.Fatalf("expected error to match ErrInvalidRow")
	}
}

func TestParseRowInvalidFields(t *testing.T) {
	valid := []string{"1", "250", "3", "250", "300", "50", "60", "yes", "no"}
	tests := []struct {
		idx   int
		value string
	}{
		{0, "abc"},
		{0, "-5"},
		{1, "far"},
		{1, "NaN"},
		{1, "-250"},
		{2, "2.5"},
		{3, "+Inf"},
		{4, ""},
		{5, "high"},
		{6, "sixty"},
	}
	for _, tc := range tests {
		row := append([]string(nil), valid...)
		row[tc.idx] = tc.value
		_, err := ParseRow(row)
		var ferr *FieldFormatError
		if !errors.As(err, &ferr) {
			t.Fatalf("column %d value %q: expected FieldFormatError, got %v", tc.idx, tc.value, err)
		}
		if ferr.Field != Header[tc.idx] || ferr.Value != tc.value {
			t.Fatalf("column %d: unexpected error fields %+v", tc.idx, ferr)
		}
		if !errors.Is(err, ErrInvalidRow) {
			t.Fatalf("column %d: expected error to match ErrInvalidRow", tc.idx)
		}
	}
}
