package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/verte-zerg/jumpstats/internal/model"
)

func sampleReport() model.Report {
	long := model.Record{Timestamp: 100, Distance: 270.0, Strafes: 3, Pre: 1.2, MaxVelocity: 350, Height: 5.0, Sync: 80, CrouchJump: true}
	short := model.Record{Timestamp: 200, Distance: 260.0, Strafes: 2, Pre: 1.0, MaxVelocity: 340, Height: 4.5, Sync: 70}
	return model.Report{
		Count:    2,
		Timespan: model.Timespan{Start: 100, End: 200},
		Longest: []model.WindowJump{
			{Window: model.WindowAllTime, Record: long},
			{Window: model.WindowMonth},
			{Window: model.WindowWeek},
			{Window: model.WindowDay},
		},
		Shortest:          short,
		AverageDistance:   265,
		DistanceFrequency: []model.Bucket{{Value: 270, Count: 1}, {Value: 260, Count: 1}},
		StrafeFrequency:   []model.Bucket{{Value: 3, Count: 1}, {Value: 2, Count: 1}},
		Thresholds: []model.ThresholdCount{
			{Threshold: 265, Count: 1},
			{Threshold: 270, Count: 0},
			{Threshold: 275, Count: 0},
			{Threshold: 285, Count: 0},
		},
		ActiveHours: []model.LabelCount{{Label: "12 AM", Count: 2}},
		ActiveDays:  []model.LabelCount{{Label: "thu", Count: 2}},
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := Console(&buf, sampleReport(), Options{Location: time.UTC}); err != nil {
		t.Fatalf("console: %v", err)
	}
	want := strings.Join([]string{
		"Jumpstats from 01/01/1970 00:01:40 to 01/01/1970 00:03:20",
		"",
		"active hours:",
		"    12 AM: 2 jumps",
		"",
		"active days:",
		"    thu: 2 jumps",
		"",
		"jumps over:",
		"    265: 1 | 50.0%",
		"    270: 0 | 0.0%",
		"    275: 0 | 0.0%",
		"    285: 0 | 0.0%",
		"",
		"longest jumps:",
		"    all-time: 270.0 units (3 strafes | 80% sync | 1.2 pre | 350 max) (01/01/1970 00:01:40)",
		"",
		"shortest jump:    260.0 units (2 strafes | 70% sync | 1.0 pre | 340 max) (01/01/1970 00:03:20)",
		"average distance: 265.0 units",
		"",
		"most common distances jumped:",
		"    270: 1",
		"    260: 1",
		"",
		"most common number of strafes:",
		"    3: 1",
		"    2: 1",
		"",
	}, "\n")
	if got := ansi.Strip(buf.String()); got != want {
		t.Fatalf("unexpected console output:\n%s\nwant:\n%s", got, want)
	}
}

func TestConsoleColorsByTier(t *testing.T) {
	var plain, colored bytes.Buffer
	opts := Options{Location: time.UTC}
	if err := Console(&plain, sampleReport(), opts); err != nil {
		t.Fatalf("console: %v", err)
	}
	opts.Color = true
	if err := Console(&colored, sampleReport(), opts); err != nil {
		t.Fatalf("console: %v", err)
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("expected no escape codes without color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("expected escape codes with color")
	}
	if ansi.Strip(colored.String()) != ansi.Strip(plain.String()) {
		t.Fatalf("color changed the text content")
	}
}

func TestConsoleLimitsTopRows(t *testing.T) {
	report := sampleReport()
	report.StrafeFrequency = nil
	for i := 0; i < 8; i++ {
		report.StrafeFrequency = append(report.StrafeFrequency, model.Bucket{Value: i + 1, Count: 8 - i})
	}
	var buf bytes.Buffer
	if err := Console(&buf, report, Options{Top: 3, Location: time.UTC}); err != nil {
		t.Fatalf("console: %v", err)
	}
	out := ansi.Strip(buf.String())
	section := out[strings.Index(out, "most common number of strafes:"):]
	lines := strings.Split(strings.TrimSpace(section), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected heading and 3 rows, got:\n%s", section)
	}
	if strings.TrimSpace(lines[3]) != "3: 6" {
		t.Fatalf("unexpected last row %q", lines[3])
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{270, "270.0"},
		{265.12345, "265.123"},
		{265.1236, "265.124"},
		{250.5, "250.5"},
	}
	for _, tc := range tests {
		if got := FormatDistance(tc.in); got != tc.want {
			t.Fatalf("FormatDistance(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 3); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
	if got := Percent(2, 3); got != 66.67 {
		t.Fatalf("expected 66.67, got %v", got)
	}
	if got := Percent(1, 0); got != 0 {
		t.Fatalf("expected 0 for empty total, got %v", got)
	}
}

func TestShouldUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if ShouldUseColor(&bytes.Buffer{}, false) {
		t.Fatalf("expected no color for a buffer")
	}
	if !ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("expected forced color")
	}
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("expected NO_COLOR to win")
	}
}
