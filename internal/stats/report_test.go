package stats

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/jumpstats/internal/model"
	"github.com/verte-zerg/jumpstats/internal/source"
	"github.com/verte-zerg/jumpstats/internal/store"
)

const csvHeader = "time,distance,strafes,pre,max,height,sync,crouchjump,-forward\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), csvHeader+
		"100,270.0,3,1.2,350,5.0,80,yes,no\n"+
		"150,broken,3,1.2,350,5.0,80,yes,no\n")
	writeFile(t, filepath.Join(dir, "b.csv"), csvHeader+
		"200,260.0,2,1.0,340,4.5,70,no,no\n"+
		"250,261.0,2,1.0\n")

	dbPath := filepath.Join(dir, "merged.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	if err := st.InsertRecords(ctx, []model.Record{{Timestamp: 300, Distance: 280.5, Strafes: 6, Sync: 90}}); err != nil {
		t.Fatalf("insert records: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	inputs, err := source.Resolve([]string{dir, dbPath})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}

	run, err := BuildReport(ctx, source.NewReader(nil), inputs, testNow)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if run.Inputs != 3 {
		t.Fatalf("expected 3 inputs, got %d", run.Inputs)
	}
	if run.Read.Rows != 5 || run.Read.Records != 3 || run.Read.Skipped != 2 {
		t.Fatalf("unexpected read counters: %+v", run.Read)
	}
	report := run.Report
	if report.Count != 3 {
		t.Fatalf("expected 3 records, got %d", report.Count)
	}
	if got := report.LongestIn(model.WindowAllTime).Distance; got != 280.5 {
		t.Fatalf("expected longest 280.5, got %v", got)
	}
	if report.Shortest.Distance != 260.0 {
		t.Fatalf("expected shortest 260, got %v", report.Shortest.Distance)
	}
	if report.Timespan.Start != 100 || report.Timespan.End != 300 {
		t.Fatalf("unexpected timespan: %+v", report.Timespan)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), csvHeader+"1,x,y\n")

	inputs, err := source.Resolve([]string{dir})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	run, err := BuildReport(context.Background(), source.NewReader(nil), inputs, testNow)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if run.Read.Skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", run.Read.Skipped)
	}
}

func TestBuildReportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inputs := []source.Input{source.CSVData{Label: "upload", Data: []byte(csvHeader)}}
	if _, err := BuildReport(ctx, source.NewReader(nil), inputs, testNow); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
