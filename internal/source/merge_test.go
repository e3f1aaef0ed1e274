package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/jumpstats/internal/model"
	"github.com/verte-zerg/jumpstats/internal/store"
)

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.csv"), testHeader+
		"100,270.0,3,1.2,350,5.0,80,yes,no\n"+
		"101,bad,row\n"+
		"102,271.0,3,1.2,350,5.0,80,yes,no\n")
	writeTestFile(t, filepath.Join(dir, "b.csv"), testHeader+
		"200,260.0,2,1.0,340,4.5,70,no,no\n")
	out := filepath.Join(dir, "merged.csv")
	writeTestFile(t, out, testHeader+"999,999,9,9,999,9,9,no,no\n")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	res, err := Merge(files, out, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Files != 2 || res.Rows != 3 || res.Skipped != 1 {
		t.Fatalf("unexpected merge result: %+v", res)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	want := testHeader +
		"100,270.0,3,1.2,350,5.0,80,yes,no\n" +
		"102,271.0,3,1.2,350,5.0,80,yes,no\n" +
		"200,260.0,2,1.0,340,4.5,70,no,no\n"
	if string(data) != want {
		t.Fatalf("unexpected merged file:\n%s", data)
	}
}

func TestMergeKeepsUnparsedRowsWithRightFieldCount(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.csv"), testHeader+"x,y,z,1,2,3,4,yes,no\n")
	out := filepath.Join(dir, "out", "merged.csv")

	res, err := Merge([]string{filepath.Join(dir, "a.csv")}, out, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Rows != 1 || res.Skipped != 0 {
		t.Fatalf("unexpected merge result: %+v", res)
	}
}

func TestMergeDB(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.csv"), testHeader+
		"100,270.0,3,1.2,350,5.0,80,yes,no\n"+
		"101,bad,3,1.2,350,5.0,80,yes,no\n")
	writeTestFile(t, filepath.Join(dir, "b.csv"), testHeader+
		"200,260.0,2,1.0,340,4.5,70,no,yes\n")
	out := filepath.Join(dir, "merged.db")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	ctx := context.Background()
	res, err := MergeDB(ctx, files, out, nil)
	if err != nil {
		t.Fatalf("merge db: %v", err)
	}
	if res.Files != 2 || res.Rows != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected merge result: %+v", res)
	}

	st, err := store.Open(out)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	n, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 stored records, got %d", n)
	}

	var timestamps []int64
	res2, err := SQLiteFile{Path: out}.Each(ctx, NewReader(nil), func(r model.Record) {
		timestamps = append(timestamps, r.Timestamp)
	})
	if err != nil {
		t.Fatalf("read db: %v", err)
	}
	if res2.Records != 2 || len(timestamps) != 2 || timestamps[0] != 100 || timestamps[1] != 200 {
		t.Fatalf("unexpected db contents: %+v %v", res2, timestamps)
	}
}

func TestMergeSkipsUnreadableRows(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.csv"), testHeader+
		"100,270.0,3,1.2,350,5.0,80,yes,no\n"+
		"101,27\"0,3,1.2,350,5.0,80,yes,no\n"+
		"102,271.0,3,1.2,350,5.0,80,yes,no\n")
	writeTestFile(t, filepath.Join(dir, "b.csv"), testHeader+
		"200,260.0,2,1.0,340,4.5,70,no,no\n")
	out := filepath.Join(t.TempDir(), "merged.csv")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	res, err := Merge(files, out, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Files != 2 || res.Rows != 3 || res.Skipped != 1 {
		t.Fatalf("unexpected merge result: %+v", res)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	want := testHeader +
		"100,270.0,3,1.2,350,5.0,80,yes,no\n" +
		"102,271.0,3,1.2,350,5.0,80,yes,no\n" +
		"200,260.0,2,1.0,340,4.5,70,no,no\n"
	if string(data) != want {
		t.Fatalf("unexpected merged file:\n%s", data)
	}
}

func TestMergeDBReplacesExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.csv"), testHeader+
		"100,270.0,3,1.2,350,5.0,80,yes,no\n"+
		"200,260.0,2,1.0,340,4.5,70,no,no\n")
	out := filepath.Join(t.TempDir(), "merged.db")
	files := []string{filepath.Join(dir, "a.csv")}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := MergeDB(ctx, files, out, nil); err != nil {
			t.Fatalf("merge db run %d: %v", i+1, err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the merged database, got %d entries", len(entries))
	}

	st, err := store.Open(out)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	n, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 stored records after merging twice, got %d", n)
	}
}
