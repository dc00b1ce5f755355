package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/store"
)

func sampleData() (map[ledger.Category]int, []store.LedgerEvent) {
	now := time.Now().UTC()

	events := []store.LedgerEvent{
		{ID: 1, Category: "fajr", Action: store.ActionAdd, Delta: 1, At: now.Add(-2 * time.Hour)},
		{ID: 2, Category: "fajr", Action: store.ActionAdd, Delta: 1, At: now.Add(-time.Hour)},
		{ID: 3, Category: "", Action: store.ActionReset, Delta: 0, At: now.Add(-30 * time.Minute)},
		{ID: 4, Category: "witr", Action: store.ActionAdd, Delta: 1, At: now},
	}

	counts := map[ledger.Category]int{
		ledger.Witr: 1,
		ledger.Isha: 2,
	}

	return counts, events
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	_, events := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	err := ToCSV(events, path)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)

	// header + 4 data rows
	if len(records) != 5 {
		t.Fatalf("expected 5 rows (1 header + 4 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Category", "Action", "Delta", "At"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[0] != "1" || row[1] != "fajr" || row[2] != "add" || row[3] != "1" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if _, err := time.Parse(time.RFC3339, row[4]); err != nil {
		t.Fatalf("At should be RFC3339: %v", err)
	}

	// Reset applies to every category
	if records[3][1] != "all" || records[3][2] != "reset" {
		t.Fatalf("reset row = %v", records[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVNegativeDelta(t *testing.T) {
	events := []store.LedgerEvent{
		{ID: 7, Category: "asr", Action: store.ActionRemove, Delta: -1, At: time.Now()},
	}
	path := filepath.Join(t.TempDir(), "remove.csv")

	if err := ToCSV(events, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][3] != "-1" {
		t.Fatalf("Delta = %q, want -1", records[1][3])
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	counts, events := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	err := ToJSON(counts, events, path)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Total != 3 {
		t.Fatalf("total = %d, want 3", result.Total)
	}
	if len(result.Counts) != 6 {
		t.Fatalf("counts should list all six categories, got %d", len(result.Counts))
	}
	if result.Counts["isha"] != 2 || result.Counts["fajr"] != 0 {
		t.Fatalf("unexpected counts: %v", result.Counts)
	}
	if result.EventCount != 4 || len(result.Events) != 4 {
		t.Fatalf("event_count = %d, events = %d, want 4", result.EventCount, len(result.Events))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	e := result.Events[0]
	if e.ID != 1 || e.Category != "fajr" || e.Action != "add" || e.Delta != 1 {
		t.Fatalf("unexpected first event: %+v", e)
	}
	if result.Events[2].Category != "all" {
		t.Fatalf("reset category = %q, want all", result.Events[2].Category)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Total != 0 || result.EventCount != 0 {
		t.Fatalf("total = %d, event_count = %d, want 0", result.Total, result.EventCount)
	}
	if len(result.Counts) != 6 {
		t.Fatalf("empty export still lists six categories, got %d", len(result.Counts))
	}
	if result.Events != nil {
		t.Fatal("events should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Write
// ============================================================

func TestWriteDispatch(t *testing.T) {
	counts, events := sampleData()
	dir := t.TempDir()

	if err := Write("CSV", counts, events, filepath.Join(dir, "out.csv")); err != nil {
		t.Fatal(err)
	}
	if err := Write("json", counts, events, filepath.Join(dir, "out.json")); err != nil {
		t.Fatal(err)
	}
	if err := Write("xml", counts, events, filepath.Join(dir, "out.xml")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.xml")); !os.IsNotExist(err) {
		t.Fatal("unsupported format should not create a file")
	}
}
