package tabular

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"export.csv", FormatCSV},
		{"export.CSV", FormatCSV},
		{"export.json", FormatJSON},
		{"export.jsonl", FormatJSONL},
		{"export.ndjson", FormatJSONL},
		{"export.txt", FormatCSV},
		{"export", FormatCSV},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	input := `Summary,Issue Type,Priority
Checkout flow,Story,High
Payment form,Task,Low
`
	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	wantCols := []string{"Summary", "Issue Type", "Priority"}
	if !reflect.DeepEqual(rows[0].Columns, wantCols) {
		t.Errorf("columns = %v, want %v", rows[0].Columns, wantCols)
	}
	if rows[0].Get("Summary") != "Checkout flow" || rows[1].Get("Priority") != "Low" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "A,B,C\nonly-a\nx,y,z,extra\n"
	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// Short rows pad with empty cells.
	if rows[0].Get("A") != "only-a" || rows[0].Get("B") != "" || rows[0].Get("C") != "" {
		t.Errorf("short row = %+v", rows[0].Fields)
	}
	// Extra cells beyond the header are dropped.
	if rows[1].Get("C") != "z" || rows[1].Has("extra") {
		t.Errorf("long row = %+v", rows[1].Fields)
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for headerless input")
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("A,B\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

func TestReadJSONPreservesKeyOrder(t *testing.T) {
	input := `[
		{"Summary": "Checkout", "Issue Type": "Story", "Estimate": 8, "Done": false, "Parent": null},
		{"Summary": "Billing", "Issue Type": "Epic"}
	]`
	rows, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	wantCols := []string{"Summary", "Issue Type", "Estimate", "Done", "Parent"}
	if !reflect.DeepEqual(rows[0].Columns, wantCols) {
		t.Errorf("columns = %v, want %v", rows[0].Columns, wantCols)
	}
	if rows[0].Get("Estimate") != "8" {
		t.Errorf("number cell = %q, want \"8\"", rows[0].Get("Estimate"))
	}
	if rows[0].Get("Done") != "false" {
		t.Errorf("bool cell = %q, want \"false\"", rows[0].Get("Done"))
	}
	if rows[0].Get("Parent") != "" {
		t.Errorf("null cell = %q, want empty", rows[0].Get("Parent"))
	}
}

func TestReadJSONRejectsNonArray(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader(`{"Summary": "x"}`)); err == nil {
		t.Error("expected error for a bare object")
	}
}

func TestReadJSONL(t *testing.T) {
	input := `{"Summary": "Checkout", "Priority": "High"}

{"Summary": "Billing", "Priority": "Low"}
`
	rows, err := ReadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (blank line skipped)", len(rows))
	}
	if rows[1].Get("Summary") != "Billing" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestReadJSONLBadLine(t *testing.T) {
	input := "{\"Summary\": \"ok\"}\nnot json\n"
	if _, err := ReadJSONL(strings.NewReader(input)); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestReadUnsupportedFormat(t *testing.T) {
	if _, err := Read(strings.NewReader(""), Format("xml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(path, []byte("Summary\nCheckout\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != 1 || rows[0].Get("Summary") != "Checkout" {
		t.Errorf("rows = %+v", rows)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
