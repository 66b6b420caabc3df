package importer_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/credibility/internal/importer"
)

// createTestExcel creates an in-memory workbook with header on row 1.
func createTestExcel(t *testing.T, header []string, rows [][]string) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	sheetName := "Sheet1"

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			t.Fatalf("failed to set header cell: %v", err)
		}
	}
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				t.Fatalf("failed to set cell: %v", err)
			}
		}
	}
	return f
}

func toReader(t *testing.T, f *excelize.File) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to write Excel file: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

var defaultHeader = []string{"domain", "trust_score", "category"}

func TestParseExcelFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		header         []string
		rows           [][]string
		wantRowCount   int
		wantErrorCount int
		wantErrorMsg   string
	}{
		{
			name: "valid rows",
			rows: [][]string{
				{"Kompas.com", "90", "national"},
				{"blogspot.com", "10", ""},
			},
			wantRowCount: 2,
		},
		{
			name:           "missing domain",
			rows:           [][]string{{"", "90", "x"}},
			wantErrorCount: 1,
			wantErrorMsg:   "domain is required",
		},
		{
			name:           "trust out of range",
			rows:           [][]string{{"a.com", "101", ""}},
			wantErrorCount: 1,
			wantErrorMsg:   "trust_score must be between 0 and 100",
		},
		{
			name:           "trust not a number",
			rows:           [][]string{{"a.com", "high", ""}},
			wantErrorCount: 1,
			wantErrorMsg:   "trust_score must be a whole number",
		},
		{
			name:           "domain with path",
			rows:           [][]string{{"a.com/news", "50", ""}},
			wantErrorCount: 1,
			wantErrorMsg:   "bare hostname",
		},
		{
			name:         "blank rows are skipped",
			rows:         [][]string{{"a.com", "50", ""}, {"", "", ""}, {"b.com", "60", ""}},
			wantRowCount: 2,
		},
		{
			name:         "columns in any order",
			header:       []string{"Category", "Domain", "Trust_Score"},
			rows:         [][]string{{"regional", "detik.com", "80"}},
			wantRowCount: 1,
		},
		{
			name:           "missing trust column",
			header:         []string{"domain", "category"},
			rows:           [][]string{{"a.com", "x"}},
			wantErrorCount: 1,
			wantErrorMsg:   "missing required column: trust_score",
		},
		{
			name:   "header only",
			header: defaultHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			header := tt.header
			if header == nil {
				header = defaultHeader
			}
			rows, errs := importer.ParseExcelFile(toReader(t, createTestExcel(t, header, tt.rows)))

			if len(rows) != tt.wantRowCount {
				t.Errorf("ParseExcelFile() got %d rows, want %d", len(rows), tt.wantRowCount)
			}
			if len(errs) != tt.wantErrorCount {
				t.Errorf("ParseExcelFile() got %d errors, want %d: %v", len(errs), tt.wantErrorCount, errs)
			}
			if tt.wantErrorMsg != "" && len(errs) > 0 && !strings.Contains(errs[0].Error, tt.wantErrorMsg) {
				t.Errorf("ParseExcelFile() error = %q, want to contain %q", errs[0].Error, tt.wantErrorMsg)
			}
		})
	}
}

func TestParseExcelFile_NormalizesRow(t *testing.T) {
	t.Parallel()

	f := createTestExcel(t, defaultHeader, [][]string{{" Kompas.COM ", "90", " national "}})
	rows, errs := importer.ParseExcelFile(toReader(t, f))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	got := rows[0]
	if got.Row != 2 || got.Domain != "kompas.com" || got.TrustScore != 90 || got.Category != "national" {
		t.Errorf("row = %+v", got)
	}
}

func TestParseExcelFile_HeaderErrorsAreFileLevel(t *testing.T) {
	t.Parallel()

	f := createTestExcel(t, []string{"host", "score"}, [][]string{{"a.com", "1"}})
	rows, errs := importer.ParseExcelFile(toReader(t, f))
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Row != 0 {
		t.Errorf("header error Row = %d, want 0", errs[0].Row)
	}
}

func TestParseExcelFile_InvalidInput(t *testing.T) {
	t.Parallel()

	rows, errs := importer.ParseExcelFile(bytes.NewReader([]byte("not excel")))
	if rows != nil {
		t.Errorf("expected nil rows, got %v", rows)
	}
	if len(errs) != 1 || errs[0].Row != 0 {
		t.Errorf("expected one file-level error, got %v", errs)
	}
}

func TestParseExcelPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.xlsx")
	f := createTestExcel(t, defaultHeader, [][]string{{"reuters.com", "95", ""}, {"bad", "x", ""}})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	rows, errs, err := importer.ParseExcelPath(path)
	if err != nil {
		t.Fatalf("ParseExcelPath: %v", err)
	}
	if len(rows) != 1 || len(errs) != 1 || errs[0].Row != 3 {
		t.Errorf("rows = %v, errs = %v", rows, errs)
	}

	entries := importer.ToSeedEntries(rows)
	if len(entries) != 1 || entries[0].Domain != "reuters.com" || entries[0].TrustScore != 95 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseExcelPath_MissingFile(t *testing.T) {
	t.Parallel()

	if _, _, err := importer.ParseExcelPath(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Error("expected error for missing file")
	}
}
