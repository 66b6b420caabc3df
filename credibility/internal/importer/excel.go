// Package importer reads curated source reputation records from Excel
// workbooks.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// Header names matched case-insensitively in the first row.
const (
	headerDomain     = "domain"
	headerTrustScore = "trust_score"
	headerCategory   = "category"

	headerRowIndex = 1
	fileLevelRow   = 0
)

// SeedRow is a parsed workbook row.
type SeedRow struct {
	Row        int // Excel row number (for error reporting)
	Domain     string
	TrustScore int
	Category   string
}

// ImportError is a validation error for one row. Row 0 marks a file level
// problem.
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type columnMap struct {
	domain     int
	trustScore int
	category   int
}

// ParseExcelFile reads the first sheet of r. Invalid rows are reported in
// the error slice and skipped.
func ParseExcelFile(r io.Reader) ([]SeedRow, []ImportError) {
	rows, err := openExcelRows(r)
	if err != nil {
		return nil, []ImportError{{Row: 0, Error: err.Error()}}
	}
	return parseRows(rows)
}

// ParseExcelPath opens the workbook at path and parses it.
func ParseExcelPath(path string) ([]SeedRow, []ImportError, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read workbook %s: %w", path, err)
	}
	parsed, errs := parseRows(rows)
	return parsed, errs, nil
}

func parseRows(rows [][]string) ([]SeedRow, []ImportError) {
	if len(rows) == 0 {
		return nil, nil
	}

	cols := mapColumns(rows[0])
	if ie := validateRequiredColumns(cols); ie != nil {
		return nil, []ImportError{*ie}
	}

	var (
		parsed []SeedRow
		errs   []ImportError
	)
	for i, cells := range rows[1:] {
		rowNum := i + headerRowIndex + 1
		if isBlank(cells) {
			continue
		}

		row, msg := parseRow(cells, cols, rowNum)
		if msg == "" {
			msg = ValidateRow(row)
		}
		if msg != "" {
			errs = append(errs, ImportError{Row: rowNum, Error: msg})
			continue
		}
		parsed = append(parsed, row)
	}

	return parsed, errs
}

// ValidateRow returns an error message or the empty string.
func ValidateRow(row SeedRow) string {
	if strings.TrimSpace(row.Domain) == "" {
		return "domain is required"
	}
	if strings.Contains(row.Domain, "/") || strings.ContainsAny(row.Domain, " \t") {
		return "domain must be a bare hostname"
	}
	if row.TrustScore < 0 || row.TrustScore > domain.MaxTrustScore {
		return fmt.Sprintf("trust_score must be between 0 and %d", domain.MaxTrustScore)
	}
	return ""
}

// ToSeedEntries converts parsed rows for credibility.Seed.
func ToSeedEntries(rows []SeedRow) []credibility.SeedEntry {
	entries := make([]credibility.SeedEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, credibility.SeedEntry{
			Domain:     r.Domain,
			TrustScore: r.TrustScore,
			Category:   r.Category,
		})
	}
	return entries
}

func openExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return firstSheetRows(f)
}

func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return [][]string{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}

func mapColumns(header []string) columnMap {
	cols := columnMap{domain: -1, trustScore: -1, category: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case headerDomain:
			cols.domain = i
		case headerTrustScore:
			cols.trustScore = i
		case headerCategory:
			cols.category = i
		}
	}
	return cols
}

func validateRequiredColumns(cols columnMap) *ImportError {
	switch {
	case cols.domain < 0 && cols.trustScore < 0:
		return &ImportError{Row: fileLevelRow, Error: "missing required columns: domain, trust_score"}
	case cols.domain < 0:
		return &ImportError{Row: fileLevelRow, Error: "missing required column: domain"}
	case cols.trustScore < 0:
		return &ImportError{Row: fileLevelRow, Error: "missing required column: trust_score"}
	}
	return nil
}

func parseRow(cells []string, cols columnMap, rowNum int) (SeedRow, string) {
	row := SeedRow{
		Row:      rowNum,
		Domain:   strings.ToLower(cell(cells, cols.domain)),
		Category: cell(cells, cols.category),
	}

	raw := cell(cells, cols.trustScore)
	if raw == "" {
		return row, "trust_score is required"
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return row, "trust_score must be a whole number"
		}
		score = int(f)
	}
	row.TrustScore = score

	return row, ""
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
