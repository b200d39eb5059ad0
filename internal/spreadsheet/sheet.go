package spreadsheet

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "feedcli/internal/errors"
)

// OpenSheet reads all rows of the named sheet from an Excel workbook.
// An empty sheet name selects the workbook's first sheet. The file handle
// is released before returning, on error paths included.
func OpenSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewMissingSourceError(path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewMissingSourceError(path, err).
			WithContext("sheet", sheet)
	}

	return rows, nil
}

// Table is a loaded sheet with a resolved header row: trimmed header names,
// the data rows below the header, and the role→column mapping.
type Table struct {
	Headers []string
	Rows    [][]string
	Columns ColumnMap
}

// NewTable builds a Table from raw sheet rows. headerRow is the zero-based
// index of the header row; header cells are whitespace-trimmed before
// column resolution. Returns a MISSING_COLUMN error naming the available
// headers when a required rule matches nothing, so callers fail fast
// instead of aggregating over the wrong data.
func NewTable(rows [][]string, headerRow int, rules []ColumnRule) (*Table, error) {
	if headerRow >= len(rows) {
		return nil, apperrors.NewParsingError("sheet has no header row", nil).
			WithContext("header_row", headerRow).
			WithContext("row_count", len(rows))
	}

	headers := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		headers[i] = strings.TrimSpace(h)
	}

	columns, err := ResolveColumns(headers, rules)
	if err != nil {
		return nil, err
	}

	return &Table{
		Headers: headers,
		Rows:    rows[headerRow+1:],
		Columns: columns,
	}, nil
}

// Cell returns the raw cell of a row for a resolved role. ok is false when
// the role is unresolved or the row is too short.
func (t *Table) Cell(row []string, role string) (string, bool) {
	idx, exists := t.Columns[role]
	if !exists || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

// Float parses the cell for a role as a float, stripping thousands commas.
// ok is false for a missing role or an empty or non-numeric cell.
func (t *Table) Float(row []string, role string) (float64, bool) {
	cell, exists := t.Cell(row, role)
	if !exists || cell == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// Int parses the cell for a role as an integer. Values rendered by Excel
// as floats ("5.0") are accepted when the fraction is zero.
func (t *Table) Int(row []string, role string) (int, bool) {
	cell, exists := t.Cell(row, role)
	if !exists || cell == "" {
		return 0, false
	}
	cleaned := strings.ReplaceAll(cell, ",", "")
	if val, err := strconv.Atoi(cleaned); err == nil {
		return val, true
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

// String returns the trimmed cell for a role, empty when unresolved.
func (t *Table) String(row []string, role string) string {
	cell, _ := t.Cell(row, role)
	return cell
}
