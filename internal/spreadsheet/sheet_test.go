package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "feedcli/internal/errors"
)

// writeWorkbook saves rows into a temp workbook and returns its path.
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheet)
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpenSheet(t *testing.T) {
	path := writeWorkbook(t, "记录", [][]interface{}{
		{"a", "b"},
		{"c", "d"},
	})

	rows, err := OpenSheet(path, "记录")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0][0])

	// Empty sheet name selects the first sheet
	rows, err = OpenSheet(path, "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestOpenSheetMissing(t *testing.T) {
	_, err := OpenSheet(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingSource(err))

	path := writeWorkbook(t, "Sheet1", [][]interface{}{{"a"}})
	_, err = OpenSheet(path, "没有的表")
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingSource(err))
}

func TestNewTableTrimsHeaders(t *testing.T) {
	rows := [][]string{
		{"banner"},
		{" 日期 ", "  栏号", "单栏采食量 "},
		{"2025-09-01", "5", "10.5"},
	}

	table, err := NewTable(rows, 1, []ColumnRule{
		{Role: "date", Any: []string{"日期"}, Required: true},
		{Role: "pen", Any: []string{"栏号"}, Required: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"日期", "栏号", "单栏采食量"}, table.Headers)
	require.Len(t, table.Rows, 1)
}

func TestNewTableHeaderRowOutOfRange(t *testing.T) {
	_, err := NewTable([][]string{{"only"}}, 3, nil)
	require.Error(t, err)
}

func TestTableCellHelpers(t *testing.T) {
	rows := [][]string{
		{"日期", "单栏采食量", "栏号", "备注"},
		{"2025-09-01", "1,234.5", "7", "ok"},
		{"2025-09-02", "", "x"},
	}

	table, err := NewTable(rows, 0, []ColumnRule{
		{Role: "date", Any: []string{"日期"}, Required: true},
		{Role: "feed", Any: []string{"采食"}, Required: true},
		{Role: "pen", Any: []string{"栏号"}, Required: true},
	})
	require.NoError(t, err)

	feed, ok := table.Float(table.Rows[0], "feed")
	require.True(t, ok)
	assert.Equal(t, 1234.5, feed, "thousands commas are stripped")

	pen, ok := table.Int(table.Rows[0], "pen")
	require.True(t, ok)
	assert.Equal(t, 7, pen)

	_, ok = table.Float(table.Rows[1], "feed")
	assert.False(t, ok, "empty cell is not a zero value")

	_, ok = table.Int(table.Rows[1], "pen")
	assert.False(t, ok, "non-numeric pen is rejected")

	// short row: role resolved but cell absent
	_, ok = table.Cell([]string{"2025-09-03"}, "pen")
	assert.False(t, ok)
}

func TestTableIntAcceptsFloatRendering(t *testing.T) {
	rows := [][]string{
		{"栏号"},
		{"5.0"},
		{"5.5"},
	}
	table, err := NewTable(rows, 0, []ColumnRule{
		{Role: "pen", Any: []string{"栏号"}, Required: true},
	})
	require.NoError(t, err)

	pen, ok := table.Int(table.Rows[0], "pen")
	require.True(t, ok)
	assert.Equal(t, 5, pen)

	_, ok = table.Int(table.Rows[1], "pen")
	assert.False(t, ok, "fractional value is not an identifier")
}
