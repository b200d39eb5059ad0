package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestFindExcelFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "二号舍.xlsx")
	touch(t, dir, "一号舍.xlsx")
	touch(t, dir, "legacy.XLS")
	touch(t, dir, "~$一号舍.xlsx") // Excel lock file
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0755))

	found, err := NewDiscovery(dir).FindExcelFiles(".")
	require.NoError(t, err)

	names := make([]string, 0, len(found))
	for _, f := range found {
		names = append(names, f.Name)
	}
	// lock files, non-workbooks and directories are skipped; order is by name
	assert.Equal(t, []string{"legacy.XLS", "一号舍.xlsx", "二号舍.xlsx"}, names)
	assert.True(t, filepath.IsAbs(found[0].Path))
}

func TestFindExcelFilesAbsoluteDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.xlsx")

	found, err := NewDiscovery("/elsewhere").FindExcelFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestFindExcelFilesMissingDir(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindExcelFiles("nope")
	assert.Error(t, err)
}

func TestUnitName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"一号舍.xlsx", "一号舍"},
		{"一号舍 (1).xlsx", "一号舍"},
		{"一号舍（2）.xlsx", "一号舍"},
		{"/data/input/二号舍.xlsx", "二号舍"},
		{"barn-3 (10).xls", "barn-3"},
		{"栏(5)记录.xlsx", "栏(5)记录"}, // suffix only, inner parens survive
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UnitName(tt.in), "UnitName(%q)", tt.in)
	}
}

func TestPenBaseName(t *testing.T) {
	assert.Equal(t, "一号舍_pen_5", PenBaseName("一号舍", 5))
}
