package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides workbook discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindExcelFiles finds the Excel workbooks in the specified directory,
// skipping Excel's ~$ lock files. Results are sorted by name so runs
// process files in a stable order.
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var result []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
			continue
		}
		if strings.HasPrefix(name, "~$") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		result = append(result, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// duplicateSuffix matches the " (1)" copies a browser or file manager
// appends when a workbook is downloaded twice.
var duplicateSuffix = regexp.MustCompile(`\s*[（(]\d+[）)]\s*$`)

// UnitName derives a unit title from a workbook filename: the extension
// and any parenthetical duplicate suffix are stripped.
func UnitName(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = duplicateSuffix.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// PenBaseName returns the output file base for one pen of a unit.
func PenBaseName(unit string, pen int) string {
	return fmt.Sprintf("%s_pen_%d", unit, pen)
}
