package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations; every path is
// resolved relative to the executable directory, never the working
// directory, so the tools behave the same wherever they are launched from.
type Paths struct {
	ExecutableDir string
	DataDir       string
	InputDir      string
	ReportsDir    string
	ChartsDir     string
	LogsDir       string

	// Well-known annotation sources in the input directory
	EventsWorkbook   string
	StandardWorkbook string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	// Directory structure:
	// <exe dir>/
	//   ├── data/
	//   │   ├── input/      (feeding workbooks, event log, standard table)
	//   │   ├── reports/    (aggregated series CSVs)
	//   │   └── charts/     (chart-input JSON and workbooks)
	//   └── logs/
	dataDir := filepath.Join(exeDir, "data")
	inputDir := filepath.Join(dataDir, "input")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		InputDir:      inputDir,
		ReportsDir:    filepath.Join(dataDir, "reports"),
		ChartsDir:     filepath.Join(dataDir, "charts"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		EventsWorkbook:   filepath.Join(inputDir, "事故与存栏.xlsx"),
		StandardWorkbook: filepath.Join(inputDir, "饲喂标准.xlsx"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.InputDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		if logger != nil {
			logger.Debug("Ensured directory exists", slog.String("directory", dir))
		}
	}

	return nil
}

// GetInputPath returns the path for a file in the input directory
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns the path for a chart-input file
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs resolved paths for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("input", p.InputDir),
			slog.String("reports", p.ReportsDir),
			slog.String("charts", p.ChartsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("sources",
			slog.String("events_workbook", p.EventsWorkbook),
			slog.String("standard_workbook", p.StandardWorkbook),
		))
}
