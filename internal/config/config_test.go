package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.Pipeline.HeaderRow)
	assert.Equal(t, "河南", cfg.Pipeline.RegionMarker)
	assert.Equal(t, 25, cfg.Pipeline.DefaultStartAge)
	assert.Equal(t, 114, cfg.Pipeline.DefaultEndAge)
	assert.Equal(t, 1, cfg.Pipeline.PenMin)
	assert.Equal(t, 28, cfg.Pipeline.PenMax)

	assert.Contains(t, cfg.Columns.Date, "日期")
	assert.Contains(t, cfg.Columns.Feed, "采食")
	assert.Contains(t, cfg.Columns.PenScope, "单栏")
	assert.Contains(t, cfg.Columns.UnitTotal, "总量")

	require.NoError(t, cfg.validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FEED_PIPELINE_HEADER_ROW", "5")
	t.Setenv("FEED_PIPELINE_REGION_MARKER", "山东")
	t.Setenv("FEED_COLUMNS_WATER", "饮水量,water intake")
	t.Setenv("FEED_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Pipeline.HeaderRow)
	assert.Equal(t, "山东", cfg.Pipeline.RegionMarker)
	assert.Equal(t, []string{"饮水量", "water intake"}, cfg.Columns.Water)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Pipeline.HeaderRow)
	assert.Equal(t, "Sheet1", cfg.Pipeline.MovementSheet)
	assert.Equal(t, []string{"栏号", "栏", "pen"}, cfg.Columns.Pen)
}

func TestValidateRejectsInvertedAgeWindow(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.DefaultStartAge = 120
	cfg.Pipeline.DefaultEndAge = 30

	assert.Error(t, cfg.validate())
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "console"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/feedcli.log", cfg.Logging.FilePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: warn
pipeline:
  movement_sheet: "移栏记录"
  region_marker: "河南"
`), 0644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "移栏记录", cfg.Pipeline.MovementSheet)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Logging.Level = "warn"
	fileCfg.Pipeline.MovementSheet = "移栏记录"
	fileCfg.Pipeline.HeaderRow = 7

	envCfg := Config{}
	envCfg.Logging.Level = "debug"

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, "debug", merged.Logging.Level, "env value wins")
	assert.Equal(t, "移栏记录", merged.Pipeline.MovementSheet, "file fills the gap")
	assert.Equal(t, 7, merged.Pipeline.HeaderRow)
}

func TestPathHelpers(t *testing.T) {
	p := &Paths{
		InputDir:   "/app/data/input",
		ReportsDir: "/app/data/reports",
		ChartsDir:  "/app/data/charts",
		LogsDir:    "/app/logs",
	}

	assert.Equal(t, filepath.Join("/app/data/input", "a.xlsx"), p.GetInputPath("a.xlsx"))
	assert.Equal(t, filepath.Join("/app/data/reports", "s.csv"), p.GetReportPath("s.csv"))
	assert.Equal(t, filepath.Join("/app/data/charts", "c.json"), p.GetChartPath("c.json"))
	assert.Equal(t, filepath.Join("/app/logs", "run.log"), p.GetLogPath("run.log"))
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := &Paths{
		DataDir:    filepath.Join(base, "data"),
		InputDir:   filepath.Join(base, "data", "input"),
		ReportsDir: filepath.Join(base, "data", "reports"),
		ChartsDir:  filepath.Join(base, "data", "charts"),
		LogsDir:    filepath.Join(base, "logs"),
	}

	require.NoError(t, p.EnsureDirectories())
	for _, dir := range []string{p.InputDir, p.ReportsDir, p.ChartsDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	// second call is a no-op
	require.NoError(t, p.EnsureDirectories())
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	assert.False(t, FileExists(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.True(t, FileExists(path))
}
