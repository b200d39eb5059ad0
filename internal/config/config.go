package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Columns  ColumnsConfig  `yaml:"columns" envconfig:"COLUMNS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/feedcli.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PipelineConfig contains the aggregation pipeline parameters. The values
// mirror the layout of the source workbooks as produced by the farm
// operators, so they are configurable rather than hard-coded.
type PipelineConfig struct {
	// HeaderRow is the zero-based row index of the column header row in
	// feeding workbooks. The operators keep three banner rows above it.
	HeaderRow int `yaml:"header_row" envconfig:"HEADER_ROW" default:"3" validate:"min=0"`
	// MovementSheet is the sheet holding transfer/sale/treatment columns
	// in the event workbook.
	MovementSheet string `yaml:"movement_sheet" envconfig:"MOVEMENT_SHEET" default:"Sheet1" validate:"required"`
	// RegionMarker starts the relevant block of the feeding-standard
	// table; rows above it belong to other regions.
	RegionMarker string `yaml:"region_marker" envconfig:"REGION_MARKER" default:"河南" validate:"required"`
	// DefaultStartAge and DefaultEndAge bound the standard-curve age
	// window when the caller supplies none.
	DefaultStartAge int `yaml:"default_start_age" envconfig:"DEFAULT_START_AGE" default:"25" validate:"min=0"`
	DefaultEndAge   int `yaml:"default_end_age" envconfig:"DEFAULT_END_AGE" default:"114" validate:"gtefield=DefaultStartAge"`
	// PenMin and PenMax bound the pen identifiers considered valid; rows
	// outside the window are treated as summary or scratch rows.
	PenMin int `yaml:"pen_min" envconfig:"PEN_MIN" default:"1" validate:"min=0"`
	PenMax int `yaml:"pen_max" envconfig:"PEN_MAX" default:"28" validate:"gtefield=PenMin"`
}

// ColumnsConfig holds the keyword sets used to resolve columns by header
// containment. Header text differs between operators and file versions,
// so identity is keyword-based, never exact-name.
type ColumnsConfig struct {
	Date      []string `yaml:"date" envconfig:"DATE" default:"日期,date"`
	Pen       []string `yaml:"pen" envconfig:"PEN" default:"栏号,栏,pen"`
	PenScope  []string `yaml:"pen_scope" envconfig:"PEN_SCOPE" default:"单栏"`
	Feed      []string `yaml:"feed" envconfig:"FEED" default:"采食,喂料,料量,feed"`
	Water     []string `yaml:"water" envconfig:"WATER" default:"喂水,饮水,水量,water"`
	UnitTotal []string `yaml:"unit_total" envconfig:"UNIT_TOTAL" default:"总量,total"`
	HeadCount []string `yaml:"head_count" envconfig:"HEAD_COUNT" default:"猪只头数,头数,head"`
	Accident  []string `yaml:"accident" envconfig:"ACCIDENT" default:"事故,accident"`
	Transfer  []string `yaml:"transfer" envconfig:"TRANSFER" default:"转出,transfer"`
	Sale      []string `yaml:"sale" envconfig:"SALE" default:"销售,sale"`
	Treatment []string `yaml:"treatment" envconfig:"TREATMENT" default:"治疗,treatment"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Environment variables first, FEED_* prefix
	if err := envconfig.Process("FEED", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Overlay from config file if one exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Pipeline.HeaderRow == 0 && fileConfig.Pipeline.HeaderRow != 0 {
		envConfig.Pipeline.HeaderRow = fileConfig.Pipeline.HeaderRow
	}
	if envConfig.Pipeline.MovementSheet == "" {
		envConfig.Pipeline.MovementSheet = fileConfig.Pipeline.MovementSheet
	}
	if envConfig.Pipeline.RegionMarker == "" {
		envConfig.Pipeline.RegionMarker = fileConfig.Pipeline.RegionMarker
	}
	return envConfig
}

// validate validates the configuration using struct tags plus the logging
// rules the rest of the application assumes.
func (c *Config) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}

	// Always JSON format; console handlers break log file ingestion.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/feedcli.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/feedcli.log",
		},
		Pipeline: PipelineConfig{
			HeaderRow:       3,
			MovementSheet:   "Sheet1",
			RegionMarker:    "河南",
			DefaultStartAge: 25,
			DefaultEndAge:   114,
			PenMin:          1,
			PenMax:          28,
		},
		Columns: ColumnsConfig{
			Date:      []string{"日期", "date"},
			Pen:       []string{"栏号", "栏", "pen"},
			PenScope:  []string{"单栏"},
			Feed:      []string{"采食", "喂料", "料量", "feed"},
			Water:     []string{"喂水", "饮水", "水量", "water"},
			UnitTotal: []string{"总量", "total"},
			HeadCount: []string{"猪只头数", "头数", "head"},
			Accident:  []string{"事故", "accident"},
			Transfer:  []string{"转出", "transfer"},
			Sale:      []string{"销售", "sale"},
			Treatment: []string{"治疗", "treatment"},
		},
	}
}
