package dataprocessing

import (
	"log/slog"

	"feedcli/internal/config"
	"feedcli/internal/spreadsheet"
	"feedcli/pkg/contracts/domain"
)

// Parser turns raw feeding workbooks into FeedingRecord slices. Column
// identity is resolved by keyword containment against the configured
// keyword sets; the header row offset is configurable because the
// operators keep banner rows above it.
type Parser struct {
	logger    *slog.Logger
	headerRow int
	columns   config.ColumnsConfig
	penMin    int
	penMax    int
}

// NewParser creates a parser from the pipeline configuration.
func NewParser(cfg *config.Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:    logger,
		headerRow: cfg.Pipeline.HeaderRow,
		columns:   cfg.Columns,
		penMin:    cfg.Pipeline.PenMin,
		penMax:    cfg.Pipeline.PenMax,
	}
}

// scopedRules builds one rule per scope keyword for a role. The header
// must contain the scope keyword and one of the metric keywords. Only the
// last rule carries Required so resolution fails only after every scope
// variant has been tried.
func scopedRules(role string, scopes, metrics []string, required bool) []spreadsheet.ColumnRule {
	rules := make([]spreadsheet.ColumnRule, 0, len(scopes))
	for i, scope := range scopes {
		rules = append(rules, spreadsheet.ColumnRule{
			Role:     role,
			All:      []string{scope},
			Any:      metrics,
			Required: required && i == len(scopes)-1,
		})
	}
	return rules
}

// penRules resolves the per-pen workbook columns: date, pen identifier,
// and the per-pen feed and water quantities (scope keyword plus metric
// keyword). Head count is opportunistic.
func (p *Parser) penRules() []spreadsheet.ColumnRule {
	rules := []spreadsheet.ColumnRule{
		{Role: "date", Any: p.columns.Date, Required: true},
		{Role: "pen", Any: p.columns.Pen, Required: true},
	}
	rules = append(rules, scopedRules("feed", p.columns.PenScope, p.columns.Feed, true)...)
	rules = append(rules, scopedRules("water", p.columns.PenScope, p.columns.Water, true)...)
	rules = append(rules, spreadsheet.ColumnRule{Role: "head_count", Any: p.columns.HeadCount})
	return rules
}

// unitRules resolves the unit-total workbook columns: date plus the
// per-day feed and water totals (metric keyword plus total keyword).
func (p *Parser) unitRules() []spreadsheet.ColumnRule {
	rules := []spreadsheet.ColumnRule{
		{Role: "date", Any: p.columns.Date, Required: true},
	}
	rules = append(rules, scopedRules("feed", p.columns.Feed, p.columns.UnitTotal, true)...)
	rules = append(rules, scopedRules("water", p.columns.Water, p.columns.UnitTotal, true)...)
	rules = append(rules,
		spreadsheet.ColumnRule{Role: "pen", Any: p.columns.Pen},
		spreadsheet.ColumnRule{Role: "head_count", Any: p.columns.HeadCount},
	)
	return rules
}

// ParsePenFeeding reads a per-pen feeding workbook. Rows missing any of
// date, pen, feed or water are dropped before grouping; partial records
// never zero-fill. Pens outside the configured window are treated as
// summary rows and skipped.
func (p *Parser) ParsePenFeeding(path string) ([]domain.FeedingRecord, error) {
	rows, err := spreadsheet.OpenSheet(path, "")
	if err != nil {
		return nil, err
	}

	table, err := spreadsheet.NewTable(rows, p.headerRow, p.penRules())
	if err != nil {
		return nil, err
	}

	p.logger.Info("Resolved per-pen columns",
		slog.String("file", path),
		slog.Any("columns", table.Columns))

	var records []domain.FeedingRecord
	dropped := 0
	for _, row := range table.Rows {
		dateCell, ok := table.Cell(row, "date")
		if !ok || dateCell == "" {
			dropped++
			continue
		}
		date, err := spreadsheet.ParseDay(dateCell)
		if err != nil {
			dropped++
			continue
		}

		pen, ok := table.Int(row, "pen")
		if !ok || pen < p.penMin || pen > p.penMax {
			dropped++
			continue
		}

		feed, feedOK := table.Float(row, "feed")
		water, waterOK := table.Float(row, "water")
		if !feedOK || !waterOK {
			dropped++
			continue
		}

		head, _ := table.Int(row, "head_count")

		records = append(records, domain.FeedingRecord{
			Pen:       pen,
			Date:      date,
			Feed:      feed,
			Water:     water,
			HeadCount: head,
		})
	}

	p.logger.Info("Parsed per-pen feeding rows",
		slog.String("file", path),
		slog.Int("records", len(records)),
		slog.Int("dropped", dropped))

	return records, nil
}

// ParseUnitFeeding reads a unit-total feeding workbook: one precomputed
// daily total repeated across the day's rows. Rows missing date, feed or
// water are dropped.
func (p *Parser) ParseUnitFeeding(path string) ([]domain.FeedingRecord, error) {
	rows, err := spreadsheet.OpenSheet(path, "")
	if err != nil {
		return nil, err
	}

	table, err := spreadsheet.NewTable(rows, p.headerRow, p.unitRules())
	if err != nil {
		return nil, err
	}

	p.logger.Info("Resolved unit-total columns",
		slog.String("file", path),
		slog.Any("columns", table.Columns))

	var records []domain.FeedingRecord
	dropped := 0
	for _, row := range table.Rows {
		dateCell, ok := table.Cell(row, "date")
		if !ok || dateCell == "" {
			dropped++
			continue
		}
		date, err := spreadsheet.ParseDay(dateCell)
		if err != nil {
			dropped++
			continue
		}

		feed, feedOK := table.Float(row, "feed")
		water, waterOK := table.Float(row, "water")
		if !feedOK || !waterOK {
			dropped++
			continue
		}

		pen, _ := table.Int(row, "pen")
		head, _ := table.Int(row, "head_count")

		records = append(records, domain.FeedingRecord{
			Pen:       pen,
			Date:      date,
			Feed:      feed,
			Water:     water,
			HeadCount: head,
		})
	}

	p.logger.Info("Parsed unit feeding rows",
		slog.String("file", path),
		slog.Int("records", len(records)),
		slog.Int("dropped", dropped))

	return records, nil
}
