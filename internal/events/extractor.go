package events

import (
	"log/slog"
	"sort"
	"time"

	"feedcli/internal/config"
	apperrors "feedcli/internal/errors"
	"feedcli/internal/spreadsheet"
	"feedcli/pkg/contracts/domain"
)

// Extractor reads the event workbook into an EventLog. Event data is
// supplementary to the main feed/water series, so a missing or malformed
// source degrades that event kind to empty instead of failing the run.
type Extractor struct {
	logger        *slog.Logger
	movementSheet string
	columns       config.ColumnsConfig
}

// NewExtractor creates an extractor from the pipeline configuration.
func NewExtractor(cfg *config.Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:        logger,
		movementSheet: cfg.Pipeline.MovementSheet,
		columns:       cfg.Columns,
	}
}

// Extract reads all event kinds from the workbook at path. The returned
// warnings list carries one entry per degraded kind; the EventLog is
// always usable, with empty collections for whatever could not be read.
func (e *Extractor) Extract(path string) (domain.EventLog, []error) {
	var warnings []error
	log := domain.EventLog{}

	accidents, err := e.readAccidents(path)
	if err != nil {
		e.logger.Warn("Accident dates unavailable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		warnings = append(warnings, err)
	} else {
		log.Accidents = accidents
	}

	transfers, sales, treatments, err := e.readMovements(path)
	if err != nil {
		e.logger.Warn("Movement events unavailable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		warnings = append(warnings, err)
	} else {
		log.Transfers = transfers
		log.Sales = sales
		log.Treatments = treatments
	}

	e.logger.Info("Extracted events",
		slog.String("file", path),
		slog.Int("accidents", len(log.Accidents)),
		slog.Int("transfers", len(log.Transfers)),
		slog.Int("sales", len(log.Sales)),
		slog.Int("treatment_days", len(log.Treatments)))

	return log, warnings
}

// readAccidents collects every parseable value of the accident-date
// column on the workbook's first sheet: day-normalized, deduplicated,
// sorted ascending. Rows whose date fails to parse are excluded.
func (e *Extractor) readAccidents(path string) ([]time.Time, error) {
	rows, err := spreadsheet.OpenSheet(path, "")
	if err != nil {
		return nil, err
	}

	// The column header combines an accident keyword with a date keyword
	// (事故日期, "accident date"); one rule per accident keyword variant.
	var rules []spreadsheet.ColumnRule
	for i, kw := range e.columns.Accident {
		rules = append(rules, spreadsheet.ColumnRule{
			Role:     "accident_date",
			All:      []string{kw},
			Any:      e.columns.Date,
			Required: i == len(e.columns.Accident)-1,
		})
	}
	table, err := spreadsheet.NewTable(rows, 0, rules)
	if err != nil {
		return nil, apperrors.NewMissingSourceError("accident dates", err)
	}

	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, row := range table.Rows {
		cell, ok := table.Cell(row, "accident_date")
		if !ok || cell == "" {
			continue
		}
		date, err := spreadsheet.ParseDay(cell)
		if err != nil {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// readMovements reads the movement sheet: a date column plus transfer,
// sale and treatment count columns. Transfer and sale are occurrence
// lists (a row qualifies when its count is present and non-zero;
// duplicates stay because multiple same-day movements are legitimate).
// Treatment carries a magnitude, so counts are summed per canonical date.
func (e *Extractor) readMovements(path string) (transfers, sales []time.Time, treatments map[time.Time]float64, err error) {
	rows, err := spreadsheet.OpenSheet(path, e.movementSheet)
	if err != nil {
		return nil, nil, nil, err
	}

	table, err := spreadsheet.NewTable(rows, 0, []spreadsheet.ColumnRule{
		{Role: "date", Any: e.columns.Date, Required: true},
		{Role: "transfer", Any: e.columns.Transfer, Required: true},
		{Role: "sale", Any: e.columns.Sale, Required: true},
		{Role: "treatment", Any: e.columns.Treatment, Required: true},
	})
	if err != nil {
		return nil, nil, nil, apperrors.NewMissingSourceError("movement events", err)
	}

	treatments = make(map[time.Time]float64)
	for _, row := range table.Rows {
		cell, ok := table.Cell(row, "date")
		if !ok || cell == "" {
			continue
		}
		date, parseErr := spreadsheet.ParseDay(cell)
		if parseErr != nil {
			continue
		}

		if count, ok := table.Float(row, "transfer"); ok && count != 0 {
			transfers = append(transfers, date)
		}
		if count, ok := table.Float(row, "sale"); ok && count != 0 {
			sales = append(sales, date)
		}
		if count, ok := table.Float(row, "treatment"); ok && count != 0 {
			treatments[date] += count
		}
	}

	sort.Slice(transfers, func(i, j int) bool { return transfers[i].Before(transfers[j]) })
	sort.Slice(sales, func(i, j int) bool { return sales[i].Before(sales[j]) })

	return transfers, sales, treatments, nil
}
