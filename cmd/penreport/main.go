// Command penreport builds per-enclosure feed/water chart data. It loads
// each feeding workbook in the input directory, aggregates the records by
// (pen, date), overlays the operational events and writes one series CSV
// plus one chart-input file per pen.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"feedcli/internal/chartdata"
	"feedcli/internal/config"
	"feedcli/internal/dataprocessing"
	"feedcli/internal/events"
	"feedcli/internal/exporter"
	"feedcli/internal/files"
	"feedcli/internal/infrastructure"
	"feedcli/internal/validation"
	"feedcli/pkg/contracts/domain"
)

func main() {
	inDir := flag.String("in", "", "input directory for feeding workbooks (defaults to data/input relative to executable)")
	outDir := flag.String("out", "", "output directory for chart data (defaults to data/charts relative to executable)")
	eventsFile := flag.String("events", "", "event workbook path (defaults to the accident/stock workbook in the input directory)")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *inDir == "" {
		*inDir = paths.InputDir
	}
	if *outDir == "" {
		*outDir = paths.ChartsDir
	}
	if *eventsFile == "" {
		*eventsFile = paths.EventsWorkbook
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("penreport.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.WithRunID(context.Background(), uuid.NewString())
	logger = infrastructure.LoggerFromContext(ctx)

	logger.Info("Starting per-pen chart data run",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.String("events_workbook", *eventsFile))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(*inDir, "*.xlsx"); err != nil {
		logger.Error("Input directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("Output directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The event workbook is loaded once and shared across all files. Its
	// absence degrades every chart to "no annotations", never aborts.
	extractor := events.NewExtractor(cfg, logger)
	eventLog := domain.EventLog{}
	if config.FileExists(*eventsFile) {
		var warnings []error
		eventLog, warnings = extractor.Extract(*eventsFile)
		for _, w := range warnings {
			logger.Warn("Event extraction degraded", slog.String("warning", w.Error()))
		}
	} else {
		logger.Warn("Event workbook not found, charts will carry no annotations",
			slog.String("path", *eventsFile))
	}

	discovery := files.NewDiscovery(paths.ExecutableDir)
	workbooks, err := discovery.FindExcelFiles(*inDir)
	if err != nil {
		logger.Error("Failed to discover workbooks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Workbooks discovered", slog.Int("count", len(workbooks)))
	fmt.Printf("Found %d feeding workbooks\n", len(workbooks))

	parser := dataprocessing.NewParser(cfg, logger)
	aggregator := dataprocessing.NewAggregator(logger)
	csvWriter := exporter.NewCSVWriter(paths)

	processed := 0
	for i, wb := range workbooks {
		logger.Info("Processing workbook",
			slog.Int("current", i+1),
			slog.Int("total", len(workbooks)),
			slog.String("filename", wb.Name))
		fmt.Printf("Processing file %d of %d: %s\n", i+1, len(workbooks), wb.Name)

		if err := processWorkbook(wb, *outDir, parser, aggregator, csvWriter, eventLog, logger); err != nil {
			// Failure isolation is per file: log and move to the next one.
			logger.Error("Workbook processing failed",
				slog.String("filename", wb.Name),
				slog.String("error", err.Error()))
			continue
		}
		processed++
	}

	logger.Info("Run complete",
		slog.Int("workbooks", len(workbooks)),
		slog.Int("processed", processed))
	fmt.Printf("Processing complete: %d of %d workbooks\n", processed, len(workbooks))
}

// processWorkbook runs the full pipeline for one feeding workbook: parse,
// aggregate per pen, and emit the chart data for each pen found.
func processWorkbook(wb files.FileInfo, outDir string, parser *dataprocessing.Parser, aggregator *dataprocessing.Aggregator, csvWriter *exporter.CSVWriter, eventLog domain.EventLog, logger *slog.Logger) error {
	records, err := parser.ParsePenFeeding(wb.Path)
	if err != nil {
		return err
	}

	aggregates, err := aggregator.AggregateByPen(records)
	if err != nil {
		return err
	}

	unit := files.UnitName(wb.Name)
	pens := dataprocessing.Pens(aggregates)
	logger.Info("Pens found in workbook",
		slog.String("unit", unit),
		slog.Int("pen_count", len(pens)))

	for _, pen := range pens {
		penSeries := dataprocessing.FilterPen(aggregates, pen)

		title := fmt.Sprintf("%s 栏 %d", unit, pen)
		input, err := chartdata.Assemble(title, unit, pen, penSeries, eventLog, nil, logger)
		if err != nil {
			// An empty pen series skips that pen's chart, not the file.
			logger.Warn("Skipping pen chart",
				slog.String("unit", unit),
				slog.Int("pen", pen),
				slog.String("reason", err.Error()))
			continue
		}

		base := files.PenBaseName(unit, pen)
		if err := csvWriter.WriteSeriesCSV(base+".csv", penSeries); err != nil {
			return err
		}
		if err := exporter.WriteChartInputJSON(filepath.Join(outDir, base+".json"), input); err != nil {
			return err
		}
		if err := exporter.WriteChartWorkbook(filepath.Join(outDir, base+".xlsx"), input); err != nil {
			return err
		}
	}

	return nil
}
