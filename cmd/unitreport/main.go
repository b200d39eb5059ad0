// Command unitreport builds unit-level feed/water chart data: one daily
// total series per workbook, optional event annotations and an optional
// feeding-standard comparison curve resolved from the stage table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"feedcli/internal/chartdata"
	"feedcli/internal/config"
	"feedcli/internal/dataprocessing"
	"feedcli/internal/events"
	"feedcli/internal/exporter"
	"feedcli/internal/files"
	"feedcli/internal/infrastructure"
	"feedcli/internal/standard"
	"feedcli/internal/validation"
	"feedcli/pkg/contracts/domain"
)

func main() {
	inDir := flag.String("in", "", "input directory for feeding workbooks (defaults to data/input relative to executable)")
	outDir := flag.String("out", "", "output directory for chart data (defaults to data/charts relative to executable)")
	eventsFile := flag.String("events", "", "event workbook path (defaults to the accident/stock workbook in the input directory)")
	standardFile := flag.String("standard", "", "feeding-standard workbook path (defaults to the standard table in the input directory)")
	startAge := flag.Int("start-age", 0, "age in days at the first series date (defaults to the configured start age)")
	endAge := flag.Int("end-age", 0, "age in days at which the standard curve stops advancing (defaults to the configured end age)")
	headCount := flag.Int("head", 0, "total head count for the standard curve (defaults to pens x per-pen head count from the data)")
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
	if *standardFile == "" {
		*standardFile = paths.StandardWorkbook
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("unitreport.log")
	}

	if *startAge == 0 {
		*startAge = cfg.Pipeline.DefaultStartAge
	}
	if *endAge == 0 {
		*endAge = cfg.Pipeline.DefaultEndAge
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.WithRunID(context.Background(), uuid.NewString())
	logger = infrastructure.LoggerFromContext(ctx)

	logger.Info("Starting unit chart data run",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.String("events_workbook", *eventsFile),
		slog.String("standard_workbook", *standardFile),
		slog.Int("start_age", *startAge),
		slog.Int("end_age", *endAge))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(*inDir, "*.xlsx"); err != nil {
		logger.Error("Input directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("Output directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Both annotation sources are optional and loaded once before the
	// loop; either one missing degrades its feature, never the run.
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

	var stages []domain.Stage
	if config.FileExists(*standardFile) {
		stages, err = standard.ParseStages(*standardFile, cfg.Pipeline.RegionMarker, logger)
		if err != nil {
			logger.Warn("Feeding standard unavailable, charts will carry no comparison curve",
				slog.String("path", *standardFile),
				slog.String("error", err.Error()))
			stages = nil
		}
	} else {
		logger.Warn("Standard workbook not found, charts will carry no comparison curve",
			slog.String("path", *standardFile))
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

		if err := processWorkbook(wb, *outDir, *startAge, *endAge, *headCount, stages, parser, aggregator, csvWriter, eventLog, logger); err != nil {
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

// processWorkbook runs the unit-level pipeline for one workbook: parse,
// reduce to the daily series, resolve the standard curve against the
// series dates and emit the chart data.
func processWorkbook(wb files.FileInfo, outDir string, startAge, endAge, headOverride int, stages []domain.Stage, parser *dataprocessing.Parser, aggregator *dataprocessing.Aggregator, csvWriter *exporter.CSVWriter, eventLog domain.EventLog, logger *slog.Logger) error {
	records, err := parser.ParseUnitFeeding(wb.Path)
	if err != nil {
		return err
	}

	aggregates, err := aggregator.AggregateDaily(records)
	if err != nil {
		return err
	}

	head := headOverride
	if head == 0 {
		head = dataprocessing.TotalHeadCount(records)
	}

	dates := make([]time.Time, len(aggregates))
	for i, agg := range aggregates {
		dates[i] = agg.Date
	}

	// The comparison curve is explicit absence when the stage table or
	// head count is unknown; the renderer treats it as optional.
	curve, hasCurve := standard.Resolve(stages, dates, startAge, endAge, head)
	if !hasCurve {
		logger.Info("No standard curve for unit",
			slog.String("file", wb.Name),
			slog.Int("stages", len(stages)),
			slog.Int("head_count", head))
	}

	unit := files.UnitName(wb.Name)
	input, err := chartdata.Assemble(unit, unit, 0, aggregates, eventLog, curve, logger)
	if err != nil {
		return err
	}

	if err := csvWriter.WriteSeriesCSV(unit+".csv", aggregates); err != nil {
		return err
	}
	if err := exporter.WriteChartInputJSON(filepath.Join(outDir, unit+".json"), input); err != nil {
		return err
	}
	return exporter.WriteChartWorkbook(filepath.Join(outDir, unit+".xlsx"), input)
}
