package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"feedcli/pkg/contracts/domain"
)

// WriteChartWorkbook renders a chart input as an Excel workbook with one
// sheet per concern: the aggregated series, the clipped events and the
// standard curve. Operators who do not run the renderer review these
// directly.
func WriteChartWorkbook(path string, input *domain.ChartInput) error {
	slog.Info("Writing chart workbook",
		slog.String("path", path),
		slog.String("title", input.Title))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	seriesSheet := "series"
	eventsSheet := "events"
	standardSheet := "standard"
	f.SetSheetName("Sheet1", seriesSheet)

	_ = f.SetCellValue(seriesSheet, "A1", "Date")
	_ = f.SetCellValue(seriesSheet, "B1", "TotalFeed")
	_ = f.SetCellValue(seriesSheet, "C1", "TotalWater")
	_ = f.SetCellValue(seriesSheet, "D1", "WaterFeedRatio")
	for i, p := range input.Series {
		row := i + 2
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("A%d", row), p.Date.Format("2006-01-02"))
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("B%d", row), p.Feed)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("C%d", row), p.Water)
		if !math.IsNaN(p.Ratio) {
			_ = f.SetCellValue(seriesSheet, fmt.Sprintf("D%d", row), p.Ratio)
		}
	}

	if _, err := f.NewSheet(eventsSheet); err != nil {
		return fmt.Errorf("failed to create events sheet: %w", err)
	}
	_ = f.SetCellValue(eventsSheet, "A1", "Date")
	_ = f.SetCellValue(eventsSheet, "B1", "Kind")
	_ = f.SetCellValue(eventsSheet, "C1", "Count")
	row := 2
	writeEvents := func(kind string, dates []time.Time) {
		for _, d := range dates {
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("A%d", row), d.Format("2006-01-02"))
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("B%d", row), kind)
			row++
		}
	}
	writeEvents("accident", input.Events.Accidents)
	writeEvents("transfer", input.Events.Transfers)
	writeEvents("sale", input.Events.Sales)

	treatmentDates := make([]time.Time, 0, len(input.Events.Treatments))
	for d := range input.Events.Treatments {
		treatmentDates = append(treatmentDates, d)
	}
	sort.Slice(treatmentDates, func(i, j int) bool { return treatmentDates[i].Before(treatmentDates[j]) })
	for _, d := range treatmentDates {
		_ = f.SetCellValue(eventsSheet, fmt.Sprintf("A%d", row), d.Format("2006-01-02"))
		_ = f.SetCellValue(eventsSheet, fmt.Sprintf("B%d", row), "treatment")
		_ = f.SetCellValue(eventsSheet, fmt.Sprintf("C%d", row), input.Events.Treatments[d])
		row++
	}

	if _, err := f.NewSheet(standardSheet); err != nil {
		return fmt.Errorf("failed to create standard sheet: %w", err)
	}
	_ = f.SetCellValue(standardSheet, "A1", "Date")
	_ = f.SetCellValue(standardSheet, "B1", "StandardFeed")
	_ = f.SetCellValue(standardSheet, "C1", "StandardWater")
	for i, p := range input.Standard {
		r := i + 2
		_ = f.SetCellValue(standardSheet, fmt.Sprintf("A%d", r), p.Date.Format("2006-01-02"))
		_ = f.SetCellValue(standardSheet, fmt.Sprintf("B%d", r), p.Feed)
		_ = f.SetCellValue(standardSheet, fmt.Sprintf("C%d", r), p.Water)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}
