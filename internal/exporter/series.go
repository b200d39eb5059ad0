package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"feedcli/pkg/contracts/domain"
)

// seriesHeaders are the columns of an aggregated series CSV.
var seriesHeaders = []string{"Date", "Pen", "TotalFeed", "TotalWater", "WaterFeedRatio"}

// WriteSeriesCSV writes an aggregated feed/water series to a CSV report.
// A NaN ratio (zero-feed day) is rendered as an empty cell.
func (w *CSVWriter) WriteSeriesCSV(filename string, aggregates []domain.DailyAggregate) error {
	records := make([][]string, 0, len(aggregates))
	for _, agg := range aggregates {
		ratio := ""
		if !math.IsNaN(agg.WaterFeedRatio) {
			ratio = fmt.Sprintf("%.3f", agg.WaterFeedRatio)
		}
		pen := ""
		if agg.Pen != 0 {
			pen = fmt.Sprintf("%d", agg.Pen)
		}
		records = append(records, []string{
			agg.Date.Format("2006-01-02"),
			pen,
			fmt.Sprintf("%.2f", agg.TotalFeed),
			fmt.Sprintf("%.2f", agg.TotalWater),
			ratio,
		})
	}

	return w.WriteSimpleCSV(filename, seriesHeaders, records)
}

// chartInputEnvelope wraps a ChartInput with generation metadata so the
// renderer can reject stale or foreign files.
type chartInputEnvelope struct {
	Format      string             `json:"format"`
	GeneratedAt time.Time          `json:"generated_at"`
	Chart       *domain.ChartInput `json:"chart"`
}

// ChartInputFormat tags the JSON files the chart renderer consumes.
const ChartInputFormat = "feedcli.chart-input.v1"

// WriteChartInputJSON writes a chart input to an indented JSON file for
// the external renderer.
func WriteChartInputJSON(path string, input *domain.ChartInput) error {
	slog.Info("Writing chart input JSON",
		slog.String("path", path),
		slog.String("title", input.Title),
		slog.Int("points", len(input.Series)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(chartInputEnvelope{
		Format:      ChartInputFormat,
		GeneratedAt: time.Now().UTC(),
		Chart:       input,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chart input: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write chart input: %w", err)
	}

	return nil
}
