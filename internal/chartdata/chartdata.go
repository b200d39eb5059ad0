package chartdata

import (
	"log/slog"
	"time"

	apperrors "feedcli/internal/errors"
	"feedcli/pkg/contracts/domain"
)

// Window is the inclusive date range spanned by an aggregate series.
// Events are clipped against it at chart-assembly time; out-of-range
// events are dropped silently.
type Window struct {
	Min time.Time
	Max time.Time
}

// WindowOf returns the date range of a date-sorted aggregate series.
// ok is false for an empty series.
func WindowOf(aggregates []domain.DailyAggregate) (Window, bool) {
	if len(aggregates) == 0 {
		return Window{}, false
	}
	return Window{
		Min: aggregates[0].Date,
		Max: aggregates[len(aggregates)-1].Date,
	}, true
}

// Contains reports whether the date falls inside the window, inclusive
// on both ends.
func (w Window) Contains(date time.Time) bool {
	return !date.Before(w.Min) && !date.After(w.Max)
}

// ClipDates returns the dates inside the window, preserving order and
// duplicates.
func (w Window) ClipDates(dates []time.Time) []time.Time {
	var clipped []time.Time
	for _, d := range dates {
		if w.Contains(d) {
			clipped = append(clipped, d)
		}
	}
	return clipped
}

// ClipTreatments returns the treatment entries whose date falls inside
// the window.
func (w Window) ClipTreatments(treatments map[time.Time]float64) map[time.Time]float64 {
	if len(treatments) == 0 {
		return nil
	}
	clipped := make(map[time.Time]float64)
	for date, count := range treatments {
		if w.Contains(date) {
			clipped[date] = count
		}
	}
	if len(clipped) == 0 {
		return nil
	}
	return clipped
}

// ClipEvents applies the window uniformly to every event kind.
func (w Window) ClipEvents(events domain.EventLog) domain.EventLog {
	return domain.EventLog{
		Accidents:  w.ClipDates(events.Accidents),
		Transfers:  w.ClipDates(events.Transfers),
		Sales:      w.ClipDates(events.Sales),
		Treatments: w.ClipTreatments(events.Treatments),
	}
}

// LinearTrend fits values by least squares over their index and returns
// the slope and intercept. A series shorter than two points gets a flat
// trend through its only value.
func LinearTrend(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if len(values) == 0 {
		return 0, 0
	}
	if len(values) == 1 {
		return 0, values[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// FitTrend fits values and evaluates the line at each index.
func FitTrend(values []float64) *domain.TrendLine {
	if len(values) == 0 {
		return nil
	}
	slope, intercept := LinearTrend(values)
	fitted := make([]float64, len(values))
	for i := range values {
		fitted[i] = intercept + slope*float64(i)
	}
	return &domain.TrendLine{Slope: slope, Intercept: intercept, Values: fitted}
}

// Assemble builds the complete ChartInput for one unit or pen: series
// points, feed and water trend lines, events clipped to the series window
// and the optional standard curve. An empty aggregate series yields an
// EMPTY_RESULT error; a chart input is only ever produced from a full
// series.
func Assemble(title, unit string, pen int, aggregates []domain.DailyAggregate, events domain.EventLog, curve []domain.CurvePoint, logger *slog.Logger) (*domain.ChartInput, error) {
	if logger == nil {
		logger = slog.Default()
	}

	window, ok := WindowOf(aggregates)
	if !ok {
		return nil, apperrors.NewEmptyResultError("chart series").
			WithContext("title", title)
	}

	series := make([]domain.SeriesPoint, len(aggregates))
	feedValues := make([]float64, len(aggregates))
	waterValues := make([]float64, len(aggregates))
	for i, agg := range aggregates {
		series[i] = domain.SeriesPoint{
			Date:  agg.Date,
			Feed:  agg.TotalFeed,
			Water: agg.TotalWater,
			Ratio: agg.WaterFeedRatio,
		}
		feedValues[i] = agg.TotalFeed
		waterValues[i] = agg.TotalWater
	}

	clipped := window.ClipEvents(events)

	logger.Info("Assembled chart input",
		slog.String("title", title),
		slog.Int("points", len(series)),
		slog.Int("events", clipped.Count()),
		slog.Int("standard_points", len(curve)))

	return &domain.ChartInput{
		Title:      title,
		Unit:       unit,
		Pen:        pen,
		Series:     series,
		FeedTrend:  FitTrend(feedValues),
		WaterTrend: FitTrend(waterValues),
		Events:     clipped,
		Standard:   curve,
	}, nil
}
