package dataprocessing

import (
	"log/slog"
	"sort"
	"time"

	apperrors "feedcli/internal/errors"
	"feedcli/pkg/contracts/domain"
)

// Aggregator reduces feeding records to the daily feed/water series.
// Two modes share the core reducer: per-pen mode sums the quantities of a
// (pen, date) group because distinct rows are distinct feeding events;
// unit mode takes the first value per date because the day's rows repeat
// one precomputed total. The ratio is a derived field computed once per
// output row after grouping; ratios themselves are never summed.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator with the given logger.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

type penDate struct {
	pen  int
	date time.Time
}

// AggregateByPen groups records by (pen, date) and sums feed and water
// within each group. Output is sorted by (pen, date) ascending and unique
// per key. An empty input yields an EMPTY_RESULT error for the driver to
// log and skip.
func (a *Aggregator) AggregateByPen(records []domain.FeedingRecord) ([]domain.DailyAggregate, error) {
	if len(records) == 0 {
		return nil, apperrors.NewEmptyResultError("per-pen aggregation")
	}

	groups := make(map[penDate]*domain.DailyAggregate)
	for _, r := range records {
		key := penDate{pen: r.Pen, date: r.Date}
		agg, exists := groups[key]
		if !exists {
			agg = &domain.DailyAggregate{Pen: r.Pen, Date: r.Date}
			groups[key] = agg
		}
		agg.TotalFeed += r.Feed
		agg.TotalWater += r.Water
	}

	result := make([]domain.DailyAggregate, 0, len(groups))
	for _, agg := range groups {
		agg.WaterFeedRatio = domain.Ratio(agg.TotalWater, agg.TotalFeed)
		result = append(result, *agg)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Pen != result[j].Pen {
			return result[i].Pen < result[j].Pen
		}
		return result[i].Date.Before(result[j].Date)
	})

	a.logger.Info("Aggregated per-pen series",
		slog.Int("input_records", len(records)),
		slog.Int("daily_rows", len(result)))

	return result, nil
}

// AggregateDaily reduces unit-level records to one row per date, taking
// the first value seen for each date. The day's duplicate rows are trusted
// to carry identical totals; this is an upstream data assumption and is
// not re-validated here. Output is sorted by date ascending.
func (a *Aggregator) AggregateDaily(records []domain.FeedingRecord) ([]domain.DailyAggregate, error) {
	if len(records) == 0 {
		return nil, apperrors.NewEmptyResultError("daily aggregation")
	}

	groups := make(map[time.Time]domain.DailyAggregate)
	for _, r := range records {
		if _, exists := groups[r.Date]; exists {
			continue
		}
		groups[r.Date] = domain.DailyAggregate{
			Date:           r.Date,
			TotalFeed:      r.Feed,
			TotalWater:     r.Water,
			WaterFeedRatio: domain.Ratio(r.Water, r.Feed),
		}
	}

	result := make([]domain.DailyAggregate, 0, len(groups))
	for _, agg := range groups {
		result = append(result, agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	a.logger.Info("Aggregated daily series",
		slog.Int("input_records", len(records)),
		slog.Int("daily_rows", len(result)))

	return result, nil
}

// TotalHeadCount derives the unit head count as the number of distinct
// pens times the first non-zero per-pen head count. Returns 0 when no
// record carries a head count; callers treat 0 as unknown.
func TotalHeadCount(records []domain.FeedingRecord) int {
	pens := make(map[int]struct{})
	perPen := 0
	for _, r := range records {
		pens[r.Pen] = struct{}{}
		if perPen == 0 && r.HeadCount > 0 {
			perPen = r.HeadCount
		}
	}
	if perPen == 0 {
		return 0
	}
	return len(pens) * perPen
}

// Pens returns the distinct pen identifiers of a series, ascending.
func Pens(aggregates []domain.DailyAggregate) []int {
	seen := make(map[int]struct{})
	var pens []int
	for _, agg := range aggregates {
		if _, ok := seen[agg.Pen]; !ok {
			seen[agg.Pen] = struct{}{}
			pens = append(pens, agg.Pen)
		}
	}
	sort.Ints(pens)
	return pens
}

// FilterPen returns the rows of one pen, preserving date order.
func FilterPen(aggregates []domain.DailyAggregate, pen int) []domain.DailyAggregate {
	var result []domain.DailyAggregate
	for _, agg := range aggregates {
		if agg.Pen == pen {
			result = append(result, agg)
		}
	}
	return result
}
