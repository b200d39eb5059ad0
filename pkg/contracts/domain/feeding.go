package domain

import (
	"math"
	"time"
)

// FeedingRecord represents a single feeding event row after loading and
// date normalization. Multiple records may share the same (Pen, Date) pair;
// they represent distinct feeding events and are summed during aggregation.
type FeedingRecord struct {
	Pen       int       `json:"pen" validate:"min=0"`
	Date      time.Time `json:"date"`
	Feed      float64   `json:"feed_kg" validate:"min=0"`
	Water     float64   `json:"water_l" validate:"min=0"`
	HeadCount int       `json:"head_count,omitempty"`
}

// DailyAggregate is one row of the aggregated feed/water series.
// Unique per (Pen, Date); Pen is 0 in unit-level mode.
type DailyAggregate struct {
	Pen            int       `json:"pen,omitempty"`
	Date           time.Time `json:"date"`
	TotalFeed      float64   `json:"total_feed"`
	TotalWater     float64   `json:"total_water"`
	WaterFeedRatio float64   `json:"water_feed_ratio"`
}

// Ratio returns water/feed for the given totals. When feed is zero the
// ratio is undefined and NaN is returned as the sentinel; callers render
// it as an empty cell or null, never as a fault.
func Ratio(totalWater, totalFeed float64) float64 {
	if totalFeed == 0 {
		return math.NaN()
	}
	return totalWater / totalFeed
}
