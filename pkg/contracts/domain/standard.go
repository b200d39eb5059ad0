package domain

import "time"

// WaterPerFeedRatio models expected water intake as a fixed multiple of
// feed by mass. Domain constant, not derived from measurements.
const WaterPerFeedRatio = 3.0

// Stage is one row of the feeding-standard table: an inclusive age range
// in days and the expected daily feed per head for that range.
// A stage collection is kept sorted ascending by AgeStart.
type Stage struct {
	AgeStart         int     `json:"age_start" validate:"min=0"`
	AgeEnd           int     `json:"age_end" validate:"gtefield=AgeStart"`
	DailyFeedPerHead float64 `json:"daily_feed_per_head" validate:"min=0"`
}

// Contains reports whether the given age in days falls inside the stage.
func (s Stage) Contains(age int) bool {
	return age >= s.AgeStart && age <= s.AgeEnd
}

// CurvePoint is one point of the resolved standard curve, aligned to a
// date of the measured series. Water = Feed * WaterPerFeedRatio.
type CurvePoint struct {
	Date  time.Time `json:"date"`
	Feed  float64   `json:"feed"`
	Water float64   `json:"water"`
}
