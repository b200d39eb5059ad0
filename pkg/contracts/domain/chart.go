package domain

import (
	"encoding/json"
	"math"
	"time"
)

// SeriesPoint is one dated point of the measured feed/water series as the
// chart renderer consumes it.
type SeriesPoint struct {
	Date  time.Time
	Feed  float64
	Water float64
	Ratio float64
}

// MarshalJSON renders the point with a day-granular date and a null ratio
// when the ratio is the NaN sentinel. encoding/json rejects NaN, so the
// sentinel has to be mapped before encoding.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	var ratio *float64
	if !math.IsNaN(p.Ratio) {
		r := p.Ratio
		ratio = &r
	}
	return json.Marshal(struct {
		Date  string   `json:"date"`
		Feed  float64  `json:"feed"`
		Water float64  `json:"water"`
		Ratio *float64 `json:"ratio"`
	}{
		Date:  p.Date.Format("2006-01-02"),
		Feed:  p.Feed,
		Water: p.Water,
		Ratio: ratio,
	})
}

// TrendLine is a least-squares linear fit over a series, evaluated at each
// series index so the renderer can draw it without refitting.
type TrendLine struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Values    []float64 `json:"values"`
}

// ChartInput is the complete data contract for one rendered chart: the
// aggregated series, fitted trend lines, events clipped to the series date
// range, and the optional standard comparison curve. It is assembled only
// once the full series exists; no partial chart input is ever produced.
type ChartInput struct {
	Title      string       `json:"title"`
	Unit       string       `json:"unit"`
	Pen        int          `json:"pen,omitempty"`
	Series     []SeriesPoint `json:"series"`
	FeedTrend  *TrendLine   `json:"feed_trend,omitempty"`
	WaterTrend *TrendLine   `json:"water_trend,omitempty"`
	Events     EventLog     `json:"events"`
	Standard   []CurvePoint `json:"standard,omitempty"`
}

// DateRange returns the first and last series dates. ok is false for an
// empty series.
func (c *ChartInput) DateRange() (min, max time.Time, ok bool) {
	if len(c.Series) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return c.Series[0].Date, c.Series[len(c.Series)-1].Date, true
}
