package domain

import "time"

// EventLog collects the operational events overlaid on a feed/water series.
//
// Accidents are deduplicated and sorted. Transfers and Sales are occurrence
// lists: duplicates are legitimate (several same-day movements) and are kept.
// Treatments carry a magnitude, so same-day entries accumulate into the map
// rather than being listed.
type EventLog struct {
	Accidents  []time.Time           `json:"accidents,omitempty"`
	Transfers  []time.Time           `json:"transfers,omitempty"`
	Sales      []time.Time           `json:"sales,omitempty"`
	Treatments map[time.Time]float64 `json:"treatments,omitempty"`
}

// IsEmpty reports whether the log carries no events of any kind.
func (e EventLog) IsEmpty() bool {
	return len(e.Accidents) == 0 && len(e.Transfers) == 0 &&
		len(e.Sales) == 0 && len(e.Treatments) == 0
}

// Count returns the total number of event entries across all kinds.
func (e EventLog) Count() int {
	return len(e.Accidents) + len(e.Transfers) + len(e.Sales) + len(e.Treatments)
}
