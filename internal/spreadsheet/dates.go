package spreadsheet

import (
	"strconv"
	"strings"
	"time"

	apperrors "feedcli/internal/errors"
)

// serialEpoch is day 0 of the spreadsheet serial-date scheme: the calendar
// date immediately preceding 1900-01-01 in the Lotus-compatible encoding.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dayLayouts are the calendar-text encodings observed in the source
// workbooks. Ordered from most to least common.
var dayLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"01-02-06",
	"1/2/06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize truncates a timestamp to day granularity in UTC. Idempotent:
// normalizing an already-canonical date returns it unchanged.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay normalizes a raw cell value to a canonical day. Calendar text
// and serial numbers both converge on the same representation so rows
// from sources that disagree on encoding group by exact equality.
// Failure is an explicit UNPARSABLE_DATE error; the value is never
// coerced to a default date.
func ParseDay(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, apperrors.NewUnparsableDateError(value, nil)
	}

	for _, layout := range dayLayouts {
		// Years before 1900 mean a two-digit value landed in a four-digit
		// year slot; try the next layout instead.
		if t, err := time.Parse(layout, v); err == nil && t.Year() >= 1900 {
			return Normalize(t), nil
		}
	}

	// excelize renders unformatted date cells as their serial number
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		return DayFromSerial(serial), nil
	}

	return time.Time{}, apperrors.NewUnparsableDateError(value, nil)
}

// DayFromSerial converts a spreadsheet serial day offset to a canonical
// date. Sub-day fractions are discarded.
func DayFromSerial(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(serial))
}

// SerialFromDay converts a canonical date back to its serial day offset.
// Inverse of DayFromSerial: SerialFromDay(DayFromSerial(n)) == n.
func SerialFromDay(day time.Time) int {
	return int(Normalize(day).Sub(serialEpoch).Hours() / 24)
}
