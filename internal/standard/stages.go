package standard

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "feedcli/internal/errors"
	"feedcli/internal/spreadsheet"
	"feedcli/pkg/contracts/domain"
)

// Cell positions inside the feeding-standard table. The table is a fixed
// layout maintained by the feed supplier, not a headered sheet: the region
// name sits in column B, the stage label in column D and the per-head
// daily feed in column F.
const (
	regionCol = 1
	labelCol  = 3
	feedCol   = 5
)

// stageLabelPattern matches the age range embedded in a stage label cell.
// The supplier's sheet uses full-width parentheses （26-30）; operator-edited
// copies use ASCII ones, so both are accepted.
var stageLabelPattern = regexp.MustCompile(`[（(]\s*(\d+)\s*[-–—]\s*(\d+)\s*[）)]`)

// ParseStages reads the feeding-standard table from a workbook. The scan
// is headerless: rows are skipped until the region marker appears in
// column B, then each following row with a parseable stage label and a
// numeric feed cell becomes a Stage. Summary (合计) rows are skipped.
// The result is sorted ascending by AgeStart. A missing marker or a table
// with zero stages is a MISSING_SOURCE error; the standard curve is an
// optional annotation and callers degrade rather than abort.
func ParseStages(path, marker string, logger *slog.Logger) ([]domain.Stage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rows, err := spreadsheet.OpenSheet(path, "")
	if err != nil {
		return nil, err
	}

	start := -1
	for i, row := range rows {
		if regionCol < len(row) && strings.Contains(row[regionCol], marker) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, apperrors.NewMissingSourceError("feeding standard",
			apperrors.NewParsingError("region marker not found", nil).
				WithContext("marker", marker))
	}

	var stages []domain.Stage
	for _, row := range rows[start:] {
		if labelCol >= len(row) || feedCol >= len(row) {
			continue
		}

		label := strings.TrimSpace(row[labelCol])
		if label == "" || strings.Contains(label, "合计") || strings.Contains(strings.ToLower(label), "total") {
			continue
		}

		m := stageLabelPattern.FindStringSubmatch(label)
		if m == nil {
			continue
		}
		ageStart, _ := strconv.Atoi(m[1])
		ageEnd, _ := strconv.Atoi(m[2])

		feed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[feedCol]), ",", ""), 64)
		if err != nil || feed <= 0 {
			continue
		}

		stages = append(stages, domain.Stage{
			AgeStart:         ageStart,
			AgeEnd:           ageEnd,
			DailyFeedPerHead: feed,
		})
	}

	if len(stages) == 0 {
		return nil, apperrors.NewMissingSourceError("feeding standard",
			apperrors.NewEmptyResultError("stage table"))
	}

	sort.Slice(stages, func(i, j int) bool {
		return stages[i].AgeStart < stages[j].AgeStart
	})

	logger.Info("Parsed feeding-standard stages",
		slog.String("file", path),
		slog.String("marker", marker),
		slog.Int("stages", len(stages)))

	return stages, nil
}

// FeedPerHead resolves the per-head daily feed for an age in days against
// a sorted stage table. The first stage containing the age wins. Ages
// below the table clamp to the first stage's rate, ages above to the
// last stage's; the series must stay dense even over gaps in the table.
// Clamping keeps incomplete supplier tables usable; whether it is the
// intended domain behavior is a policy call for the nutrition team.
// ok is false only for an empty table.
func FeedPerHead(stages []domain.Stage, age int) (float64, bool) {
	if len(stages) == 0 {
		return 0, false
	}

	for _, s := range stages {
		if s.Contains(age) {
			return s.DailyFeedPerHead, true
		}
	}

	if age < stages[0].AgeStart {
		return stages[0].DailyFeedPerHead, true
	}
	return stages[len(stages)-1].DailyFeedPerHead, true
}

// Resolve maps the stage table onto a date series: per-date expected total
// feed and water for headCount animals aging linearly from startAge at
// the first date. Age is clamped to [startAge, endAge]; the model ignores
// head-count changes mid-series. Returns (nil, false) when the table is
// empty or the head count is unknown, so the caller treats the comparison
// curve as absent rather than zero.
func Resolve(stages []domain.Stage, dates []time.Time, startAge, endAge, headCount int) ([]domain.CurvePoint, bool) {
	if len(stages) == 0 || headCount <= 0 || len(dates) == 0 {
		return nil, false
	}

	first := dates[0]
	points := make([]domain.CurvePoint, 0, len(dates))
	for _, date := range dates {
		age := startAge + int(date.Sub(first).Hours()/24)
		if age < startAge {
			age = startAge
		}
		if age > endAge {
			age = endAge
		}

		rate, ok := FeedPerHead(stages, age)
		if !ok {
			return nil, false
		}

		feed := rate * float64(headCount)
		points = append(points, domain.CurvePoint{
			Date:  date,
			Feed:  feed,
			Water: feed * domain.WaterPerFeedRatio,
		})
	}

	return points, true
}
