package standard

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "feedcli/internal/errors"
	"feedcli/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// writeStandardWorkbook lays out the supplier's table: region marker in
// column B, stage label in column D, per-head feed in column F.
func writeStandardWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "standard.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseStages(t *testing.T) {
	path := writeStandardWorkbook(t, [][]interface{}{
		{"饲喂标准", nil, nil, nil, nil, nil},
		{nil, "山东", nil, "保育（20-25）", nil, 0.9}, // other region, above marker
		{nil, "河南", nil, nil, nil, nil},
		{nil, nil, nil, "保育后期（31-40）", nil, 1.5},
		{nil, nil, nil, "保育中期（26-30）", nil, 1.2},
		{nil, nil, nil, "合计", nil, 99.0},
		{nil, nil, nil, "备注", nil, nil},
	})

	stages, err := ParseStages(path, "河南", nil)
	require.NoError(t, err)
	require.Len(t, stages, 2)

	// sorted ascending by age start regardless of sheet order
	assert.Equal(t, domain.Stage{AgeStart: 26, AgeEnd: 30, DailyFeedPerHead: 1.2}, stages[0])
	assert.Equal(t, domain.Stage{AgeStart: 31, AgeEnd: 40, DailyFeedPerHead: 1.5}, stages[1])
}

func TestParseStagesASCIIParens(t *testing.T) {
	path := writeStandardWorkbook(t, [][]interface{}{
		{nil, "河南", nil, nil, nil, nil},
		{nil, nil, nil, "stage (26-30)", nil, 1.2},
	})

	stages, err := ParseStages(path, "河南", nil)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, 26, stages[0].AgeStart)
}

func TestParseStagesMarkerMissing(t *testing.T) {
	path := writeStandardWorkbook(t, [][]interface{}{
		{nil, "山东", nil, "（26-30）", nil, 1.2},
	})

	_, err := ParseStages(path, "河南", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingSource(err))
}

func TestParseStagesNoStages(t *testing.T) {
	path := writeStandardWorkbook(t, [][]interface{}{
		{nil, "河南", nil, nil, nil, nil},
		{nil, nil, nil, "没有阶段", nil, nil},
	})

	_, err := ParseStages(path, "河南", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingSource(err))
}

func TestFeedPerHeadClamping(t *testing.T) {
	stages := []domain.Stage{
		{AgeStart: 26, AgeEnd: 30, DailyFeedPerHead: 1.2},
		{AgeStart: 31, AgeEnd: 40, DailyFeedPerHead: 1.5},
	}

	tests := []struct {
		age  int
		want float64
	}{
		{26, 1.2},
		{30, 1.2},
		{31, 1.5},
		{40, 1.5},
		{10, 1.2}, // below range: nearest boundary stage, no interpolation
		{90, 1.5}, // above range: nearest boundary stage
	}
	for _, tt := range tests {
		got, ok := FeedPerHead(stages, tt.age)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "age %d", tt.age)
	}

	_, ok := FeedPerHead(nil, 30)
	assert.False(t, ok, "empty table resolves nothing")
}

func TestFeedPerHeadGapFallsThrough(t *testing.T) {
	// Gap between 30 and 35: an age inside the gap is past the first
	// stage, so it clamps to the last stage's rate.
	stages := []domain.Stage{
		{AgeStart: 26, AgeEnd: 30, DailyFeedPerHead: 1.2},
		{AgeStart: 35, AgeEnd: 40, DailyFeedPerHead: 1.5},
	}
	got, ok := FeedPerHead(stages, 32)
	require.True(t, ok)
	assert.Equal(t, 1.5, got)
}

func TestResolve(t *testing.T) {
	stages := []domain.Stage{
		{AgeStart: 26, AgeEnd: 30, DailyFeedPerHead: 1.2},
		{AgeStart: 31, AgeEnd: 40, DailyFeedPerHead: 1.5},
	}
	dates := []time.Time{day(2025, 9, 1), day(2025, 9, 2), day(2025, 9, 3)}

	// start age 28: ages resolve to 28, 29, 30, all in the first stage
	curve, ok := Resolve(stages, dates, 28, 114, 100)
	require.True(t, ok)
	require.Len(t, curve, 3)

	for i, p := range curve {
		assert.Equal(t, dates[i], p.Date)
		assert.Equal(t, 120.0, p.Feed, "point %d", i)
		assert.Equal(t, 360.0, p.Water, "point %d", i)
	}
}

func TestResolveAgeAdvancesAcrossStages(t *testing.T) {
	stages := []domain.Stage{
		{AgeStart: 26, AgeEnd: 30, DailyFeedPerHead: 1.2},
		{AgeStart: 31, AgeEnd: 40, DailyFeedPerHead: 1.5},
	}
	dates := []time.Time{day(2025, 9, 1), day(2025, 9, 2)}

	curve, ok := Resolve(stages, dates, 30, 114, 10)
	require.True(t, ok)
	assert.Equal(t, 12.0, curve[0].Feed)
	assert.Equal(t, 15.0, curve[1].Feed, "second date ages into the next stage")
}

func TestResolveEndAgeClamp(t *testing.T) {
	stages := []domain.Stage{
		{AgeStart: 26, AgeEnd: 30, DailyFeedPerHead: 1.2},
		{AgeStart: 31, AgeEnd: 40, DailyFeedPerHead: 1.5},
	}
	dates := []time.Time{day(2025, 9, 1), day(2025, 9, 2), day(2025, 9, 3)}

	// end age 30 freezes the curve in the first stage
	curve, ok := Resolve(stages, dates, 29, 30, 10)
	require.True(t, ok)
	assert.Equal(t, 12.0, curve[1].Feed)
	assert.Equal(t, 12.0, curve[2].Feed, "age stops advancing at end age")
}

func TestResolveExplicitAbsence(t *testing.T) {
	stages := []domain.Stage{{AgeStart: 26, AgeEnd: 30, DailyFeedPerHead: 1.2}}
	dates := []time.Time{day(2025, 9, 1)}

	_, ok := Resolve(nil, dates, 28, 114, 100)
	assert.False(t, ok, "empty stage table yields no curve, not zeros")

	_, ok = Resolve(stages, dates, 28, 114, 0)
	assert.False(t, ok, "unknown head count yields no curve")

	_, ok = Resolve(stages, nil, 28, 114, 100)
	assert.False(t, ok)
}
