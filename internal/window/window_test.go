package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		w      Window
		str    string
		mm, yy string
	}{
		{Window{2023, time.May}, "2023-05", "05", "23"},
		{Window{2013, time.December}, "2013-12", "12", "13"},
		{Window{2001, time.January}, "2001-01", "01", "01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.str, tt.w.String())
		assert.Equal(t, tt.mm, tt.w.MM())
		assert.Equal(t, tt.yy, tt.w.YY())
	}
}

func TestPrev(t *testing.T) {
	assert.Equal(t, Window{2023, time.April}, Window{2023, time.May}.Prev())
	assert.Equal(t, Window{2022, time.December}, Window{2023, time.January}.Prev())
}

func TestIsCurrent(t *testing.T) {
	today := day(2026, 10, 14)
	assert.True(t, Window{2026, time.October}.IsCurrent(today))
	assert.False(t, Window{2026, time.September}.IsCurrent(today))
	assert.False(t, Window{2025, time.October}.IsCurrent(today))
}

func TestRange_ContiguousAndExclusiveOfEpoch(t *testing.T) {
	windows := Range(day(2014, 2, 14), day(2013, 5, 1))
	require.Len(t, windows, 9)

	assert.Equal(t, Window{2014, time.February}, windows[0], "starts at the current month")
	assert.Equal(t, Window{2013, time.June}, windows[len(windows)-1], "epoch month is excluded")

	seen := make(map[Window]bool)
	for i, w := range windows {
		assert.False(t, seen[w], "duplicate window %s", w)
		seen[w] = true
		if i > 0 {
			assert.Equal(t, windows[i-1].Prev(), w, "gap before %s", w)
		}
	}
}

func TestRange_LateDayInEpochMonthStillExcluded(t *testing.T) {
	windows := Range(day(2013, 6, 30), day(2013, 5, 31))
	assert.Equal(t, []Window{{2013, time.June}}, windows)
}

func TestRange_TodayInEpochMonth(t *testing.T) {
	assert.Nil(t, Range(day(2013, 5, 20), day(2013, 5, 1)))
	assert.Nil(t, Range(day(2012, 1, 1), day(2013, 5, 1)))
}

func TestRange_FullHistoryLength(t *testing.T) {
	windows := Range(day(2026, 10, 14), day(2013, 5, 1))
	// June 2013 through October 2026 inclusive.
	assert.Len(t, windows, 13*12+5)
}

func TestParse(t *testing.T) {
	w, err := Parse("2023-05")
	require.NoError(t, err)
	assert.Equal(t, Window{2023, time.May}, w)

	got, err := Parse(w.String())
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{"", "2023", "abcd-05", "2023-xx", "2023-13", "2023-00"}
	for _, s := range tests {
		_, err := Parse(s)
		assert.Error(t, err, "Parse(%q)", s)
	}
}
