package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("TRT", 3*60*60)

func sampleTable() Table {
	return Table{
		PreDawn:   "04:50",
		Dawn:      "05:00",
		Daybreak:  "06:30",
		Midday:    "12:15",
		Afternoon: "15:45",
		Sunset:    "18:20",
		Night:     "19:45",
	}
}

func at(h, m, s int) time.Time {
	return time.Date(2026, time.March, 1, h, m, s, 0, testLoc)
}

// ============================================================
// ParseClock
// ============================================================

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		h, m   int
		hasErr bool
	}{
		{"05:00", 5, 0, false},
		{"5:07", 5, 7, false},
		{"23:59", 23, 59, false},
		{"00:00", 0, 0, false},
		{"04:12 (EEST)", 4, 12, false},
		{" 18:20 ", 18, 20, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"12", 0, 0, true},
		{"ab:cd", 0, 0, true},
		{"12:5", 0, 0, true},
		{"", 0, 0, true},
		{"-1:30", 0, 0, true},
		{"+5:30", 0, 0, true},
		{"05:+5", 0, 0, true},
		{"-0:30", 0, 0, true},
		{"+0:-0", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseClock(tt.in)
			if tt.hasErr {
				require.ErrorIs(t, err, ErrBadClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.h, h)
			assert.Equal(t, tt.m, m)
		})
	}
}

func TestAtUsesDateInLocation(t *testing.T) {
	// 22:30 UTC on Feb 28 is already Mar 1 in UTC+3.
	now := time.Date(2026, time.February, 28, 22, 30, 0, 0, time.UTC)
	got, err := At("05:00", now, testLoc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 1, 5, 0, 0, 0, testLoc), got)
}

func TestAtNilLocationIsLocal(t *testing.T) {
	got, err := At("05:00", time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
}

// ============================================================
// Classify
// ============================================================

func TestClassifyIntervals(t *testing.T) {
	table := sampleTable()
	tests := []struct {
		name string
		now  time.Time
		want Interval
	}{
		{"midnight", at(0, 0, 0), Night},
		{"pre-dawn", at(4, 59, 59), Night},
		{"dawn start", at(5, 0, 0), Dawn},
		{"dawn middle", at(6, 0, 0), Dawn},
		{"daybreak start", at(6, 30, 0), Daybreak},
		{"before midday", at(12, 14, 59), Daybreak},
		{"midday start", at(12, 15, 0), Midday},
		{"afternoon start", at(15, 45, 0), Afternoon},
		{"sunset start", at(18, 20, 0), Sunset},
		{"before night", at(19, 44, 59), Sunset},
		{"night start", at(19, 45, 0), Night},
		{"late night", at(23, 59, 59), Night},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(table, tt.now, testLoc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyBoundaryStartsInterval(t *testing.T) {
	table := sampleTable()
	for _, e := range table.Entries() {
		h, m, err := ParseClock(e.Clock)
		require.NoError(t, err)
		got, err := Classify(table, at(h, m, 0), testLoc)
		require.NoError(t, err)
		assert.Equal(t, e.Interval, got, "boundary %s", e.Clock)
	}
}

func TestClassifyBeforeFirstBoundaryIsNight(t *testing.T) {
	table := sampleTable()
	for s := 0; s < 5*60*60; s += 997 {
		now := at(0, 0, 0).Add(time.Duration(s) * time.Second)
		got, err := Classify(table, now, testLoc)
		require.NoError(t, err)
		assert.Equal(t, Night, got, "at %s", now.Format("15:04:05"))
	}
}

func TestClassifyConvertsInstantToLocation(t *testing.T) {
	// 02:30 UTC is 05:30 in UTC+3.
	now := time.Date(2026, time.March, 1, 2, 30, 0, 0, time.UTC)
	got, err := Classify(sampleTable(), now, testLoc)
	require.NoError(t, err)
	assert.Equal(t, Dawn, got)
}

func TestClassifyBadClockFailsClosed(t *testing.T) {
	table := sampleTable()
	table.Midday = "noon"
	got, err := Classify(table, at(13, 0, 0), testLoc)
	require.ErrorIs(t, err, ErrBadClock)
	assert.Equal(t, Unknown, got)
}

// ============================================================
// NextTarget
// ============================================================

func TestNextTargetAroundDawn(t *testing.T) {
	table := sampleTable()

	before, err := NextTarget(table, at(4, 59, 59), testLoc)
	require.NoError(t, err)
	assert.Equal(t, DawnApproach, before.Kind)
	assert.Equal(t, at(5, 0, 0), before.At)

	after, err := NextTarget(table, at(5, 0, 1), testLoc)
	require.NoError(t, err)
	assert.Equal(t, SunsetApproach, after.Kind)
	assert.Equal(t, at(18, 20, 0), after.At)
}

func TestNextTargetAtDawnIsSunset(t *testing.T) {
	got, err := NextTarget(sampleTable(), at(5, 0, 0), testLoc)
	require.NoError(t, err)
	assert.Equal(t, SunsetApproach, got.Kind)
}

func TestNextTargetAfterSunsetRollsOver(t *testing.T) {
	table := sampleTable()
	tomorrowDawn := time.Date(2026, time.March, 2, 5, 0, 0, 0, testLoc)

	for _, now := range []time.Time{at(18, 20, 0), at(18, 20, 1), at(23, 59, 59)} {
		got, err := NextTarget(table, now, testLoc)
		require.NoError(t, err)
		assert.Equal(t, DawnApproach, got.Kind)
		assert.Equal(t, tomorrowDawn, got.At, "from %s", now.Format("15:04:05"))
		assert.Equal(t, "05:00", got.Clock)
	}
}

func TestNextTargetConcreteScenario(t *testing.T) {
	table := sampleTable()

	iv, err := Classify(table, at(18, 20, 0), testLoc)
	require.NoError(t, err)
	assert.Equal(t, Sunset, iv)
	tg, err := NextTarget(table, at(18, 20, 0), testLoc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 2, 5, 0, 0, 0, testLoc), tg.At)
	assert.Equal(t, DawnApproach, tg.Kind)

	iv, err = Classify(table, at(4, 59, 59), testLoc)
	require.NoError(t, err)
	assert.Equal(t, Night, iv)
	tg, err = NextTarget(table, at(4, 59, 59), testLoc)
	require.NoError(t, err)
	assert.Equal(t, at(5, 0, 0), tg.At)
	assert.Equal(t, DawnApproach, tg.Kind)
}

func TestNextTargetAcrossMonthEnd(t *testing.T) {
	now := time.Date(2026, time.February, 28, 21, 0, 0, 0, testLoc)
	got, err := NextTarget(sampleTable(), now, testLoc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 1, 5, 0, 0, 0, testLoc), got.At)
}

func TestNextTargetAcrossDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks spring forward on 2026-03-08, so the night is an hour shorter.
	now := time.Date(2026, time.March, 7, 19, 0, 0, 0, ny)
	got, err := NextTarget(sampleTable(), now, ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 8, 5, 0, 0, 0, ny), got.At)
	assert.Equal(t, 9*time.Hour, got.At.Sub(now))
}

func TestNextTargetBadClockFailsClosed(t *testing.T) {
	table := sampleTable()
	table.Sunset = "sunset"
	got, err := NextTarget(table, at(10, 0, 0), testLoc)
	require.ErrorIs(t, err, ErrBadClock)
	assert.True(t, got.At.IsZero())

	table = sampleTable()
	table.Dawn = "5h"
	_, err = NextTarget(table, at(10, 0, 0), testLoc)
	require.ErrorIs(t, err, ErrBadClock)
}

func TestNextTargetIgnoresOtherBoundaries(t *testing.T) {
	table := sampleTable()
	table.Midday = "garbage"
	got, err := NextTarget(table, at(10, 0, 0), testLoc)
	require.NoError(t, err)
	assert.Equal(t, SunsetApproach, got.Kind)
}

func TestTargetLabels(t *testing.T) {
	sunset := Target{Kind: SunsetApproach, Clock: "18:20"}
	dawn := Target{Kind: DawnApproach, Clock: "05:00"}
	assert.Equal(t, "Iftar at 18:20", sunset.Label())
	assert.Equal(t, "Sahur ends at 05:00", dawn.Label())
	assert.Equal(t, "Iftar in", SunsetApproach.Label())
	assert.Equal(t, "Sahur ends in", DawnApproach.Label())
	assert.Equal(t, "sunset-approach", SunsetApproach.String())
	assert.Equal(t, "dawn-approach", DawnApproach.String())
}

func TestIntervalString(t *testing.T) {
	assert.Equal(t, "night", Night.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "interval(42)", Interval(42).String())
}

// ============================================================
// Countdown
// ============================================================

func TestRemaining(t *testing.T) {
	base := at(12, 0, 0)
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{999 * time.Millisecond, "00:00:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{6*time.Hour + 20*time.Minute + 500*time.Millisecond, "06:20:00"},
		{25 * time.Hour, "25:00:00"},
		{-5 * time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		got := Remaining(base.Add(tt.d), base)
		assert.Equal(t, tt.want, got.String(), "remaining %v", tt.d)
	}
}

func TestRemainingZero(t *testing.T) {
	base := at(12, 0, 0)
	assert.True(t, Remaining(base, base).Zero())
	assert.True(t, Remaining(base.Add(-time.Minute), base).Zero())
	assert.False(t, Remaining(base.Add(time.Second), base).Zero())
}
