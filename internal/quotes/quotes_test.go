package quotes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForDayIsStableWithinADay(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	morning := time.Date(2026, time.March, 1, 0, 5, 0, 0, loc)
	night := time.Date(2026, time.March, 1, 23, 55, 0, 0, loc)
	assert.Equal(t, ForDay(morning), ForDay(night))
}

func TestForDayCycles(t *testing.T) {
	start := time.Date(2026, time.February, 18, 12, 0, 0, 0, time.UTC)
	seen := map[Quote]bool{}
	for i := 0; i < len(All()); i++ {
		seen[ForDay(start.AddDate(0, 0, i))] = true
	}
	assert.Len(t, seen, len(All()), "consecutive days should not repeat within one cycle")
	assert.Equal(t, ForDay(start), ForDay(start.AddDate(0, 0, len(All()))))
}

func TestForDayBeforeEpoch(t *testing.T) {
	q := ForDay(time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.NotEmpty(t, q.Text)
}

func TestAllIsACopy(t *testing.T) {
	a := All()
	a[0].Text = "changed"
	assert.NotEqual(t, "changed", All()[0].Text)
	for _, q := range All() {
		assert.NotEmpty(t, q.Source)
	}
}
