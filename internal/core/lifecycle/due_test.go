package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_DaysUntilDue(t *testing.T) {
	due := time.Date(2024, 1, 19, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"six days late", time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC), -6},
		{"same day early morning", time.Date(2024, 1, 19, 0, 0, 1, 0, time.UTC), 0},
		{"same day after due time", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), -1},
		{"day before late evening", time.Date(2024, 1, 18, 23, 59, 0, 0, time.UTC), 1},
		{"two weeks ahead", time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC), 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilDue(due, tt.now))
		})
	}
}

func Test_DaysUntilDue_SameInstantIsZero(t *testing.T) {
	for _, d := range []time.Time{
		time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	} {
		assert.Equal(t, 0, DaysUntilDue(d, d), "date %s", d)
	}
}

func Test_DaysUntilDue_UsesDueDateLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	due := time.Date(2024, 3, 10, 23, 59, 59, 0, loc)
	// 2024-03-11 02:00 UTC is still 2024-03-10 21:00 in UTC-5.
	now := time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntilDue(due, now))
}

func Test_EndOfDay(t *testing.T) {
	got := EndOfDay(time.Date(2024, 1, 24, 8, 15, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 1, 24, 23, 59, 59, 0, time.UTC), got)
}
