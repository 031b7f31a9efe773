package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrencesReturnsStrictlyIncreasingTargetWeekdays(t *testing.T) {
	reference := time.Date(2024, 6, 12, 10, 30, 0, 0, time.UTC) // a Wednesday

	occurrences := NextOccurrences(8, reference, time.Saturday)
	require.Len(t, occurrences, 8)

	previous := reference
	for _, occ := range occurrences {
		date, err := time.Parse(DateLayout, occ.Date)
		require.NoError(t, err)
		assert.Equal(t, time.Saturday, date.Weekday())
		assert.True(t, date.After(previous.Truncate(24*time.Hour)))
		previous = date
	}

	assert.Equal(t, "2024-06-15", occurrences[0].Date)
	assert.Equal(t, "2024-08-03", occurrences[7].Date)
}

func TestNextOccurrencesSkipsReferenceDayItself(t *testing.T) {
	saturday := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	require.Equal(t, time.Saturday, saturday.Weekday())

	occurrences := NextOccurrences(3, saturday, time.Saturday)
	require.Len(t, occurrences, 3)

	// Same-day reference rolls to the following week.
	assert.Equal(t, "2024-06-22", occurrences[0].Date)
	assert.Equal(t, "2024-06-29", occurrences[1].Date)
	assert.Equal(t, "2024-07-06", occurrences[2].Date)
}

func TestNextOccurrencesDisplayLabel(t *testing.T) {
	reference := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	occurrences := NextOccurrences(1, reference, time.Saturday)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "Sat, Jun 15", occurrences[0].Display)
}

func TestNextOccurrencesNonPositiveCount(t *testing.T) {
	assert.Nil(t, NextOccurrences(0, time.Now(), time.Saturday))
	assert.Nil(t, NextOccurrences(-2, time.Now(), time.Saturday))
}
