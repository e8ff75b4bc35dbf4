package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEndOfMonth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		t    time.Time
		due  bool
	}{
		{"friday month end", date(2020, time.January, 31), true},
		{"first of month", date(2020, time.February, 1), false},
		{"leap-year february end", date(2020, time.February, 28), true},
		{"leap day saturday", date(2020, time.February, 29), false},
		{"sunday month end", date(2020, time.May, 31), false},
		{"friday before sunday month end", date(2020, time.May, 29), true},
		{"thursday before friday month end", date(2020, time.January, 30), false},
		{"mid month", date(2020, time.March, 16), false},
		{"weekday month end", date(2019, time.December, 31), true},
	}

	s := EndOfMonth{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.due, s.IsDue(tc.t))
		})
	}
}

func TestDaily(t *testing.T) {
	t.Parallel()

	assert.True(t, Daily{}.IsDue(date(2020, time.January, 1)))
	assert.True(t, Daily{}.IsDue(date(2020, time.June, 13)))
}

func TestByName(t *testing.T) {
	t.Parallel()

	s, err := ByName("end-of-month")
	require.NoError(t, err)
	assert.IsType(t, EndOfMonth{}, s)

	s, err = ByName(" Daily ")
	require.NoError(t, err)
	assert.IsType(t, Daily{}, s)

	_, err = ByName("fortnightly")
	require.Error(t, err)
}
