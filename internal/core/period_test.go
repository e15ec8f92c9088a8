package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodAddMonths(t *testing.T) {
	cases := []struct {
		p    Period
		n    int
		want string
	}{
		{NewPeriod(2025, time.January), 0, "202501"},
		{NewPeriod(2025, time.November), 1, "202512"},
		{NewPeriod(2025, time.December), 1, "202601"},
		{NewPeriod(2025, time.December), 13, "202701"},
		{NewPeriod(2025, time.March), -3, "202412"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.p.AddMonths(tc.n).String(), "%s + %d", tc.p, tc.n)
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("202509")
	require.NoError(t, err)
	assert.Equal(t, 2025, p.Year)
	assert.Equal(t, time.September, p.Month)

	for _, bad := range []string{"", "2025", "202513", "202500", "abcdef", "2025091"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestPeriodDayClamps(t *testing.T) {
	cases := []struct {
		p    Period
		day  int
		want string
	}{
		{NewPeriod(2025, time.February), 31, "2025-02-28"},
		{NewPeriod(2024, time.February), 31, "2024-02-29"},
		{NewPeriod(2025, time.April), 31, "2025-04-30"},
		{NewPeriod(2025, time.January), 31, "2025-01-31"},
		{NewPeriod(2025, time.June), 15, "2025-06-15"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.p.Day(tc.day).String(), "%s day %d", tc.p, tc.day)
	}
}

func TestPeriodBefore(t *testing.T) {
	assert.True(t, NewPeriod(2024, time.December).Before(NewPeriod(2025, time.January)))
	assert.False(t, NewPeriod(2025, time.March).Before(NewPeriod(2025, time.March)))
}
