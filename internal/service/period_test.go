package service

import (
	"testing"
	"time"

	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod_Day(t *testing.T) {
	now := time.Date(2025, time.September, 15, 17, 42, 3, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodDay})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, time.September, 16, 0, 0, 0, 0, time.UTC), p.EndExclusive)
	assert.Equal(t, "2025-09-15", p.Label)
}

func TestResolvePeriod_WeekStartsOnMonday(t *testing.T) {
	// 2025-09-17 is a Wednesday; the containing ISO week starts Monday the 15th.
	now := time.Date(2025, time.September, 17, 9, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodWeek})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, time.September, 22, 0, 0, 0, 0, time.UTC), p.EndExclusive)
}

func TestResolvePeriod_WeekSundayMapsToPrecedingMonday(t *testing.T) {
	// 2025-09-21 is a Sunday; it belongs to the week that started the 15th.
	now := time.Date(2025, time.September, 21, 23, 59, 0, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodWeek})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), p.Start)
}

func TestResolvePeriod_ExplicitMonth(t *testing.T) {
	now := time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodMonth, Year: 2025, Month: 9})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), p.EndExclusive)
	assert.Equal(t, "September 2025", p.Label)
}

func TestResolvePeriod_DefaultMonthIsCurrent(t *testing.T) {
	now := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodMonth})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), p.EndExclusive)
	assert.True(t, p.IsCurrentMonth(now))
}

func TestResolvePeriod_MonthOutOfRange(t *testing.T) {
	now := time.Now().UTC()

	_, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodMonth, Year: 2025, Month: 13})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = ResolvePeriod(now, PeriodRequest{Granularity: PeriodMonth, Month: 5})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestResolvePeriod_AllTimeIncludesNow(t *testing.T) {
	now := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodAllTime})
	require.NoError(t, err)

	assert.Equal(t, time.Unix(0, 0).UTC(), p.Start)
	assert.True(t, p.EndExclusive.After(now))
	assert.False(t, p.IsCurrentMonth(now))
}

func TestResolvePeriod_AllTimeHyphenSpelling(t *testing.T) {
	now := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: "all-time"})
	require.NoError(t, err)

	assert.Equal(t, PeriodAllTime, p.Granularity, "the hyphenated spelling resolves onto the canonical tag")
	assert.Equal(t, time.Unix(0, 0).UTC(), p.Start)
}

func TestResolvePeriod_Custom(t *testing.T) {
	now := time.Now().UTC()
	from := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodCustom, From: &from, To: &to})
	require.NoError(t, err)

	assert.Equal(t, from, p.Start)
	assert.Equal(t, to, p.EndExclusive)
}

func TestResolvePeriod_CustomValidation(t *testing.T) {
	now := time.Now().UTC()
	from := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

	_, err := ResolvePeriod(now, PeriodRequest{Granularity: PeriodCustom, From: &from})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput, "missing to")

	inverted := from.AddDate(0, 0, -1)
	_, err = ResolvePeriod(now, PeriodRequest{Granularity: PeriodCustom, From: &from, To: &inverted})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput, "inverted range")

	same := from
	_, err = ResolvePeriod(now, PeriodRequest{Granularity: PeriodCustom, From: &from, To: &same})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput, "empty range")

	tooFar := from.AddDate(0, 0, 32)
	_, err = ResolvePeriod(now, PeriodRequest{Granularity: PeriodCustom, From: &from, To: &tooFar})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput, "range over 31 days")
}

func TestResolvePeriod_UnknownGranularityFails(t *testing.T) {
	_, err := ResolvePeriod(time.Now(), PeriodRequest{Granularity: "fortnight"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = ResolvePeriod(time.Now(), PeriodRequest{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
