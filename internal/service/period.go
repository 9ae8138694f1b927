package service

import (
	"fmt"
	"time"

	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
)

const (
	PeriodDay     = "day"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodAllTime = "all_time"
	PeriodCustom  = "custom"

	// Accepted hyphenated spelling; resolves onto PeriodAllTime so cache
	// keys and tags stay canonical.
	periodAllTimeAlias = "all-time"
)

// maxCustomSpan caps custom windows to bound aggregation cost.
const maxCustomSpan = 31 * 24 * time.Hour

type PeriodRequest struct {
	Granularity string
	Year        int
	Month       int
	From        *time.Time
	To          *time.Time
}

// Period is a concrete half-open UTC window [Start, EndExclusive).
type Period struct {
	Granularity  string
	Start        time.Time
	EndExclusive time.Time
	Label        string
}

// ResolvePeriod maps a period request onto a concrete UTC window. Unknown
// granularities fail; there is no silent fallback.
func ResolvePeriod(now time.Time, req PeriodRequest) (Period, error) {
	now = now.UTC()

	switch req.Granularity {
	case PeriodDay:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return Period{
			Granularity:  PeriodDay,
			Start:        start,
			EndExclusive: start.Add(24 * time.Hour),
			Label:        start.Format("2006-01-02"),
		}, nil

	case PeriodWeek:
		// ISO week, Monday start. Sunday is weekday 0 and maps back 6 days.
		offset := int(time.Monday - now.Weekday())
		if now.Weekday() == time.Sunday {
			offset = -6
		}
		monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, offset)
		year, week := monday.ISOWeek()
		return Period{
			Granularity:  PeriodWeek,
			Start:        monday,
			EndExclusive: monday.AddDate(0, 0, 7),
			Label:        fmt.Sprintf("Week %d, %d", week, year),
		}, nil

	case PeriodMonth:
		year, month := req.Year, req.Month
		if year == 0 && month == 0 {
			year, month = now.Year(), int(now.Month())
		}
		if year <= 0 {
			return Period{}, fmt.Errorf("%w: year is required with month", apperror.ErrInvalidInput)
		}
		if month < 1 || month > 12 {
			return Period{}, fmt.Errorf("%w: month must be between 1 and 12", apperror.ErrInvalidInput)
		}
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return Period{
			Granularity:  PeriodMonth,
			Start:        start,
			EndExclusive: start.AddDate(0, 1, 0),
			Label:        start.Format("January 2006"),
		}, nil

	case PeriodAllTime, periodAllTimeAlias:
		// End one second past now so events created "now" are included.
		return Period{
			Granularity:  PeriodAllTime,
			Start:        time.Unix(0, 0).UTC(),
			EndExclusive: now.Add(time.Second),
			Label:        "All time",
		}, nil

	case PeriodCustom:
		if req.From == nil || req.To == nil {
			return Period{}, fmt.Errorf("%w: custom period requires both from and to", apperror.ErrInvalidInput)
		}
		from, to := req.From.UTC(), req.To.UTC()
		if !to.After(from) {
			return Period{}, fmt.Errorf("%w: custom period end must be after start", apperror.ErrInvalidInput)
		}
		if to.Sub(from) > maxCustomSpan {
			return Period{}, fmt.Errorf("%w: custom period may not exceed 31 days", apperror.ErrInvalidInput)
		}
		return Period{
			Granularity:  PeriodCustom,
			Start:        from,
			EndExclusive: to,
			Label:        fmt.Sprintf("%s – %s", from.Format("2006-01-02"), to.Format("2006-01-02")),
		}, nil

	default:
		return Period{}, fmt.Errorf("%w: unsupported period %q", apperror.ErrInvalidInput, req.Granularity)
	}
}

// IsCurrentMonth reports whether the period is exactly the month containing
// now. Only then may the denormalized current-month totals be trusted.
func (p Period) IsCurrentMonth(now time.Time) bool {
	if p.Granularity != PeriodMonth {
		return false
	}
	now = now.UTC()
	return p.Start.Year() == now.Year() && p.Start.Month() == now.Month()
}
