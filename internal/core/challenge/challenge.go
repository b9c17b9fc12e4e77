// Package challenge implements the penny challenge arithmetic: day k of a
// challenge is worth k times the base amount, in integer pence.
//
// Every function is pure. Dates are compared at whole calendar-day
// granularity using their year, month and day in the location they carry,
// so the time of day never shifts a day number.
package challenge

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultBasePence  = 1
	DefaultLengthDays = 364
	ShortLengthDays   = 364
	LongLengthDays    = 365
)

var (
	ErrInvalidLength    = errors.New("challenge length must be 364 or 365 days")
	ErrInvalidBasePence = errors.New("base pence must be at least 1")
	ErrMissingStartDate = errors.New("challenge start date is required")
)

// Config defines one challenge instance. Day 1 is StartDate and the
// challenge covers [StartDate, StartDate+LengthDays).
type Config struct {
	StartDate  time.Time
	LengthDays int
	// BasePence multiplies every day's amount. Zero means DefaultBasePence.
	BasePence int64
}

// Validate reports whether the config is inside the documented domain.
// The engine itself never calls it.
func (c Config) Validate() error {
	if c.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if c.LengthDays != ShortLengthDays && c.LengthDays != LongLengthDays {
		return ErrInvalidLength
	}
	if c.BasePence < 0 {
		return ErrInvalidBasePence
	}
	return nil
}

func (c Config) base() int64 {
	if c.BasePence == 0 {
		return DefaultBasePence
	}
	return c.BasePence
}

// EndDate is the calendar date of the last challenge day.
func (c Config) EndDate() time.Time {
	return DayNumberToDate(c.LengthDays, c)
}

// Contains reports whether date falls inside the challenge window.
func (c Config) Contains(date time.Time) bool {
	_, ok := DateToDayNumber(date, c)
	return ok
}

// RangeResult is the outcome of every range computation. Both bounds are
// inclusive and FirstDay <= LastDay.
type RangeResult struct {
	FirstDay      int   `json:"firstDay"`
	LastDay       int   `json:"lastDay"`
	DayCount      int   `json:"dayCount"`
	TotalPence    int64 `json:"totalPence"`
	FirstDayPence int64 `json:"firstDayPence"`
	LastDayPence  int64 `json:"lastDayPence"`
}

// DailyAmount is one row of a breakdown.
type DailyAmount struct {
	Day   int   `json:"day"`
	Pence int64 `json:"pence"`
}

// AmountForDay returns day*basePence, or 0 for day <= 0.
func AmountForDay(day int, basePence int64) int64 {
	if day < 1 {
		return 0
	}
	return int64(day) * basePence
}

// triangular returns 1+2+...+n.
func triangular(n int64) int64 {
	return n * (n + 1) / 2
}

// SumRangeInPence sums AmountForDay over [first, last] in closed form.
// An inverted range sums to 0 and a lower bound below 1 is raised to 1.
func SumRangeInPence(first, last int, basePence int64) int64 {
	if first > last {
		return 0
	}
	if first < 1 {
		first = 1
	}
	if last < 1 {
		return 0
	}
	return triangular(int64(last))*basePence - triangular(int64(first-1))*basePence
}

// ComputeRange builds the result for [first, last]. The lower bound is
// clamped to 1 and an inverted range collapses to the single day first.
func ComputeRange(first, last int, basePence int64) RangeResult {
	clampedFirst := max(1, first)
	clampedLast := max(clampedFirst, last)

	return RangeResult{
		FirstDay:      clampedFirst,
		LastDay:       clampedLast,
		DayCount:      clampedLast - clampedFirst + 1,
		TotalPence:    SumRangeInPence(clampedFirst, clampedLast, basePence),
		FirstDayPence: AmountForDay(clampedFirst, basePence),
		LastDayPence:  AmountForDay(clampedLast, basePence),
	}
}

// DailyAmounts lists every day of [first, last] in ascending order, with the
// same bound normalisation as ComputeRange.
func DailyAmounts(first, last int, basePence int64) []DailyAmount {
	start := max(1, first)
	end := max(start, last)

	out := make([]DailyAmount, 0, end-start+1)
	for d := start; d <= end; d++ {
		out = append(out, DailyAmount{Day: d, Pence: AmountForDay(d, basePence)})
	}
	return out
}

// civilDay counts whole days since the Unix epoch for the calendar date of t.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DaysBetween returns the whole-day difference to - from.
func DaysBetween(from, to time.Time) int {
	return int(civilDay(to) - civilDay(from))
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateToDayNumber maps date to its 1-indexed challenge day. ok is false when
// the date lies outside the challenge window.
func DateToDayNumber(date time.Time, cfg Config) (day int, ok bool) {
	diff := DaysBetween(cfg.StartDate, date)
	if diff < 0 || diff >= cfg.LengthDays {
		return 0, false
	}
	return diff + 1, true
}

// DayNumberToDate is the unchecked inverse of DateToDayNumber.
func DayNumberToDate(day int, cfg Config) time.Time {
	return DateOf(cfg.StartDate).AddDate(0, 0, day-1)
}

// ComputeNextNDays totals numDays days starting at from, truncated at the
// end of the challenge.
func ComputeNextNDays(from time.Time, numDays int, cfg Config) (RangeResult, bool) {
	first, ok := DateToDayNumber(from, cfg)
	if !ok {
		return RangeResult{}, false
	}
	return ComputeNextNDaysFromDay(first, numDays, cfg)
}

// ComputeNextNDaysFromDay is ComputeNextNDays for a caller that already
// knows its day number. Days outside [1, LengthDays] have no result.
func ComputeNextNDaysFromDay(day, numDays int, cfg Config) (RangeResult, bool) {
	if day < 1 || day > cfg.LengthDays {
		return RangeResult{}, false
	}
	last := min(day+numDays-1, cfg.LengthDays)
	return ComputeRange(day, last, cfg.base()), true
}

// MonthBounds returns the first and last calendar dates of a month.
func MonthBounds(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// ComputeForMonth totals the part of a calendar month that overlaps the
// challenge. A month straddling either challenge boundary is clamped to it;
// a month entirely outside has no result.
func ComputeForMonth(month time.Month, year int, cfg Config) (RangeResult, bool) {
	monthStart, monthEnd := MonthBounds(month, year)

	first, firstOK := DateToDayNumber(monthStart, cfg)
	last, lastOK := DateToDayNumber(monthEnd, cfg)

	switch {
	case !firstOK && !lastOK:
		// The challenge could sit strictly inside a month only if it were
		// shorter than a month, which the length domain rules out.
		return RangeResult{}, false
	case firstOK && !lastOK:
		return ComputeRange(first, cfg.LengthDays, cfg.base()), true
	case !firstOK && lastOK:
		return ComputeRange(1, last, cfg.base()), true
	default:
		return ComputeRange(first, last, cfg.base()), true
	}
}

// ComputeCustomRange totals [start, end]. Unlike ComputeForMonth there is no
// clamping: if either endpoint is outside the challenge there is no result.
func ComputeCustomRange(start, end time.Time, cfg Config) (RangeResult, bool) {
	first, ok := DateToDayNumber(start, cfg)
	if !ok {
		return RangeResult{}, false
	}
	last, ok := DateToDayNumber(end, cfg)
	if !ok {
		return RangeResult{}, false
	}
	return ComputeRange(first, last, cfg.base()), true
}

// TotalSavedUpTo totals day 1 through the day of date inclusive.
func TotalSavedUpTo(date time.Time, cfg Config) (RangeResult, bool) {
	last, ok := DateToDayNumber(date, cfg)
	if !ok {
		return RangeResult{}, false
	}
	return ComputeRange(1, last, cfg.base()), true
}

// FormatPenceAsGBP renders pence as pounds, e.g. 1234 -> "£12.34".
func FormatPenceAsGBP(pence int64) string {
	return fmt.Sprintf("£%d.%02d", pence/100, pence%100)
}
