// Package daterange turns symbolic period names or explicit date strings into
// concrete, inclusive instant ranges.
package daterange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// Period names understood by Resolve.
const (
	PeriodLast30Days   = "last_30_days"
	PeriodLast90Days   = "last_90_days"
	PeriodLast6Months  = "last_6_months"
	PeriodLastYear     = "last_year"
	PeriodCurrentMonth = "current_month"
	PeriodCurrentYear  = "current_year"
	PeriodYesterday    = "yesterday"
	PeriodLastWeek     = "last_week"
	PeriodLastMonth    = "last_month"
	PeriodLastQuarter  = "last_quarter"
	PeriodCustom       = "custom"
)

const (
	// explicit end dates without a start look back this many days
	customEndLookback = 30

	// inclusive period ends stop one millisecond before the next period starts
	endOfDayCompensator = time.Millisecond
)

var (
	// ErrInvertedRange is wrapped by ParseError when the start lies after the end.
	ErrInvertedRange = errors.New("start date is after end date")

	// ErrUnrecognizedDate is wrapped by ParseError when no supported layout matches.
	ErrUnrecognizedDate = errors.New("expected YYYY-MM-DD or RFC3339 timestamp")

	yearPattern = regexp.MustCompile(`^\d{4}$`)

	periods = []string{
		PeriodLast30Days,
		PeriodLast90Days,
		PeriodLast6Months,
		PeriodLastYear,
		PeriodCurrentMonth,
		PeriodCurrentYear,
		PeriodYesterday,
		PeriodLastWeek,
		PeriodLastMonth,
		PeriodLastQuarter,
	}
)

// Range is a resolved pair of instants. Both ends are inclusive in filters.
type Range struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Contains reports whether t lies within the range, inclusive at both ends.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Window is a resolved range together with the label it was requested under.
type Window struct {
	Period    string `json:"period"`
	DateRange Range  `json:"dateRange"`
}

// ParseError reports a period or date string that cannot be resolved.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("daterange: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Resolver resolves periods relative to a clock in a fixed location.
type Resolver struct {
	Now      func() time.Time
	Location *time.Location
}

// NewResolver creates a resolver using the wall clock. A nil location means UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{Now: time.Now, Location: loc}
}

// Periods lists the named periods Resolve understands, besides four-digit years.
func Periods() []string {
	out := make([]string, len(periods))
	copy(out, periods)
	return out
}

// IsKnownPeriod reports whether p is a named period or a four-digit year.
func IsKnownPeriod(p string) bool {
	if yearPattern.MatchString(p) {
		return true
	}
	for _, known := range periods {
		if p == known {
			return true
		}
	}
	return false
}

// ResolveWindow resolves the range and labels it "custom" when explicit dates were given.
func (r *Resolver) ResolveWindow(period, startDate, endDate string) (Window, error) {
	rng, err := r.Resolve(period, startDate, endDate)
	if err != nil {
		return Window{}, err
	}
	label := period
	if startDate != "" || endDate != "" {
		label = PeriodCustom
	}
	return Window{Period: label, DateRange: rng}, nil
}

// Resolve turns a period or explicit dates into a concrete range.
// Explicit dates win over the period; an unknown or empty period means the last 30 days.
func (r *Resolver) Resolve(period, startDate, endDate string) (Range, error) {
	loc := r.location()

	switch {
	case startDate != "" && endDate != "":
		start, err := parseDate("startDate", startDate, loc)
		if err != nil {
			return Range{}, err
		}
		end, err := parseDate("endDate", endDate, loc)
		if err != nil {
			return Range{}, err
		}
		return checkOrder(Range{Start: start, End: end}, "startDate", startDate)

	case startDate != "":
		start, err := parseDate("startDate", startDate, loc)
		if err != nil {
			return Range{}, err
		}
		return checkOrder(Range{Start: start, End: r.now()}, "startDate", startDate)

	case endDate != "":
		end, err := parseDate("endDate", endDate, loc)
		if err != nil {
			return Range{}, err
		}
		return Range{Start: end.AddDate(0, 0, -customEndLookback), End: end}, nil
	}

	return r.resolvePeriod(period), nil
}

func (r *Resolver) resolvePeriod(period string) Range {
	now := r.now()
	loc := r.location()

	if yearPattern.MatchString(period) {
		year, _ := strconv.Atoi(period)
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(1, 0, 0).Add(-endOfDayCompensator)}
	}

	switch period {
	case PeriodLast90Days:
		return Range{Start: now.AddDate(0, 0, -90), End: now}
	case PeriodLast6Months:
		return Range{Start: now.AddDate(0, -6, 0), End: now}
	case PeriodLastYear:
		return Range{Start: now.AddDate(-1, 0, 0), End: now}
	case PeriodCurrentMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-endOfDayCompensator)}
	case PeriodCurrentYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(1, 0, 0).Add(-endOfDayCompensator)}
	case PeriodYesterday:
		start := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.Add(24*time.Hour - endOfDayCompensator)}
	case PeriodLastWeek:
		return Range{Start: now.AddDate(0, 0, -7), End: now}
	case PeriodLastMonth:
		return Range{Start: now.AddDate(0, -1, 0), End: now}
	case PeriodLastQuarter:
		return Range{Start: now.AddDate(0, -3, 0), End: now}
	default:
		return Range{Start: now.AddDate(0, 0, -30), End: now}
	}
}

func (r *Resolver) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().In(r.location())
}

func (r *Resolver) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// parseDate accepts a calendar date (midnight in loc) or an RFC3339 timestamp.
func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	if d, err := civil.ParseDate(value); err == nil {
		return d.In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, &ParseError{Field: field, Value: value, Err: ErrUnrecognizedDate}
}

func checkOrder(r Range, field, value string) (Range, error) {
	if r.Start.After(r.End) {
		return Range{}, &ParseError{Field: field, Value: value, Err: ErrInvertedRange}
	}
	return r, nil
}
