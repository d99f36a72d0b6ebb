package display

import (
	"errors"
	"strconv"
	"time"
)

type DateRange string

const (
	DateRangeAllTime   DateRange = "ALL_TIME"
	DateRangeToday     DateRange = "TODAY"
	DateRangeYesterday DateRange = "YESTERDAY"
	DateRangeThisWeek  DateRange = "THIS_WEEK"
	DateRangeThisMonth DateRange = "THIS_MONTH"
	DateRangeCustom    DateRange = "CUSTOM"
)

var AllDateRange = []DateRange{
	DateRangeAllTime,
	DateRangeToday,
	DateRangeYesterday,
	DateRangeThisWeek,
	DateRangeThisMonth,
	DateRangeCustom,
}

func (e DateRange) IsValid() bool {
	switch e {
	case DateRangeAllTime, DateRangeToday, DateRangeYesterday, DateRangeThisWeek, DateRangeThisMonth, DateRangeCustom:
		return true
	}
	return false
}

func (e DateRange) String() string {
	return string(e)
}

// convert input to enum type
func (e *DateRange) UnmarshalText(text []byte) error {
	r := DateRange(text)
	if !r.IsValid() {
		return errors.New("invalid date range " + strconv.Quote(string(text)))
	}
	*e = r
	return nil
}

// QueueDate is a resolved date window. Start and End are whole days.
type QueueDate struct {
	Range DateRange `json:"range"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// QueueDateWithRange resolves r against now, in now's location.
// CUSTOM resolves to the epoch day; use QueueDateWithCustomRange instead.
func QueueDateWithRange(r DateRange, now time.Time) QueueDate {
	loc := now.Location()
	today := startOfDay(now)
	epoch := time.Unix(0, 0).In(loc)

	d := QueueDate{Range: r}
	switch r {
	case DateRangeToday:
		d.Start, d.End = today, endOfDay(today)
	case DateRangeYesterday:
		yesterday := today.AddDate(0, 0, -1)
		d.Start, d.End = yesterday, endOfDay(yesterday)
	case DateRangeThisWeek:
		// weeks start on Monday
		monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
		d.Start, d.End = monday, endOfDay(monday.AddDate(0, 0, 6))
	case DateRangeThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		d.Start, d.End = first, endOfDay(first.AddDate(0, 1, -1))
	case DateRangeCustom:
		d.Start, d.End = epoch, epoch
	default:
		d.Range = DateRangeAllTime
		d.Start, d.End = epoch, endOfDay(today)
	}
	return d
}

func QueueDateWithCustomRange(start time.Time, end time.Time) QueueDate {
	return QueueDate{Range: DateRangeCustom, Start: start, End: end}
}

// Contains compares calendar dates: t is read in Start's location, and
// Start and End in their own.
func (d QueueDate) Contains(t time.Time) bool {
	date := civilDate(t.In(d.Start.Location()))
	return !date.Before(civilDate(d.Start)) && !date.After(civilDate(d.End))
}

func civilDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
