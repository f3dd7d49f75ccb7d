package league

import "time"

const dateParamLayout = "20060102"

// Day is one local calendar day, End being its last millisecond.
type Day struct {
	Start time.Time
	End   time.Time
}

func DayOf(now time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return Day{Start: start, End: end}
}

// Contains reports whether t falls on this calendar day.
func (d Day) Contains(t time.Time) bool {
	local := t.In(d.Start.Location())
	return local.Year() == d.Start.Year() && local.YearDay() == d.Start.YearDay()
}

// DateRange formats the upstream "dates" parameter, YYYYMMDD-YYYYMMDD in the day's location.
func DateRange(from, to time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return from.In(loc).Format(dateParamLayout) + "-" + to.In(loc).Format(dateParamLayout)
}
