package attr

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type dueRule struct {
	patterns []string
	resolve  func(now time.Time) time.Time
}

// dueRules are checked in order by substring. Longer phrases that contain a
// shorter one ("day after tomorrow" / "tomorrow", "next weekend" / "next week")
// come first.
var dueRules = []dueRule{
	{[]string{"day after tomorrow"}, offsetDays(2)},
	{[]string{"tomorrow", "tmrw"}, offsetDays(1)},
	{[]string{"today", "tonight", "asap", "end of day", "eod"}, offsetDays(0)},
	{[]string{"next weekend"}, nextWeekend},
	{[]string{"this weekend", "weekend"}, thisWeekend},
	{[]string{"next week"}, offsetDays(7)},
	{[]string{"end of week", "end of the week", "this week", "eow"}, endOfWeek},
	{[]string{"end of month", "end of the month", "this month", "eom"}, endOfMonth},
	{[]string{"next month"}, offsetDays(30)},
	{[]string{"next year"}, offsetDays(365)},
	{[]string{"someday", "some day", "eventually"}, offsetDays(365)},
}

var (
	inNRe      = regexp.MustCompile(`\bin\s+(\d+|a|an|one)\s*(day|week|month)s?\b`)
	weekdayRe  = regexp.MustCompile(`\b(?:next\s+|this\s+|on\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	hasDigitRe = regexp.MustCompile(`\d`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var unitDays = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
}

// Day returns midnight of the calendar day n days after now, in now's location.
func Day(now time.Time, n int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, now.Location())
}

func offsetDays(n int) func(time.Time) time.Time {
	return func(now time.Time) time.Time { return Day(now, n) }
}

// saturdayOffset is the number of days until the coming Saturday (0 on Saturday).
func saturdayOffset(now time.Time) int {
	return (int(time.Saturday) - int(now.Weekday()) + 7) % 7
}

// thisWeekend is the coming Saturday, or today when today is already a
// weekend day.
func thisWeekend(now time.Time) time.Time {
	if now.Weekday() == time.Sunday {
		return Day(now, 0)
	}
	return Day(now, saturdayOffset(now))
}

// nextWeekend is the Saturday one week after this weekend's Saturday.
func nextWeekend(now time.Time) time.Time {
	if now.Weekday() == time.Sunday {
		return Day(now, 6)
	}
	return Day(now, saturdayOffset(now)+7)
}

// endOfWeek is the coming Friday (today on a Friday).
func endOfWeek(now time.Time) time.Time {
	return Day(now, (int(time.Friday)-int(now.Weekday())+7)%7)
}

func endOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location())
}

// maxYearSpan bounds how far an absolute date may sit from now. dateparse
// accepts fragments like "1:" as year 0000.
const maxYearSpan = 100

func plausibleYear(t, now time.Time) bool {
	d := t.Year() - now.Year()
	return d >= -maxYearSpan && d <= maxYearSpan
}

// NextWeekday returns the next occurrence of wd strictly after now's
// calendar day. When now already falls on wd the result is one week out.
func NextWeekday(now time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return Day(now, delta)
}

// ParseDueDate interprets due-date text relative to now. Relative phrases,
// "in N days/weeks/months", weekday names and absolute date strings are
// understood. A nil value means no due date, which is not an error.
func ParseDueDate(text string, now time.Time) Parsed[*time.Time] {
	s := normalize(text)
	if s == "" {
		return defaulted[*time.Time](nil, s)
	}

	for _, r := range dueRules {
		if containsAny(s, r.patterns) {
			t := r.resolve(now)
			return parsed(&t)
		}
	}

	if m := inNRe.FindStringSubmatch(s); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		t := Day(now, n*unitDays[m[2]])
		return parsed(&t)
	}

	if m := weekdayRe.FindStringSubmatch(s); m != nil {
		t := NextWeekday(now, weekdays[m[1]])
		return parsed(&t)
	}

	if hasDigitRe.MatchString(s) {
		if t, err := dateparse.ParseIn(strings.TrimSpace(text), now.Location()); err == nil && plausibleYear(t, now) {
			y, m, d := t.Date()
			day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
			return parsed(&day)
		}
	}

	return defaulted[*time.Time](nil, s)
}
