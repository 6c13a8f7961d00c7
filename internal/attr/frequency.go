package attr

import (
	"regexp"
	"strconv"
	"strings"
)

// Frequency is a normalized recurrence: a 0–100 score and the number of
// occurrences per week it implies.
type Frequency struct {
	Score        float64 `json:"score"`
	TimesPerWeek float64 `json:"times_per_week"`
}

// DefaultFrequency applies when no rule matches.
var DefaultFrequency = Frequency{Score: 20, TimesPerWeek: 1}

type frequencyRule struct {
	name     string
	patterns []string
	freq     Frequency
}

// frequencyRules are checked top to bottom. More specific phrasings come
// first so that "weekly" cannot shadow "2x weekly" and "daily" cannot shadow
// "twice daily".
var frequencyRules = []frequencyRule{
	{"never", []string{"never", "not recurring", "one-off", "one off"}, Frequency{0, 0}},
	{"twice daily", []string{"twice daily", "twice a day", "2x daily", "2x a day", "2x day", "2 times a day"}, Frequency{100, 14}},
	{"every other day", []string{"every other day", "every 2 days", "every two days"}, Frequency{65, 3.5}},
	{"every 3 days", []string{"every 3 days", "every three days"}, Frequency{55, 7.0 / 3}},
	{"weekdays", []string{"weekdays", "every weekday", "work days", "workdays"}, Frequency{90, 5}},
	{"5x weekly", []string{"5x", "5 x", "5 times", "five times"}, Frequency{85, 5}},
	{"4x weekly", []string{"4x", "4 x", "4 times", "four times"}, Frequency{80, 4}},
	{"3x weekly", []string{"3x", "3 x", "3 times", "three times", "thrice"}, Frequency{70, 3}},
	{"2x weekly", []string{"2x", "2 x", "2 times", "two times", "twice"}, Frequency{60, 2}},
	{"biweekly", []string{"biweekly", "bi-weekly", "fortnightly", "every 2 weeks", "every two weeks", "every other week"}, Frequency{35, 0.5}},
	{"daily", []string{"daily", "every day", "everyday", "each day", "every morning", "every evening", "every night", "nightly"}, Frequency{100, 7}},
	{"weekly", []string{"weekly", "every week", "once a week", "each week"}, Frequency{50, 1}},
	{"quarterly", []string{"quarterly", "every quarter", "every 3 months"}, Frequency{10, 1.0 / 13}},
	{"bimonthly", []string{"bimonthly", "bi-monthly", "every 2 months", "every other month"}, Frequency{15, 0.125}},
	{"monthly", []string{"monthly", "every month", "once a month", "each month"}, Frequency{25, 0.25}},
	{"yearly", []string{"yearly", "annually", "annual", "every year", "once a year"}, Frequency{5, 1.0 / 52}},
}

var (
	// "every 10 days", "every 6 weeks"
	everyNRe = regexp.MustCompile(`every\s+(\d+)\s*(day|week|month|year)s?`)
	// "5/week", "3 per month", "2 a day", "4"
	countRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:x|times)?\s*(?:/|per|a|an|each)?\s*(day|week|month|year)?`)
)

// unitPerWeek converts one occurrence per unit into occurrences per week.
// An empty unit means per week.
func unitPerWeek(unit string) float64 {
	switch unit {
	case "day":
		return 7
	case "month":
		return 0.25
	case "year":
		return 1.0 / 52
	default:
		return 1
	}
}

func frequencyFromRate(timesPerWeek float64) Frequency {
	return Frequency{Score: Clamp(timesPerWeek * 15), TimesPerWeek: timesPerWeek}
}

func isNumeric(b byte) bool {
	return b >= '0' && b <= '9' || b == '.'
}

// containsCount is containsAny for patterns that may start with a number:
// such a pattern must not be preceded by another digit, so "5x" does not
// match inside "15x".
func containsCount(s string, patterns []string) bool {
	for _, p := range patterns {
		for i := 0; ; {
			j := strings.Index(s[i:], p)
			if j < 0 {
				break
			}
			at := i + j
			if at == 0 || !isNumeric(p[0]) || !isNumeric(s[at-1]) {
				return true
			}
			i = at + 1
		}
	}
	return false
}

// ParseFrequency interprets recurrence text such as "daily", "3x week",
// "5/week" or "every 10 days". Unrecognized text yields DefaultFrequency.
func ParseFrequency(text string) Parsed[Frequency] {
	s := normalize(text)
	if s == "" {
		return defaulted(DefaultFrequency, s)
	}

	for _, r := range frequencyRules {
		if containsCount(s, r.patterns) {
			return parsed(r.freq)
		}
	}

	if m := everyNRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return parsed(frequencyFromRate(unitPerWeek(m[2]) / float64(n)))
		}
	}

	if m := countRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil && n >= 0 {
			return parsed(frequencyFromRate(n * unitPerWeek(m[2])))
		}
	}

	return defaulted(DefaultFrequency, s)
}
