package attr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultTimeRequired is the estimate, in minutes, for missing or
// unrecognized time text.
const DefaultTimeRequired = 30

var (
	hoursMinutesRe = regexp.MustCompile(`(\d+)\s*h(?:ours?|rs?)?\s*(?:and\s*)?(\d+)\s*(?:m(?:in(?:ute)?s?)?)?\b`)
	hoursRe        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:h|hr|hrs|hour|hours)\b`)
	minutesRe      = regexp.MustCompile(`(\d+)\s*(?:m|min|mins|minute|minutes)\b`)
	bareIntRe      = regexp.MustCompile(`^\d+$`)
)

type durationIdiom struct {
	pattern string
	minutes int
}

// durationIdioms are checked in order. Phrases containing "hour" precede the
// bare "hour" entry.
var durationIdioms = []durationIdiom{
	{"half hour", 30},
	{"half an hour", 30},
	{"quarter hour", 15},
	{"quarter of an hour", 15},
	{"couple hours", 120},
	{"couple of hours", 120},
	{"quick", 5},
	{"fast", 10},
	{"brief", 10},
	{"short", 15},
	{"extended", 90},
	{"long", 60},
	{"hour", 60},
}

// ParseTimeRequired interprets an effort estimate such as "1h 30m", "2 hours",
// "45 min", "quick" or "45" and returns minutes.
func ParseTimeRequired(text string) Parsed[int] {
	s := normalize(text)
	if s == "" {
		return defaulted(DefaultTimeRequired, s)
	}

	if m := hoursMinutesRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if total := h*60 + mins; total > 0 {
			return parsed(total)
		}
	}

	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, err := strconv.ParseFloat(m[1], 64)
		if total := int(math.Round(h * 60)); err == nil && total > 0 {
			return parsed(total)
		}
	}

	if m := minutesRe.FindStringSubmatch(s); m != nil {
		if mins, err := strconv.Atoi(m[1]); err == nil && mins > 0 {
			return parsed(mins)
		}
	}

	for _, idiom := range durationIdioms {
		if strings.Contains(s, idiom.pattern) {
			return parsed(idiom.minutes)
		}
	}

	if bareIntRe.MatchString(s) {
		if mins, err := strconv.Atoi(s); err == nil && mins > 0 {
			return parsed(mins)
		}
	}

	return defaulted(DefaultTimeRequired, s)
}
