package attr

import "regexp"

// DefaultPriority is the score for missing or unrecognized priority text.
const DefaultPriority = 60

var priorityDigitRe = regexp.MustCompile(`^[1-5]$`)

type priorityRule struct {
	patterns []string
	score    int
}

// priorityRules are checked in order; the first match wins. "highest" must
// be tested before "high".
var priorityRules = []priorityRule{
	{[]string{"critical", "urgent", "asap", "highest", "p0"}, 100},
	{[]string{"high", "important", "p1"}, 80},
	{[]string{"medium", "normal", "moderate", "p2"}, 60},
	{[]string{"low", "minor", "trivial", "p3"}, 40},
}

// ParsePriority maps "1".."5" or a priority keyword onto 0–100.
func ParsePriority(text string) Parsed[int] {
	s := normalize(text)
	if s == "" {
		return defaulted(DefaultPriority, s)
	}
	if priorityDigitRe.MatchString(s) {
		return parsed(int(s[0]-'0') * 20)
	}
	for _, r := range priorityRules {
		if containsAny(s, r.patterns) {
			return parsed(r.score)
		}
	}
	return defaulted(DefaultPriority, s)
}
