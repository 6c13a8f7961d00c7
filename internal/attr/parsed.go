// Package attr turns the free-text fields people type into their records
// (frequency, priority, time estimate, due date) into normalized values.
//
// Every parser is total: unrecognized input resolves to a documented default
// and is reported through Parsed.Defaulted instead of an error.
package attr

import "strings"

// Parsed is a parser result. Defaulted is true when the value did not come
// from the input text; Empty is true when there was no text to parse at all.
type Parsed[T any] struct {
	Value     T
	Defaulted bool
	Empty     bool
}

// Failed reports whether non-empty input could not be interpreted.
func (p Parsed[T]) Failed() bool {
	return p.Defaulted && !p.Empty
}

func parsed[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v}
}

func defaulted[T any](v T, text string) Parsed[T] {
	return Parsed[T]{Value: v, Defaulted: true, Empty: text == ""}
}

// normalize lowercases and trims text and collapses runs of whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// containsAny reports whether s contains any of the patterns.
func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Clamp limits v to the score range [0, 100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
