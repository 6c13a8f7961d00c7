package engine

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/lazypower/cadence/internal/attr"
	"github.com/lazypower/cadence/internal/store"
	"github.com/lazypower/cadence/internal/usercontext"
)

// Input is everything a signal may look at for one item.
type Input struct {
	Item    store.Item
	Attrs   attr.Attributes
	Context usercontext.UserContext
}

// Urgency scores how close the due date is. Items without one sit at 20;
// anything overdue is 100.
func Urgency(in Input) float64 {
	if in.Attrs.DueDate == nil {
		return 20
	}
	today := attr.Day(in.Context.Now, 0)
	days := math.Round(in.Attrs.DueDate.Sub(today).Hours() / 24)

	var score float64
	switch {
	case days < 0:
		score = 100
	case days < 1:
		score = 90
	case days < 3:
		score = 75
	case days < 7:
		score = math.Max(50, 70-5*days)
	case days < 30:
		score = math.Max(25, 50-days)
	default:
		score = math.Max(10, 25-0.3*days)
	}
	return attr.Clamp(score)
}

// Priority passes the parsed priority through.
func Priority(in Input) float64 {
	return attr.Clamp(float64(in.Attrs.PriorityScore))
}

var stageScores = map[string]float64{
	"in_progress": 35,
	"review":      30,
	"planning":    20,
	"on_hold":     5,
	"completed":   0,
}

var statusScores = map[string]float64{
	"active":    25,
	"completed": -10,
	"paused":    0,
}

// normalizeState folds "In Progress", "in-progress" and "in_progress" together.
func normalizeState(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// Momentum rewards streaks, frequent recurrence, advanced stages, active
// status and recent edits.
func Momentum(in Input) float64 {
	streak := math.Min(35, math.Max(0, float64(in.Item.PerformanceStreak)*6))
	freq := math.Min(25, in.Attrs.FrequencyScore*0.25)

	stage, ok := stageScores[normalizeState(in.Item.Stage)]
	if !ok {
		stage = 15
	}
	status, ok := statusScores[normalizeState(in.Item.Status)]
	if !ok {
		status = 10
	}

	var recency float64
	switch since := in.Context.Now.Sub(in.Item.Modified()); {
	case since < 2*24*time.Hour:
		recency = 15
	case since < 7*24*time.Hour:
		recency = 8
	}

	return attr.Clamp(streak + freq + stage + status + recency)
}

var (
	exerciseRe = regexp.MustCompile(`\b(exercise|exercising|workout|work out|working out)\b`)
	workRe     = regexp.MustCompile(`\bwork\b`)
	leisureRe  = regexp.MustCompile(`\b(personal|hobby|hobbies)\b`)
)

// Context scores how well an item fits the current hour and day.
func Context(in Input) float64 {
	text := strings.ToLower(in.Item.Content + " " + in.Item.ContentShort)
	uc := in.Context
	score := 30.0

	if in.Item.Type == store.TypeRoutine {
		if strings.Contains(text, "morning") && uc.HourIn(6, 10) {
			score += 35
		} else if strings.Contains(text, "evening") && uc.HourIn(17, 22) {
			score += 35
		}
	}

	if exerciseRe.MatchString(text) && (uc.HourIn(6, 9) || uc.HourIn(17, 20)) {
		score += 25
	}

	if (workRe.MatchString(text) && !uc.IsWeekend) || (leisureRe.MatchString(text) && uc.IsWeekend) {
		score += 15
	}

	if in.Attrs.TimeRequiredMinutes < 15 && (uc.HourIn(7, 9) || uc.HourIn(17, 19)) {
		score += 10
	}

	return attr.Clamp(score)
}

// Freshness favours recently modified (or created) items.
func Freshness(in Input) float64 {
	days := in.Context.Now.Sub(in.Item.Modified()).Hours() / 24
	switch {
	case days < 1:
		return 80
	case days < 3:
		return 60
	case days < 7:
		return 40
	case days < 14:
		return 25
	case days < 30:
		return 15
	default:
		return 8
	}
}
