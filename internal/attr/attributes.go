package attr

import "time"

// Field names used in parse statistics.
const (
	FieldFrequency    = "frequency"
	FieldPriority     = "priority"
	FieldTimeRequired = "required_time"
	FieldDue          = "due"
)

// Fields lists the parsed fields in reporting order.
var Fields = []string{FieldFrequency, FieldPriority, FieldTimeRequired, FieldDue}

// Input is the raw text of the fields a record carries.
type Input struct {
	Frequency    string
	Priority     string
	RequiredTime string
	Due          string
}

// Attributes are the normalized signals derived from one record.
type Attributes struct {
	FrequencyScore      float64    `json:"frequency_score"`
	TimesPerWeek        float64    `json:"times_per_week"`
	PriorityScore       int        `json:"priority_score"`
	TimeRequiredMinutes int        `json:"time_required_minutes"`
	DueDate             *time.Time `json:"due_date,omitempty"`
}

// FieldOutcome records how one field resolved.
type FieldOutcome struct {
	Defaulted bool
	Empty     bool
}

// Failed reports whether the field had text that could not be interpreted.
func (o FieldOutcome) Failed() bool {
	return o.Defaulted && !o.Empty
}

// Outcome maps field name to how it resolved.
type Outcome map[string]FieldOutcome

// Failed reports whether any field had text that could not be interpreted.
func (o Outcome) Failed() bool {
	for _, f := range o {
		if f.Failed() {
			return true
		}
	}
	return false
}

func outcomeOf[T any](p Parsed[T]) FieldOutcome {
	return FieldOutcome{Defaulted: p.Defaulted, Empty: p.Empty}
}

// Parse runs every field parser over in. now anchors relative due dates.
func Parse(in Input, now time.Time) (Attributes, Outcome) {
	freq := ParseFrequency(in.Frequency)
	prio := ParsePriority(in.Priority)
	dur := ParseTimeRequired(in.RequiredTime)
	due := ParseDueDate(in.Due, now)

	a := Attributes{
		FrequencyScore:      freq.Value.Score,
		TimesPerWeek:        freq.Value.TimesPerWeek,
		PriorityScore:       prio.Value,
		TimeRequiredMinutes: dur.Value,
		DueDate:             due.Value,
	}
	o := Outcome{
		FieldFrequency:    outcomeOf(freq),
		FieldPriority:     outcomeOf(prio),
		FieldTimeRequired: outcomeOf(dur),
		FieldDue:          outcomeOf(due),
	}
	return a, o
}
