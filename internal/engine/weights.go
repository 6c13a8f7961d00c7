package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights is returned for negative or all-zero weight sets.
var ErrInvalidWeights = errors.New("invalid weights")

// Weights is the contribution of each sub-score to the total. A valid set
// sums to 1.0.
type Weights struct {
	Urgency   float64 `json:"urgency" yaml:"urgency"`
	Priority  float64 `json:"priority" yaml:"priority"`
	Momentum  float64 `json:"momentum" yaml:"momentum"`
	Context   float64 `json:"context" yaml:"context"`
	Freshness float64 `json:"freshness" yaml:"freshness"`
}

// DefaultWeights favours deadlines, then stated priority.
var DefaultWeights = Weights{
	Urgency:   0.35,
	Priority:  0.25,
	Momentum:  0.20,
	Context:   0.12,
	Freshness: 0.08,
}

// WeightOverrides is a partial Weights; nil fields keep the base value.
type WeightOverrides struct {
	Urgency   *float64 `json:"urgency,omitempty"`
	Priority  *float64 `json:"priority,omitempty"`
	Momentum  *float64 `json:"momentum,omitempty"`
	Context   *float64 `json:"context,omitempty"`
	Freshness *float64 `json:"freshness,omitempty"`
}

// IsZero reports whether no field is overridden.
func (o WeightOverrides) IsZero() bool {
	return o.Urgency == nil && o.Priority == nil && o.Momentum == nil && o.Context == nil && o.Freshness == nil
}

func (w Weights) sum() float64 {
	return w.Urgency + w.Priority + w.Momentum + w.Context + w.Freshness
}

// Validate checks that no weight is negative and the set sums to 1.0.
func (w Weights) Validate() error {
	if err := w.checkRange(); err != nil {
		return err
	}
	if s := w.sum(); math.Abs(s-1) > 1e-6 {
		return fmt.Errorf("%w: sum %.4f, want 1.0", ErrInvalidWeights, s)
	}
	return nil
}

type namedWeight struct {
	name  string
	value float64
}

func (w Weights) named() []namedWeight {
	return []namedWeight{
		{"urgency", w.Urgency},
		{"priority", w.Priority},
		{"momentum", w.Momentum},
		{"context", w.Context},
		{"freshness", w.Freshness},
	}
}

func (w Weights) checkRange() error {
	for _, nw := range w.named() {
		if nw.value < 0 || math.IsNaN(nw.value) || math.IsInf(nw.value, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidWeights, nw.name, nw.value)
		}
	}
	return nil
}

// Apply merges o over w and renormalizes the result so it sums to 1.0.
func (w Weights) Apply(o WeightOverrides) (Weights, error) {
	merged := w
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&merged.Urgency, o.Urgency)
	set(&merged.Priority, o.Priority)
	set(&merged.Momentum, o.Momentum)
	set(&merged.Context, o.Context)
	set(&merged.Freshness, o.Freshness)

	if err := merged.checkRange(); err != nil {
		return w, err
	}
	s := merged.sum()
	if s <= 0 {
		return w, fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	if math.Abs(s-1) > 1e-9 {
		merged.Urgency /= s
		merged.Priority /= s
		merged.Momentum /= s
		merged.Context /= s
		merged.Freshness /= s
	}
	return merged, nil
}
