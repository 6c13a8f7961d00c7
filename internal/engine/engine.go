// Package engine scores parsed items on five independent signals and
// combines them into a single weighted total.
package engine

import (
	"fmt"

	"github.com/lazypower/cadence/internal/attr"
	"github.com/lazypower/cadence/internal/store"
)

// Scores holds the five sub-scores, each in [0, 100].
type Scores struct {
	Urgency   float64 `json:"urgency"`
	Priority  float64 `json:"priority"`
	Momentum  float64 `json:"momentum"`
	Context   float64 `json:"context"`
	Freshness float64 `json:"freshness"`
}

// Weighted combines the sub-scores under w.
func (s Scores) Weighted(w Weights) float64 {
	return s.Urgency*w.Urgency +
		s.Priority*w.Priority +
		s.Momentum*w.Momentum +
		s.Context*w.Context +
		s.Freshness*w.Freshness
}

// ScoredItem is an item with its parsed attributes and scores. It is built
// once per ranking pass and not modified afterwards.
type ScoredItem struct {
	Item       store.Item      `json:"item"`
	Attributes attr.Attributes `json:"attributes"`
	Scores     Scores          `json:"scores"`
	Total      float64         `json:"total_score"`
}

// Signal computes one sub-score.
type Signal func(Input) float64

// Engine scores items under a default weight set.
type Engine struct {
	Weights Weights

	urgency, priority, momentum, context, freshness Signal
}

// New creates an Engine with the given default weights.
func New(w Weights) *Engine {
	return &Engine{
		Weights:   w,
		urgency:   Urgency,
		priority:  Priority,
		momentum:  Momentum,
		context:   Context,
		freshness: Freshness,
	}
}

// Score computes sub-scores and the weighted total for one item. A panic
// inside any signal is returned as an error so a caller can skip the item.
func (e *Engine) Score(in Input, w Weights) (scored ScoredItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("score item %s: %v", in.Item.ID, r)
		}
	}()

	s := Scores{
		Urgency:   attr.Clamp(e.urgency(in)),
		Priority:  attr.Clamp(e.priority(in)),
		Momentum:  attr.Clamp(e.momentum(in)),
		Context:   attr.Clamp(e.context(in)),
		Freshness: attr.Clamp(e.freshness(in)),
	}
	return ScoredItem{
		Item:       in.Item,
		Attributes: in.Attrs,
		Scores:     s,
		Total:      s.Weighted(w),
	}, nil
}
