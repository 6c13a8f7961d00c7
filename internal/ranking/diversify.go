package ranking

import "github.com/lazypower/cadence/internal/engine"

// Diversifier reorders a sorted feed before pagination. Implementations must
// return a permutation of their input.
type Diversifier interface {
	Name() string
	Diversify(items []engine.ScoredItem) []engine.ScoredItem
}

// PassThrough keeps the score order unchanged.
type PassThrough struct{}

func (PassThrough) Name() string { return "none" }

func (PassThrough) Diversify(items []engine.ScoredItem) []engine.ScoredItem {
	return items
}
