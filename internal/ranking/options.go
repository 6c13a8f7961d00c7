package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/store"
)

// Pagination bounds.
const (
	DefaultLimit = 50
	MaxLimit     = store.MaxFetchItems
)

// ErrInvalidOptions is returned for options that cannot be normalized.
var ErrInvalidOptions = errors.New("invalid feed options")

// Filters narrows the items a feed is built from.
type Filters struct {
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Options is a feed request.
type Options struct {
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
	Weights engine.WeightOverrides `json:"weights,omitempty"`
	Filters Filters                `json:"filters,omitempty"`
}

// Normalize fills defaults and clamps pagination. An unknown type filter is
// rejected.
func (o Options) Normalize() (Options, error) {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	o.Filters.Type = strings.ToLower(strings.TrimSpace(o.Filters.Type))
	o.Filters.Status = strings.TrimSpace(o.Filters.Status)
	if o.Filters.Type != "" && !store.ValidTypes[o.Filters.Type] {
		return o, fmt.Errorf("%w: unknown type %q", ErrInvalidOptions, o.Filters.Type)
	}
	return o, nil
}

// Key is the canonical cache key for normalized options.
func (o Options) Key() string {
	b, err := json.Marshal(o)
	if err != nil {
		// Options holds only strings, ints and float pointers.
		panic(fmt.Sprintf("ranking: marshal options: %v", err))
	}
	return string(b)
}

func (o Options) itemFilter() store.ItemFilter {
	return store.ItemFilter{Type: o.Filters.Type, Status: o.Filters.Status}
}
