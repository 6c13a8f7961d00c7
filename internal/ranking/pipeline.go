// Package ranking builds a user's feed: fetch raw items, parse their
// attributes, score, sort, diversify and paginate.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lazypower/cadence/internal/attr"
	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/store"
	"github.com/lazypower/cadence/internal/usercontext"
)

// Algorithm names the scoring model in feed metadata.
const Algorithm = "weighted-multifactor-v1"

// Defaults for Pipeline fields left zero.
const (
	DefaultFetchTimeout = 5 * time.Second
	DefaultWorkers      = 4
)

// ErrPersistence wraps any failure reading items. No partial feed is
// returned alongside it.
var ErrPersistence = errors.New("persistence failure")

// Source reads a user's raw items. *store.DB implements it.
type Source interface {
	FetchItems(ctx context.Context, userID string, f store.ItemFilter) ([]store.Item, error)
}

// Scorer scores one item. *engine.Engine implements it.
type Scorer interface {
	Score(in engine.Input, w engine.Weights) (engine.ScoredItem, error)
}

// Pagination describes the returned page.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// Metadata describes how a feed was produced.
type Metadata struct {
	TotalItems       int            `json:"total_items"`
	Skipped          int            `json:"skipped"`
	Algorithm        string         `json:"algorithm"`
	Diversifier      string         `json:"diversifier"`
	Weights          engine.Weights `json:"weights"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	ParseStats       ParseStats     `json:"parse_stats"`
	Pagination       Pagination     `json:"pagination"`
	GeneratedAt      time.Time      `json:"generated_at"`
	Cached           bool           `json:"cached"`
}

// FeedResult is one page of a ranked feed. It is not modified once built.
type FeedResult struct {
	Items    []engine.ScoredItem `json:"items"`
	Metadata Metadata            `json:"metadata"`
}

// Pipeline ranks a user's items. Only Source and Scorer are required.
type Pipeline struct {
	Source       Source
	Scorer       Scorer
	Weights      engine.Weights
	Diversifier  Diversifier
	Contexts     *usercontext.Provider
	FetchTimeout time.Duration
	Workers      int
	MaxItems     int // rows read per pass; 0 means store.MaxFetchItems
}

// NewPipeline returns a Pipeline over src scored by eng with its default
// weights and a wall-clock context provider in loc.
func NewPipeline(src Source, eng *engine.Engine, loc *time.Location) *Pipeline {
	return &Pipeline{
		Source:   src,
		Scorer:   eng,
		Weights:  eng.Weights,
		Contexts: usercontext.NewProvider(loc),
	}
}

func (p *Pipeline) weights() engine.Weights {
	if p.Weights == (engine.Weights{}) {
		return engine.DefaultWeights
	}
	return p.Weights
}

func (p *Pipeline) diversifier() Diversifier {
	if p.Diversifier == nil {
		return PassThrough{}
	}
	return p.Diversifier
}

func (p *Pipeline) contexts() *usercontext.Provider {
	if p.Contexts == nil {
		return usercontext.NewProvider(nil)
	}
	return p.Contexts
}

// Rank builds one page of userID's feed.
func (p *Pipeline) Rank(ctx context.Context, userID string, opts Options) (*FeedResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	w, err := p.weights().Apply(opts.Weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	uc := p.contexts().For(userID)
	started := time.Now()

	items, err := p.fetch(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	attrs, outcomes := p.parse(items, uc.Now)

	scored := make([]engine.ScoredItem, 0, len(items))
	skipped := 0
	for i, it := range items {
		s, err := p.Scorer.Score(engine.Input{Item: it, Attrs: attrs[i], Context: uc}, w)
		if err != nil {
			log.Printf("ranking: skipping item %s for user %s: %v", it.ID, userID, err)
			skipped++
			continue
		}
		scored = append(scored, s)
	}

	sortScored(scored)
	div := p.diversifier()
	ranked := div.Diversify(scored)

	page, hasMore := paginate(ranked, opts.Offset, opts.Limit)
	return &FeedResult{
		Items: page,
		Metadata: Metadata{
			TotalItems:       len(ranked),
			Skipped:          skipped,
			Algorithm:        Algorithm,
			Diversifier:      div.Name(),
			Weights:          w,
			ProcessingTimeMs: time.Since(started).Milliseconds(),
			ParseStats:       newParseStats(outcomes),
			Pagination:       Pagination{Limit: opts.Limit, Offset: opts.Offset, HasMore: hasMore},
			GeneratedAt:      uc.Now,
		},
	}, nil
}

func (p *Pipeline) fetch(ctx context.Context, userID string, opts Options) ([]store.Item, error) {
	timeout := p.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	f := opts.itemFilter()
	f.Limit = p.MaxItems
	items, err := p.Source.FetchItems(fetchCtx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return items, nil
}

// parse runs the attribute parsers over items in parallel. Results are
// written by index so order matches items.
func (p *Pipeline) parse(items []store.Item, now time.Time) ([]attr.Attributes, []attr.Outcome) {
	attrs := make([]attr.Attributes, len(items))
	outcomes := make([]attr.Outcome, len(items))

	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, it := range items {
		g.Go(func() error {
			attrs[i], outcomes[i] = attr.Parse(attr.Input{
				Frequency:    it.Frequency,
				Priority:     it.Priority,
				RequiredTime: it.RequiredTime,
				Due:          it.Due,
			}, now)
			return nil
		})
	}
	_ = g.Wait() // parsers never fail
	return attrs, outcomes
}

// sortScored orders by total descending, then ID descending.
func sortScored(items []engine.ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Total != items[j].Total {
			return items[i].Total > items[j].Total
		}
		return items[i].Item.ID > items[j].Item.ID
	})
}

func paginate(items []engine.ScoredItem, offset, limit int) ([]engine.ScoredItem, bool) {
	total := len(items)
	start := min(offset, total)
	end := start + min(limit, total-start)
	page := make([]engine.ScoredItem, end-start)
	copy(page, items[start:end])
	return page, end < total
}
