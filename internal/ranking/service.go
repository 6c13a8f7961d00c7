package ranking

import (
	"context"

	"github.com/lazypower/cadence/internal/feedcache"
)

// Service serves feeds through a cache. Writers call InvalidateUser after
// changing a user's items; otherwise a feed may be stale for up to one TTL.
type Service struct {
	Pipeline *Pipeline
	Cache    *feedcache.Cache[*FeedResult]
}

// NewService joins a pipeline and a cache.
func NewService(p *Pipeline, c *feedcache.Cache[*FeedResult]) *Service {
	return &Service{Pipeline: p, Cache: c}
}

// GenerateFeed returns userID's feed for opts, from cache when fresh.
func (s *Service) GenerateFeed(ctx context.Context, userID string, opts Options) (*FeedResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	res, cached, err := s.Cache.GetOrCompute(userID, opts.Key(), func() (*FeedResult, error) {
		return s.Pipeline.Rank(ctx, userID, opts)
	})
	if err != nil {
		return nil, err
	}
	if !cached {
		return res, nil
	}
	// Cached results are shared; mark a copy.
	hit := *res
	hit.Metadata.Cached = true
	return &hit, nil
}

// InvalidateUser drops every cached feed for userID.
func (s *Service) InvalidateUser(userID string) int {
	return s.Cache.InvalidateUser(userID)
}

// CacheStats reports cache counters.
func (s *Service) CacheStats() feedcache.Stats {
	return s.Cache.Stats()
}
