package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"ecoquiz-service/internal/app"
	"golang.org/x/sync/singleflight"
)

// RecommendationCache caches successful recommendation sets per age with TTL,
// so identical ages do not re-hit the language-model API. Failures are not
// cached; a later call retries the upstream.
type RecommendationCache struct {
	upstream app.Recommender
	ttl      time.Duration
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedRecommendations
}

type cachedRecommendations struct {
	recommendations []string
	expiresAt       time.Time
}

func NewRecommendationCache(upstream app.Recommender, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{
		upstream: upstream,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:    make(map[int]cachedRecommendations),
	}
}

func (c *RecommendationCache) Recommend(ctx context.Context, age int) ([]string, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[age]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.recommendations, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.Itoa(age), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[age]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.recommendations, nil
		}
		c.mu.RUnlock()

		recommendations, err := c.upstream.Recommend(ctx, age)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[age] = cachedRecommendations{
			recommendations: recommendations,
			expiresAt:       now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return recommendations, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (c *RecommendationCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
