package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vac-rating-engine/internal/domain"
)

// resultCache memoizes assessment results keyed by a digest of the
// canonical request JSON. Assessments are pure functions of their input,
// so a cached result is always identical to a recomputed one.
type resultCache struct {
	entries *lru.Cache

	mu     sync.RWMutex
	hits   uint64
	misses uint64
}

// cacheStats is a point-in-time snapshot for the health endpoint.
type cacheStats struct {
	Entries uint64 `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func newResultCache(maxEntries int) (*resultCache, error) {
	entries, err := lru.New(maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &resultCache{entries: entries}, nil
}

// key derives the cache key from the request's canonical JSON encoding.
// encoding/json renders map-free structs deterministically, so equal
// requests always digest to the same key.
func (c *resultCache) key(req *domain.AssessmentRequest) (string, error) {
	canonical, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize request: %w", err)
	}
	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

func (c *resultCache) get(key string) (*domain.AssessmentResult, bool) {
	value, ok := c.entries.Get(key)
	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if !ok {
		return nil, false
	}
	return value.(*domain.AssessmentResult), true
}

func (c *resultCache) put(key string, result *domain.AssessmentResult) {
	c.entries.Add(key, result)
}

func (c *resultCache) stats() cacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cacheStats{
		Entries: uint64(c.entries.Len()),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
