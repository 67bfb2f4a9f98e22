package sentiment

import (
	"context"
	"sync"
	"time"

	"crypto-signals/src/helpers"
	"crypto-signals/src/interfaces"
	"crypto-signals/src/logger"
	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// Cache wraps the external sentiment scorer with a TTL. The aggregation cycle
// is never blocked beyond the configured timeout: a slow scorer counts as a
// failed refresh.
// -----------------------------------------------------------------------------

type Cache struct {
	Scorer  interfaces.ISentimentScorer
	Logger  *logger.Logger
	TTL     time.Duration
	Ceiling time.Duration // hard staleness ceiling for serving a dead entry
	Timeout time.Duration

	entries map[string]models.MSentimentReading
	mu      sync.Mutex

	now func() time.Time // injectable for tests
}

// -----------------------------------------------------------------------------

func NewCache(scorer interfaces.ISentimentScorer, cfg models.MSentimentConfig, log *logger.Logger) *Cache {
	return &Cache{
		Scorer:  scorer,
		Logger:  log,
		TTL:     time.Duration(cfg.TTLSeconds) * time.Second,
		Ceiling: time.Duration(cfg.StalenessCeilingS) * time.Second,
		Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		entries: make(map[string]models.MSentimentReading),
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// Get returns the sentiment reading for a symbol. Fresh cache entries are
// served directly; expired entries trigger a bounded refresh. On refresh
// failure the last known reading is served unless it is older than the
// staleness ceiling, in which case the neutral default is substituted.
func (c *Cache) Get(ctx context.Context, symbol string) (models.MSentimentReading, error) {
	now := c.now()

	c.mu.Lock()
	cached, haveCached := c.entries[symbol]
	c.mu.Unlock()

	if haveCached && now.Before(cached.TTLExpiresAt) {
		return cached, nil
	}

	refreshCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	reading, err := c.Scorer.Score(refreshCtx, symbol)
	if err == nil {
		reading.TTLExpiresAt = now.Add(c.TTL)
		if reading.AsOf.IsZero() {
			reading.AsOf = now
		}
		// Replace wholesale, never mutate in place.
		c.mu.Lock()
		c.entries[symbol] = reading
		c.mu.Unlock()
		return reading, nil
	}

	if haveCached && now.Sub(cached.AsOf) <= c.Ceiling {
		c.Logger.Warning("Sentiment refresh failed for %s, serving last known reading: %v", symbol, err)
		return cached, helpers.NewSentimentUnavailable(symbol, err)
	}

	c.Logger.Warning("Sentiment refresh failed for %s with no usable cache, serving neutral default: %v", symbol, err)
	return models.NeutralSentiment(now, c.TTL), helpers.NewSentimentUnavailable(symbol, err)
}
