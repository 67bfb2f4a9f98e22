package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto-signals/src/helpers"
	"crypto-signals/src/logger"
	"crypto-signals/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// scriptedScorer returns canned readings or errors in sequence and counts
// calls.
type scriptedScorer struct {
	calls   int
	score   float64
	failing bool
	asOf    time.Time
}

func (s *scriptedScorer) Score(ctx context.Context, symbol string) (models.MSentimentReading, error) {
	s.calls++
	if s.failing {
		return models.MSentimentReading{}, errors.New("feed down")
	}
	return models.MSentimentReading{
		Score: s.score,
		Label: models.SentimentLabel(s.score),
		AsOf:  s.asOf,
	}, nil
}

// -----------------------------------------------------------------------------

func newTestCache(scorer *scriptedScorer, at time.Time) *Cache {
	c := NewCache(scorer, models.MSentimentConfig{
		TTLSeconds:        60,
		StalenessCeilingS: 600,
		TimeoutMs:         2000,
	}, logger.NewLogger("ERROR", "test"))
	c.now = func() time.Time { return at }
	return c
}

// -----------------------------------------------------------------------------

func TestCacheServesFreshEntryWithoutRefresh(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := &scriptedScorer{score: 80, asOf: t0}
	cache := newTestCache(scorer, t0)

	first, err := cache.Get(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 80.0, first.Score)
	assert.Equal(t, 1, scorer.calls)

	// Within the TTL the scorer is not consulted again
	second, err := cache.Get(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, scorer.calls)
}

// -----------------------------------------------------------------------------

func TestCacheRefreshesAfterTTL(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := &scriptedScorer{score: 80, asOf: t0}
	cache := newTestCache(scorer, t0)

	_, err := cache.Get(context.Background(), "BTC-USD")
	require.NoError(t, err)

	// Jump past the TTL; the entry is replaced, not mutated
	t1 := t0.Add(2 * time.Minute)
	cache.now = func() time.Time { return t1 }
	scorer.score = 40
	scorer.asOf = t1

	reading, err := cache.Get(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 40.0, reading.Score)
	assert.Equal(t, 2, scorer.calls)
	assert.Equal(t, t1.Add(time.Minute), reading.TTLExpiresAt)
}

// -----------------------------------------------------------------------------

func TestCacheServesLastKnownOnRefreshFailure(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := &scriptedScorer{score: 80, asOf: t0}
	cache := newTestCache(scorer, t0)

	_, err := cache.Get(context.Background(), "BTC-USD")
	require.NoError(t, err)

	// TTL expired, scorer down, entry still under the staleness ceiling
	t1 := t0.Add(5 * time.Minute)
	cache.now = func() time.Time { return t1 }
	scorer.failing = true

	reading, err := cache.Get(context.Background(), "BTC-USD")
	assert.Error(t, err)
	assert.Equal(t, 80.0, reading.Score)

	var pErr *helpers.SentimentUnavailableError
	assert.ErrorAs(t, err, &pErr)
}

// -----------------------------------------------------------------------------

func TestCacheSubstitutesNeutralPastCeiling(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := &scriptedScorer{score: 80, asOf: t0}
	cache := newTestCache(scorer, t0)

	_, err := cache.Get(context.Background(), "BTC-USD")
	require.NoError(t, err)

	// Beyond the ceiling the dead entry is discarded, not served
	t1 := t0.Add(20 * time.Minute)
	cache.now = func() time.Time { return t1 }
	scorer.failing = true

	reading, err := cache.Get(context.Background(), "BTC-USD")
	assert.Error(t, err)
	assert.Equal(t, 50.0, reading.Score)
	assert.Equal(t, models.SentimentNeutral, reading.Label)
}

// -----------------------------------------------------------------------------

func TestCacheNeutralOnColdFailure(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := &scriptedScorer{failing: true}
	cache := newTestCache(scorer, t0)

	reading, err := cache.Get(context.Background(), "BTC-USD")
	assert.Error(t, err)
	assert.Equal(t, 50.0, reading.Score)
}

// -----------------------------------------------------------------------------

func TestHeadlineScorerDeterministic(t *testing.T) {
	scorer := NewHeadlineScorer(DefaultFeed())

	first, err := scorer.Score(context.Background(), "BTC-USD")
	require.NoError(t, err)
	second, err := scorer.Score(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Label, second.Label)
}

// -----------------------------------------------------------------------------

func TestHeadlineScorerPolarity(t *testing.T) {
	bullish := NewHeadlineScorer(&StaticFeed{Items: []string{
		"Record rally as institutional adoption grows",
	}})
	bearish := NewHeadlineScorer(&StaticFeed{Items: []string{
		"Market crash triggers panic and mass liquidation",
	}})

	up, err := bullish.Score(context.Background(), "BTC-USD")
	require.NoError(t, err)
	down, err := bearish.Score(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.Greater(t, up.Score, 50.0)
	assert.Less(t, down.Score, 50.0)
}

// -----------------------------------------------------------------------------

func TestSentimentLabelBuckets(t *testing.T) {
	assert.Equal(t, models.SentimentVeryBearish, models.SentimentLabel(10))
	assert.Equal(t, models.SentimentBearish, models.SentimentLabel(35))
	assert.Equal(t, models.SentimentNeutral, models.SentimentLabel(50))
	assert.Equal(t, models.SentimentBullish, models.SentimentLabel(65))
	assert.Equal(t, models.SentimentVeryBullish, models.SentimentLabel(85))
}
