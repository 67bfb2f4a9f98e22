package datasource

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

// fakeProvider returns a fixed price or error and counts calls.
type fakeProvider struct {
	name    string
	price   float64
	err     error
	calls   int
	failFor int // fail this many calls, then succeed
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchTick(ctx context.Context, symbol string) (models.MTick, error) {
	p.calls++
	if p.err != nil {
		return models.MTick{}, p.err
	}
	if p.failFor > 0 {
		p.failFor--
		return models.MTick{}, errors.New("transient failure")
	}
	return models.MTick{
		Symbol:    symbol,
		Price:     p.price,
		Timestamp: time.Now().Unix(),
		SourceID:  p.name,
	}, nil
}

// -----------------------------------------------------------------------------

func newTestAdapter() *SourceAdapter {
	return NewSourceAdapter(models.MAdapterConfig{
		PollTimeoutMs:    500,
		FailureThreshold: 3,
	}, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestPollPrefersHighestRank(t *testing.T) {
	a := newTestAdapter()
	primary := &fakeProvider{name: "primary", price: 100}
	backup := &fakeProvider{name: "backup", price: 200}
	a.AddProvider(backup, 2)
	a.AddProvider(primary, 1)

	tick, err := a.Poll(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.Equal(t, 100.0, tick.Price)
	assert.Equal(t, "primary", tick.SourceID)
	assert.Zero(t, backup.calls)
}

// -----------------------------------------------------------------------------

func TestPollFallsBackOnFailure(t *testing.T) {
	a := newTestAdapter()
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	backup := &fakeProvider{name: "backup", price: 200}
	a.AddProvider(primary, 1)
	a.AddProvider(backup, 2)

	tick, err := a.Poll(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.Equal(t, "backup", tick.SourceID)
	assert.Equal(t, 1, primary.calls)
}

// -----------------------------------------------------------------------------

func TestPollRejectsNonPositivePrice(t *testing.T) {
	a := newTestAdapter()
	primary := &fakeProvider{name: "primary", price: 0}
	backup := &fakeProvider{name: "backup", price: 200}
	a.AddProvider(primary, 1)
	a.AddProvider(backup, 2)

	tick, err := a.Poll(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "backup", tick.SourceID)
}

// -----------------------------------------------------------------------------

func TestPollAllProvidersFailing(t *testing.T) {
	a := newTestAdapter()
	a.AddProvider(&fakeProvider{name: "primary", err: errors.New("down")}, 1)
	a.AddProvider(&fakeProvider{name: "backup", err: errors.New("also down")}, 2)

	_, err := a.Poll(context.Background(), "BTC-USD")
	require.Error(t, err)
	assert.True(t, helpers.IsSourceUnavailable(err))
}

// -----------------------------------------------------------------------------

func TestDemotionAfterThreshold(t *testing.T) {
	a := newTestAdapter()
	flaky := &fakeProvider{name: "flaky", err: errors.New("down")}
	stable := &fakeProvider{name: "stable", price: 200}
	a.AddProvider(flaky, 1)
	a.AddProvider(stable, 2)

	// Three consecutive failures hit the threshold
	for i := 0; i < 3; i++ {
		_, err := a.Poll(context.Background(), "BTC-USD")
		require.NoError(t, err)
	}

	health := a.Health()
	require.Len(t, health, 2)
	assert.Equal(t, "flaky", health[0].SourceID)
	assert.True(t, health[0].Demoted)
	assert.Equal(t, 3, health[0].ConsecutiveFailures)

	// Demoted provider is now attempted last: the stable one answers
	// without flaky being called at all
	before := flaky.calls
	tick, err := a.Poll(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "stable", tick.SourceID)
	assert.Equal(t, before, flaky.calls)
}

// -----------------------------------------------------------------------------

func TestDemotedProviderSelfHeals(t *testing.T) {
	a := newTestAdapter()
	flaky := &fakeProvider{name: "flaky", price: 100, failFor: 3}
	stable := &fakeProvider{name: "stable", err: errors.New("down")}
	a.AddProvider(flaky, 1)
	a.AddProvider(stable, 2)

	// Exhaust flaky into demotion; every poll fails since stable is down
	for i := 0; i < 3; i++ {
		_, err := a.Poll(context.Background(), "BTC-USD")
		require.Error(t, err)
	}
	assert.True(t, a.Health()[0].Demoted)

	// flaky now works again: demotion never removes a provider from the
	// rotation, and a success restores the original rank
	tick, err := a.Poll(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "flaky", tick.SourceID)

	health := a.Health()
	assert.False(t, health[0].Demoted)
	assert.Zero(t, health[0].ConsecutiveFailures)
	assert.False(t, health[0].LastSuccessAt.IsZero())
}

// -----------------------------------------------------------------------------

func TestPollTimeoutBoundsSlowProvider(t *testing.T) {
	a := NewSourceAdapter(models.MAdapterConfig{
		PollTimeoutMs:    50,
		FailureThreshold: 3,
	}, logger.NewLogger("ERROR", "test"))

	a.AddProvider(&slowProvider{name: "slow", delay: time.Second}, 1)
	a.AddProvider(&fakeProvider{name: "fast", price: 100}, 2)

	start := time.Now()
	tick, err := a.Poll(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.Equal(t, "fast", tick.SourceID)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

// slowProvider ignores context cancellation on purpose.
type slowProvider struct {
	name  string
	delay time.Duration
}

func (p *slowProvider) Name() string { return p.name }

func (p *slowProvider) FetchTick(ctx context.Context, symbol string) (models.MTick, error) {
	time.Sleep(p.delay)
	return models.MTick{Symbol: symbol, Price: 1, SourceID: p.name}, nil
}
