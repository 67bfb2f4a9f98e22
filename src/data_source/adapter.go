package datasource

import (
	"context"
	"sort"
	"sync"
	"time"

	"crypto-signals/src/helpers"
	"crypto-signals/src/interfaces"
	"crypto-signals/src/logger"
	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// SourceAdapter reconciles ticks from an ordered, ranked set of providers.
// Providers are attempted in rank order; the first one that completes within
// the poll timeout with a valid positive price wins the cycle. A provider
// exceeding the failure threshold is demoted to lowest priority until it
// next succeeds — no manual reset required.
//
// The adapter mutates SourceHealth only; it never touches the history store.
// -----------------------------------------------------------------------------

type SourceAdapter struct {
	providers   map[string]interfaces.ITickProvider
	health      map[string]*models.MSourceHealth
	pollTimeout time.Duration
	threshold   int
	Logger      *logger.Logger
	mu          sync.Mutex

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewSourceAdapter(cfg models.MAdapterConfig, log *logger.Logger) *SourceAdapter {
	return &SourceAdapter{
		providers:   make(map[string]interfaces.ITickProvider),
		health:      make(map[string]*models.MSourceHealth),
		pollTimeout: time.Duration(cfg.PollTimeoutMs) * time.Millisecond,
		threshold:   cfg.FailureThreshold,
		Logger:      log,
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------

// AddProvider registers a provider under its static priority rank.
func (a *SourceAdapter) AddProvider(p interfaces.ITickProvider, rank int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := p.Name()
	a.providers[name] = p
	a.health[name] = &models.MSourceHealth{
		SourceID:     name,
		PriorityRank: rank,
	}
	a.Logger.Info("Registered provider %s at rank %d", name, rank)
}

// -----------------------------------------------------------------------------

// RemoveProvider drops a provider and its health record.
func (a *SourceAdapter) RemoveProvider(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.providers, name)
	delete(a.health, name)
}

// -----------------------------------------------------------------------------

// Poll attempts providers in effective priority order and returns the first
// valid tick. When every provider fails it returns a SourceUnavailable
// error; the caller decides whether history allows a stale fallback.
func (a *SourceAdapter) Poll(ctx context.Context, symbol string) (models.MTick, error) {
	ordered := a.orderedProviders()

	var lastErr error
	for _, p := range ordered {
		tick, err := a.pollOne(ctx, p, symbol)
		if err == nil && tick.Price > 0 {
			a.recordSuccess(p.Name())
			return tick, nil
		}

		if err == nil {
			err = helpers.NewSourceUnavailable(symbol, nil)
		}
		lastErr = err
		a.recordFailure(p.Name(), err)

		if ctx.Err() != nil {
			break
		}
	}

	return models.MTick{}, helpers.NewSourceUnavailable(symbol, lastErr)
}

// -----------------------------------------------------------------------------

// pollOne bounds a single provider call with the poll timeout, even if the
// provider itself ignores context cancellation.
func (a *SourceAdapter) pollOne(ctx context.Context, p interfaces.ITickProvider, symbol string) (models.MTick, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.pollTimeout)
	defer cancel()

	type result struct {
		tick models.MTick
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		tick, err := p.FetchTick(callCtx, symbol)
		ch <- result{tick, err}
	}()

	select {
	case r := <-ch:
		return r.tick, r.err
	case <-callCtx.Done():
		return models.MTick{}, callCtx.Err()
	}
}

// -----------------------------------------------------------------------------

// orderedProviders returns providers sorted by rank, with demoted providers
// moved behind every healthy one.
func (a *SourceAdapter) orderedProviders() []interfaces.ITickProvider {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.providers))
	for name := range a.providers {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		hi, hj := a.health[names[i]], a.health[names[j]]
		if hi.Demoted != hj.Demoted {
			return !hi.Demoted
		}
		return hi.PriorityRank < hj.PriorityRank
	})

	ordered := make([]interfaces.ITickProvider, len(names))
	for i, name := range names {
		ordered[i] = a.providers[name]
	}
	return ordered
}

// -----------------------------------------------------------------------------

func (a *SourceAdapter) recordSuccess(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, ok := a.health[name]
	if !ok {
		return
	}

	if h.Demoted {
		a.Logger.Info("Provider %s recovered, restoring rank %d", name, h.PriorityRank)
	}
	h.ConsecutiveFailures = 0
	h.Demoted = false
	h.LastSuccessAt = a.now()
}

// -----------------------------------------------------------------------------

func (a *SourceAdapter) recordFailure(name string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, ok := a.health[name]
	if !ok {
		return
	}

	h.ConsecutiveFailures++
	if !h.Demoted && h.ConsecutiveFailures >= a.threshold {
		h.Demoted = true
		a.Logger.Warning("Provider %s demoted after %d consecutive failures: %v",
			name, h.ConsecutiveFailures, err)
	}
}

// -----------------------------------------------------------------------------

// Health returns a copy of every provider's health record, ordered by rank.
func (a *SourceAdapter) Health() []models.MSourceHealth {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.MSourceHealth, 0, len(a.health))
	for _, h := range a.health {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriorityRank < out[j].PriorityRank })
	return out
}
