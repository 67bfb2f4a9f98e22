package aggregator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"crypto-signals/src/analysis"
	datasource "crypto-signals/src/data_source"
	"crypto-signals/src/helpers"
	"crypto-signals/src/interfaces"
	"crypto-signals/src/logger"
	"crypto-signals/src/models"
	"crypto-signals/src/risk"
	"crypto-signals/src/sentiment"
	"crypto-signals/src/strategy"
	"crypto-signals/src/utils"
)

// -----------------------------------------------------------------------------
// Cycle states, per symbol.
// -----------------------------------------------------------------------------

const (
	StateIdle       = "IDLE"
	StateCollecting = "COLLECTING"
	StateComputing  = "COMPUTING"
	StatePublished  = "PUBLISHED"
)

// -----------------------------------------------------------------------------
// Aggregator drives the per-symbol aggregation cycle on a fixed cadence:
// IDLE -> COLLECTING (poll + sentiment, concurrent, each bounded) ->
// COMPUTING (indicators, signal, risk) -> PUBLISHED (hand to broadcaster).
//
// Cycles for different symbols run independently. A cycle that exceeds the
// cycle deadline is abandoned and logged; the next scheduled tick is the
// retry. A cycle with no obtainable price publishes nothing: the previous
// snapshot stays latest, marked stale when history exists.
// -----------------------------------------------------------------------------

type Aggregator struct {
	Adapter   *datasource.SourceAdapter
	History   *utils.HistoryStore
	Engine    *analysis.Engine
	Sentiment *sentiment.Cache
	Combiner  *strategy.Combiner
	Risk      *risk.Manager

	Broadcaster interfaces.IBroadcaster
	Cache       interfaces.ICacheStore // optional durability, may be nil
	Archive     interfaces.IArchive    // optional durability, may be nil

	Config  models.MAggregatorConfig
	Symbols []string
	Logger  *logger.Logger

	HistoryMaxEntries int // list trim length for the cache substrate

	mu        sync.RWMutex
	sequences map[string]uint64
	latest    map[string]models.MSnapshot
	states    map[string]string

	now func() time.Time
}

// -----------------------------------------------------------------------------

func New(
	adapter *datasource.SourceAdapter,
	history *utils.HistoryStore,
	engine *analysis.Engine,
	sentimentCache *sentiment.Cache,
	combiner *strategy.Combiner,
	riskManager *risk.Manager,
	broadcaster interfaces.IBroadcaster,
	cfg models.MAggregatorConfig,
	symbols []string,
	log *logger.Logger,
) *Aggregator {
	return &Aggregator{
		Adapter:     adapter,
		History:     history,
		Engine:      engine,
		Sentiment:   sentimentCache,
		Combiner:    combiner,
		Risk:        riskManager,
		Broadcaster: broadcaster,
		Config:      cfg,
		Symbols:     symbols,
		Logger:      log,
		sequences:   make(map[string]uint64),
		latest:      make(map[string]models.MSnapshot),
		states:      make(map[string]string),
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------

// Run drives aggregation cycles until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	interval := time.Duration(a.Config.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.Logger.Info("Aggregation loop started: %d symbols every %v", len(a.Symbols), interval)

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info("Aggregation loop stopped")
			return
		case <-ticker.C:
			a.runTick(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// runTick launches one independent cycle per symbol and waits for all of
// them, each bounded by the cycle deadline.
func (a *Aggregator) runTick(ctx context.Context) {
	deadline := time.Duration(a.Config.CycleTimeoutSeconds) * time.Second

	var wg sync.WaitGroup
	for _, symbol := range a.Symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()

			cycleCtx, cancel := context.WithTimeout(ctx, deadline)
			defer cancel()

			if _, err := a.Cycle(cycleCtx, sym); err != nil {
				a.Logger.Warning("Cycle skipped for %s: %v", sym, err)
			}
		}(symbol)
	}
	wg.Wait()
}

// -----------------------------------------------------------------------------

// Cycle executes one aggregation pass for a symbol and returns the published
// snapshot. An error means no snapshot was published this tick.
func (a *Aggregator) Cycle(ctx context.Context, symbol string) (models.MSnapshot, error) {
	a.setState(symbol, StateCollecting)
	defer a.setState(symbol, StateIdle)

	// Poll and sentiment refresh are independent reads; run them
	// concurrently and block on the slower of the two. Each is bounded by
	// its own timeout so one broken collaborator cannot stall the cycle.
	var (
		wg       sync.WaitGroup
		tick     models.MTick
		pollErr  error
		reading  models.MSentimentReading
		sentWarn error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		tick, pollErr = a.Adapter.Poll(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		reading, sentWarn = a.Sentiment.Get(ctx, symbol)
	}()
	wg.Wait()

	if sentWarn != nil {
		a.Logger.Debug("Sentiment degraded for %s: %v", symbol, sentWarn)
	}

	if pollErr != nil {
		// No fresh tick this cycle. Nothing new is sequenced or broadcast:
		// the previously published snapshot remains the latest, flagged
		// stale on the query surface. With no history at all the cycle is
		// skipped outright.
		if _, ok := a.History.Tail(symbol); !ok {
			return models.MSnapshot{}, pollErr
		}
		a.markStale(symbol)
		return models.MSnapshot{}, helpers.NewStale(symbol)
	}
	a.History.Append(symbol, tick)

	if err := ctx.Err(); err != nil {
		return models.MSnapshot{}, err
	}

	a.setState(symbol, StateComputing)

	now := a.now().UTC()
	window := a.History.Window(symbol, a.History.Capacity())

	indicators := a.Engine.Compute(window, now)
	signal := a.Combiner.Combine(indicators, reading)
	riskParams := a.Risk.Derive(signal, indicators, tick.Price)

	snap := models.MSnapshot{
		Symbol:         symbol,
		Price:          tick.Price,
		Indicators:     indicators,
		Sentiment:      reading,
		Signal:         signal,
		Risk:           riskParams,
		SequenceNumber: a.nextSequence(symbol),
		GeneratedAt:    now,
	}

	a.setState(symbol, StatePublished)

	a.mu.Lock()
	a.latest[symbol] = snap
	a.mu.Unlock()

	if a.Broadcaster != nil {
		a.Broadcaster.Publish(snap)
	}
	a.persist(ctx, snap)

	return snap, nil
}

// -----------------------------------------------------------------------------

// persist writes the snapshot to the optional durability collaborators.
// Failures here degrade to log lines; durability is never required for
// correctness.
func (a *Aggregator) persist(ctx context.Context, snap models.MSnapshot) {
	if a.Cache != nil {
		payload, err := json.Marshal(snap)
		if err == nil {
			if err := a.Cache.Set(ctx, "snapshot:"+snap.Symbol, payload); err != nil {
				a.Logger.Warning("Cache write failed for %s: %v", snap.Symbol, err)
			}
			maxLen := a.HistoryMaxEntries
			if maxLen <= 0 {
				maxLen = 1000
			}
			if err := a.Cache.AppendList(ctx, "history:"+snap.Symbol, payload, maxLen); err != nil {
				a.Logger.Warning("Cache history append failed for %s: %v", snap.Symbol, err)
			}
		}
	}

	if a.Archive != nil {
		if err := a.Archive.SaveSnapshot(snap); err != nil {
			a.Logger.Warning("Archive write failed for %s: %v", snap.Symbol, err)
		}
	}
}

// -----------------------------------------------------------------------------

// markStale flags the retained latest snapshot for a symbol. Queries keep
// serving the last published snapshot; only its staleness bit changes.
func (a *Aggregator) markStale(symbol string) {
	a.mu.Lock()
	if snap, ok := a.latest[symbol]; ok {
		snap.Stale = true
		a.latest[symbol] = snap
	}
	a.mu.Unlock()

	if a.Broadcaster != nil {
		a.Broadcaster.MarkStale(symbol)
	}
}

// -----------------------------------------------------------------------------

// nextSequence increments the per-symbol sequence. Strictly increasing, no
// repeats.
func (a *Aggregator) nextSequence(symbol string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sequences[symbol]++
	return a.sequences[symbol]
}

// -----------------------------------------------------------------------------

// Latest returns the most recently published snapshot for a symbol, or
// false when none has been published yet.
func (a *Aggregator) Latest(symbol string) (models.MSnapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap, ok := a.latest[symbol]
	return snap, ok
}

// -----------------------------------------------------------------------------

// State reports the current cycle state for a symbol.
func (a *Aggregator) State(symbol string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if s, ok := a.states[symbol]; ok {
		return s
	}
	return StateIdle
}

func (a *Aggregator) setState(symbol, state string) {
	a.mu.Lock()
	a.states[symbol] = state
	a.mu.Unlock()
}
