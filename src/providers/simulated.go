package providers

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// SimulatedProvider produces a bounded random walk per symbol. Used as the
// lowest-priority fallback in development and in integration tests, so the
// pipeline keeps producing snapshots with no network at all.
// -----------------------------------------------------------------------------

type SimulatedProvider struct {
	SourceConfig models.MSourceConfig

	mu     sync.Mutex
	prices map[string]float64
	rng    *rand.Rand
}

// -----------------------------------------------------------------------------

func NewSimulatedProvider(sourceCfg models.MSourceConfig) *SimulatedProvider {
	h := fnv.New64a()
	h.Write([]byte(sourceCfg.Name))

	return &SimulatedProvider{
		SourceConfig: sourceCfg,
		prices:       make(map[string]float64),
		rng:          rand.New(rand.NewSource(int64(h.Sum64()))),
	}
}

// -----------------------------------------------------------------------------

func (p *SimulatedProvider) Name() string {
	return p.SourceConfig.Name
}

// -----------------------------------------------------------------------------

// FetchTick advances the symbol's walk by one step, at most ±0.5% per call.
func (p *SimulatedProvider) FetchTick(ctx context.Context, symbol string) (models.MTick, error) {
	if err := ctx.Err(); err != nil {
		return models.MTick{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.prices[symbol]
	if !ok {
		price = basePrice(symbol)
	}

	price *= 1 + (p.rng.Float64()-0.5)*0.01
	p.prices[symbol] = price

	return models.MTick{
		Symbol:    symbol,
		Price:     price,
		Volume:    math.Round(p.rng.Float64()*1000) / 10,
		Timestamp: time.Now().Unix(),
		SourceID:  p.Name(),
	}, nil
}

// -----------------------------------------------------------------------------

// basePrice seeds the walk from the symbol name so restarts stay in a
// plausible range per symbol.
func basePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 1000 + float64(h.Sum32()%100000)
}
