package risk

import (
	"testing"

	"crypto-signals/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func testConfig() models.MRiskConfig {
	return models.MRiskConfig{
		AccountEquity:   10000,
		RiskPerTrade:    0.01,
		ATRMultiplier:   1.5,
		RewardMultiple:  2.0,
		MaxPositionFrac: 0.02,
	}
}

func signal(kind string) models.MSignal {
	return models.MSignal{Kind: kind, Strength: models.StrengthModerate}
}

// -----------------------------------------------------------------------------

func TestDeriveBuyLevels(t *testing.T) {
	m := NewManager(testConfig())

	params := m.Derive(signal(models.SignalBuy), models.MIndicators{ATR: 10}, 1000)

	// stop distance 15, take distance 30
	assert.InDelta(t, 985.0, params.StopLoss, 1e-9)
	assert.InDelta(t, 1030.0, params.TakeProfit, 1e-9)
	assert.Less(t, params.StopLoss, 1000.0)
	assert.Greater(t, params.TakeProfit, 1000.0)
	assert.False(t, params.ZeroRisk)
	assert.Equal(t, 2.0, params.RiskRewardRatio)
}

// -----------------------------------------------------------------------------

func TestDeriveSellLevelsMirrored(t *testing.T) {
	m := NewManager(testConfig())

	params := m.Derive(signal(models.SignalSell), models.MIndicators{ATR: 10}, 1000)

	assert.InDelta(t, 1015.0, params.StopLoss, 1e-9)
	assert.InDelta(t, 970.0, params.TakeProfit, 1e-9)
	assert.Greater(t, params.StopLoss, 1000.0)
	assert.Less(t, params.TakeProfit, 1000.0)
	assert.Greater(t, params.PositionSize, 0.0)
}

// -----------------------------------------------------------------------------

func TestDeriveHoldSizesNothing(t *testing.T) {
	m := NewManager(testConfig())

	params := m.Derive(signal(models.SignalHold), models.MIndicators{ATR: 10}, 1000)

	assert.Zero(t, params.PositionSize)
	assert.Zero(t, params.PositionValue)
	// Levels are still populated for display
	assert.NotZero(t, params.StopLoss)
	assert.NotZero(t, params.TakeProfit)
}

// -----------------------------------------------------------------------------

func TestDeriveSizeRespectsRiskBudget(t *testing.T) {
	m := NewManager(testConfig())

	// risk amount 100, stop distance 150 -> uncapped size 0.6667, but the
	// exposure cap is 200/1000 = 0.2
	params := m.Derive(signal(models.SignalBuy), models.MIndicators{ATR: 100}, 1000)

	assert.InDelta(t, 0.2, params.PositionSize, 1e-9)
	assert.InDelta(t, 200.0, params.PositionValue, 1e-9)
}

// -----------------------------------------------------------------------------

func TestDeriveUncappedSize(t *testing.T) {
	m := NewManager(testConfig())

	// With the exposure cap lifted, size comes straight from the risk
	// budget: 100 / 15
	cfg := testConfig()
	cfg.MaxPositionFrac = 1.0
	m = NewManager(cfg)

	params := m.Derive(signal(models.SignalBuy), models.MIndicators{ATR: 10}, 1000)

	assert.InDelta(t, 100.0/15.0, params.PositionSize, 1e-9)
	assert.InDelta(t, 1.0, params.RiskPercentage, 1e-9)
}

// -----------------------------------------------------------------------------

func TestDeriveZeroATRFlagsZeroRisk(t *testing.T) {
	m := NewManager(testConfig())

	params := m.Derive(signal(models.SignalBuy), models.MIndicators{ATR: 0}, 1000)

	assert.True(t, params.ZeroRisk)
	assert.Zero(t, params.PositionSize)
	assert.InDelta(t, 1000.0, params.StopLoss, 1e-9)
	assert.InDelta(t, 1000.0, params.TakeProfit, 1e-9)
}
