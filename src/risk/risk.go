package risk

import (
	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// Manager derives position size and protective levels from the signal, ATR
// and the account risk policy (fixed risk fraction per trade).
// -----------------------------------------------------------------------------

type Manager struct {
	Config models.MRiskConfig
}

// -----------------------------------------------------------------------------

func NewManager(cfg models.MRiskConfig) *Manager {
	return &Manager{Config: cfg}
}

// -----------------------------------------------------------------------------

// Derive computes risk parameters for one cycle. Stops sit below price for
// BUY and above for SELL; HOLD keeps the levels for display but sizes
// nothing. A degenerate (zero) ATR sets the zero-risk flag instead of
// dividing by zero.
func (m *Manager) Derive(signal models.MSignal, ind models.MIndicators, price float64) models.MRiskParameters {
	stopDistance := ind.ATR * m.Config.ATRMultiplier
	takeDistance := stopDistance * m.Config.RewardMultiple

	params := models.MRiskParameters{
		RiskRewardRatio: m.Config.RewardMultiple,
	}

	// Levels are oriented long for BUY and HOLD (display only), short for
	// SELL.
	if signal.Kind == models.SignalSell {
		params.StopLoss = price + stopDistance
		params.TakeProfit = price - takeDistance
	} else {
		params.StopLoss = price - stopDistance
		params.TakeProfit = price + takeDistance
	}

	if stopDistance <= 0 {
		params.ZeroRisk = true
		return params
	}

	if signal.Kind == models.SignalHold {
		return params
	}

	riskAmount := m.Config.AccountEquity * m.Config.RiskPerTrade
	size := riskAmount / stopDistance

	// Cap exposure at the configured fraction of equity.
	if price > 0 {
		maxSize := m.Config.AccountEquity * m.Config.MaxPositionFrac / price
		if size > maxSize {
			size = maxSize
		}
	}

	params.PositionSize = size
	params.PositionValue = size * price
	params.RiskPercentage = size * stopDistance / m.Config.AccountEquity * 100

	return params
}
