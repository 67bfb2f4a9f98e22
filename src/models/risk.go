package models

// MRiskParameters holds position sizing and protective levels derived from
// the signal, ATR and the account risk policy.
type MRiskParameters struct {
	PositionSize    float64 `json:"position_size"`
	PositionValue   float64 `json:"position_value"`
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit      float64 `json:"take_profit"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
	RiskPercentage  float64 `json:"risk_percentage"`
	// ZeroRisk marks the degenerate case where the stop distance collapsed
	// to zero and no position can be sized.
	ZeroRisk bool `json:"zero_risk"`
}
