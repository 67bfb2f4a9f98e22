package models

import "time"

// MIndicators holds derived technical indicator values for one cycle.
// Recomputed from the history window each cycle, never persisted as
// authoritative state.
type MIndicators struct {
	RSI        float64   `json:"rsi"`
	ADX        float64   `json:"adx"`
	ATR        float64   `json:"atr"`
	BollUpper  float64   `json:"boll_upper"`
	BollMiddle float64   `json:"boll_middle"`
	BollLower  float64   `json:"boll_lower"`
	MACD       float64   `json:"macd"`
	MACDSignal float64   `json:"macd_signal"`
	ComputedAt time.Time `json:"computed_at"`
}
