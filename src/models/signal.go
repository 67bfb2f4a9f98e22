package models

// Signal kinds.
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalHold = "HOLD"
)

// Signal strength buckets.
const (
	StrengthWeak     = "WEAK"
	StrengthModerate = "MODERATE"
	StrengthStrong   = "STRONG"
)

// -----------------------------------------------------------------------------

// MSignal is the composite trading decision derived from indicators and
// sentiment. Pure function of its inputs; recomputed each cycle.
type MSignal struct {
	Kind           string  `json:"kind"`
	Strength       string  `json:"strength"`
	Confidence     float64 `json:"confidence"`
	MomentumScore  float64 `json:"momentum_score"`
	SentimentScore float64 `json:"sentiment_score"`
	CompositeScore float64 `json:"composite_score"`
	Reasoning      string  `json:"reasoning"`
}
