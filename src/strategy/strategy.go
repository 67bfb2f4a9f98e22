package strategy

import (
	"fmt"
	"math"
	"strings"

	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// Combiner merges the indicator-derived momentum score and the sentiment
// score into one discrete trading signal. Pure: identical inputs always
// yield an identical signal. No randomness, no hidden state.
// -----------------------------------------------------------------------------

// Indicator reference levels used for normalization and reasoning.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
	adxTrend      = 25.0
	adxStrong     = 40.0
)

type Combiner struct {
	Config models.MStrategyConfig
}

// -----------------------------------------------------------------------------

func NewCombiner(cfg models.MStrategyConfig) *Combiner {
	return &Combiner{Config: cfg}
}

// -----------------------------------------------------------------------------

// Momentum normalizes RSI and ADX into [0,1]: the RSI deviation from the
// 50 midline, scaled by trend strength so a strong ADX amplifies the
// directional reading and a flat market pulls it back toward neutral.
func Momentum(ind models.MIndicators) float64 {
	deviation := (ind.RSI - 50.0) / 50.0 // [-1, 1]

	trend := ind.ADX / adxStrong
	if trend > 1 {
		trend = 1
	}

	return clamp01(0.5 + 0.5*deviation*trend)
}

// -----------------------------------------------------------------------------

// Combine produces the composite signal from one cycle's indicators and
// sentiment reading.
func (c *Combiner) Combine(ind models.MIndicators, sent models.MSentimentReading) models.MSignal {
	momentum := Momentum(ind)
	sentScore := clamp01(sent.Score / 100.0)

	composite := c.Config.MomentumWeight*momentum + c.Config.SentimentWeight*sentScore

	var kind string
	var distance float64
	switch {
	case composite >= c.Config.BuyThreshold:
		kind = models.SignalBuy
		distance = composite - c.Config.BuyThreshold
	case composite <= c.Config.SellThreshold:
		kind = models.SignalSell
		distance = c.Config.SellThreshold - composite
	default:
		kind = models.SignalHold
		distance = math.Min(c.Config.BuyThreshold-composite, composite-c.Config.SellThreshold)
	}

	strength := models.StrengthModerate
	if distance <= c.Config.WeakBand {
		strength = models.StrengthWeak
	} else if distance > c.Config.StrongBand {
		strength = models.StrengthStrong
	}

	confidence := clamp01(math.Abs(composite-0.5) * 2.0)

	sig := models.MSignal{
		Kind:           kind,
		Strength:       strength,
		Confidence:     confidence,
		MomentumScore:  momentum,
		SentimentScore: sentScore,
		CompositeScore: composite,
	}
	sig.Reasoning = c.reasoning(sig, ind, sent)
	return sig
}

// -----------------------------------------------------------------------------

// reasoning builds the human-readable explanation, naming the sub-score
// that dominated the composite.
func (c *Combiner) reasoning(sig models.MSignal, ind models.MIndicators, sent models.MSentimentReading) string {
	parts := []string{
		fmt.Sprintf("Signal: %s (%s)", sig.Kind, sig.Strength),
	}

	switch {
	case sig.MomentumScore > 0.6:
		parts = append(parts, "Momentum: Bullish")
	case sig.MomentumScore < 0.4:
		parts = append(parts, "Momentum: Bearish")
	default:
		parts = append(parts, "Momentum: Neutral")
	}

	switch {
	case ind.RSI < rsiOversold:
		parts = append(parts, fmt.Sprintf("RSI: Oversold (%.1f)", ind.RSI))
	case ind.RSI > rsiOverbought:
		parts = append(parts, fmt.Sprintf("RSI: Overbought (%.1f)", ind.RSI))
	default:
		parts = append(parts, fmt.Sprintf("RSI: Neutral (%.1f)", ind.RSI))
	}

	switch {
	case ind.ADX > adxStrong:
		parts = append(parts, fmt.Sprintf("Trend: Strong (%.1f)", ind.ADX))
	case ind.ADX > adxTrend:
		parts = append(parts, fmt.Sprintf("Trend: Moderate (%.1f)", ind.ADX))
	default:
		parts = append(parts, fmt.Sprintf("Trend: Weak (%.1f)", ind.ADX))
	}

	parts = append(parts, fmt.Sprintf("Sentiment: %s (%.1f)", sent.Label, sent.Score))

	momentumPull := math.Abs(sig.MomentumScore-0.5) * c.Config.MomentumWeight
	sentimentPull := math.Abs(sig.SentimentScore-0.5) * c.Config.SentimentWeight
	if momentumPull >= sentimentPull {
		parts = append(parts, "Dominant: momentum")
	} else {
		parts = append(parts, "Dominant: sentiment")
	}

	parts = append(parts, fmt.Sprintf("Confidence: %.0f%%", sig.Confidence*100))

	return strings.Join(parts, " | ")
}

// -----------------------------------------------------------------------------

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
