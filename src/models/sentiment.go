package models

import "time"

// Sentiment labels, from most bearish to most bullish.
const (
	SentimentVeryBearish = "Very Bearish"
	SentimentBearish     = "Bearish"
	SentimentNeutral     = "Neutral"
	SentimentBullish     = "Bullish"
	SentimentVeryBullish = "Very Bullish"
)

// -----------------------------------------------------------------------------

// MSentimentReading is one sentiment observation on a 0-100 scale.
// Replaced wholesale on refresh, never mutated in place.
type MSentimentReading struct {
	Score        float64   `json:"score"`
	Label        string    `json:"label"`
	AsOf         time.Time `json:"as_of"`
	TTLExpiresAt time.Time `json:"ttl_expires_at"`
}

// -----------------------------------------------------------------------------

// NeutralSentiment is the documented default substituted when the scorer is
// unavailable and no usable cached reading exists.
func NeutralSentiment(now time.Time, ttl time.Duration) MSentimentReading {
	return MSentimentReading{
		Score:        50,
		Label:        SentimentNeutral,
		AsOf:         now,
		TTLExpiresAt: now.Add(ttl),
	}
}

// -----------------------------------------------------------------------------

// SentimentLabel maps a 0-100 score to its label bucket.
func SentimentLabel(score float64) string {
	switch {
	case score >= 70:
		return SentimentVeryBullish
	case score >= 60:
		return SentimentBullish
	case score >= 40:
		return SentimentNeutral
	case score >= 30:
		return SentimentBearish
	default:
		return SentimentVeryBearish
	}
}
