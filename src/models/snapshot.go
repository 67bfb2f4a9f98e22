package models

import "time"

// MSnapshot is the immutable, sequenced result of one aggregation cycle for
// a symbol: the unit of broadcast.
type MSnapshot struct {
	Symbol         string            `json:"symbol"`
	Price          float64           `json:"price"`
	Stale          bool              `json:"stale"`
	Indicators     MIndicators       `json:"indicators"`
	Sentiment      MSentimentReading `json:"sentiment"`
	Signal         MSignal           `json:"signal"`
	Risk           MRiskParameters   `json:"risk"`
	SequenceNumber uint64            `json:"sequence_number"`
	GeneratedAt    time.Time         `json:"generated_at"`
}
