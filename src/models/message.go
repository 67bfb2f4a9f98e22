package models

// -----------------------------------------------------------------------------
// Wire shapes pushed to streaming subscribers.
// -----------------------------------------------------------------------------

// MMarketUpdate is the typed message broadcast for every published snapshot.
type MMarketUpdate struct {
	Type      string      `json:"type"` // always "market_update"
	Data      MMarketData `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

type MMarketData struct {
	Symbol     string            `json:"symbol"`
	Price      float64           `json:"price"`
	Stale      bool              `json:"stale"`
	Sequence   uint64            `json:"sequence"`
	Indicators MIndicators       `json:"indicators"`
	Sentiment  MSentimentReading `json:"sentiment"`
	Signal     MSignal           `json:"signal"`
	Risk       MRiskParameters   `json:"risk"`
}

// -----------------------------------------------------------------------------

// NewMarketUpdate builds the wire message for a snapshot.
func NewMarketUpdate(snap MSnapshot) MMarketUpdate {
	return MMarketUpdate{
		Type: "market_update",
		Data: MMarketData{
			Symbol:     snap.Symbol,
			Price:      snap.Price,
			Stale:      snap.Stale,
			Sequence:   snap.SequenceNumber,
			Indicators: snap.Indicators,
			Sentiment:  snap.Sentiment,
			Signal:     snap.Signal,
			Risk:       snap.Risk,
		},
		Timestamp: snap.GeneratedAt.Unix(),
	}
}
