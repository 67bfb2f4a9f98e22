package interfaces

import (
	"context"

	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// ISentimentScorer is the external sentiment-scoring collaborator. The core
// only consumes a numeric score plus label with a freshness timestamp.
// -----------------------------------------------------------------------------

type ISentimentScorer interface {

	// Score produces a 0-100 sentiment reading for the symbol.
	Score(ctx context.Context, symbol string) (models.MSentimentReading, error)
}
