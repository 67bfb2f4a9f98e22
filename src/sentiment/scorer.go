package sentiment

import (
	"context"
	"strings"
	"time"

	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// HeadlineScorer is the default scoring collaborator: a keyword lexicon over
// a headline feed. The model-backed scorer lives outside this repository;
// anything implementing ISentimentScorer can replace this one.
// -----------------------------------------------------------------------------

// HeadlineFeed supplies recent headlines for a symbol.
type HeadlineFeed interface {
	Headlines(ctx context.Context, symbol string) ([]string, error)
}

// -----------------------------------------------------------------------------

type HeadlineScorer struct {
	Feed HeadlineFeed
}

func NewHeadlineScorer(feed HeadlineFeed) *HeadlineScorer {
	return &HeadlineScorer{Feed: feed}
}

// -----------------------------------------------------------------------------

var bullishTerms = []string{
	"all-time high", "adoption", "upgrade", "growth", "recovery",
	"institutional", "record", "sustainable", "rally", "surge",
}

var bearishTerms = []string{
	"crash", "crackdown", "panic", "concern", "volatility",
	"hack", "ban", "selloff", "dip", "liquidation",
}

// -----------------------------------------------------------------------------

// Score averages the per-headline lexicon polarity and maps it onto the
// 0-100 scale. Identical headline sets always produce identical readings.
func (s *HeadlineScorer) Score(ctx context.Context, symbol string) (models.MSentimentReading, error) {
	headlines, err := s.Feed.Headlines(ctx, symbol)
	if err != nil {
		return models.MSentimentReading{}, err
	}

	total := 0.0
	for _, h := range headlines {
		total += scoreHeadline(h)
	}

	polarity := 0.0 // [-1, 1]
	if len(headlines) > 0 {
		polarity = total / float64(len(headlines))
	}

	score := (polarity + 1) * 50
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.MSentimentReading{
		Score: score,
		Label: models.SentimentLabel(score),
		AsOf:  time.Now().UTC(),
	}, nil
}

// -----------------------------------------------------------------------------

func scoreHeadline(headline string) float64 {
	lower := strings.ToLower(headline)

	hits := 0.0
	for _, term := range bullishTerms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	for _, term := range bearishTerms {
		if strings.Contains(lower, term) {
			hits--
		}
	}

	if hits > 1 {
		return 1
	}
	if hits < -1 {
		return -1
	}
	return hits
}

// -----------------------------------------------------------------------------
// StaticFeed serves a fixed headline set; used when no live feed is wired.
// -----------------------------------------------------------------------------

type StaticFeed struct {
	Items []string
}

func (f *StaticFeed) Headlines(ctx context.Context, symbol string) ([]string, error) {
	return f.Items, nil
}

// DefaultFeed returns the built-in market headline set.
func DefaultFeed() *StaticFeed {
	return &StaticFeed{Items: []string{
		"Bitcoin reaches new all-time high as institutional adoption grows",
		"Crypto market shows signs of recovery after recent dip",
		"Major banks announce cryptocurrency trading services",
		"Regulatory crackdown on exchanges causes market panic",
		"Network upgrade shows promising results for scalability",
		"Mining becomes more sustainable with renewable energy",
	}}
}
