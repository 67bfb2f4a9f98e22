package models

import "time"

// MTick represents one normalized price/volume observation from a source.
// Immutable once created.
type MTick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
	SourceID  string  `json:"source_id"`
}

// -----------------------------------------------------------------------------

// MSourceHealth tracks runtime health of a tick provider.
// PriorityRank is static configuration; the rest is runtime state mutated
// only by the source adapter.
type MSourceHealth struct {
	SourceID            string    `json:"source_id"`
	LastSuccessAt       time.Time `json:"last_success_at"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	PriorityRank        int       `json:"priority_rank"`
	Demoted             bool      `json:"demoted"`
}
