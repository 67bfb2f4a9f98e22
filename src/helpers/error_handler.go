package helpers

import (
	"errors"
	"fmt"
	"time"

	"crypto-signals/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
//
// The pipeline taxonomy: every failure mode a cycle can hit has its own type
// so callers can branch on errors.As without string matching. Nothing here is
// process-fatal; the propagation policy lives with the aggregator.
// -----------------------------------------------------------------------------

type PipelineError struct {
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// SourceUnavailableError: the adapter exhausted all providers for a symbol.
type SourceUnavailableError struct{ PipelineError }

// StaleError: no fresh tick this cycle, but history exists to fall back on.
type StaleError struct{ PipelineError }

// SentimentUnavailableError: the scorer failed; a default was substituted.
type SentimentUnavailableError struct{ PipelineError }

// InsufficientHistoryError: indicator math under-sampled; neutral values used.
type InsufficientHistoryError struct{ PipelineError }

// DeliveryFailureError: a single subscriber write failed.
type DeliveryFailureError struct{ PipelineError }

// ConfigurationError: invalid or missing configuration.
type ConfigurationError struct{ PipelineError }

// -----------------------------------------------------------------------------

func NewSourceUnavailable(symbol string, cause error) error {
	return &SourceUnavailableError{PipelineError{
		Message: fmt.Sprintf("all providers failed for %s", symbol),
		Cause:   cause,
	}}
}

func NewStale(symbol string) error {
	return &StaleError{PipelineError{
		Message: fmt.Sprintf("no fresh tick for %s, reusing history tail", symbol),
	}}
}

func NewSentimentUnavailable(symbol string, cause error) error {
	return &SentimentUnavailableError{PipelineError{
		Message: fmt.Sprintf("sentiment scorer failed for %s", symbol),
		Cause:   cause,
	}}
}

func NewInsufficientHistory(symbol string, have, need int) error {
	return &InsufficientHistoryError{PipelineError{
		Message: fmt.Sprintf("%s: %d samples, need %d", symbol, have, need),
	}}
}

func NewDeliveryFailure(connectionID string, cause error) error {
	return &DeliveryFailureError{PipelineError{
		Message: fmt.Sprintf("delivery to subscriber %s failed", connectionID),
		Cause:   cause,
	}}
}

// -----------------------------------------------------------------------------

// IsStale reports whether err is a staleness condition rather than a hard
// source failure.
func IsStale(err error) bool {
	var se *StaleError
	return errors.As(err, &se)
}

// IsSourceUnavailable reports whether the adapter exhausted all providers.
func IsSourceUnavailable(err error) bool {
	var se *SourceUnavailableError
	return errors.As(err, &se)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times
// with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v",
			attempt+1, maxRetries, operation, lastErr, delay)
		time.Sleep(delay)
	}

	return &PipelineError{
		Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries),
		Cause:   lastErr,
	}
}
