package helpers

import (
	"fmt"
	"time"

	"stock-screener/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ScreenerError struct {
	Message string
	Cause   error
}

func (e *ScreenerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScreenerError) Unwrap() error {
	return e.Cause
}

// StoreUnavailableError is fatal: the backing store is missing or cannot be
// opened. Nothing is published when it occurs.
type StoreUnavailableError struct{ ScreenerError }

// DataSourceError wraps ingest provider failures (retries exhausted).
type DataSourceError struct{ ScreenerError }

// ConfigurationError wraps invalid or unreadable configuration.
type ConfigurationError struct{ ScreenerError }

// -----------------------------------------------------------------------------

func NewStoreUnavailable(msg string, cause error) *StoreUnavailableError {
	return &StoreUnavailableError{ScreenerError{Message: msg, Cause: cause}}
}

func NewDataSourceError(msg string, cause error) *DataSourceError {
	return &DataSourceError{ScreenerError{Message: msg, Cause: cause}}
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
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, lastErr, delay)
		time.Sleep(delay)
	}

	return lastErr
}
