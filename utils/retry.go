package utils

import (
	"fmt"
	"time"
)

// Retry runs fn up to attempts times with exponential back-off starting
// at baseDelay. Used for storage connects, where the database may still
// be coming up when the service starts.
func Retry(logger *Logger, operation string, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < attempts {
			logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				operation, attempt, attempts, lastErr, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
