package logging

import (
	"log/slog"
	"testing"

	"github.com/beanhealth/nutridb-export/config"
)

// ResetForTest swaps the global logging service for one writing to the given
// directory and restores the previous service when the test finishes. Console
// output follows the test environment policy, so runs stay quiet unless the
// tests run verbose.
func ResetForTest(t *testing.T, logDir string, env config.Environment, logLevel string, retentionWeeks int, maxFileSize int64) {
	t.Helper()

	previous := DefaultLoggingService

	logger, rotator := SetupLoggerWithOptions(logDir, env, logLevel, testing.Verbose(), retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{Logger: logger, rotator: rotator}
	slog.SetDefault(logger)

	t.Cleanup(func() {
		if DefaultLoggingService != nil {
			if err := DefaultLoggingService.Close(); err != nil {
				t.Logf("Failed to close test logger: %v", err)
			}
		}
		DefaultLoggingService = previous
		if previous != nil && previous.Logger != nil {
			slog.SetDefault(previous.Logger)
		}
	})
}
