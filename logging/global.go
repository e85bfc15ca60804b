// Package logging provides the application-wide structured logger: text on
// the console at an environment-appropriate level, JSON in weekly rotating
// files at debug level.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/beanhealth/nutridb-export/config"
)

// LoggingService holds the logger and its rotating file sink so the file can
// be closed cleanly on shutdown
type LoggingService struct {
	Logger  *slog.Logger
	rotator *RotatingLogger
}

// Close closes the underlying rotating log file, if any
func (s *LoggingService) Close() error {
	if s.rotator != nil {
		return s.rotator.Close()
	}
	return nil
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger with default retention and size
// settings
func InitLogger(logDir string, env config.Environment) {
	InitLoggerWithOptions(logDir, env, "", 4, 100*1024*1024)
}

// InitLoggerWithOptions initializes the global logger with explicit level,
// retention and size settings and installs it as the slog default
func InitLoggerWithOptions(logDir string, env config.Environment, logLevel string, retentionWeeks int, maxFileSize int64) {
	logger, rotator := SetupLoggerWithOptions(logDir, env, logLevel, false, retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{Logger: logger, rotator: rotator}
	slog.SetDefault(logger)
}

// CloseLogger closes the global logger's file sink
func CloseLogger() {
	if DefaultLoggingService != nil {
		if err := DefaultLoggingService.Close(); err != nil {
			fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))
			fallback.Error("Failed to close log file", "error", err)
		}
	}
}

// parseLogLevel converts a level string to a slog.Level, defaulting to info
// for unknown or empty values
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel decides what reaches the console. Tests stay quiet
// unless run verbose, production and staging default to warnings, and an
// explicit level overrides the default everywhere except in tests.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the level for the file sink. The file always
// captures everything so the console policy never costs history.
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		fallback.Info(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		fallback.Error(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
		fallback.Warn(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		fallback.Debug(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Debug(msg, args...)
}
