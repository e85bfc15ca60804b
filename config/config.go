// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment identifies the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// ParseEnvironment converts a string to an Environment, accepting the long
// spellings as aliases
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(s) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	default:
		return EnvDevelopment, fmt.Errorf("ENV must be one of: dev, staging, prod, test, got: %s", s)
	}
}

func (e Environment) String() string {
	return string(e)
}

// RunMode selects what the process does after startup: a one-shot databank
// export, or the API server with scheduled re-exports
type RunMode string

const (
	ModeConvert RunMode = "convert"
	ModeServe   RunMode = "serve"
)

// ParseRunMode converts a string to a RunMode
func ParseRunMode(s string) (RunMode, error) {
	switch strings.ToLower(s) {
	case "convert":
		return ModeConvert, nil
	case "serve":
		return ModeServe, nil
	default:
		return ModeConvert, fmt.Errorf("RUN_MODE must be one of: convert, serve, got: %s", s)
	}
}

func (m RunMode) String() string {
	return string(m)
}

// Config holds all application configuration
type Config struct {
	SourcePath  string // Path to the databank spreadsheet or CSV mirror
	DestPath    string // Path the JSON export is written to
	SheetName   string // Worksheet holding the nutrient table
	RunMode     RunMode
	ExportTimes string // Daily re-export times for serve mode, semicolon-separated HH:MM

	Port              string
	Address           string
	Env               Environment
	LogDir            string
	LogLevel          string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	mode, err := ParseRunMode(getEnvWithDefault("RUN_MODE", "convert"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := &Config{
		SourcePath:        getEnvWithDefault("SOURCE_PATH", "INDB.xlsx"),
		DestPath:          getEnvWithDefault("DEST_PATH", "recipes.json"),
		SheetName:         getEnvWithDefault("SHEET_NAME", "Nutrient Data"),
		RunMode:           mode,
		ExportTimes:       getEnvWithDefault("EXPORT_TIMES", "06:00;18:00"),
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	// Validate SOURCE_PATH
	if err := validateSourcePath(cfg.SourcePath); err != nil {
		return fmt.Errorf("invalid SOURCE_PATH: %w", err)
	}

	// Validate DEST_PATH
	if err := validateDestPath(cfg.DestPath); err != nil {
		return fmt.Errorf("invalid DEST_PATH: %w", err)
	}

	// Validate SHEET_NAME
	if cfg.SheetName == "" {
		return fmt.Errorf("invalid SHEET_NAME: cannot be empty")
	}

	// Validate EXPORT_TIMES
	if err := validateExportTimes(cfg.ExportTimes); err != nil {
		return fmt.Errorf("invalid EXPORT_TIMES: %w", err)
	}

	// Validate PORT
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	// Validate ADDRESS
	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	// Validate LOG_LEVEL
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// Validate MAX_REQUEST_BODY
	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	// Validate MAX_HEADER_SIZE
	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	// Validate LOG_RETENTION_WEEKS
	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	// Validate MAX_LOG_FILE_SIZE
	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	return nil
}

// validateSourcePath validates the SOURCE_PATH environment variable. The
// file itself is not required to exist yet; the converter reports that as a
// load failure at run time.
func validateSourcePath(path string) error {
	if path == "" {
		return fmt.Errorf("SOURCE_PATH cannot be empty")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
		return nil
	default:
		return fmt.Errorf("SOURCE_PATH must point to an .xlsx, .xlsm or .csv file, got: %s", path)
	}
}

// validateDestPath validates the DEST_PATH environment variable
func validateDestPath(path string) error {
	if path == "" {
		return fmt.Errorf("DEST_PATH cannot be empty")
	}

	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return fmt.Errorf("DEST_PATH must point to a .json file, got: %s", path)
	}

	return nil
}

// validateExportTimes validates the EXPORT_TIMES environment variable.
// The value feeds the scheduler directly, so each part must be a bare HH:MM
// with no surrounding whitespace.
func validateExportTimes(times string) error {
	if times == "" {
		return fmt.Errorf("EXPORT_TIMES cannot be empty")
	}

	for _, part := range strings.Split(times, ";") {
		if _, err := time.Parse("15:04", part); err != nil {
			return fmt.Errorf("EXPORT_TIMES must be semicolon-separated HH:MM values, got: %q", part)
		}
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	// Check for localhost/loopback addresses first
	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		// This is acceptable for development
		return nil
	}

	// Check if it's a valid IP address
	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	// Check for private network ranges (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"SOURCE_PATH",
		"DEST_PATH",
		"SHEET_NAME",
		"RUN_MODE",
		"EXPORT_TIMES",
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_DIR",
		"LOG_LEVEL",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
	}
}

// ValidateAllEnvVars checks that no expected environment variable is set to
// an explicitly empty string, which would silently fall back to a default
func ValidateAllEnvVars() error {
	var blankVars []string

	for _, varName := range GetEnvVars() {
		if value, set := os.LookupEnv(varName); set && value == "" {
			blankVars = append(blankVars, varName)
		}
	}

	if len(blankVars) > 0 {
		return fmt.Errorf("environment variables set but empty: %v", blankVars)
	}

	return nil
}
