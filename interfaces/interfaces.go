// Package interfaces defines core abstractions for the nutrient databank
// exporter to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/beanhealth/nutridb-export/converter/entities"
)

// ExportStats summarizes one export run: how many source rows were read and
// what the cleaning step had to do to them. Map keys are source column names.
type ExportStats struct {
	RowsRead         int
	EmptyRowsSkipped int
	CellsFilled      map[string]int // null or absent cells coerced to 0
	CellsUnparseable map[string]int // non-numeric cells coerced to 0
}

// DataQualityReport provides a summary of data quality issues
type DataQualityReport struct {
	DuplicateNames   []string
	EmptyNames       int // records whose food name is blank
	AllZeroRecords   int // records where every nutrient value is 0
	ZeroCalorieCount int
}

// DataStore defines the contract for data storage operations.
// It provides thread-safe access to the exported nutrient records
// with atomic operations for zero-downtime refreshes.
type DataStore interface {
	// Data retrieval methods
	GetNutrients() []entities.Nutrient
	GetNutrientsMap() map[string]entities.Nutrient
	GetQualityReport() *DataQualityReport
	GetLastExport() time.Time
	IsExporting() bool
	GetServerStartTime() time.Time
	SetServerStartTime(t time.Time)

	// Data update methods
	UpdateData(nutrients []entities.Nutrient, nutrientsMap map[string]entities.Nutrient,
		report *DataQualityReport)
	BeginExport() bool
	EndExport()
}

// Converter defines the contract for the databank export pipeline.
// It reads the source table, cleans it into nutrient records, and writes
// the serialized result to the destination path.
type Converter interface {
	// Convert runs the full pipeline and returns the exported records
	// alongside the run statistics. On error nothing is written.
	Convert(ctx context.Context, sourcePath string, destPath string) ([]entities.Nutrient, *ExportStats, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated databank exports and system health checks.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// Specific endpoint handlers
	ServeAllNutrients(w http.ResponseWriter, r *http.Request)
	ServePagedNutrients(w http.ResponseWriter, r *http.Request)
	FindNutrient(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, err error)

	// CalculateNextExport returns the next scheduled export time
	CalculateNextExport() time.Time
}

// DataValidator defines the contract for data validation operations.
// It ensures data integrity and consistency.
type DataValidator interface {
	// ValidateNutrient checks if a nutrient record is valid
	ValidateNutrient(n *entities.Nutrient) error

	// ValidateRecords performs comprehensive validation of an export batch
	ValidateRecords(nutrients []entities.Nutrient) error

	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(nutrients []entities.Nutrient) *DataQualityReport

	// ValidateInput validates user input strings
	ValidateInput(input string) error
}
