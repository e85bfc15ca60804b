// Package health provides health checking functionality for the nutrient
// export service.
package health

import (
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/beanhealth/nutridb-export/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore   interfaces.DataStore
	exportTimes string
}

// NewHealthChecker creates a new health checker with injected dependencies.
// exportTimes is the semicolon-separated HH:MM schedule the exporter runs on.
func NewHealthChecker(dataStore interfaces.DataStore, exportTimes string) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore:   dataStore,
		exportTimes: exportTimes,
	}
}

// HealthCheck reports the serving state of the databank. A container with no
// records is unhealthy; stale data degrades the service but keeps it serving.
// The error return is reserved for failures gathering the report itself.
func (h *HealthCheckerImpl) HealthCheck() (string, map[string]any, error) {
	// Get data statistics
	nutrients := h.dataStore.GetNutrients()
	report := h.dataStore.GetQualityReport()
	lastExport := h.dataStore.GetLastExport()
	isExporting := h.dataStore.IsExporting()

	dataAge := time.Since(lastExport)

	var status string
	switch {
	case len(nutrients) == 0:
		status = "unhealthy"

	case dataAge > 24*time.Hour:
		status = "degraded"

	case isExporting && dataAge > 6*time.Hour:
		status = "degraded"

	default:
		status = "healthy"
	}

	duplicates := 0
	if report != nil {
		duplicates = len(report.DuplicateNames)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	details := map[string]any{
		"last_export":    lastExport.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"data": map[string]any{
			"nutrients":       len(nutrients),
			"duplicate_names": duplicates,
			"is_exporting":    isExporting,
			"next_export":     h.CalculateNextExport().Format(time.RFC3339),
		},
		"system": map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	return status, details, nil
}

// CalculateNextExport returns the next scheduled export time. Entries that
// fail to parse as HH:MM are skipped; with no usable entry the zero time is
// returned.
func (h *HealthCheckerImpl) CalculateNextExport() time.Time {
	now := time.Now()

	var next time.Time
	for _, part := range strings.Split(h.exportTimes, ";") {
		parsed, err := time.Parse("15:04", part)
		if err != nil {
			continue
		}

		candidate := time.Date(now.Year(), now.Month(), now.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}

		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}

	return next
}
