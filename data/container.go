// Package data provides thread-safe storage for the exported nutrient
// records. The DataContainer swaps whole datasets atomically so readers never
// observe a half-finished export.
package data

import (
	"sync/atomic"
	"time"

	"github.com/beanhealth/nutridb-export/converter/entities"
	"github.com/beanhealth/nutridb-export/interfaces"
	"github.com/beanhealth/nutridb-export/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds all the data with atomic pointers for zero-downtime updates
type DataContainer struct {
	nutrients       atomic.Value // []entities.Nutrient
	nutrientsMap    atomic.Value // map[string]entities.Nutrient, keyed by lowercased name
	qualityReport   atomic.Value // *interfaces.DataQualityReport
	lastExport      atomic.Value // time.Time
	exporting       atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.nutrients.Store(make([]entities.Nutrient, 0))
	dc.nutrientsMap.Store(make(map[string]entities.Nutrient))
	dc.qualityReport.Store(&interfaces.DataQualityReport{DuplicateNames: []string{}})
	dc.lastExport.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{}) // Initialize with zero value
	return dc
}

// Thread-safe getters with type check

// GetNutrients returns the list of nutrient records
func (dc *DataContainer) GetNutrients() []entities.Nutrient {
	if v := dc.nutrients.Load(); v != nil {
		if nutrients, ok := v.([]entities.Nutrient); ok {
			return nutrients
		}
	}

	logging.Warn("Nutrient list is empty or invalid")
	return []entities.Nutrient{}
}

// GetNutrientsMap returns the nutrients map for O(1) name lookups
func (dc *DataContainer) GetNutrientsMap() map[string]entities.Nutrient {
	if v := dc.nutrientsMap.Load(); v != nil {
		if nutrientsMap, ok := v.(map[string]entities.Nutrient); ok {
			return nutrientsMap
		}
	}

	logging.Warn("NutrientsMap is empty or invalid")
	return make(map[string]entities.Nutrient)
}

// GetQualityReport returns the quality report of the last export
func (dc *DataContainer) GetQualityReport() *interfaces.DataQualityReport {
	if v := dc.qualityReport.Load(); v != nil {
		if report, ok := v.(*interfaces.DataQualityReport); ok && report != nil {
			return report
		}
	}

	logging.Warn("Could not get the data quality report")
	return &interfaces.DataQualityReport{DuplicateNames: []string{}}
}

// GetLastExport returns the timestamp of the last completed export
func (dc *DataContainer) GetLastExport() time.Time {
	if v := dc.lastExport.Load(); v != nil {
		if lastExport, ok := v.(time.Time); ok {
			return lastExport
		}
	}

	logging.Warn("Could not get the last export value")
	return time.Time{}
}

// IsExporting returns true if an export is currently in progress
func (dc *DataContainer) IsExporting() bool {
	return dc.exporting.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically updates all data in the container
func (dc *DataContainer) UpdateData(nutrients []entities.Nutrient, nutrientsMap map[string]entities.Nutrient,
	report *interfaces.DataQualityReport) {

	// Atomic swap (zero downtime replacement)
	dc.nutrients.Store(nutrients)
	dc.nutrientsMap.Store(nutrientsMap)
	dc.qualityReport.Store(report)
	dc.lastExport.Store(time.Now())
}

// BeginExport marks the start of an export run
// Returns true if the export can proceed, false if another run is in progress
func (dc *DataContainer) BeginExport() bool {
	return dc.exporting.CompareAndSwap(false, true)
}

// EndExport marks the end of an export run
func (dc *DataContainer) EndExport() {
	dc.exporting.Store(false)
}
