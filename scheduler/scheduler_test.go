package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/beanhealth/nutridb-export/converter/entities"
	"github.com/beanhealth/nutridb-export/interfaces"
)

// MockDataStore for testing scheduler
type mockSchedulerDataStore struct {
	nutrients       []entities.Nutrient
	nutrientsMap    map[string]entities.Nutrient
	qualityReport   *interfaces.DataQualityReport
	lastExport      time.Time
	serverStartTime time.Time
	exporting       bool
	updateCount     int
}

func (m *mockSchedulerDataStore) GetNutrients() []entities.Nutrient {
	return m.nutrients
}

func (m *mockSchedulerDataStore) GetNutrientsMap() map[string]entities.Nutrient {
	return m.nutrientsMap
}

func (m *mockSchedulerDataStore) GetQualityReport() *interfaces.DataQualityReport {
	return m.qualityReport
}

func (m *mockSchedulerDataStore) GetLastExport() time.Time {
	return m.lastExport
}

func (m *mockSchedulerDataStore) IsExporting() bool {
	return m.exporting
}

func (m *mockSchedulerDataStore) GetServerStartTime() time.Time {
	return m.serverStartTime
}

func (m *mockSchedulerDataStore) SetServerStartTime(t time.Time) {
	m.serverStartTime = t
}

func (m *mockSchedulerDataStore) UpdateData(nutrients []entities.Nutrient, nutrientsMap map[string]entities.Nutrient, report *interfaces.DataQualityReport) {
	m.nutrients = nutrients
	m.nutrientsMap = nutrientsMap
	m.qualityReport = report
	m.lastExport = time.Now()
	m.updateCount++
}

func (m *mockSchedulerDataStore) BeginExport() bool {
	if m.exporting {
		return false
	}
	m.exporting = true
	return true
}

func (m *mockSchedulerDataStore) EndExport() {
	m.exporting = false
}

// MockConverter for testing scheduler
type mockSchedulerConverter struct {
	convertCount int
	shouldFail   bool
	// Configurable records for testing
	records []entities.Nutrient

	lastSourcePath string
	lastDestPath   string
}

func (m *mockSchedulerConverter) Convert(ctx context.Context, sourcePath string, destPath string) ([]entities.Nutrient, *interfaces.ExportStats, error) {
	m.convertCount++
	m.lastSourcePath = sourcePath
	m.lastDestPath = destPath

	if m.shouldFail {
		return nil, nil, &mockSchedulerError{"conversion failed"}
	}

	records := m.records
	if records == nil {
		records = []entities.Nutrient{
			{Name: "Rice, raw, milled", Calories: 358, ProteinG: 7.9},
			{Name: "Wheat flour", Calories: 337, ProteinG: 11.1},
		}
	}

	stats := &interfaces.ExportStats{
		RowsRead:         len(records),
		CellsFilled:      map[string]int{"sodium_mg": 1},
		CellsUnparseable: map[string]int{},
	}

	return records, stats, nil
}

type mockSchedulerError struct {
	msg string
}

func (e *mockSchedulerError) Error() string {
	return e.msg
}

func TestScheduler_SuccessfulExport(t *testing.T) {
	// Create mock dependencies
	mockDataStore := &mockSchedulerDataStore{}
	mockConverter := &mockSchedulerConverter{shouldFail: false}

	// Create scheduler with dependency injection
	scheduler := NewScheduler(mockDataStore, mockConverter, "INDB.xlsx", "recipes.json", "06:00;18:00")

	// Test initial export
	err := scheduler.Start()
	if err != nil {
		t.Errorf("Unexpected error during start: %v", err)
	}

	// Verify that data was updated
	if mockDataStore.updateCount != 1 {
		t.Errorf("Expected 1 update, got %d", mockDataStore.updateCount)
	}

	if mockConverter.convertCount != 1 {
		t.Errorf("Expected 1 convert call, got %d", mockConverter.convertCount)
	}

	// Verify the converter received the configured paths
	if mockConverter.lastSourcePath != "INDB.xlsx" {
		t.Errorf("Expected source INDB.xlsx, got %s", mockConverter.lastSourcePath)
	}

	if mockConverter.lastDestPath != "recipes.json" {
		t.Errorf("Expected dest recipes.json, got %s", mockConverter.lastDestPath)
	}

	// Verify data was stored correctly
	nutrients := mockDataStore.GetNutrients()
	if len(nutrients) != 2 {
		t.Errorf("Expected 2 nutrients, got %d", len(nutrients))
	}

	// Verify the lookup map is keyed by lowercased name
	nutrientsMap := mockDataStore.GetNutrientsMap()
	if len(nutrientsMap) != 2 {
		t.Errorf("Expected 2 map entries, got %d", len(nutrientsMap))
	}

	if _, exists := nutrientsMap["rice, raw, milled"]; !exists {
		t.Error("Lookup map should contain lowercased 'rice, raw, milled'")
	}

	// Clean up
	scheduler.Stop()
}

func TestScheduler_ConvertFailure(t *testing.T) {
	// Create mock dependencies that will fail
	mockDataStore := &mockSchedulerDataStore{}
	mockConverter := &mockSchedulerConverter{shouldFail: true}

	// Create scheduler with dependency injection
	scheduler := NewScheduler(mockDataStore, mockConverter, "INDB.xlsx", "recipes.json", "06:00;18:00")

	// Test initial export failure
	err := scheduler.Start()
	if err == nil {
		t.Error("Expected error during start but got none")
	}

	// Verify that no data was updated due to failure
	if mockDataStore.updateCount != 0 {
		t.Errorf("Expected 0 updates due to failure, got %d", mockDataStore.updateCount)
	}
}

func TestScheduler_ConcurrentExportPrevention(t *testing.T) {
	// Create mock dependencies
	mockDataStore := &mockSchedulerDataStore{}
	mockConverter := &mockSchedulerConverter{shouldFail: false}

	// Create scheduler with dependency injection
	scheduler := NewScheduler(mockDataStore, mockConverter, "INDB.xlsx", "recipes.json", "06:00;18:00")

	// Simulate an export in progress
	mockDataStore.BeginExport()

	// Try to start scheduler (should skip initial export)
	err := scheduler.Start()
	if err != nil {
		t.Errorf("Unexpected error during start with concurrent export: %v", err)
	}

	// Verify that no update occurred due to concurrent export
	if mockDataStore.updateCount != 0 {
		t.Errorf("Expected 0 updates due to concurrent export, got %d", mockDataStore.updateCount)
	}

	// Clean up
	scheduler.Stop()
}

// This test demonstrates how interfaces make testing much easier
// compared to testing a scheduler with tight coupling
func TestScheduler_DependencyInjectionBenefits(t *testing.T) {
	// We can easily test with different implementations
	var dataStore interfaces.DataStore = &mockSchedulerDataStore{}
	var converter interfaces.Converter = &mockSchedulerConverter{shouldFail: false}

	// The scheduler works with any implementation of the interfaces
	scheduler := NewScheduler(dataStore, converter, "INDB.xlsx", "recipes.json", "06:00;18:00")

	// We can verify behavior without needing a real spreadsheet on disk
	err := scheduler.Start()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	// Clean up
	scheduler.Stop()
}

func TestScheduler_ExportOverridesMap(t *testing.T) {
	// Test that subsequent exports properly replace the old lookup map
	mockDataStore := &mockSchedulerDataStore{}
	mockConverter := &mockSchedulerConverter{
		shouldFail: false,
		// First export will have this record
		records: []entities.Nutrient{
			{Name: "Barley, pearled", Calories: 336},
		},
	}

	// Create scheduler with dependency injection
	scheduler := NewScheduler(mockDataStore, mockConverter, "INDB.xlsx", "recipes.json", "06:00;18:00")

	// First export
	err := scheduler.Start()
	if err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	// Verify first map is stored
	map1 := mockDataStore.GetNutrientsMap()
	if _, exists := map1["barley, pearled"]; !exists {
		t.Error("First lookup map should contain 'barley, pearled'")
	}

	// Second export with different data
	mockConverter.records = []entities.Nutrient{
		{Name: "Oats, rolled", Calories: 389},
	}

	// Trigger second export
	_ = scheduler.runExport()

	// Verify the map was replaced (not merged)
	map2 := mockDataStore.GetNutrientsMap()
	if _, exists := map2["barley, pearled"]; exists {
		t.Error("Old map entry should be replaced")
	}
	if _, exists := map2["oats, rolled"]; !exists {
		t.Error("New map entry should exist")
	}

	// Clean up
	scheduler.Stop()
}

func TestScheduler_QualityReportStored(t *testing.T) {
	// Test that the data quality report reaches the store, with duplicate
	// names detected case-insensitively
	mockDataStore := &mockSchedulerDataStore{}
	mockConverter := &mockSchedulerConverter{
		shouldFail: false,
		records: []entities.Nutrient{
			{Name: "Millet, whole", Calories: 378},
			{Name: "MILLET, WHOLE", Calories: 378},
			{Name: "Maize, dry", Calories: 334},
		},
	}

	// Create scheduler with dependency injection
	scheduler := NewScheduler(mockDataStore, mockConverter, "INDB.xlsx", "recipes.json", "06:00;18:00")

	// Test initial export
	err := scheduler.Start()
	if err != nil {
		t.Fatalf("Unexpected error during start: %v", err)
	}

	// Verify the report was stored
	report := mockDataStore.GetQualityReport()
	if report == nil {
		t.Fatal("Quality report should have been stored")
	}

	if len(report.DuplicateNames) != 1 {
		t.Errorf("Expected 1 duplicate name, got %d", len(report.DuplicateNames))
	}

	// Duplicate map keys collapse, so the lookup map is smaller than the slice
	nutrientsMap := mockDataStore.GetNutrientsMap()
	if len(nutrientsMap) != 2 {
		t.Errorf("Expected 2 map entries after duplicate collapse, got %d", len(nutrientsMap))
	}

	if len(mockDataStore.GetNutrients()) != 3 {
		t.Errorf("Expected all 3 records kept in the slice, got %d", len(mockDataStore.GetNutrients()))
	}

	// Clean up
	scheduler.Stop()
}
