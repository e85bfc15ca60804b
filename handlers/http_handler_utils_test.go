package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beanhealth/nutridb-export/converter/entities"
	"github.com/beanhealth/nutridb-export/health"
	"github.com/beanhealth/nutridb-export/interfaces"
	"github.com/go-chi/chi/v5"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

// TestDataFactory creates consistent test data across all tests
type TestDataFactory struct{}

func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// CreateNutrient creates a single test nutrient record with realistic values
func (f *TestDataFactory) CreateNutrient(name string, calories float64) entities.Nutrient {
	return entities.Nutrient{
		Name:         name,
		Calories:     calories,
		ProteinG:     7.9,
		FatG:         0.5,
		CarbG:        78.2,
		SodiumMg:     2.1,
		PotassiumMg:  110.5,
		PhosphorusMg: 96,
	}
}

// CreateNutrients creates multiple test nutrient records
func (f *TestDataFactory) CreateNutrients(count int) []entities.Nutrient {
	nutrients := make([]entities.Nutrient, count)
	for i := 0; i < count; i++ {
		nutrients[i] = f.CreateNutrient(fmt.Sprintf("Test Food %d", i+1), float64(100+i))
	}
	return nutrients
}

// CreateNutrientsMap creates a lowercased-name map for O(1) lookups
func (f *TestDataFactory) CreateNutrientsMap(nutrients []entities.Nutrient) map[string]entities.Nutrient {
	nutrientsMap := make(map[string]entities.Nutrient)
	for _, record := range nutrients {
		nutrientsMap[strings.ToLower(record.Name)] = record
	}
	return nutrientsMap
}

// ============================================================================
// MOCK BUILDERS
// ============================================================================

// MockDataStoreBuilder provides fluent interface for building mock data stores
type MockDataStoreBuilder struct {
	mock *MockDataStore
}

func NewMockDataStoreBuilder() *MockDataStoreBuilder {
	return &MockDataStoreBuilder{
		mock: &MockDataStore{
			nutrients:     []entities.Nutrient{},
			nutrientsMap:  make(map[string]entities.Nutrient),
			qualityReport: &interfaces.DataQualityReport{DuplicateNames: []string{}},
			lastExport:    time.Now(),
			exporting:     false,
		},
	}
}

func (b *MockDataStoreBuilder) WithNutrients(nutrients []entities.Nutrient) *MockDataStoreBuilder {
	b.mock.nutrients = nutrients
	b.mock.nutrientsMap = make(map[string]entities.Nutrient)
	for _, record := range nutrients {
		b.mock.nutrientsMap[strings.ToLower(record.Name)] = record
	}
	return b
}

func (b *MockDataStoreBuilder) WithExporting(exporting bool) *MockDataStoreBuilder {
	b.mock.exporting = exporting
	return b
}

func (b *MockDataStoreBuilder) WithLastExport(lastExport time.Time) *MockDataStoreBuilder {
	b.mock.lastExport = lastExport
	return b
}

func (b *MockDataStoreBuilder) WithQualityReport(report *interfaces.DataQualityReport) *MockDataStoreBuilder {
	b.mock.qualityReport = report
	return b
}

func (b *MockDataStoreBuilder) Build() *MockDataStore {
	return b.mock
}

// MockDataValidatorBuilder provides fluent interface for building mock validators
type MockDataValidatorBuilder struct {
	mock *MockDataValidator
}

func NewMockDataValidatorBuilder() *MockDataValidatorBuilder {
	return &MockDataValidatorBuilder{
		mock: &MockDataValidator{
			validateInputError:    nil,
			validateNutrientError: nil,
		},
	}
}

func (b *MockDataValidatorBuilder) WithInputError(err error) *MockDataValidatorBuilder {
	b.mock.validateInputError = err
	return b
}

func (b *MockDataValidatorBuilder) WithNutrientError(err error) *MockDataValidatorBuilder {
	b.mock.validateNutrientError = err
	return b
}

func (b *MockDataValidatorBuilder) Build() *MockDataValidator {
	return b.mock
}

// MockHealthCheckerBuilder provides fluent interface for building mock health checkers
type MockHealthCheckerBuilder struct {
	mock *MockHealthChecker
}

func NewMockHealthCheckerBuilder() *MockHealthCheckerBuilder {
	return &MockHealthCheckerBuilder{
		mock: &MockHealthChecker{
			status: "healthy",
			details: map[string]any{
				"last_export":    time.Now().Format(time.RFC3339),
				"data_age_hours": 1.0,
				"data":           map[string]any{"nutrients": 0},
				"system":         map[string]any{"goroutines": 1},
			},
		},
	}
}

func (b *MockHealthCheckerBuilder) WithStatus(status string) *MockHealthCheckerBuilder {
	b.mock.status = status
	return b
}

func (b *MockHealthCheckerBuilder) WithError(err error) *MockHealthCheckerBuilder {
	b.mock.err = err
	return b
}

func (b *MockHealthCheckerBuilder) Build() *MockHealthChecker {
	return b.mock
}

// newTestHandler wires a handler over the mocks with a real health checker,
// so health responses derive from the mock store's state.
func newTestHandler(store interfaces.DataStore, validator interfaces.DataValidator) interfaces.HTTPHandler {
	return NewHTTPHandler(store, validator, health.NewHealthChecker(store, "06:00;18:00"))
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string, urlParams map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	bodyStr := resp.Body.String()
	if bodyStr == "" {
		h.t.Error("Response body should not be empty")
	}

	err := json.Unmarshal([]byte(bodyStr), target)
	if err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	var errorResp map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &errorResp)
	if err != nil {
		h.t.Errorf("Error response should be valid JSON, got error: %v", err)
	}

	// Check that it has error fields
	if _, ok := errorResp["message"]; !ok {
		h.t.Error("Error response should have message field")
	}
	if _, ok := errorResp["code"]; !ok {
		h.t.Error("Error response should have code field")
	}
}

// AssertPaginationResponse asserts pagination-specific response structure
func (h *HTTPTestHelper) AssertPaginationResponse(resp *httptest.ResponseRecorder, expectedPage, expectedMaxPage, expectedDataCount int) {
	var response map[string]any
	h.AssertJSONResponse(resp, http.StatusOK, &response)

	if response["page"] != float64(expectedPage) {
		h.t.Errorf("Page number mismatch: expected %d, got %v", expectedPage, response["page"])
	}
	if response["maxPage"] != float64(expectedMaxPage) {
		h.t.Errorf("Max page mismatch: expected %d, got %v", expectedMaxPage, response["maxPage"])
	}

	data, ok := response["data"].([]any)
	if !ok {
		h.t.Error("Data field should be an array")
	}
	if len(data) != expectedDataCount {
		h.t.Errorf("Data count mismatch: expected %d, got %d", expectedDataCount, len(data))
	}
}

// AssertHealthResponse asserts health check response structure
func (h *HTTPTestHelper) AssertHealthResponse(resp *httptest.ResponseRecorder, expectedStatus string) {
	var response map[string]any
	h.AssertJSONResponse(resp, http.StatusOK, &response)

	if response["status"] != expectedStatus {
		h.t.Errorf("Status mismatch: expected %s, got %v", expectedStatus, response["status"])
	}
	if _, ok := response["data"]; !ok {
		h.t.Error("Response should have data field")
	}
	if _, ok := response["system"]; !ok {
		h.t.Error("Response should have system field")
	}
}

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// MockDataStore implements interfaces.DataStore for testing
type MockDataStore struct {
	nutrients       []entities.Nutrient
	nutrientsMap    map[string]entities.Nutrient
	qualityReport   *interfaces.DataQualityReport
	lastExport      time.Time
	serverStartTime time.Time
	exporting       bool

	// Method call tracking
	getNutrientsCalled    bool
	getNutrientsMapCalled bool
	beginExportCalled     bool
	endExportCalled       bool
	updateDataCalled      bool
}

func (m *MockDataStore) GetNutrients() []entities.Nutrient {
	m.getNutrientsCalled = true
	return m.nutrients
}

func (m *MockDataStore) GetNutrientsMap() map[string]entities.Nutrient {
	m.getNutrientsMapCalled = true
	return m.nutrientsMap
}

func (m *MockDataStore) GetQualityReport() *interfaces.DataQualityReport {
	return m.qualityReport
}

func (m *MockDataStore) GetLastExport() time.Time {
	return m.lastExport
}

func (m *MockDataStore) IsExporting() bool {
	return m.exporting
}

func (m *MockDataStore) GetServerStartTime() time.Time {
	return m.serverStartTime
}

func (m *MockDataStore) SetServerStartTime(t time.Time) {
	m.serverStartTime = t
}

func (m *MockDataStore) UpdateData(nutrients []entities.Nutrient, nutrientsMap map[string]entities.Nutrient,
	report *interfaces.DataQualityReport) {
	m.updateDataCalled = true
	m.nutrients = nutrients
	m.nutrientsMap = nutrientsMap
	m.qualityReport = report
	m.lastExport = time.Now()
}

func (m *MockDataStore) BeginExport() bool {
	m.beginExportCalled = true
	m.exporting = true
	return true
}

func (m *MockDataStore) EndExport() {
	m.endExportCalled = true
	m.exporting = false
}

// MockDataValidator implements interfaces.DataValidator for testing
type MockDataValidator struct {
	validateInputError    error
	validateNutrientError error

	validateInputCalled bool
	lastValidatedInput  string
}

func (m *MockDataValidator) ValidateNutrient(record *entities.Nutrient) error {
	return m.validateNutrientError
}

func (m *MockDataValidator) ValidateRecords(records []entities.Nutrient) error {
	return m.validateNutrientError
}

func (m *MockDataValidator) ReportDataQuality(records []entities.Nutrient) *interfaces.DataQualityReport {
	return &interfaces.DataQualityReport{
		DuplicateNames:   []string{},
		EmptyNames:       0,
		AllZeroRecords:   0,
		ZeroCalorieCount: 0,
	}
}

func (m *MockDataValidator) ValidateInput(input string) error {
	m.validateInputCalled = true
	m.lastValidatedInput = input
	return m.validateInputError
}

// MockHealthChecker implements interfaces.HealthChecker for testing
type MockHealthChecker struct {
	status  string
	details map[string]any
	err     error
	next    time.Time
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, error) {
	return m.status, m.details, m.err
}

func (m *MockHealthChecker) CalculateNextExport() time.Time {
	return m.next
}
