// Package handlers provides HTTP request handlers for the nutrient export
// API endpoints. It implements the HTTPHandler interface with dependency
// injection and covers record listing, pagination, name search, health
// checks, and response formatting with input validation.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beanhealth/nutridb-export/converter/entities"
	"github.com/beanhealth/nutridb-export/interfaces"
	"github.com/beanhealth/nutridb-export/logging"
	"github.com/go-chi/chi/v5"
)

// pageSize is the number of records per page on /nutrients/{page}.
const pageSize = 25

// apiVersion is reported by the health endpoint.
const apiVersion = "1.0"

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator,
	healthChecker interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	LastExport    string         `json:"last_export"`
	DataAgeHours  float64        `json:"data_age_hours"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	UptimeHuman   string         `json:"uptime_human"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// formatUptimeHuman formats duration into a human-readable string
func (h *HTTPHandlerImpl) formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// ServeAllNutrients returns the full nutrient record array. The body only
// changes when an export swaps the container, so the response carries an
// ETag and honors If-None-Match.
func (h *HTTPHandlerImpl) ServeAllNutrients(w http.ResponseWriter, r *http.Request) {
	nutrients := h.dataStore.GetNutrients()

	data, err := json.Marshal(nutrients)
	if err != nil {
		logging.Error("Failed to marshal nutrient records", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	etag := GenerateETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if CheckETag(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", h.dataStore.GetLastExport().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ServePagedNutrients returns paginated nutrient records
func (h *HTTPHandlerImpl) ServePagedNutrients(w http.ResponseWriter, r *http.Request) {
	pageNumber := chi.URLParam(r, "page")
	page, err := strconv.Atoi(pageNumber)
	if err != nil || page < 1 {
		logging.Warn("Unusual user input", "page", pageNumber)
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	nutrients := h.dataStore.GetNutrients()
	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(nutrients) {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}

	if end > len(nutrients) {
		end = len(nutrients)
	}

	pagedNutrients := nutrients[start:end]
	totalItems := len(nutrients)
	maxPage := (totalItems + pageSize - 1) / pageSize

	response := map[string]any{
		"data":       pagedNutrients,
		"page":       page,
		"pageSize":   pageSize,
		"totalItems": totalItems,
		"maxPage":    maxPage,
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// FindNutrient searches for nutrient records by food name. An exact
// (case-insensitive) name hits the lookup map; otherwise the record list is
// scanned for substring matches.
func (h *HTTPHandlerImpl) FindNutrient(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing search term")
		return
	}

	// Validate input using the validator
	if err := h.validator.ValidateInput(name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	search := strings.ToLower(name)

	nutrientsMap := h.dataStore.GetNutrientsMap()
	if exact, ok := nutrientsMap[search]; ok {
		h.RespondWithJSON(w, http.StatusOK, []entities.Nutrient{exact})
		return
	}

	nutrients := h.dataStore.GetNutrients()
	results := []entities.Nutrient{}

	for _, record := range nutrients {
		if strings.Contains(strings.ToLower(record.Name), search) {
			results = append(results, record)
		}
	}

	// Always return 200 with a results array (empty if no matches)
	h.RespondWithJSON(w, http.StatusOK, results)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, err := h.healthChecker.HealthCheck()
	if err != nil {
		h.RespondWithError(w, http.StatusInternalServerError, "Health check failed")
		return
	}

	uptime := time.Since(h.dataStore.GetServerStartTime())

	lastExport, _ := details["last_export"].(string)
	dataAgeHours, _ := details["data_age_hours"].(float64)
	data, _ := details["data"].(map[string]any)
	system, _ := details["system"].(map[string]any)

	if data != nil {
		data["api_version"] = apiVersion
	}

	response := HealthResponse{
		Status:        status,
		LastExport:    lastExport,
		DataAgeHours:  dataAgeHours,
		UptimeSeconds: uptime.Seconds(),
		UptimeHuman:   h.formatUptimeHuman(uptime),
		Data:          data,
		System:        system,
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	h.RespondWithJSON(w, httpStatus, response)
}
