// Package scheduler provides automated databank export scheduling for the
// nutrient export service. It re-runs the spreadsheet conversion on a daily
// wall-clock schedule and swaps the refreshed records into the data container
// using dependency injection.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/beanhealth/nutridb-export/converter/entities"
	"github.com/beanhealth/nutridb-export/interfaces"
	"github.com/beanhealth/nutridb-export/logging"
	"github.com/beanhealth/nutridb-export/metrics"
	"github.com/beanhealth/nutridb-export/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler re-runs the databank export on a schedule using injected
// dependencies
type Scheduler struct {
	dataStore   interfaces.DataStore
	converter   interfaces.Converter
	sourcePath  string
	destPath    string
	exportTimes string
	scheduler   *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// exportTimes holds the daily re-export slots as semicolon-separated HH:MM
// values, the format gocron takes directly.
func NewScheduler(dataStore interfaces.DataStore, converter interfaces.Converter,
	sourcePath, destPath, exportTimes string) *Scheduler {
	return &Scheduler{
		dataStore:   dataStore,
		converter:   converter,
		sourcePath:  sourcePath,
		destPath:    destPath,
		exportTimes: exportTimes,
		scheduler:   gocron.NewScheduler(time.Local),
	}
}

// Start runs the initial export and schedules the daily re-exports
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.runExport(); err != nil {
		logging.Error("Failed to perform initial export", "error", err)
		return fmt.Errorf("initial export failed: %w", err)
	}

	// Re-export daily at the configured slots
	_, err := s.scheduler.Every(1).Days().At(s.exportTimes).Do(func() {
		if err := s.runExport(); err != nil {
			logging.Error("Failed to re-export databank", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule exports", "error", err)
		return fmt.Errorf("failed to schedule exports: %w", err)
	}

	s.scheduler.StartAsync()

	// Start staleness monitoring
	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runExport performs a complete databank export using injected dependencies
func (s *Scheduler) runExport() error {
	// Prevent concurrent exports
	if !s.dataStore.BeginExport() {
		logging.Info("Export already in progress, skipping...")
		metrics.ExportRunsTotal.WithLabelValues("skipped").Inc()
		return nil
	}
	defer s.dataStore.EndExport()

	logging.Info("Starting databank export", "source", s.sourcePath)
	start := time.Now()

	nutrients, stats, err := s.converter.Convert(context.Background(), s.sourcePath, s.destPath)
	if err != nil {
		metrics.ExportRunsTotal.WithLabelValues("failure").Inc()
		logging.Error("Failed to convert databank", "error", err)
		return fmt.Errorf("failed to convert databank: %w", err)
	}

	// Lookup map keyed by lowercased food name
	nutrientsMap := make(map[string]entities.Nutrient, len(nutrients))
	for i := range nutrients {
		nutrientsMap[strings.ToLower(nutrients[i].Name)] = nutrients[i]
	}

	validator := validation.NewDataValidator()
	report := validator.ReportDataQuality(nutrients)

	// Log duplicate food names
	if len(report.DuplicateNames) > 0 {
		logging.Warn("Duplicate food names detected",
			"total", len(report.DuplicateNames),
			"names", report.DuplicateNames,
		)
	}

	// Log records with blank names
	if report.EmptyNames > 0 {
		logging.Warn("Records with empty food names", "count", report.EmptyNames)
	}

	// Log records where every nutrient value is zero
	if report.AllZeroRecords > 0 {
		logging.Warn("Records with all-zero nutrient values", "count", report.AllZeroRecords)
	}

	// Atomic update using injected data store (including report)
	s.dataStore.UpdateData(nutrients, nutrientsMap, report)

	elapsed := time.Since(start)

	cellsFilled := 0
	for _, n := range stats.CellsFilled {
		cellsFilled += n
	}

	metrics.ExportRunsTotal.WithLabelValues("success").Inc()
	metrics.ExportDuration.Observe(elapsed.Seconds())
	metrics.ExportRecords.Set(float64(len(nutrients)))
	metrics.ExportCellsFilledTotal.Add(float64(cellsFilled))

	logging.Info("Databank export completed",
		"duration", elapsed.String(),
		"record_count", len(nutrients),
		"rows_read", stats.RowsRead,
		"cells_filled", cellsFilled,
	)

	return nil
}

// startStalenessMonitoring warns when scheduled exports stop landing
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastExport := s.dataStore.GetLastExport()
			if time.Since(lastExport) > 25*time.Hour {
				logging.Warn("Databank hasn't been re-exported in over 25 hours")
			}
		}
	}()
}
