package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/beanhealth/nutridb-export/config"
	"github.com/beanhealth/nutridb-export/converter"
	"github.com/beanhealth/nutridb-export/data"
	"github.com/beanhealth/nutridb-export/logging"
	"github.com/beanhealth/nutridb-export/scheduler"
	"github.com/beanhealth/nutridb-export/server"
	"github.com/joho/godotenv"
)

func main() {
	// Read the env variables, falling back to the executable directory so the
	// service finds its .env when started from elsewhere
	if err := godotenv.Load(); err != nil {
		if ex, exErr := os.Executable(); exErr == nil {
			_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions(cfg.LogDir, cfg.Env, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer logging.CloseLogger()

	switch cfg.RunMode {
	case config.ModeServe:
		runServe(cfg)
	default:
		runConvert(cfg)
	}
}

// runConvert performs a single export and reports the outcome as one line on
// stdout
func runConvert(cfg *config.Config) {
	conv := converter.NewNutrientConverter(cfg.SheetName)

	nutrients, stats, err := conv.Convert(context.Background(), cfg.SourcePath, cfg.DestPath)
	if err != nil {
		logging.Error("Conversion failed", "error", err, "source", cfg.SourcePath)
		fmt.Printf("Conversion failed: %v\n", err)
		logging.CloseLogger()
		os.Exit(1)
	}

	logging.Info("Databank export completed",
		"record_count", len(nutrients),
		"rows_read", stats.RowsRead,
		"dest", cfg.DestPath)
	fmt.Printf("Successfully exported %d nutrient records to %s\n", len(nutrients), cfg.DestPath)
}

// runServe loads the databank, keeps it fresh on the export schedule and
// serves it over HTTP until interrupted
func runServe(cfg *config.Config) {
	dataStore := data.NewDataContainer()
	dataStore.SetServerStartTime(time.Now())

	conv := converter.NewNutrientConverter(cfg.SheetName)
	sched := scheduler.NewScheduler(dataStore, conv, cfg.SourcePath, cfg.DestPath, cfg.ExportTimes)

	if err := sched.Start(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		logging.CloseLogger()
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, dataStore)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error", "error", err)
	}
}
