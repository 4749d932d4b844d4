package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"vmreport/internal/cli"
	"vmreport/internal/core"
	"vmreport/internal/ports"
	"vmreport/internal/render"
	"vmreport/internal/services"
	gsheet "vmreport/internal/sheets/google"
)

func main() {
	once := flag.Bool("once", false, "run a single export and exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting report-exporter")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	reports := services.NewReportService(sqliteRepo, nil)

	var exporter ports.ReportExporter
	if cfg.SheetsExportEnabled() {
		var err error
		exporter, err = gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	runExport := func(ctx context.Context) error {
		payload, err := reports.BuildReport(ctx)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}

		if cfg.ExportChartPath != "" {
			if err := writeChartFile(cfg.ExportChartPath, payload); err != nil {
				return err
			}
			slog.InfoContext(ctx, "Chart written", "path", cfg.ExportChartPath)
		}

		if exporter != nil {
			ref, err := exporter.ExportReport(ctx, payload)
			if err != nil {
				return fmt.Errorf("export report: %w", err)
			}
			slog.InfoContext(ctx, "Report exported", "ref", ref)
		}

		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := runExport(runCtx); err != nil {
			logger.Error("Export failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Export complete")
		return
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.ExportSchedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := runExport(runCtx); err != nil {
			logger.Error("Scheduled export failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("Invalid export schedule", "schedule", cfg.ExportSchedule, "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("Export scheduler started", "schedule", cfg.ExportSchedule)

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Scheduler shutdown timeout reached")
	}
	logger.Info("Exporter shutdown complete")
}

func writeChartFile(path string, payload core.ReportPayload) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := render.WriteChart(f, payload); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
