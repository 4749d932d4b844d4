package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vmreport/internal/cli"
	"vmreport/internal/render"
	"vmreport/internal/services"
)

func main() {
	format := flag.String("format", "table", "output format: table or chart")
	out := flag.String("out", "", "output file (defaults to stdout for table, ./data/report.html for chart)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	reports := services.NewReportService(sqliteRepo, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload, err := reports.BuildReport(ctx)
	if err != nil {
		logger.Error("Report build failed", "error", err)
		os.Exit(1)
	}

	switch *format {
	case "table":
		if *out == "" {
			render.WriteTable(os.Stdout, payload)
			return
		}
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("Failed to create output file", "error", err, "path", *out)
			os.Exit(1)
		}
		render.WriteTable(f, payload)
		if err := f.Close(); err != nil {
			logger.Error("Failed to close output file", "error", err, "path", *out)
			os.Exit(1)
		}
	case "chart":
		path := *out
		if path == "" {
			path = cfg.ExportChartPath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			logger.Error("Failed to create output directory", "error", err, "path", path)
			os.Exit(1)
		}
		f, err := os.Create(path)
		if err != nil {
			logger.Error("Failed to create chart file", "error", err, "path", path)
			os.Exit(1)
		}
		if err := render.WriteChart(f, payload); err != nil {
			f.Close()
			logger.Error("Chart render failed", "error", err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			logger.Error("Failed to close chart file", "error", err, "path", path)
			os.Exit(1)
		}
		fmt.Println("chart written to", path)
	default:
		logger.Error("Unknown format", "format", *format)
		os.Exit(1)
	}
}
