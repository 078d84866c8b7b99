package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clamser/internal/config"
	"clamser/internal/dataprocessing"
	"clamser/internal/exporter"
	"clamser/internal/infrastructure"
	"clamser/internal/validation"
	"clamser/pkg/contracts/domain"
)

func main() {
	inDir := flag.String("in", "", "input directory with CLAMS export files (defaults to configured paths.input_dir)")
	outDir := flag.String("out", "", "output directory for report CSVs (defaults to configured paths.reports_dir)")
	configPath := flag.String("config", "clamser.yaml", "path to the YAML configuration file")
	parameter := flag.String("param", "", "parameter to analyze (overrides configured analysis.parameter; empty analyzes all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *inDir == "" {
		*inDir = cfg.Paths.InputDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}
	if *parameter != "" {
		cfg.Analysis.Parameter = *parameter
	}

	logger.Info("Starting CLAMS batch processing",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.String("parameter", cfg.Analysis.Parameter))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("Failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	files, err := readBatch(*inDir)
	if err != nil {
		logger.Error("Failed to read input directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := validation.NewUploadValidator(logger).ValidateBatch(files); err != nil {
		logger.Error("Upload batch rejected", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	batch, err := dataprocessing.NewBatchProcessor(logger).Process(ctx, files)
	if err != nil {
		logger.Error("Batch processing failed", slog.String("error", err.Error()))
		for _, report := range batch.Reports {
			if report.Status == dataprocessing.FileStatusFailed {
				logger.Error("File failed",
					slog.String("file", report.Name),
					slog.String("reason", report.Error))
			}
		}
		os.Exit(1)
	}

	bodyWeight, err := loadMassMap(cfg.Paths.BodyWeightFile, "body weight")
	if err != nil {
		logger.Error("Failed to load body weight data", slog.String("error", err.Error()))
		os.Exit(1)
	}
	leanMass, err := loadMassMap(cfg.Paths.LeanMassFile, "lean mass")
	if err != nil {
		logger.Error("Failed to load lean mass data", slog.String("error", err.Error()))
		os.Exit(1)
	}

	settings := cfg.Analysis.Settings()
	pipeline := dataprocessing.NewPipeline(logger)
	summarizer := dataprocessing.NewSummarizer(logger)

	processed := 0
	for name, table := range batch.Tables {
		if settings.SelectedParameter != "" && settings.SelectedParameter != name {
			continue
		}
		if err := processParameter(ctx, logger, pipeline, summarizer, table, settings, bodyWeight, leanMass, *outDir); err != nil {
			logger.Error("Failed to process parameter",
				slog.String("parameter", name),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		processed++
	}

	if processed == 0 {
		logger.Error("Selected parameter not found in batch",
			slog.String("parameter", settings.SelectedParameter),
			slog.Int("available", len(batch.Tables)))
		os.Exit(1)
	}

	logger.Info("CLAMS batch processing complete",
		slog.Int("parameters_processed", processed),
		slog.Int("animals", len(batch.AnimalIDs)))
}

// processParameter runs the pipeline for one parameter table and writes its
// report CSVs.
func processParameter(ctx context.Context, logger *slog.Logger, pipeline *dataprocessing.Pipeline, summarizer *dataprocessing.Summarizer, table *domain.ParameterTable, settings domain.AnalysisSettings, bodyWeight, leanMass domain.MassMap, outDir string) error {
	result, err := pipeline.Run(ctx, table, settings, bodyWeight, leanMass)
	if err != nil {
		return err
	}
	if result.Warning != "" {
		logger.Warn("Normalization warning",
			slog.String("parameter", table.Parameter),
			slog.String("warning", result.Warning),
			slog.Any("missing_animals", result.MissingMass))
	}

	perAnimal := summarizer.PerAnimal(result.Table)
	perGroup := summarizer.PerGroup(result.Table)
	metrics := summarizer.KeyMetrics(result.Table)

	logger.Info("Key metrics",
		slog.String("parameter", table.Parameter),
		slog.String("overall_average", metrics.OverallAverage),
		slog.String("light_average", metrics.LightAverage),
		slog.String("dark_average", metrics.DarkAverage))

	opts := exporter.Options{BOMPrefix: true}
	outputs := []struct {
		suffix string
		render func() ([]byte, error)
	}{
		{"animal_summary", func() ([]byte, error) { return exporter.AnimalSummaryCSV(perAnimal, opts) }},
		{"group_summary", func() ([]byte, error) { return exporter.GroupSummaryCSV(perGroup, opts) }},
		{"validation", func() ([]byte, error) { return exporter.ValidationTemplate(result.Table, opts) }},
	}
	for _, out := range outputs {
		data, err := out.render()
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%s_%s.csv", sanitizeName(table.Parameter), out.suffix))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("Report written", slog.String("path", path))
	}
	return nil
}

// readBatch loads every regular file in dir into memory as an upload batch.
func readBatch(dir string) ([]dataprocessing.UploadedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []dataprocessing.UploadedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, dataprocessing.UploadedFile{Name: entry.Name(), Data: data})
	}
	return files, nil
}

// loadMassMap reads a mass table from disk, accepting either the two-column
// CSV contract or an Excel workbook.
func loadMassMap(path, label string) (domain.MassMap, error) {
	if path == "" {
		return domain.MassMap{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return dataprocessing.ParseMassWorkbook(data, label)
	}
	return dataprocessing.ParseMassData(string(data), label)
}

// sanitizeName makes a parameter name safe for use in a file name.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}
