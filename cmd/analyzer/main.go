package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tracewell/comm-forensics-service/internal/config"
	"github.com/tracewell/comm-forensics-service/internal/ingest"
	"github.com/tracewell/comm-forensics-service/internal/logger"
	"github.com/tracewell/comm-forensics-service/internal/normalizer"
	"github.com/tracewell/comm-forensics-service/internal/report"
	"github.com/tracewell/comm-forensics-service/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	inputDir := flag.String("input", cfg.InputDir, "directory containing sms*/call*/email* CSV or JSON files")
	outputDir := flag.String("out", cfg.OutputDir, "directory to write report artifacts to")
	profilePath := flag.String("profile", cfg.ProfilePath, "optional TOML analysis profile")
	flag.Parse()

	// Initialize logger
	log, err := logger.New(cfg.ServiceEnvironment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	log.Info("Starting analysis run",
		zap.String("environment", cfg.ServiceEnvironment),
		zap.String("input_dir", *inputDir))

	// Load and validate the analysis profile before touching any data.
	profile, err := config.LoadProfile(*profilePath)
	if err != nil {
		log.Fatal("Invalid analysis profile", zap.Error(err))
	}

	// Discover and read the source files.
	sources, err := ingest.Discover(*inputDir)
	if err != nil {
		log.Fatal("Failed to discover input files", zap.Error(err))
	}
	if len(sources) == 0 {
		log.Fatal("No sms*/call*/email* CSV or JSON files found",
			zap.String("input_dir", *inputDir))
	}

	records, err := ingest.NewReader(log).ReadAll(sources)
	if err != nil {
		log.Fatal("Failed to read input files", zap.Error(err))
	}

	// Run the pipeline.
	svc := service.NewAnalysisService(normalizer.New(), profile, log)
	result, err := svc.Run(records)
	if err != nil {
		log.Fatal("Analysis failed", zap.Error(err))
	}

	if result.Timeline.LowConfidence {
		log.Warn("User identity inference is low confidence; directions may be unreliable",
			zap.String("identity", result.Timeline.UserIdentity))
	}
	if result.SkippedRecords > 0 {
		log.Warn("Some records could not be normalized",
			zap.Int("skipped", result.SkippedRecords))
	}

	// Write the four export artifacts.
	artifacts := []struct {
		name  string
		write func(path string) error
	}{
		{"analysis_report.txt", func(p string) error { return report.WriteTextReport(p, result.Summary) }},
		{"timeline.csv", func(p string) error { return report.WriteTimelineCSV(p, result.Timeline.Events) }},
		{"contacts.csv", func(p string) error { return report.WriteContactsCSV(p, result.Contacts) }},
		{"summary.json", func(p string) error { return report.WriteSummaryJSON(p, result.Summary) }},
	}
	for _, artifact := range artifacts {
		path := filepath.Join(*outputDir, artifact.name)
		if err := artifact.write(path); err != nil {
			log.Fatal("Failed to write artifact", zap.String("path", path), zap.Error(err))
		}
		log.Info("Wrote artifact", zap.String("path", path))
	}

	log.Info("Analysis run finished",
		zap.Int("events", result.Summary.TotalEvents),
		zap.Int("skipped_records", result.SkippedRecords),
		zap.Float64("risk_score", result.GlobalRisk.Score))
}
