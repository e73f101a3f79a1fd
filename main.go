package main

import (
	"context"
	"os"

	"github.com/CBIIT/status-report/config"
	"github.com/CBIIT/status-report/driver"
	"github.com/CBIIT/status-report/logger"
	"github.com/CBIIT/status-report/orchestrator"
	"github.com/CBIIT/status-report/retry"
	"github.com/CBIIT/status-report/service"
)

func main() {
	log := logger.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	tracker := driver.NewTrackerClient(cfg.Tracker, log)
	inference := driver.NewSummarizerClient(cfg.Summarizer, log)

	if err := inference.CheckHealth(ctx); err != nil {
		// Per-issue failures are tolerated downstream, so an unhealthy
		// inference host degrades the report instead of blocking it.
		log.Warn("inference endpoint is not healthy, proceeding anyway", "error", err)
	}

	fetcher := service.NewIssueFetcherService(tracker, cfg.Tracker, log)
	summarizer := service.NewSummarizerService(inference, cfg.Summarizer, log)
	builder := service.NewReportBuilderService(log)

	var retrier *retry.Retrier
	if cfg.Retry.MaxAttempts > 1 {
		retrier = retry.NewRetrier(retry.RetryConfig{
			MaxAttempts:   cfg.Retry.MaxAttempts,
			BaseDelay:     cfg.Retry.BaseDelay,
			MaxDelay:      cfg.Retry.MaxDelay,
			BackoffFactor: cfg.Retry.BackoffFactor,
			JitterFactor:  cfg.Retry.JitterFactor,
		}, retry.IsTransient, log)
	}

	pipeline := orchestrator.NewPipeline(fetcher, summarizer, builder, retrier, orchestrator.Options{
		Title:       cfg.Report.Title,
		OutputPath:  cfg.Report.OutputPath,
		Concurrency: cfg.Pipeline.SummaryConcurrency,
	}, log)

	result, err := pipeline.Run(ctx)
	if err != nil {
		log.Error("pipeline aborted", "state", string(result.State), "error", err)
		os.Exit(1)
	}

	log.Info("report generated",
		"path", result.OutputPath,
		"issues", result.IssueCount,
		"summarized", result.SummarizedCount,
		"failed", result.FailedCount)
}
