package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/CBIIT/status-report/domain"
	"github.com/CBIIT/status-report/retry"
	"github.com/CBIIT/status-report/service"
)

// State names the pipeline's position in its run. A run ends in StateDone or
// StateAborted; no state survives across runs.
type State string

const (
	StateStart       State = "start"
	StateFetching    State = "fetching"
	StateSummarizing State = "summarizing"
	StateRendering   State = "rendering"
	StateDone        State = "done"
	StateAborted     State = "aborted"
)

// Options configures a single pipeline run.
type Options struct {
	Title       string
	OutputPath  string
	Concurrency int
}

// RunResult reports how a run ended.
type RunResult struct {
	RunID           string
	State           State
	OutputPath      string
	IssueCount      int
	SummarizedCount int
	FailedCount     int
}

// Pipeline drives the three stages in order: fetch once, summarize each issue
// independently, render one document from the combined results.
type Pipeline struct {
	fetcher    service.IssueFetcherService
	summarizer service.SummarizerService
	builder    service.ReportBuilderService
	retrier    *retry.Retrier
	logger     *slog.Logger
	opts       Options
}

// NewPipeline creates a pipeline. retrier may be nil, in which case each issue
// gets exactly one summarization attempt.
func NewPipeline(
	fetcher service.IssueFetcherService,
	summarizer service.SummarizerService,
	builder service.ReportBuilderService,
	retrier *retry.Retrier,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Pipeline{
		fetcher:    fetcher,
		summarizer: summarizer,
		builder:    builder,
		retrier:    retrier,
		logger:     logger,
		opts:       opts,
	}
}

// Run executes one fetch-summarize-render pass. Fetch and render failures
// abort the run and are returned to the caller unmodified; per-issue
// summarization failures are recorded on their SummaryResult and only appear
// inside the rendered report.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:      uuid.New().String(),
		State:      StateStart,
		OutputPath: p.opts.OutputPath,
	}

	log := p.logger.With("run_id", result.RunID)

	result.State = StateFetching

	issues, err := p.fetcher.FetchIssues(ctx)
	if err != nil {
		result.State = StateAborted
		log.ErrorContext(ctx, "run aborted during fetch", "error", err)

		return result, err
	}

	result.IssueCount = len(issues)
	result.State = StateSummarizing

	results := p.summarizeAll(ctx, log, issues)

	reports := make([]domain.IssueReport, len(issues))
	for i, issue := range issues {
		reports[i] = domain.IssueReport{Issue: issue, Result: results[i]}

		if results[i].Failed() {
			result.FailedCount++
		} else {
			result.SummarizedCount++
		}
	}

	result.State = StateRendering

	data, err := p.builder.Render(p.opts.Title, reports)
	if err != nil {
		result.State = StateAborted
		log.ErrorContext(ctx, "run aborted during render", "error", err)

		return result, err
	}

	if err := p.builder.Save(data, p.opts.OutputPath); err != nil {
		result.State = StateAborted
		log.ErrorContext(ctx, "run aborted while saving report", "error", err)

		return result, err
	}

	result.State = StateDone

	log.InfoContext(ctx, "run completed",
		"issues", result.IssueCount,
		"summarized", result.SummarizedCount,
		"failed", result.FailedCount,
		"output", result.OutputPath)

	return result, nil
}

// summarizeAll produces exactly one SummaryResult per issue, in fetch order.
// With Concurrency 1 issues are processed sequentially; otherwise a bounded
// worker pool is used and results land back at their original index, so the
// ordering guarantee holds regardless of execution concurrency.
func (p *Pipeline) summarizeAll(ctx context.Context, log *slog.Logger, issues []domain.Issue) []domain.SummaryResult {
	results := make([]domain.SummaryResult, len(issues))

	if p.opts.Concurrency <= 1 {
		for i, issue := range issues {
			results[i] = p.summarizeOne(ctx, log, issue, i, len(issues))
		}

		return results
	}

	sem := make(chan struct{}, p.opts.Concurrency)

	var wg sync.WaitGroup

	for i, issue := range issues {
		wg.Add(1)

		go func(idx int, is domain.Issue) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = p.summarizeOne(ctx, log, is, idx, len(issues))
		}(i, issue)
	}

	wg.Wait()

	return results
}

func (p *Pipeline) summarizeOne(ctx context.Context, log *slog.Logger, issue domain.Issue, idx, total int) domain.SummaryResult {
	log.InfoContext(ctx, "summarizing issue", "issue_key", issue.Key, "position", idx+1, "total", total)

	var summary string

	operation := func() error {
		generated, err := p.summarizer.Summarize(ctx, issue)
		if err != nil {
			return err
		}

		summary = generated

		return nil
	}

	var err error
	if p.retrier != nil {
		err = p.retrier.Do(ctx, operation)
	} else {
		err = operation()
	}

	if err != nil {
		log.WarnContext(ctx, "summarization failed, recording failure and continuing",
			"issue_key", issue.Key, "error", err)

		return domain.SummaryResult{IssueKey: issue.Key, Err: err}
	}

	return domain.SummaryResult{IssueKey: issue.Key, Summary: summary}
}
