package service

import (
	"context"

	"github.com/CBIIT/status-report/domain"
)

// IssueFetcherService retrieves the issues selected by the configured JQL query.
type IssueFetcherService interface {
	FetchIssues(ctx context.Context) ([]domain.Issue, error)
}

// SummarizerService produces a best-effort summary for a single issue.
type SummarizerService interface {
	Summarize(ctx context.Context, issue domain.Issue) (string, error)
}

// ReportBuilderService assembles and persists the report document.
type ReportBuilderService interface {
	Render(title string, reports []domain.IssueReport) ([]byte, error)
	Save(data []byte, path string) error
}

// TrackerSearcher is the driver-level contract for JQL searches.
type TrackerSearcher interface {
	SearchIssues(ctx context.Context, jql string, maxResults int) ([]domain.Issue, error)
}

// GenerateClient is the driver-level contract for the inference endpoint.
type GenerateClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
