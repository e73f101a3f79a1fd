package service

import (
	"context"
	"log/slog"

	"github.com/CBIIT/status-report/config"
	"github.com/CBIIT/status-report/domain"
)

// IssueFetcherService implementation.
type issueFetcherService struct {
	searcher   TrackerSearcher
	logger     *slog.Logger
	jql        string
	maxResults int
}

// NewIssueFetcherService creates a new issue fetcher service.
func NewIssueFetcherService(searcher TrackerSearcher, cfg config.TrackerConfig, logger *slog.Logger) IssueFetcherService {
	return &issueFetcherService{
		searcher:   searcher,
		logger:     logger,
		jql:        cfg.JQL,
		maxResults: cfg.MaxResults,
	}
}

// FetchIssues performs the single fetch of the run. Any failure here is fatal
// to the pipeline; there is nothing to summarize without issues.
func (s *issueFetcherService) FetchIssues(ctx context.Context) ([]domain.Issue, error) {
	s.logger.InfoContext(ctx, "fetching issues", "jql", s.jql, "max_results", s.maxResults)

	issues, err := s.searcher.SearchIssues(ctx, s.jql, s.maxResults)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch issues", "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "issue fetch completed", "count", len(issues))

	return issues, nil
}
