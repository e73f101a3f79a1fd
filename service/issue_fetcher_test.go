package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CBIIT/status-report/config"
	"github.com/CBIIT/status-report/domain"
)

// recordingSearcher captures the search arguments and returns canned results.
type recordingSearcher struct {
	err       error
	issues    []domain.Issue
	gotJQL    string
	gotMax    int
	callCount int
}

func (s *recordingSearcher) SearchIssues(_ context.Context, jql string, maxResults int) ([]domain.Issue, error) {
	s.callCount++
	s.gotJQL = jql
	s.gotMax = maxResults

	if s.err != nil {
		return nil, s.err
	}

	return s.issues, nil
}

func TestIssueFetcherService_FetchIssues(t *testing.T) {
	t.Run("should pass configured JQL and cap to the searcher", func(t *testing.T) {
		searcher := &recordingSearcher{issues: []domain.Issue{{Key: "NCI-1"}, {Key: "NCI-2"}}}
		cfg := config.TrackerConfig{JQL: "project = NCI", MaxResults: 25}

		svc := NewIssueFetcherService(searcher, cfg, testLoggerService())

		issues, err := svc.FetchIssues(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "project = NCI", searcher.gotJQL)
		assert.Equal(t, 25, searcher.gotMax)
		assert.Equal(t, 1, searcher.callCount)
		require.Len(t, issues, 2)
		assert.Equal(t, "NCI-1", issues[0].Key)
	})

	t.Run("should propagate fetch errors unmodified", func(t *testing.T) {
		searcher := &recordingSearcher{err: domain.ErrAuthentication}
		cfg := config.TrackerConfig{JQL: "project = NCI", MaxResults: 25}

		svc := NewIssueFetcherService(searcher, cfg, testLoggerService())

		_, err := svc.FetchIssues(context.Background())

		assert.ErrorIs(t, err, domain.ErrAuthentication)
	})
}
