package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CBIIT/status-report/config"
	"github.com/CBIIT/status-report/domain"
)

const (
	searchPath = "/rest/api/2/search"

	// Field list requested from the tracker. Anything outside this list is
	// never loaded, which keeps response payloads bounded.
	searchFields = "issuetype,key,summary,status,project,priority,assignee,reporter,description,created,updated"

	// Tracker timestamp layout, e.g. 2024-03-01T10:15:30.000+0000.
	trackerTimeLayout = "2006-01-02T15:04:05.000-0700"
)

// TrackerClient executes authenticated JQL searches against the tracker's
// REST API. It is stateless; one instance serves the whole run.
type TrackerClient struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
	token   string
}

// NewTrackerClient creates a tracker search client from config.
func NewTrackerClient(cfg config.TrackerConfig, logger *slog.Logger) *TrackerClient {
	return &TrackerClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
	}
}

type searchResponse struct {
	Issues     []searchIssue `json:"issues"`
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
}

type searchIssue struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Created     string    `json:"created"`
	Updated     string    `json:"updated"`
	Status      nameField `json:"status"`
	IssueType   nameField `json:"issuetype"`
	Priority    nameField `json:"priority"`
	Assignee    userField `json:"assignee"`
	Reporter    userField `json:"reporter"`
}

type nameField struct {
	Name string `json:"name"`
}

type userField struct {
	DisplayName string `json:"displayName"`
}

// SearchIssues runs a single JQL search capped at maxResults. Results beyond
// the cap are truncated by the tracker; the total is logged so operators can
// see when that happens. No retry is performed; a failed fetch fails the run.
func (c *TrackerClient) SearchIssues(ctx context.Context, jql string, maxResults int) ([]domain.Issue, error) {
	if strings.TrimSpace(jql) == "" {
		return nil, fmt.Errorf("%w: empty JQL query", domain.ErrQuery)
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("fields", searchFields)

	searchURL := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "searching tracker", "jql", jql, "max_results", maxResults)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "tracker request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(ctx, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("%w: failed to parse search response: %w", domain.ErrTransport, err)
	}

	issues := make([]domain.Issue, 0, len(search.Issues))
	for _, raw := range search.Issues {
		issues = append(issues, toDomainIssue(raw))
	}

	c.logger.InfoContext(ctx, "fetched issues from tracker",
		"returned", len(issues),
		"total", search.Total,
		"truncated", search.Total > len(issues))

	return issues, nil
}

func (c *TrackerClient) statusError(ctx context.Context, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	c.logger.ErrorContext(ctx, "tracker returned non-200 status",
		"status", resp.Status, "code", resp.StatusCode, "body", snippet)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %s", domain.ErrAuthentication, resp.Status)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: status %s: %s", domain.ErrQuery, resp.Status, snippet)
	default:
		return fmt.Errorf("%w: status %s", domain.ErrTransport, resp.Status)
	}
}

func toDomainIssue(raw searchIssue) domain.Issue {
	issue := domain.Issue{
		Key:         raw.Key,
		Title:       raw.Fields.Summary,
		Description: raw.Fields.Description,
		Status:      raw.Fields.Status.Name,
		Assignee:    raw.Fields.Assignee.DisplayName,
		IssueType:   raw.Fields.IssueType.Name,
		Priority:    raw.Fields.Priority.Name,
		Reporter:    raw.Fields.Reporter.DisplayName,
		Created:     parseTrackerTime(raw.Fields.Created),
		Updated:     parseTrackerTime(raw.Fields.Updated),
	}

	if issue.Title == "" {
		issue.Title = domain.UnknownPlaceholder
	}
	if issue.Status == "" {
		issue.Status = domain.UnknownPlaceholder
	}
	if issue.IssueType == "" {
		issue.IssueType = domain.UnknownPlaceholder
	}
	if issue.Priority == "" {
		issue.Priority = domain.UnknownPlaceholder
	}
	if issue.Assignee == "" {
		issue.Assignee = domain.UnassignedPlaceholder
	}
	if issue.Reporter == "" {
		issue.Reporter = domain.UnknownPlaceholder
	}

	return issue
}

func parseTrackerTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(trackerTimeLayout, value)
	if err != nil {
		return time.Time{}
	}

	return parsed
}
