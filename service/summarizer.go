package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/CBIIT/status-report/config"
	"github.com/CBIIT/status-report/domain"
)

const promptTemplate = `You are a project manager assistant. Summarize the following issue in two or three concise, professional sentences suitable for a monthly status report. Focus on what the work is about and its current state. Begin directly with the summary without any preamble.

ISSUE:
---
%s
---
`

// SummarizerService implementation.
type summarizerService struct {
	client         GenerateClient
	logger         *slog.Logger
	maxPromptRunes int
}

// NewSummarizerService creates a new summarizer service.
func NewSummarizerService(client GenerateClient, cfg config.SummarizerConfig, logger *slog.Logger) SummarizerService {
	return &summarizerService{
		client:         client,
		logger:         logger,
		maxPromptRunes: cfg.MaxPromptRunes,
	}
}

// Summarize builds the prompt for one issue and requests a complete,
// non-streamed reply. Failures are returned to the caller untouched; the
// orchestrator decides whether they abort anything (they do not).
func (s *summarizerService) Summarize(ctx context.Context, issue domain.Issue) (string, error) {
	text := issueText(issue)

	truncated := truncateRunes(text, s.maxPromptRunes)
	if len(truncated) < len(text) {
		s.logger.DebugContext(ctx, "issue text truncated for prompt",
			"issue_key", issue.Key,
			"original_runes", utf8.RuneCountInString(text),
			"max_runes", s.maxPromptRunes)
	}

	prompt := fmt.Sprintf(promptTemplate, truncated)

	summary, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "summary generated",
		"issue_key", issue.Key,
		"summary_length", len(summary))

	return summary, nil
}

// issueText renders the fields the model sees. The same issue always yields
// the same text, which keeps truncation deterministic.
func issueText(issue domain.Issue) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Key: %s\n", issue.Key)
	fmt.Fprintf(&b, "Title: %s\n", issue.Title)
	fmt.Fprintf(&b, "Type: %s\n", issue.IssueType)
	fmt.Fprintf(&b, "Status: %s\n", issue.Status)

	if issue.Description != "" {
		fmt.Fprintf(&b, "Description:\n%s\n", issue.Description)
	}

	return b.String()
}

// truncateRunes cuts s to at most max runes. Rune count is used instead of
// byte count so multibyte text is not cut mid-character.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)

	return string(runes[:max])
}
