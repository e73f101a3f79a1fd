package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CBIIT/status-report/config"
	"github.com/CBIIT/status-report/domain"
)

type payloadModel struct {
	Model   string       `json:"model"`
	Prompt  string       `json:"prompt"`
	Options optionsModel `json:"options"`
	Stream  bool         `json:"stream"`
}

type optionsModel struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type generateResponse struct {
	Model      string `json:"model"`
	Response   string `json:"response"`
	DoneReason string `json:"done_reason"`
	Done       bool   `json:"done"`
}

// SummarizerClient talks to a locally hosted Ollama-style generate endpoint.
// Responses are requested non-streamed: the pipeline needs a complete string
// per issue, so partial tokens would only complicate error handling.
type SummarizerClient struct {
	client *http.Client
	logger *slog.Logger
	cfg    config.SummarizerConfig
}

// NewSummarizerClient creates an inference client from config.
func NewSummarizerClient(cfg config.SummarizerConfig, logger *slog.Logger) *SummarizerClient {
	return &SummarizerClient{
		// No Timeout on the client itself; Generate applies the configured
		// per-request deadline via context so timeouts map to ErrInferenceTimeout.
		client: &http.Client{},
		logger: logger,
		cfg:    cfg,
	}
}

// Generate sends a single prompt and returns the generated text. It does not
// retry; retry policy belongs to the orchestrator.
func (c *SummarizerClient) Generate(ctx context.Context, prompt string) (string, error) {
	apiURL := strings.TrimRight(c.cfg.Host, "/") + c.cfg.APIPath

	payload := payloadModel{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: optionsModel{
			Temperature: 0.0,
			TopP:        0.9,
			NumPredict:  500,
			NumCtx:      8192,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodPost, apiURL, strings.NewReader(string(jsonData)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugContext(ctx, "making request to inference API",
		"api_url", apiURL,
		"model", c.cfg.Model,
		"timeout", c.cfg.Timeout)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.logger.ErrorContext(ctx, "inference request timed out", "api_url", apiURL, "timeout", c.cfg.Timeout)
			return "", fmt.Errorf("%w: no response within %s", domain.ErrInferenceTimeout, c.cfg.Timeout)
		}

		c.logger.ErrorContext(ctx, "failed to send inference request", "error", err, "api_url", apiURL)

		return "", fmt.Errorf("%w: %w", domain.ErrInference, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "inference API returned non-200 status",
			"status", resp.Status, "code", resp.StatusCode, "body", string(bodyBytes))

		return "", fmt.Errorf("%w: status %s", domain.ErrInference, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	var apiResponse generateResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", domain.ErrInference, err)
	}

	if apiResponse.Response == "" {
		return "", fmt.Errorf("%w: response text missing from body", domain.ErrInference)
	}

	if !apiResponse.Done {
		c.logger.WarnContext(ctx, "received incomplete response from inference API",
			"done_reason", apiResponse.DoneReason)
	}

	generated := cleanGeneratedText(apiResponse.Response)

	c.logger.DebugContext(ctx, "generated text received", "length", len(generated))

	return generated, nil
}

// CheckHealth probes the inference host before the run starts. A failure here
// is advisory; per-issue failures are still tolerated downstream.
func (c *SummarizerClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Host, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInference, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check status %s", domain.ErrInference, resp.Status)
	}

	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// cleanGeneratedText strips role tags that occasionally leak through from the
// model and collapses the output into trimmed, non-empty lines.
func cleanGeneratedText(content string) string {
	content = strings.ReplaceAll(content, "<|system|>", "")
	content = strings.ReplaceAll(content, "<|user|>", "")
	content = strings.ReplaceAll(content, "<|assistant|>", "")

	lines := strings.Split(content, "\n")

	var cleanLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			cleanLines = append(cleanLines, trimmed)
		}
	}

	return strings.Join(cleanLines, "\n")
}
