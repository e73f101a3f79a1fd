// ABOUTME: Domain-level sentinel errors for the status-report pipeline
// ABOUTME: These errors are used with errors.Is() for error type checking
package domain

import "errors"

// Fetch-stage errors. Any of these aborts the run before summarization starts.
var (
	// ErrAuthentication indicates the tracker rejected the bearer token
	ErrAuthentication = errors.New("tracker authentication failed")

	// ErrQuery indicates the tracker rejected the search query
	ErrQuery = errors.New("tracker rejected the search query")

	// ErrTransport indicates the tracker could not be reached or answered
	// with a server-side failure
	ErrTransport = errors.New("tracker request failed")
)

// Summarization errors. These are recorded per issue and never abort the run.
var (
	// ErrInferenceTimeout indicates the inference endpoint did not answer
	// within the configured timeout
	ErrInferenceTimeout = errors.New("inference request timed out")

	// ErrInference indicates a non-2xx response or a malformed response body
	// from the inference endpoint
	ErrInference = errors.New("inference request failed")
)

// Render-stage errors. Any of these aborts the run with no output file.
var (
	// ErrRender indicates the report builder received nothing to render
	ErrRender = errors.New("nothing to render")

	// ErrPersistence indicates the report file could not be written
	ErrPersistence = errors.New("failed to persist report")
)
