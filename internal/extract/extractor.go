// Package extract turns free-text home automation requests into structured
// intent objects through a single LLM call with bounded retries and a
// best-effort JSON repair pass.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/observe"
)

// Defaults
const (
	DefaultMaxRetries     = 2
	DefaultAttemptTimeout = 15 * time.Second
)

// Request is a single JSON-mode chat completion request.
type Request struct {
	System string
	User   string
}

// Choice is one completion choice. Content is nil when the provider
// returned a message without a content field.
type Choice struct {
	Content *string
}

// Response is a provider-agnostic completion response.
// Raw is a printable form of the full response, kept for diagnostics.
type Response struct {
	Choices []Choice
	Raw     string
}

// Completer performs one chat completion call.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Outcome labels recorded per attempt
const (
	outcomeSuccess      = "success"
	outcomeRepaired     = "repaired"
	outcomeTransport    = "transport_error"
	outcomeEmptyChoices = "empty_choices"
	outcomeMissing      = "missing_content"
	outcomeEmptyContent = "empty_content"
	outcomeInvalidJSON  = "invalid_json"
)

// Result is a successful extraction.
type Result struct {
	// Data is the decoded JSON object, not validated against the catalogs.
	Data     map[string]any
	Attempts int
	Repaired bool
}

// ExtractionError is returned once the retry budget is exhausted.
type ExtractionError struct {
	Attempts    int
	RawContent  string
	RawResponse string
	Err         error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var (
	errEmptyChoices   = errors.New("LLM returned empty choices")
	errMissingContent = errors.New("LLM response missing content field")
	errEmptyContent   = errors.New("LLM returned empty content")
)

// Config controls the retry budget.
type Config struct {
	MaxRetries     int
	AttemptTimeout time.Duration
}

// Extractor wraps a Completer with retry and repair.
type Extractor struct {
	llm       Completer
	scenes    []string
	locations []string
	cfg       Config
	metrics   *observe.Metrics
}

// New creates an extractor constrained to the given scene and location names.
// metrics may be nil.
func New(llm Completer, scenes, locations []string, cfg Config, metrics *observe.Metrics) *Extractor {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	return &Extractor{
		llm:       llm,
		scenes:    scenes,
		locations: locations,
		cfg:       cfg,
		metrics:   metrics,
	}
}

// attempt is the state carried between retries.
type attempt struct {
	number      int
	rawContent  string
	rawResponse string
	err         error
}

// Extract runs up to MaxRetries+1 attempts. Retries are sequential with no
// backoff. The call is detached from the caller's cancellation; only the
// per-attempt timeout bounds it.
func (e *Extractor) Extract(ctx context.Context, text string) (*Result, error) {
	ctx = context.WithoutCancel(ctx)
	req := Request{
		System: SystemPrompt(e.scenes, e.locations),
		User:   UserPrompt(text),
	}

	maxAttempts := e.cfg.MaxRetries + 1
	var last attempt

	for n := 1; n <= maxAttempts; n++ {
		last = attempt{number: n}

		start := time.Now()
		result, outcome := e.try(ctx, req, &last)
		e.metrics.RecordLLMAttempt(ctx, outcome, time.Since(start))

		if result != nil {
			result.Attempts = n
			return result, nil
		}

		log.Warn().
			Err(last.err).
			Int("attempt", n).
			Int("max_attempts", maxAttempts).
			Str("outcome", outcome).
			Msg("LLM extraction attempt failed")
	}

	log.Error().
		Err(last.err).
		Int("attempts", maxAttempts).
		Str("raw_content", last.rawContent).
		Msg("LLM extraction exhausted retries")

	return nil, &ExtractionError{
		Attempts:    maxAttempts,
		RawContent:  last.rawContent,
		RawResponse: last.rawResponse,
		Err:         last.err,
	}
}

// try performs one attempt. On failure it records the reason in last and
// returns a nil result.
func (e *Extractor) try(ctx context.Context, req Request, last *attempt) (*Result, string) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	resp, err := e.llm.Complete(attemptCtx, req)
	if err != nil {
		last.err = err
		return nil, outcomeTransport
	}

	if len(resp.Choices) == 0 {
		last.err = errEmptyChoices
		last.rawResponse = resp.Raw
		return nil, outcomeEmptyChoices
	}

	content := resp.Choices[0].Content
	if content == nil {
		last.err = errMissingContent
		last.rawResponse = resp.Raw
		return nil, outcomeMissing
	}

	trimmed := strings.TrimSpace(*content)
	if trimmed == "" {
		last.err = errEmptyContent
		last.rawResponse = resp.Raw
		return nil, outcomeEmptyContent
	}

	log.Debug().Str("content", trimmed).Int("attempt", last.number).Msg("LLM response content")

	data, parseErr := parseObject(trimmed)
	if parseErr == nil {
		return &Result{Data: data}, outcomeSuccess
	}

	repaired := Repair(trimmed)
	if data, err := parseObject(repaired); err == nil {
		log.Warn().Str("repaired", repaired).Msg("JSON was fixed by repair pass")
		return &Result{Data: data, Repaired: true}, outcomeRepaired
	}

	last.err = fmt.Errorf("failed to parse JSON from LLM response: %w", parseErr)
	last.rawContent = trimmed
	last.rawResponse = resp.Raw
	return nil, outcomeInvalidJSON
}

// parseObject strictly decodes a JSON object.
func parseObject(s string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("JSON value is not an object")
	}
	return data, nil
}
