// Package llm adapts the OpenAI chat completion API to the extractor.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/dokzlo13/lightcmd/internal/extract"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "o4-mini-2025-04-16"

// Options configures the OpenAI client.
type Options struct {
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// ErrNoAPIKey reports that no OpenAI api key is configured.
var ErrNoAPIKey = errors.New("openai: api key must not be empty")

// Unconfigured stands in for OpenAI when no api key is set. Every call fails
// with ErrNoAPIKey.
type Unconfigured struct{}

// Complete implements extract.Completer.
func (Unconfigured) Complete(context.Context, extract.Request) (*extract.Response, error) {
	return nil, ErrNoAPIKey
}

// OpenAI implements extract.Completer in JSON mode.
type OpenAI struct {
	client      oai.Client
	model       string
	temperature float64
}

// NewOpenAI creates a new OpenAI completer.
func NewOpenAI(apiKey string, opts Options) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == 0 {
		opts.Temperature = 1
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Retries are owned by the extractor.
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: opts.Timeout,
		}))
	}

	return &OpenAI{
		client:      oai.NewClient(reqOpts...),
		model:       opts.Model,
		temperature: opts.Temperature,
	}, nil
}

// Complete implements extract.Completer.
func (o *OpenAI) Complete(ctx context.Context, req extract.Request) (*extract.Response, error) {
	resp, err := o.client.Chat.Completions.New(ctx, o.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}

	out := &extract.Response{Raw: resp.RawJSON()}
	for _, choice := range resp.Choices {
		var c extract.Choice
		if choice.Message.JSON.Content.Valid() {
			content := choice.Message.Content
			c.Content = &content
		}
		out.Choices = append(out.Choices, c)
	}
	return out, nil
}

func (o *OpenAI) buildParams(req extract.Request) oai.ChatCompletionNewParams {
	return oai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(req.System),
			oai.UserMessage(req.User),
		},
		Temperature: param.NewOpt(o.temperature),
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
}
