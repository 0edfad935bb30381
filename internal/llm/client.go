// Package llm provides a client for the Claude Messages API used for
// message classification, summarization, and reply drafting.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	defaultModel       = "claude-sonnet-4-20250514"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.7
	defaultAPIURL      = "https://api.anthropic.com/v1/messages"
	apiVersion         = "2023-06-01"

	// jsonTemperature is used for structured completions, where lower
	// variance keeps output parseable.
	jsonTemperature = 0.3
)

// Config holds the settings for a Client.
type Config struct {
	// APIKey authenticates against the Messages API.
	APIKey string

	// Model overrides the default model name.
	Model string

	// MaxTokens caps each completion.
	MaxTokens int

	// Temperature applies to free-text completions. Structured
	// completions always use a lower fixed temperature.
	Temperature float64

	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string

	// HTTPClient overrides the default http.Client.
	HTTPClient *http.Client

	// Logger receives per-call debug records. Nil disables logging.
	Logger *slog.Logger
}

// Client calls the Claude Messages API for single-shot completions.
type Client struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	baseURL     string
	client      *http.Client
	logger      *slog.Logger
}

// New creates a Client from cfg, filling in defaults for unset fields.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		baseURL:     cfg.BaseURL,
		client:      cfg.HTTPClient,
		logger:      cfg.Logger,
	}
}

// Complete sends a single user prompt and returns the text completion.
func (c *Client) Complete(
	ctx context.Context,
	system, prompt string,
) (string, error) {
	text, err := c.callAPI(ctx, system, prompt, c.temperature)
	if err != nil {
		return "", &GenerationError{Op: "complete", Err: err}
	}
	return text, nil
}

// CompleteJSON sends a single user prompt with an appended JSON-only
// instruction and unmarshals the completion into out. Malformed output
// is a GenerationError, never a silently-accepted partial structure.
func (c *Client) CompleteJSON(
	ctx context.Context,
	system, prompt string,
	out any,
) error {
	fullPrompt := prompt + "\n\nRespond ONLY with valid JSON. No other text."

	text, err := c.callAPI(ctx, system, fullPrompt, jsonTemperature)
	if err != nil {
		return &GenerationError{Op: "complete_json", Err: err}
	}

	cleaned := stripCodeFence(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &GenerationError{
			Op:  "complete_json",
			Err: fmt.Errorf("decoding structured output: %w", err),
		}
	}

	return nil
}

// callAPI makes a single request to the Messages API and returns the
// concatenated text content blocks.
func (c *Client) callAPI(
	ctx context.Context,
	system, prompt string,
	temperature float64,
) (string, error) {
	reqBody := apiRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
		System:      system,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling generation API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("response contained no text content")
	}

	c.logger.Debug("generation call completed",
		"model", c.model,
		"input_chars", len(prompt),
		"output_chars", len(parts[0]),
	)

	return strings.Join(parts, ""), nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models emit around JSON despite the JSON-only instruction.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
