package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"healthjournal/internal/config"
)

var (
	ErrNotConfigured = errors.New("OPENAI_API_KEY is not configured")
	ErrEmptyAnswer   = errors.New("openai response answer is empty")
	ErrIncomplete    = errors.New("openai response incomplete due max_output_tokens")
)

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	// JSON asks the model for a single JSON object reply.
	JSON bool
}

type Response struct {
	Answer   string
	Model    string
	Usage    Usage
	Attempts int
}

type Client interface {
	Query(ctx context.Context, req Request) (Response, error)
}

// HTTPError is a non-2xx reply from the model endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai responses error (%d): %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

type OpenAIClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	maxRetries      int
	backoff         time.Duration
	limiter         *rate.Limiter
	httpClient      *http.Client
}

func NewOpenAIClient(cfg config.Config) *OpenAIClient {
	var limiter *rate.Limiter
	if cfg.AIRequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.AIRequestsPerMinute)), 5)
	}
	return &OpenAIClient{
		apiKey:          strings.TrimSpace(cfg.OpenAIAPIKey),
		baseURL:         strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/"),
		model:           strings.TrimSpace(cfg.OpenAIModel),
		maxOutputTokens: cfg.AIMaxOutputTokens,
		maxRetries:      cfg.AIMaxRetries,
		backoff:         250 * time.Millisecond,
		limiter:         limiter,
		httpClient: &http.Client{
			Timeout: cfg.AITimeout(),
		},
	}
}

func (c *OpenAIClient) Configured() bool {
	return c != nil && c.apiKey != "" && c.baseURL != "" && c.model != ""
}

// Query sends one prompt and retries transient failures up to maxRetries
// additional times. A reply cut short by the output budget is retried with a
// doubled budget.
func (c *OpenAIClient) Query(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, ErrNotConfigured
	}
	if c.baseURL == "" {
		return Response{}, errors.New("OPENAI_BASE_URL is not configured")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	if model == "" {
		return Response{}, errors.New("OPENAI_MODEL is not configured")
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		return Response{}, errors.New("AI request input is empty")
	}

	budget := c.maxOutputTokens
	if budget <= 0 {
		budget = 1200
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, jitter(c.backoff<<(attempt-1))); err != nil {
				return Response{}, err
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return Response{}, fmt.Errorf("rate limiter: %w", err)
			}
		}

		resp, err := c.call(ctx, model, req, budget)
		if err == nil {
			resp.Attempts = attempt + 1
			return resp, nil
		}
		lastErr = err
		if errors.Is(err, ErrIncomplete) {
			budget *= 2
			continue
		}
		if !retryable(err) || ctx.Err() != nil {
			return Response{}, err
		}
	}
	return Response{}, lastErr
}

type inputText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inputBlock struct {
	Role    string      `json:"role"`
	Content []inputText `json:"content"`
}

func (c *OpenAIClient) call(ctx context.Context, model string, req Request, budget int) (Response, error) {
	input := make([]inputBlock, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		input = append(input, inputBlock{Role: "system", Content: []inputText{{Type: "input_text", Text: system}}})
	}
	input = append(input, inputBlock{Role: "user", Content: []inputText{{Type: "input_text", Text: strings.TrimSpace(req.UserPrompt)}}})

	text := map[string]any{"verbosity": "low"}
	if req.JSON {
		text["format"] = map[string]any{"type": "json_object"}
	}
	payload := map[string]any{
		"model":             model,
		"input":             input,
		"max_output_tokens": budget,
		"reasoning":         map[string]any{"effort": "low"},
		"text":              text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, err
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return Response{}, &HTTPError{StatusCode: httpResp.StatusCode, Body: truncate(string(raw), 500)}
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed == nil {
		return Response{}, fmt.Errorf("decode openai response: %w", err)
	}
	answer := extractAnswer(parsed)
	if answer == "" {
		if incompleteForBudget(parsed) {
			return Response{}, ErrIncomplete
		}
		return Response{}, ErrEmptyAnswer
	}

	usage, _ := parsed["usage"].(map[string]any)
	modelName := strings.TrimSpace(stringValue(parsed["model"]))
	if modelName == "" {
		modelName = model
	}
	return Response{
		Answer: answer,
		Model:  modelName,
		Usage: Usage{
			PromptTokens:     int(numberValue(usage, "input_tokens", "prompt_tokens")),
			CompletionTokens: int(numberValue(usage, "output_tokens", "completion_tokens")),
			TotalTokens:      int(numberValue(usage, "total_tokens")),
		},
	}, nil
}

func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := float64(base) * 0.2
	return time.Duration(float64(base) - delta + rand.Float64()*2*delta)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func extractAnswer(data map[string]any) string {
	if direct := strings.TrimSpace(stringValue(data["output_text"])); direct != "" {
		return direct
	}
	outputs, _ := data["output"].([]any)
	parts := make([]string, 0, len(outputs))
	for _, item := range outputs {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		contents, _ := block["content"].([]any)
		for _, raw := range contents {
			content, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			kind := strings.ToLower(strings.TrimSpace(stringValue(content["type"])))
			if kind != "output_text" && kind != "text" {
				continue
			}
			if text := strings.TrimSpace(textValue(content)); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func textValue(content map[string]any) string {
	if text := stringValue(content["text"]); text != "" {
		return text
	}
	if nested, ok := content["text"].(map[string]any); ok {
		return stringValue(nested["value"])
	}
	return ""
}

func incompleteForBudget(parsed map[string]any) bool {
	details, ok := parsed["incomplete_details"].(map[string]any)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(stringValue(details["reason"])), "max_output_tokens")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func numberValue(data map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := data[key].(float64); ok {
			return v
		}
	}
	return 0
}

func truncate(value string, limit int) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "...(truncated)"
}
