package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"leadscout/internal/observability/metrics"
	"leadscout/internal/resilience/circuitbreaker"
	"leadscout/internal/resilience/retry"
)

// Provider is an LLM backend capable of one-shot structured extraction.
type Provider interface {
	// Name identifies the provider in logs and usage telemetry.
	Name() string

	// Complete sends the prompt and returns the raw model output.
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMConfig holds the shared LLM call parameters.
type LLMConfig struct {
	// Model is the provider model identifier.
	Model string

	// MaxTokens bounds the response; extraction responses are tiny JSON
	// objects, so the budget stays small.
	MaxTokens int

	// Temperature near zero keeps field extraction deterministic.
	Temperature float32

	// Timeout is the maximum duration for a single extraction call.
	Timeout time.Duration
}

// LoadLLMConfig loads LLM parameters from environment variables with
// defaults suited to the given provider.
func LoadLLMConfig(provider string) LLMConfig {
	cfg := LLMConfig{
		MaxTokens:   200,
		Temperature: 0.1,
		Timeout:     30 * time.Second,
	}
	switch provider {
	case "anthropic":
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	default:
		cfg.Model = "deepseek-chat"
	}
	if m := os.Getenv("LLM_MODEL"); m != "" {
		cfg.Model = m
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// UsageLog is the process-wide LLM call counter, mutated under a small lock.
// Cost telemetry only; no behavior depends on it.
type UsageLog struct {
	mu       sync.Mutex
	calls    int64
	failures int64
	tokens   int64
}

// RecordCall adds one call and its token usage to the log.
func (u *UsageLog) RecordCall(tokens int64, failed bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.tokens += tokens
	if failed {
		u.failures++
	}
}

// Snapshot returns the current counters.
func (u *UsageLog) Snapshot() (calls, failures, tokens int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls, u.failures, u.tokens
}

// DeepSeekProvider calls the DeepSeek chat completion API through the
// OpenAI-compatible client with a custom base URL.
type DeepSeekProvider struct {
	client      *openai.Client
	cfg         LLMConfig
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	usage       *UsageLog
}

// NewDeepSeekProvider creates the provider.
func NewDeepSeekProvider(apiKey string, usage *UsageLog) *DeepSeekProvider {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = "https://api.deepseek.com/v1"
	return &DeepSeekProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		cfg:         LoadLLMConfig("deepseek"),
		breaker:     circuitbreaker.New(circuitbreaker.LLMAPIConfig("deepseek")),
		retryConfig: retry.LLMAPIConfig(),
		usage:       usage,
	}
}

// Name implements Provider.
func (p *DeepSeekProvider) Name() string { return "deepseek" }

// Complete implements Provider.
func (p *DeepSeekProvider) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		cbResult, err := p.breaker.Execute(func() (interface{}, error) {
			return p.doComplete(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("deepseek circuit breaker open, request rejected",
					slog.String("state", p.breaker.State().String()))
				return fmt.Errorf("deepseek api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("deepseek extraction failed after retries: %w", retryErr)
	}
	return result, nil
}

func (p *DeepSeekProvider) doComplete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		p.usage.RecordCall(0, true)
		metrics.RecordLLMCall(p.Name(), false, 0)
		return "", fmt.Errorf("deepseek api error: %w", err)
	}
	p.usage.RecordCall(int64(resp.Usage.TotalTokens), false)
	metrics.RecordLLMCall(p.Name(), true, resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("deepseek api returned empty response")
	}
	slog.Debug("llm extraction call completed",
		slog.String("provider", "deepseek"),
		slog.Duration("duration", time.Since(start)),
		slog.Int("tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}

// ClaudeProvider calls the Anthropic Messages API.
type ClaudeProvider struct {
	client      anthropic.Client
	cfg         LLMConfig
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	usage       *UsageLog
}

// NewClaudeProvider creates the provider.
func NewClaudeProvider(apiKey string, usage *UsageLog) *ClaudeProvider {
	return &ClaudeProvider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		cfg:         LoadLLMConfig("anthropic"),
		breaker:     circuitbreaker.New(circuitbreaker.LLMAPIConfig("anthropic")),
		retryConfig: retry.LLMAPIConfig(),
		usage:       usage,
	}
}

// Name implements Provider.
func (p *ClaudeProvider) Name() string { return "anthropic" }

// Complete implements Provider.
func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		cbResult, err := p.breaker.Execute(func() (interface{}, error) {
			return p.doComplete(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("anthropic circuit breaker open, request rejected",
					slog.String("state", p.breaker.State().String()))
				return fmt.Errorf("anthropic api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("anthropic extraction failed after retries: %w", retryErr)
	}
	return result, nil
}

func (p *ClaudeProvider) doComplete(ctx context.Context, prompt string) (string, error) {
	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: int64(p.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		p.usage.RecordCall(0, true)
		metrics.RecordLLMCall(p.Name(), false, 0)
		return "", fmt.Errorf("anthropic api error: %w", err)
	}
	p.usage.RecordCall(message.Usage.InputTokens+message.Usage.OutputTokens, false)
	metrics.RecordLLMCall(p.Name(), true, int(message.Usage.InputTokens+message.Usage.OutputTokens))

	if len(message.Content) == 0 {
		return "", fmt.Errorf("anthropic api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("anthropic api returned unexpected response type")
	}
	return textBlock.Text, nil
}

// llmFields is the JSON shape the prompt demands from the model. Custom
// columns arrive in the open map.
type llmFields struct {
	Company     string `json:"company"`
	Location    string `json:"location"`
	ProjectType string `json:"project_type"`
	Budget      string `json:"budget"`

	Extra map[string]string `json:"-"`
}

// parseLLMResponse parses strict JSON output. No repair is attempted: a
// response that is not a single JSON object is a failure and the caller
// keeps the pattern result.
func parseLLMResponse(raw string) (llmFields, error) {
	raw = strings.TrimSpace(raw)
	// Models wrap JSON in code fences despite instructions often enough to
	// strip them, which is unwrapping, not repair.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var all map[string]string
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return llmFields{}, fmt.Errorf("parseLLMResponse: not a flat JSON object: %w", err)
	}

	fields := llmFields{Extra: make(map[string]string)}
	for k, v := range all {
		switch k {
		case "company":
			fields.Company = v
		case "location":
			fields.Location = v
		case "project_type", "projectType":
			fields.ProjectType = v
		case "budget":
			fields.Budget = v
		default:
			fields.Extra[k] = v
		}
	}
	return fields, nil
}
