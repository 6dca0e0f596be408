// Package llm annotates news items with short AI summaries.
// Generation backends are OpenAI-compatible chat completion APIs and Google Gemini.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"github.com/umputun/newsnexus/pkg/config"
)

//go:generate moq -out mocks/generator.go -pkg mocks -skip-ensure -fmt goimports . Generator
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor

// Generator turns a prompt into model text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// default system prompt for item annotation
const defaultSystemPrompt = `You are an expert tech news analyst. You explain in one sentence why a news item matters to a developer or founder. You always answer with JSON only.`

// NewGenerator makes a generator for the configured provider, nil when no api key is set
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, nil //nolint:nilnil // annotation disabled
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIGenerator(cfg), nil
	case "gemini":
		return NewGeminiGenerator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint
type OpenAIGenerator struct {
	client    *openai.Client
	config    config.LLMConfig
	systemMsg string
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible endpoint
func NewOpenAIGenerator(cfg config.LLMConfig) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	clientConfig.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// Generate sends the prompt as a single user message
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Temperature: float32(g.config.Temperature),
		MaxTokens:   g.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if g.config.UseJSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from llm")
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiGenerator calls the Gemini API with a JSON response type
type GeminiGenerator struct {
	client    *genai.Client
	config    config.LLMConfig
	systemMsg string
}

// NewGeminiGenerator creates a Gemini generator, endpoint overrides the API base url
func NewGeminiGenerator(ctx context.Context, cfg config.LLMConfig) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}
	return &GeminiGenerator{client: client, config: cfg, systemMsg: systemMsg}, nil
}

// Generate sends the prompt and returns the response text
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemMsg, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.config.Temperature)),
		ResponseMIMEType:  "application/json",
	}
	if g.config.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(g.config.MaxTokens) //nolint:gosec // validated config value
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no response from gemini")
	}
	return text, nil
}
