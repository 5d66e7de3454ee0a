package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	cfg "github.com/fairlabor/pobot/config"
	"github.com/fairlabor/pobot/errors"
)

// Config holds Gemini provider configuration
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "gemini-1.5-flash",
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Provider implements the llm.Client interface for Google Gemini
type Provider struct {
	config *Config
	client *genai.Client
	model  *genai.GenerativeModel
}

// New creates a new Gemini provider using the official SDK
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}

	if err := cfg.ValidateLLMConfig(config.APIKey, config.Model, float64(config.Temperature), int(config.MaxTokens)); err != nil {
		return nil, fmt.Errorf("invalid Gemini configuration: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(config.Model)
	if config.MaxTokens > 0 {
		model.SetMaxOutputTokens(config.MaxTokens)
	}
	if config.Temperature > 0 {
		model.SetTemperature(config.Temperature)
	}

	return &Provider{
		config: config,
		client: client,
		model:  model,
	}, nil
}

// Complete implements llm.Client
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: gemini completion: %v", errors.ErrServiceUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", errors.ErrServiceUnavailable)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text content", errors.ErrServiceUnavailable)
	}
	return sb.String(), nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}
