package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var ErrEmptyCompletion = errors.New("llm returned no content")

// Config holds LLM client configuration.
type Config struct {
	Provider  string        // "openai", "anthropic" or "gemini"
	APIKey    string        // Required: API key for the provider
	BaseURL   string        // Optional: custom API endpoint (Groq and other OpenAI-compatible hosts)
	Model     string        // Model name; provider default when empty
	MaxTokens int           // Default completion budget when a request leaves it unset
	Timeout   time.Duration // Upper bound for a single completion call; 0 disables

	// Attempts is the total number of tries for a transient failure
	// (rate limit, 5xx, network); values below 2 disable retrying.
	Attempts int
	Backoff  time.Duration // First wait between attempts, doubled after each failure
}

// Client sends one prompt and returns one completion.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic

	// SchemaName and Schema ask for a JSON object. Providers with native structured
	// output enforce it; the others receive it as an instruction.
	SchemaName string
	Schema     any
}

type Response struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// New creates a Client for cfg.Provider. Defaults to OpenAI if no provider is specified.
func New(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	var (
		c   Client
		err error
	)
	switch provider {
	case ProviderOpenAI:
		c, err = newOpenAIClient(cfg)
	case ProviderAnthropic:
		c, err = newAnthropicClient(cfg)
	case ProviderGemini:
		c, err = newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(WithTimeout(c, cfg.Timeout), cfg.Attempts, cfg.Backoff), nil
}

// GenerateSchema generates a JSON schema for T suitable for strict structured output.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

func schemaInstruction(req Request) string {
	if req.Schema == nil {
		return ""
	}
	data, err := json.Marshal(req.Schema)
	if err != nil {
		return "Respond with a single JSON object and nothing else."
	}
	return "Respond with a single JSON object and nothing else. It must match this JSON schema:\n" + string(data)
}

func joinPrompts(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
