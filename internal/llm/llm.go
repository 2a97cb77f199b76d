package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/pagewise/internal/plan"
)

const (
	defaultOllamaModel = "ministral-3:latest"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOpenAIBase  = "https://api.openai.com/v1"
	// Day text is clipped before it reaches the model; a day is ten pages of
	// prose at most, so this keeps prompts small for local models.
	maxQuizChars = 15_000
	quizSize     = 5
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Providers understood by NewFromEnv.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config describes how to build an LLM client.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client generates comprehension quizzes from a day's reading.
type Client interface {
	GenerateQuiz(ctx context.Context, text, title string) ([]plan.QuizQuestion, error)
	Name() string
}

// GenerationError wraps any failure to obtain a usable quiz.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("quiz generation via %s failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewFromEnv builds a client from cfg, filling gaps from the environment.
func NewFromEnv(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOllama
	}
	httpClient := pickHTTPClient(cfg.HTTPClient, cfg.Timeout)

	switch provider {
	case ProviderOllama:
		host := cfg.Endpoint
		if host == "" {
			if env := os.Getenv("OLLAMA_HOST"); env != "" {
				host = env
			} else {
				host = "http://localhost:11434"
			}
		}
		model := cfg.Model
		if model == "" {
			if env := os.Getenv("OLLAMA_MODEL"); env != "" {
				model = env
			} else {
				model = defaultOllamaModel
			}
		}
		return &ollamaClient{host: strings.TrimRight(host, "/"), model: model, client: httpClient}, nil
	case ProviderOpenAI:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		base := cfg.Endpoint
		if base == "" {
			base = defaultOpenAIBase
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return &openAIClient{apiKey: key, model: model, base: strings.TrimRight(base, "/"), client: httpClient}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	if timeout <= 0 {
		timeout = defaultLLMHTTPTimeout
	}
	// Local generations often need more than a minute; callers cancel via ctx.
	return &http.Client{Timeout: timeout}
}
