package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel  = "ministral-3:latest"
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultGeminiModel  = "gemini-1.5-flash"
	defaultGeminiRegion = "us-central1"
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Provider names accepted by NewFromEnv.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config describes how to build an LLM client. Empty fields fall back to
// environment variables, then to defaults.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	Project    string
	Location   string
	HTTPClient *http.Client
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a conversation.
type Message struct {
	Role Role
	Text string
}

// Request is a single completion call: the prior conversation, the new user
// prompt and an optional hint about what the user is studying.
type Request struct {
	History []Message
	Prompt  string
	Context string
}

// Client completes a conversation turn. An empty reply with a nil error means
// the model produced no text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// NewFromEnv inspects CLI arguments & environment variables to build a client.
func NewFromEnv(ctx context.Context, cfg Config) (Client, error) {
	provider := strings.ToLower(firstNonEmpty(cfg.Provider, os.Getenv("STUDYHUB_LLM_PROVIDER"), ProviderOllama))
	switch provider {
	case ProviderOllama:
		return newOllamaFromEnv(cfg), nil
	case ProviderOpenAI:
		return newOpenAIFromEnv(cfg)
	case ProviderGemini:
		return newGeminiFromEnv(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

func newOllamaFromEnv(cfg Config) *ollamaClient {
	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = env
		} else {
			host = "http://localhost:11434"
		}
	}
	return &ollamaClient{
		host:   strings.TrimRight(host, "/"),
		model:  firstNonEmpty(cfg.Model, os.Getenv("OLLAMA_MODEL"), defaultOllamaModel),
		client: pickHTTPClient(cfg.HTTPClient),
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Local models often need more than a minute; the caller's context handles cancellation.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
