package provider

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/sqlchat/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/sqlchat/pkg/llm/provider/ollama"
	"github.com/papercomputeco/sqlchat/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Ollama    = "ollama"
)

const defaultTimeout = 60 * time.Second

// Config selects and configures a completion provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string // empty for the provider's public endpoint

	// HTTPClient overrides the client used for requests. When nil a client
	// with Timeout (default 60s) is used.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{OpenAI, Anthropic, Ollama}
}

// New creates a new Provider instance for the given configuration.
// Returns an error if the provider type is not recognized.
func New(cfg Config) (Provider, error) {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	switch strings.ToLower(cfg.Provider) {
	case OpenAI, "":
		return openai.New(cfg.APIKey, cfg.BaseURL, client), nil
	case Anthropic:
		return anthropic.New(cfg.APIKey, cfg.BaseURL, client), nil
	case Ollama:
		return ollama.New(cfg.BaseURL, client), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", cfg.Provider, SupportedProviders())
	}
}
