package llm

import (
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	fallbackOllamaHost  = "http://localhost:11434"
	fallbackOllamaModel = "llama3.2:1b"
	fallbackOpenAIModel = "gpt-4o-mini"
)

// Config is the environment layer of the configuration cascade.
type Config struct {
	Provider       string
	RequestTimeout time.Duration

	OllamaHost   string
	OllamaModel  string
	OllamaAPIKey string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Resolve returns the first non-blank value in precedence order:
// explicit call argument, constructor argument, environment, fallback constant.
func Resolve(call, ctor, env, fallback string) string {
	for _, v := range []string{call, ctor, env} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}

type options struct {
	model      string
	host       string
	apiKey     string
	stream     bool
	httpClient *http.Client
}

// Option is a constructor argument; it outranks the environment layer.
type Option func(*options)

func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithHost sets the Ollama host or the OpenAI base URL.
func WithHost(host string) Option {
	return func(o *options) { o.host = host }
}

func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithStreaming toggles incremental delivery; when off GenerateResponse
// yields the whole answer as a single fragment.
func WithStreaming(enabled bool) Option {
	return func(o *options) { o.stream = enabled }
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

func newOptions(opts []Option) options {
	o := options{stream: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
