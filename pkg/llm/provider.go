package llm

import (
	"strings"

	"github.com/synaptica-ai/diagnostic/pkg/common/logger"
)

// New builds the gateway named by cfg.Provider. An empty or unrecognised
// selector falls back to Ollama rather than failing.
func New(cfg Config, opts ...Option) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		return NewOpenAI(cfg, opts...)
	case ProviderOllama, "":
		return NewOllama(cfg, opts...)
	default:
		logger.Log.WithField("provider", cfg.Provider).Warn("Unknown LLM provider, falling back to ollama")
		return NewOllama(cfg, opts...)
	}
}
