// Package llm abstracts chat-style language model providers behind Gateway.
// Providers are picked once from configuration; callers never inspect the
// concrete type.
package llm

import (
	"context"
	"errors"
	"iter"
)

const (
	DefaultTemperature = 0.5
	DefaultTopP        = 0.9

	roleSystem = "system"
	roleUser   = "user"
)

var ErrEmptyResponse = errors.New("model returned no choices")

// Gateway is the capability set shared by every provider.
type Gateway interface {
	// Name is the provider identifier, e.g. "ollama".
	Name() string

	// Invoke sends one non-streaming exchange and returns the whole answer
	// with surrounding whitespace trimmed.
	Invoke(ctx context.Context, prompt, systemPrompt string, params Params) (string, error)

	// GenerateResponse yields text fragments in arrival order. The sequence
	// is single-use; breaking out of the range loop closes the upstream call.
	// An upstream failure is yielded once as a non-nil error and ends it.
	GenerateResponse(ctx context.Context, userInput, systemPrompt string, params Params) iter.Seq2[string, error]

	// AvailableModels is a static catalog; it is not queried from the provider.
	AvailableModels() []string

	// ChatModel describes the chat model the gateway was configured with.
	ChatModel() ChatModel
}

// Params are per-call sampling overrides. Zero values select the defaults.
type Params struct {
	Model       string
	Temperature float64
	TopP        float64
}

func (p Params) temperature() float64 {
	if p.Temperature == 0 {
		return DefaultTemperature
	}
	return p.Temperature
}

func (p Params) topP() float64 {
	if p.TopP == 0 {
		return DefaultTopP
	}
	return p.TopP
}

// ChatModel is the handle of a configured chat model.
type ChatModel struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Endpoint    string  `json:"endpoint"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	Streaming   bool    `json:"streaming"`
}

type message struct {
	Role    string
	Content string
}

// buildMessages omits the system message entirely when systemPrompt is empty.
func buildMessages(userInput, systemPrompt string) []message {
	msgs := make([]message, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, message{Role: roleSystem, Content: systemPrompt})
	}
	return append(msgs, message{Role: roleUser, Content: userInput})
}

// errStopped unwinds a provider callback when the consumer stops ranging.
var errStopped = errors.New("consumer stopped")
