package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/synaptica-ai/diagnostic/pkg/gateway/httpclient"
)

// Ollama talks to a local (or self-hosted) Ollama inference server.
type Ollama struct {
	host   string
	model  string
	stream bool
	client *api.Client
}

func NewOllama(cfg Config, opts ...Option) (*Ollama, error) {
	o := newOptions(opts)
	host := Resolve("", o.host, cfg.OllamaHost, fallbackOllamaHost)
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama host %q: %w", host, err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = httpclient.New(cfg.RequestTimeout)
	}
	httpClient = httpclient.WithBearer(httpClient, Resolve("", o.apiKey, cfg.OllamaAPIKey, ""))

	return &Ollama{
		host:   host,
		model:  Resolve("", o.model, cfg.OllamaModel, fallbackOllamaModel),
		stream: o.stream,
		client: api.NewClient(base, httpClient),
	}, nil
}

func (o *Ollama) Name() string { return ProviderOllama }

func (o *Ollama) AvailableModels() []string {
	return []string{"llama3.2:1b"}
}

func (o *Ollama) ChatModel() ChatModel {
	return ChatModel{
		Provider:    ProviderOllama,
		Model:       o.model,
		Endpoint:    o.host,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		Streaming:   o.stream,
	}
}

func (o *Ollama) request(userInput, systemPrompt string, params Params, stream bool) *api.ChatRequest {
	msgs := buildMessages(userInput, systemPrompt)
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, api.Message{Role: m.Role, Content: m.Content})
	}
	return &api.ChatRequest{
		Model:    Resolve(params.Model, o.model, "", fallbackOllamaModel),
		Messages: out,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": params.temperature(),
			"top_p":       params.topP(),
		},
	}
}

func (o *Ollama) Invoke(ctx context.Context, prompt, systemPrompt string, params Params) (string, error) {
	var sb strings.Builder
	err := o.client.Chat(ctx, o.request(prompt, systemPrompt, params, false), func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (o *Ollama) GenerateResponse(ctx context.Context, userInput, systemPrompt string, params Params) iter.Seq2[string, error] {
	req := o.request(userInput, systemPrompt, params, o.stream)
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			// The closing frame carries only metrics and an empty message.
			if resp.Message.Content == "" {
				return nil
			}
			if !yield(resp.Message.Content, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield("", fmt.Errorf("ollama chat stream: %w", err))
		}
	}
}
