package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/synaptica-ai/diagnostic/pkg/gateway/httpclient"
)

// OpenAI talks to the OpenAI chat completions API, or any server that speaks it.
type OpenAI struct {
	baseURL string
	model   string
	stream  bool
	client  *openai.Client
}

func NewOpenAI(cfg Config, opts ...Option) (*OpenAI, error) {
	o := newOptions(opts)

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = httpclient.New(cfg.RequestTimeout)
	}

	// The credential travels on the transport, not in the SDK config.
	clientCfg := openai.DefaultConfig("")
	clientCfg.BaseURL = Resolve("", o.host, cfg.OpenAIBaseURL, clientCfg.BaseURL)
	clientCfg.HTTPClient = httpclient.WithBearer(httpClient, Resolve("", o.apiKey, cfg.OpenAIAPIKey, ""))

	return &OpenAI{
		baseURL: clientCfg.BaseURL,
		model:   Resolve("", o.model, cfg.OpenAIModel, fallbackOpenAIModel),
		stream:  o.stream,
		client:  openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) AvailableModels() []string {
	return []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"}
}

func (o *OpenAI) ChatModel() ChatModel {
	return ChatModel{
		Provider:    ProviderOpenAI,
		Model:       o.model,
		Endpoint:    o.baseURL,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		Streaming:   o.stream,
	}
}

func (o *OpenAI) request(userInput, systemPrompt string, params Params) openai.ChatCompletionRequest {
	msgs := buildMessages(userInput, systemPrompt)
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       Resolve(params.Model, o.model, "", fallbackOpenAIModel),
		Messages:    out,
		Temperature: float32(params.temperature()),
		TopP:        float32(params.topP()),
	}
}

func (o *OpenAI) Invoke(ctx context.Context, prompt, systemPrompt string, params Params) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.request(prompt, systemPrompt, params))
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAI) GenerateResponse(ctx context.Context, userInput, systemPrompt string, params Params) iter.Seq2[string, error] {
	req := o.request(userInput, systemPrompt, params)
	return func(yield func(string, error) bool) {
		if !o.stream {
			resp, err := o.client.CreateChatCompletion(ctx, req)
			if err != nil {
				yield("", fmt.Errorf("openai chat completion: %w", err))
				return
			}
			if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
				yield(resp.Choices[0].Message.Content, nil)
			}
			return
		}

		stream, err := o.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			yield("", fmt.Errorf("openai chat stream: %w", err))
			return
		}
		defer stream.Close()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("openai chat stream: %w", err))
				return
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				return
			}
		}
	}
}
