package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ollama/ollama/api"
)

type ollamaCapture struct {
	req  api.ChatRequest
	auth string
}

// ollamaServer answers /api/chat with one NDJSON line per chunk followed by a done frame.
func ollamaServer(t *testing.T, capture *ollamaCapture, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&capture.req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		capture.auth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		for _, chunk := range chunks {
			_ = enc.Encode(api.ChatResponse{Model: capture.req.Model, Message: api.Message{Role: "assistant", Content: chunk}})
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		_ = enc.Encode(api.ChatResponse{Model: capture.req.Model, Message: api.Message{Role: "assistant"}, Done: true})
	}))
}

func collect(t *testing.T, gw Gateway, user, system string) ([]string, error) {
	t.Helper()
	var out []string
	for chunk, err := range gw.GenerateResponse(context.Background(), user, system, Params{Temperature: 0.7}) {
		if err != nil {
			return out, err
		}
		out = append(out, chunk)
	}
	return out, nil
}

func TestOllamaInvokeTrimsAndSendsSystemPrompt(t *testing.T) {
	var capture ollamaCapture
	server := ollamaServer(t, &capture, "  \n Patient report. \t\n")
	defer server.Close()

	gw, err := NewOllama(Config{OllamaHost: server.URL})
	if err != nil {
		t.Fatalf("new ollama: %v", err)
	}
	got, err := gw.Invoke(context.Background(), "user prompt", "system prompt", Params{Temperature: 0.7, TopP: 0.9})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if got != "Patient report." {
		t.Fatalf("expected trimmed response, got %q", got)
	}

	msgs := capture.req.Messages
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[0].Content != "system prompt" || msgs[1].Role != "user" {
		t.Fatalf("expected system then user message, got %+v", msgs)
	}
	if capture.req.Stream == nil || *capture.req.Stream {
		t.Fatal("invoke must disable streaming")
	}
	if capture.req.Model != "llama3.2:1b" {
		t.Fatalf("expected fallback model, got %q", capture.req.Model)
	}
	if capture.req.Options["temperature"] != 0.7 || capture.req.Options["top_p"] != 0.9 {
		t.Fatalf("unexpected sampling options %v", capture.req.Options)
	}
	if capture.auth != "" {
		t.Fatalf("expected no credential, got %q", capture.auth)
	}
}

func TestOllamaInvokeWithoutSystemPromptSendsOneMessage(t *testing.T) {
	var capture ollamaCapture
	server := ollamaServer(t, &capture, "ok")
	defer server.Close()

	gw, _ := NewOllama(Config{OllamaHost: server.URL})
	if _, err := gw.Invoke(context.Background(), "only user", "", Params{}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(capture.req.Messages) != 1 || capture.req.Messages[0].Role != "user" {
		t.Fatalf("expected a single user message, got %+v", capture.req.Messages)
	}
}

func TestOllamaStreamPreservesChunkOrder(t *testing.T) {
	var capture ollamaCapture
	server := ollamaServer(t, &capture, "Hello", " World")
	defer server.Close()

	gw, _ := NewOllama(Config{OllamaHost: server.URL})
	chunks, err := collect(t, gw, "hi", "sys")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if strings.Join(chunks, "|") != "Hello| World" {
		t.Fatalf("expected [Hello, World], got %q", chunks)
	}
	if capture.req.Stream == nil || !*capture.req.Stream {
		t.Fatal("expected streaming request")
	}
}

func TestOllamaStreamEmptyYieldsNothing(t *testing.T) {
	var capture ollamaCapture
	server := ollamaServer(t, &capture)
	defer server.Close()

	gw, _ := NewOllama(Config{OllamaHost: server.URL})
	chunks, err := collect(t, gw, "hi", "")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected zero chunks, got %q", chunks)
	}
}

func TestOllamaStreamEarlyStop(t *testing.T) {
	var capture ollamaCapture
	server := ollamaServer(t, &capture, "one", "two", "three")
	defer server.Close()

	gw, _ := NewOllama(Config{OllamaHost: server.URL})
	seen := 0
	for chunk, err := range gw.GenerateResponse(context.Background(), "hi", "", Params{}) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen++
		if chunk != "one" {
			t.Fatalf("unexpected first chunk %q", chunk)
		}
		break
	}
	if seen != 1 {
		t.Fatalf("expected to stop after one chunk, saw %d", seen)
	}
}

func TestOllamaWithStreamingDisabled(t *testing.T) {
	var capture ollamaCapture
	server := ollamaServer(t, &capture, "whole answer")
	defer server.Close()

	gw, _ := NewOllama(Config{OllamaHost: server.URL}, WithStreaming(false))
	chunks, err := collect(t, gw, "hi", "")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "whole answer" {
		t.Fatalf("expected one chunk, got %q", chunks)
	}
	if *capture.req.Stream {
		t.Fatal("expected non-streaming request")
	}
	if gw.ChatModel().Streaming {
		t.Fatal("chat model should report streaming off")
	}
}

func TestOllamaErrorsPropagate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model \"missing\" not found"}`)
	}))
	defer server.Close()

	gw, _ := NewOllama(Config{OllamaHost: server.URL})
	if _, err := gw.Invoke(context.Background(), "hi", "", Params{Model: "missing"}); err == nil {
		t.Fatal("expected invoke error")
	}

	var streamErr error
	count := 0
	for _, err := range gw.GenerateResponse(context.Background(), "hi", "", Params{Model: "missing"}) {
		count++
		streamErr = err
	}
	if count != 1 || streamErr == nil {
		t.Fatalf("expected exactly one error item, got count=%d err=%v", count, streamErr)
	}
}

func TestOllamaConfigurationCascade(t *testing.T) {
	var capture ollamaCapture
	server := ollamaServer(t, &capture, "ok")
	defer server.Close()

	env := Config{OllamaHost: server.URL, OllamaModel: "env-model", OllamaAPIKey: "env-key"}

	gw, _ := NewOllama(env)
	if gw.ChatModel().Model != "env-model" {
		t.Fatalf("expected environment model, got %q", gw.ChatModel().Model)
	}

	gw, _ = NewOllama(env, WithModel("ctor-model"), WithAPIKey("ctor-key"))
	if gw.ChatModel().Model != "ctor-model" {
		t.Fatalf("expected constructor model, got %q", gw.ChatModel().Model)
	}
	if _, err := gw.Invoke(context.Background(), "hi", "", Params{Model: "call-model"}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if capture.req.Model != "call-model" {
		t.Fatalf("expected call model in request, got %q", capture.req.Model)
	}
	if capture.auth != "Bearer ctor-key" {
		t.Fatalf("expected constructor credential, got %q", capture.auth)
	}

	fallback, _ := NewOllama(Config{})
	cm := fallback.ChatModel()
	if cm.Endpoint != "http://localhost:11434" || cm.Model != "llama3.2:1b" {
		t.Fatalf("unexpected fallback chat model %+v", cm)
	}
	if cm.Temperature != DefaultTemperature || cm.TopP != DefaultTopP || !cm.Streaming {
		t.Fatalf("unexpected chat model defaults %+v", cm)
	}
}
