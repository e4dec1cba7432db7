package llm

import (
	"testing"
)

func TestResolvePrecedence(t *testing.T) {
	if got := Resolve("call", "ctor", "env", "default"); got != "call" {
		t.Fatalf("expected call argument, got %q", got)
	}
	if got := Resolve("", "ctor", "env", "default"); got != "ctor" {
		t.Fatalf("expected constructor argument, got %q", got)
	}
	if got := Resolve("", " ", "env", "default"); got != "env" {
		t.Fatalf("expected environment value, got %q", got)
	}
	if got := Resolve("", "", "", "default"); got != "default" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages("hi", "")
	if len(msgs) != 1 || msgs[0].Role != roleUser {
		t.Fatalf("expected only a user message, got %+v", msgs)
	}
	msgs = buildMessages("hi", "be kind")
	if len(msgs) != 2 || msgs[0].Role != roleSystem || msgs[1].Role != roleUser {
		t.Fatalf("expected system then user, got %+v", msgs)
	}
}

func TestParamsDefaults(t *testing.T) {
	var p Params
	if p.temperature() != DefaultTemperature || p.topP() != DefaultTopP {
		t.Fatalf("unexpected defaults %v %v", p.temperature(), p.topP())
	}
	p = Params{Temperature: 0.7, TopP: 0.8}
	if p.temperature() != 0.7 || p.topP() != 0.8 {
		t.Fatalf("overrides ignored")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cases := map[string]string{
		"openai":   ProviderOpenAI,
		"OpenAI":   ProviderOpenAI,
		"ollama":   ProviderOllama,
		"":         ProviderOllama,
		"llamacpp": ProviderOllama,
	}
	for selector, want := range cases {
		gw, err := New(Config{Provider: selector})
		if err != nil {
			t.Fatalf("New(%q): %v", selector, err)
		}
		if gw.Name() != want {
			t.Fatalf("New(%q) picked %s, want %s", selector, gw.Name(), want)
		}
	}
}

func TestAvailableModelsAreStatic(t *testing.T) {
	ollama, _ := NewOllama(Config{})
	if models := ollama.AvailableModels(); len(models) != 1 || models[0] != "llama3.2:1b" {
		t.Fatalf("unexpected ollama catalog %v", models)
	}
	openai, _ := NewOpenAI(Config{})
	if models := openai.AvailableModels(); len(models) != 3 || models[0] != "gpt-4o-mini" {
		t.Fatalf("unexpected openai catalog %v", models)
	}
}
