// Package llm 提供商适配器单元测试
package llm

import "testing"

// ========== Lookup 测试 ==========

func TestLookup(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "deepseek", "mistral", "openrouter", "ollama"} {
		p, ok := Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) not found", name)
			continue
		}
		if p.Name() != name {
			t.Errorf("Lookup(%q).Name() = %q", name, p.Name())
		}
		if p.DefaultBaseURL() == "" {
			t.Errorf("Lookup(%q).DefaultBaseURL() is empty", name)
		}
		if p.DefaultModel() == "" {
			t.Errorf("Lookup(%q).DefaultModel() is empty", name)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, ok := Lookup("gemini"); ok {
		t.Error("Lookup(gemini) should not be found")
	}
}

func TestProviderNames(t *testing.T) {
	names := ProviderNames()
	if len(names) != 6 {
		t.Errorf("ProviderNames() returned %d names, want 6", len(names))
	}
}

// ========== BuildHeaders 测试 ==========

func TestBearerProvider_BuildHeaders(t *testing.T) {
	p, _ := Lookup("openai")

	headers := p.BuildHeaders("sk-test")
	if headers["Authorization"] != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want 'Bearer sk-test'", headers["Authorization"])
	}
}

func TestBearerProvider_BuildHeaders_EmptyKey(t *testing.T) {
	// Ollama 等本地服务无凭证时不应发送 Authorization 头
	p, _ := Lookup("ollama")

	headers := p.BuildHeaders("")
	if _, ok := headers["Authorization"]; ok {
		t.Error("empty api key should not produce an Authorization header")
	}
}

func TestAnthropicProvider_BuildHeaders(t *testing.T) {
	p, _ := Lookup("anthropic")

	headers := p.BuildHeaders("sk-ant")
	if headers["x-api-key"] != "sk-ant" {
		t.Errorf("x-api-key = %q, want 'sk-ant'", headers["x-api-key"])
	}
	if headers["anthropic-version"] != "2023-06-01" {
		t.Errorf("anthropic-version = %q, want '2023-06-01'", headers["anthropic-version"])
	}
	if _, ok := headers["Authorization"]; ok {
		t.Error("anthropic should not use Bearer auth")
	}
}

// ========== BuildBody 测试 ==========

func TestBearerProvider_BuildBody(t *testing.T) {
	p, _ := Lookup("openai")
	messages := []Message{{Role: "user", Content: "hi"}}

	body := p.BuildBody("gpt-4o", messages)
	if body["model"] != "gpt-4o" {
		t.Errorf("model = %v, want gpt-4o", body["model"])
	}
	if body["stream"] != true {
		t.Error("stream should be true")
	}
	if _, ok := body["max_tokens"]; ok {
		t.Error("bearer providers should not set max_tokens")
	}
}

func TestAnthropicProvider_BuildBody(t *testing.T) {
	p, _ := Lookup("anthropic")

	body := p.BuildBody("claude-3-5-sonnet-20241022", nil)
	if body["max_tokens"] != 4096 {
		t.Errorf("max_tokens = %v, want 4096", body["max_tokens"])
	}
	if body["stream"] != true {
		t.Error("stream should be true")
	}
}
