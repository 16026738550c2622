// Package llm 实现对上游模型服务的请求翻译与流式响应解析
package llm

// Message 统一的对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage 上游返回的 token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Provider 提供商适配器
// 新增提供商只需新增一个适配器，编排层不感知差异
type Provider interface {
	Name() string
	DefaultBaseURL() string
	DefaultModel() string
	// BuildHeaders 构造认证相关请求头
	BuildHeaders(apiKey string) map[string]string
	// BuildBody 构造请求体
	BuildBody(modelName string, messages []Message) map[string]interface{}
}

// bearerProvider 使用标准 Bearer 认证和统一请求体的提供商
type bearerProvider struct {
	name         string
	baseURL      string
	defaultModel string
}

func (p *bearerProvider) Name() string           { return p.name }
func (p *bearerProvider) DefaultBaseURL() string { return p.baseURL }
func (p *bearerProvider) DefaultModel() string   { return p.defaultModel }

func (p *bearerProvider) BuildHeaders(apiKey string) map[string]string {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return headers
}

func (p *bearerProvider) BuildBody(modelName string, messages []Message) map[string]interface{} {
	return map[string]interface{}{
		"model":    modelName,
		"messages": messages,
		"stream":   true,
	}
}

// anthropicProvider Anthropic 的请求规则与其他提供商不同：
// 认证用 x-api-key 加版本头而非 Bearer，且必须显式传 max_tokens
type anthropicProvider struct{}

func (p *anthropicProvider) Name() string           { return "anthropic" }
func (p *anthropicProvider) DefaultBaseURL() string { return "https://api.anthropic.com/v1" }
func (p *anthropicProvider) DefaultModel() string   { return "claude-3-5-sonnet-20241022" }

func (p *anthropicProvider) BuildHeaders(apiKey string) map[string]string {
	return map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	}
}

func (p *anthropicProvider) BuildBody(modelName string, messages []Message) map[string]interface{} {
	return map[string]interface{}{
		"model":      modelName,
		"messages":   messages,
		"stream":     true,
		"max_tokens": 4096,
	}
}

// providers 支持的提供商注册表，进程启动后只读
var providers = map[string]Provider{
	"openai": &bearerProvider{
		name:         "openai",
		baseURL:      "https://api.openai.com/v1",
		defaultModel: "gpt-4o-mini",
	},
	"anthropic": &anthropicProvider{},
	"deepseek": &bearerProvider{
		name:         "deepseek",
		baseURL:      "https://api.deepseek.com/v1",
		defaultModel: "deepseek-chat",
	},
	"mistral": &bearerProvider{
		name:         "mistral",
		baseURL:      "https://api.mistral.ai/v1",
		defaultModel: "mistral-large-latest",
	},
	"openrouter": &bearerProvider{
		name:         "openrouter",
		baseURL:      "https://openrouter.ai/api/v1",
		defaultModel: "openai/gpt-4o-mini",
	},
	// 本地 Ollama 无需凭证
	"ollama": &bearerProvider{
		name:         "ollama",
		baseURL:      "http://localhost:11434/v1",
		defaultModel: "llama3",
	},
}

// Lookup 按标识查找提供商适配器
func Lookup(name string) (Provider, bool) {
	p, ok := providers[name]
	return p, ok
}

// ProviderNames 返回支持的提供商标识列表
func ProviderNames() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
