// Package budget 估算上下文的 token 占用并检查模型窗口限制
package budget

import (
	"math"
	"strings"
)

// defaultModelLimit 未知模型的保守窗口
const defaultModelLimit = 8192

// contextReserve 上下文素材可占用窗口的比例
// 剩余 25% 留给对话历史和回复
const contextReserve = 0.75

// modelLimits 精确模型名 → 窗口大小
var modelLimits = map[string]int{
	"gpt-4o-mini":       128000,
	"gpt-4o":            128000,
	"gpt-4":             8192,
	"gpt-3.5-turbo":     16385,
	"deepseek-chat":     64000,
	"deepseek-reasoner": 64000,
}

// modelFamilies 模型家族前缀 → 窗口大小
// 有序表，先匹配更具体的前缀；按名称子串大小写不敏感匹配
var modelFamilies = []struct {
	prefix string
	limit  int
}{
	{"gpt-4o-mini", 128000},
	{"gpt-4o", 128000},
	{"gpt-4-turbo", 128000},
	{"gpt-4", 8192},
	{"gpt-3.5", 16385},
	{"o1", 200000},
	{"claude-3-opus", 200000},
	{"claude-3-5", 200000},
	{"claude-3", 200000},
	{"claude", 100000},
	{"deepseek", 64000},
	{"mistral-large", 128000},
	{"mistral", 32000},
	{"mixtral", 32000},
	{"llama-3.1", 128000},
	{"llama-3", 8192},
	{"llama", 4096},
	{"gemini-1.5", 1000000},
	{"gemini", 32000},
}

// EstimateTokens 粗略估算文本的 token 数：ceil(字符数/4)
// 这是刻意为之的近似，不是分词器；空文本为 0
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// ModelLimit 查询模型的上下文窗口大小
// 先精确匹配，再按家族前缀子串匹配，最后落到默认值
func ModelLimit(modelName string) int {
	if limit, ok := modelLimits[modelName]; ok {
		return limit
	}
	lower := strings.ToLower(modelName)
	for _, family := range modelFamilies {
		if strings.Contains(lower, family.prefix) {
			return family.limit
		}
	}
	return defaultModelLimit
}

// LimitCheck 上下文预算检查结果
type LimitCheck struct {
	WithinLimit     bool    `json:"within_limit"`
	UsagePercentage float64 `json:"usage_percentage"`
	TokensUsed      int     `json:"tokens_used"`
	Limit           int     `json:"limit"`
	ModelLimit      int     `json:"model_limit"`
}

// Check 检查 tokensUsed 是否在模型的可用上下文预算内
// 每次上下文变动后都应重新计算，结果不缓存
func Check(tokensUsed int, modelName string) LimitCheck {
	modelLimit := ModelLimit(modelName)
	effectiveLimit := int(math.Floor(float64(modelLimit) * contextReserve))

	percentage := 0.0
	if effectiveLimit > 0 {
		percentage = math.Round(float64(tokensUsed)/float64(effectiveLimit)*1000) / 10
	}

	return LimitCheck{
		WithinLimit:     tokensUsed <= effectiveLimit,
		UsagePercentage: percentage,
		TokensUsed:      tokensUsed,
		Limit:           effectiveLimit,
		ModelLimit:      modelLimit,
	}
}
