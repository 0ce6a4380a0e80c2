package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

const failurePrefix = "⚠️ LLM call failed: "

// placeholder 生成服务失败时给用户看的提示文本
func placeholder(err error) string {
	return failurePrefix + err.Error()
}

// IsPlaceholder 判断文本是否为失败占位
func IsPlaceholder(text string) bool {
	return strings.HasPrefix(text, failurePrefix)
}

func conversation(system, user string) []AIChatMessage {
	return []AIChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// decodeJSON 解析模型返回的 JSON；兼容 ```json 代码块包裹和前后多余文字
func decodeJSON(raw string, v interface{}) error {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in response")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
