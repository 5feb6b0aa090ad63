package assistant

import (
	"bytes"
	"encoding/json"
	"strings"
)

// 应答字段按优先级探测：reply → content → message → choices[0].message.content。
// 多后端兼容垫片：不同聊天后端返回的字段名不同，这里按固定顺序取第一个命中的字段。
// Reply fields are probed in priority order: reply → content → message →
// choices[0].message.content. This is a compatibility shim for divergent
// backend response shapes; the first present string field wins.
type extractAttempt func(map[string]any) (string, bool)

var replyAttempts = []extractAttempt{
	stringField("reply"),
	stringField("content"),
	stringField("message"),
	firstChoiceContent,
}

// ResolveReply 从响应体中解析助手应答文本。
// 非 JSON 响应体直接按原文返回；JSON 但无已知字段时同样回退到原文。
// ResolveReply resolves the assistant reply text from a response body.
// Non-JSON bodies degrade to the raw text; JSON bodies with no known reply
// field fall back to the raw text as well.
func ResolveReply(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var root map[string]any
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return string(trimmed)
	}

	for _, attempt := range replyAttempts {
		if text, ok := attempt(root); ok {
			return text
		}
	}
	return string(trimmed)
}

func stringField(key string) extractAttempt {
	return func(root map[string]any) (string, bool) {
		value, ok := root[key]
		if !ok {
			return "", false
		}
		text, ok := value.(string)
		if !ok {
			return "", false
		}
		return text, true
	}
}

// firstChoiceContent 兼容 chat-completion 形状：choices[0].message.content
// firstChoiceContent matches the chat-completion shape: choices[0].message.content
func firstChoiceContent(root map[string]any) (string, bool) {
	choices, ok := root["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := first["message"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := message["content"].(string)
	if !ok {
		return "", false
	}
	return content, true
}

// IsBlank 判断应答文本是否为空白
// IsBlank reports whether a resolved reply is effectively empty
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
