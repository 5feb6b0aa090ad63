package chat

import "strings"

// 消息角色 / Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message 一条会话消息，线上格式与 OpenAI chat 消息兼容
// Message is one transcript entry; the wire shape is OpenAI-chat compatible
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript 单个会话内按序追加的消息序列
// Transcript is the append-only, ordered message sequence of one session
type Transcript struct {
	messages []Message
}

// Append 追加一条消息（会话内只增不删）
// Append adds one message; entries are never reordered or removed
func (t *Transcript) Append(role, content string) {
	t.messages = append(t.messages, Message{Role: role, Content: content})
}

// Messages 返回消息切片的副本，调用方可安全持有
// Messages returns a copy of the message slice safe for the caller to keep
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len 当前消息数量
// Len is the current message count
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last 返回最后一条消息；为空时 ok=false
// Last returns the final message; ok=false when empty
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// ValidRole 判断角色是否为已知角色
// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch strings.TrimSpace(role) {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}
