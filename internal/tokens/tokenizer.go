package tokens

import (
	"sync"

	"encdash/internal/chat"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer 会话 token 计数器，tiktoken 不可用时退化为启发式
// Tokenizer counts transcript tokens, falling back to a heuristic when tiktoken is unavailable
type Tokenizer struct {
	encoder      *tiktoken.Tiktoken
	encodingName string
	fallback     bool
	mu           sync.RWMutex
}

var (
	defaultTokenizer     *Tokenizer
	defaultTokenizerOnce sync.Once
)

// Default 返回全局默认 tokenizer 实例
// Default returns the global default tokenizer instance
func Default() *Tokenizer {
	defaultTokenizerOnce.Do(func() {
		defaultTokenizer = New("cl100k_base")
	})
	return defaultTokenizer
}

// New 创建 tokenizer；初始化失败时回退到启发式
// New creates a tokenizer, falling back to the heuristic when init fails
func New(encodingName string) *Tokenizer {
	t := &Tokenizer{encodingName: encodingName}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		// 离线环境可能没有 BPE 缓存 / offline environments may lack the BPE cache
		t.fallback = true
		return t
	}
	t.encoder = enc
	return t
}

// Count 计算整个会话的 token 总数
// Count returns the total token count of a transcript
func (t *Tokenizer) Count(messages []chat.Message) int {
	total := 0
	for _, msg := range messages {
		// 每条消息约 4 token 结构开销 / ~4 tokens structural overhead per message
		total += 4
		total += t.CountText(msg.Role)
		total += t.CountText(msg.Content)
	}
	return total
}

// CountText 计算单个文本的 token 数
// CountText counts tokens for one text string
func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t.fallback {
		return heuristicTokenCount(text)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.encoder.Encode(text, nil, nil))
}

// IsPrecise 是否使用精确计数
// IsPrecise reports whether precise counting is available
func (t *Tokenizer) IsPrecise() bool {
	return !t.fallback
}

func heuristicTokenCount(text string) int {
	// CJK 约 1.5 token/字，ASCII 约 4 chars/token
	// CJK ~1.5 tokens per rune, ASCII ~4 chars per token
	cjkCount := 0
	asciiCount := 0
	for _, r := range text {
		if isCJK(r) {
			cjkCount++
		} else {
			asciiCount++
		}
	}
	estimate := int(float64(cjkCount)*1.5 + float64(asciiCount)*0.25)
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x3000 && r <= 0x303F) ||
		(r >= 0xFF00 && r <= 0xFFEF) ||
		(r >= 0xAC00 && r <= 0xD7AF)
}
