package tokens

import (
	"testing"

	"encdash/internal/chat"
)

func TestHeuristicCount(t *testing.T) {
	tk := &Tokenizer{fallback: true}

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "short ascii floors at one", text: "ok", want: 1},
		{name: "ascii", text: "hello world!", want: 3},
		{name: "cjk", text: "你好世界", want: 6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tk.CountText(tc.text); got != tc.want {
				t.Fatalf("CountText(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestCountAddsMessageOverhead(t *testing.T) {
	tk := &Tokenizer{fallback: true}
	msgs := []chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "hello"},
	}
	got := tk.Count(msgs)
	// 4 overhead + role + content per message
	want := 4 + 1 + 1 + 4 + 2 + 1
	if got != want {
		t.Fatalf("Count = %d, want %d", got, want)
	}
}
