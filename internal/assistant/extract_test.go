package assistant

import "testing"

func TestResolveReplyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "reply wins over content",
			body: `{"reply":"A","content":"B"}`,
			want: "A",
		},
		{
			name: "content wins over message",
			body: `{"content":"B","message":"C"}`,
			want: "B",
		},
		{
			name: "message field",
			body: `{"message":"C"}`,
			want: "C",
		},
		{
			name: "chat completion shape",
			body: `{"choices":[{"message":{"content":"D"}}]}`,
			want: "D",
		},
		{
			name: "non-json body degrades to raw text",
			body: `plain`,
			want: "plain",
		},
		{
			name: "json without known fields degrades to raw text",
			body: `{"foo":"bar"}`,
			want: `{"foo":"bar"}`,
		},
		{
			name: "non-string reply field is skipped",
			body: `{"reply":42,"content":"B"}`,
			want: "B",
		},
		{
			name: "empty body",
			body: ``,
			want: "",
		},
		{
			name: "empty choices falls through to raw",
			body: `{"choices":[]}`,
			want: `{"choices":[]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveReply([]byte(tc.body)); got != tc.want {
				t.Fatalf("ResolveReply(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("  \n\t") {
		t.Fatalf("expected whitespace to be blank")
	}
	if IsBlank("x") {
		t.Fatalf("expected non-empty text to not be blank")
	}
}
