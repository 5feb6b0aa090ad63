package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"encdash/internal/chat"
	"encdash/internal/config"
)

func newTestClient(endpoint string) *Client {
	return NewClient(config.AssistantConfig{
		Endpoint:  endpoint,
		APIStyle:  "generic",
		TimeoutMS: 2000,
	})
}

func TestSendPostsFullTranscript(t *testing.T) {
	var gotBody struct {
		Messages []chat.Message `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"reply":"hello back"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	messages := []chat.Message{
		{Role: chat.RoleUser, Content: "first"},
		{Role: chat.RoleAssistant, Content: "reply"},
		{Role: chat.RoleUser, Content: "second"},
	}

	reply, err := client.Send(context.Background(), messages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "hello back" {
		t.Fatalf("unexpected reply text: %q", reply.Text)
	}
	if reply.Elapsed <= 0 {
		t.Fatalf("expected positive elapsed, got %v", reply.Elapsed)
	}
	if len(gotBody.Messages) != 3 || gotBody.Messages[2].Content != "second" {
		t.Fatalf("transcript not posted in full: %#v", gotBody.Messages)
	}
}

func TestSendNon2xxStillResolvesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reply, err := client.Send(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if reply.Text != "upstream exploded" {
		t.Fatalf("unexpected reply text: %q", reply.Text)
	}
}

func TestSendTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立即关闭，制造连接失败 / close immediately to force a dial failure

	client := newTestClient(server.URL)
	if _, err := client.Send(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestOrigin(t *testing.T) {
	client := newTestClient("http://chat.internal:9000/api/chat")
	if got := client.Origin(); got != "chat.internal:9000" {
		t.Fatalf("unexpected origin: %q", got)
	}
}

func TestSendOpenAIStyle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"sdk reply"}}]}`))
	}))
	defer server.Close()

	client := NewClient(config.AssistantConfig{
		Endpoint:  server.URL,
		APIStyle:  "openai",
		Model:     "gpt-4o-mini",
		TimeoutMS: 2000,
	})
	reply, err := client.Send(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "sdk reply" {
		t.Fatalf("unexpected reply text: %q", reply.Text)
	}
}
