package diagnostics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"encdash/internal/config"
)

func proberFor(baseURL string) *Prober {
	return NewProber(config.DiagnosticsConfig{
		BaseURL:   baseURL,
		TimeoutMS: 2000,
	})
}

func TestCallHealthyEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("unexpected accept header: %q", accept)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","uptime":12}`))
	}))
	defer server.Close()

	result := proberFor(server.URL).Call(context.Background(), ActionHealth)
	if !result.OK {
		t.Fatalf("expected ok result: %+v", result)
	}
	if result.Status != 200 {
		t.Fatalf("unexpected status: %d", result.Status)
	}
	if result.Err != "" {
		t.Fatalf("error must be empty, got %q", result.Err)
	}
	if result.FullJSON == nil {
		t.Fatalf("expected parsed JSON body")
	}
	if result.BodyPreview == "" {
		t.Fatalf("expected body preview")
	}
	if result.At.IsZero() {
		t.Fatalf("expected call timestamp")
	}
}

func TestCallNon2xxIsCompletedNotFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`down`))
	}))
	defer server.Close()

	result := proberFor(server.URL).Call(context.Background(), ActionDBCheck)
	if result.OK {
		t.Fatalf("503 must not be ok")
	}
	if result.Status != 503 {
		t.Fatalf("unexpected status: %d", result.Status)
	}
	if result.Err != "" {
		t.Fatalf("non-2xx is a completed call, error must be empty: %q", result.Err)
	}
	if result.BodyPreview != "down" {
		t.Fatalf("unexpected preview: %q", result.BodyPreview)
	}
}

func TestCallUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立即关闭制造拒绝连接 / close to force connection refused

	result := proberFor(server.URL).Call(context.Background(), ActionPing)
	if result.OK {
		t.Fatalf("unreachable host must not be ok")
	}
	if result.Status != 0 {
		t.Fatalf("transport failure must keep status 0, got %d", result.Status)
	}
	if result.Err == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestURLForNormalizesBase(t *testing.T) {
	p := NewProber(config.DiagnosticsConfig{BaseURL: "http://ops.internal///", TimeoutMS: 1000})
	if got := p.URLFor(ActionPing); got != "http://ops.internal/api/ping" {
		t.Fatalf("unexpected url: %q", got)
	}
	if got := p.URLFor(ActionHealth); got != "http://ops.internal/api/health" {
		t.Fatalf("unexpected url: %q", got)
	}
	if got := p.URLFor(ActionDBCheck); got != "http://ops.internal/api/dbcheck" {
		t.Fatalf("unexpected url: %q", got)
	}
}

func TestBodyPreviewTruncated(t *testing.T) {
	big := make([]byte, previewLimit*3)
	for i := range big {
		big[i] = 'x'
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big)
	}))
	defer server.Close()

	result := proberFor(server.URL).Call(context.Background(), ActionHealth)
	if len(result.BodyPreview) > previewLimit+len("…") {
		t.Fatalf("preview not truncated: %d bytes", len(result.BodyPreview))
	}
}
