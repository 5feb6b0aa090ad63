package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encdash/internal/chat"
	"encdash/internal/config"
)

// maxReplyBytes 限制读取的响应体大小，避免异常后端撑爆内存
// maxReplyBytes caps how much of a response body is read
const maxReplyBytes = 1 << 20

// Client 向配置的助手端点发送整个会话并解析应答
// Client posts the whole transcript to the configured endpoint and resolves the reply
type Client struct {
	endpoint   string
	apiStyle   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Reply 一次成功往返的结果
// Reply is the outcome of one successful round trip
type Reply struct {
	Text    string
	Elapsed time.Duration
	Origin  string
}

func NewClient(cfg config.AssistantConfig) *Client {
	return &Client{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		apiStyle: cfg.APIStyle,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Send 发送完整会话（含最新用户消息）并返回解析后的应答。
// 传输层失败返回 error；非 2xx 响应不视为失败，照常走应答解析链。
// Send posts the full transcript (including the newest user line) and returns
// the resolved reply. Transport failures return an error; non-2xx responses
// are not failures and still go through the reply extraction chain.
func (c *Client) Send(ctx context.Context, messages []chat.Message) (Reply, error) {
	if c.apiStyle == "openai" {
		return c.sendOpenAI(ctx, messages)
	}
	return c.sendGeneric(ctx, messages)
}

// Origin 返回端点的主机部分，用于状态行展示
// Origin returns the endpoint host, used for the status line
func (c *Client) Origin() string {
	u, err := url.Parse(c.endpoint)
	if err != nil || u.Host == "" {
		return c.endpoint
	}
	return u.Host
}

func (c *Client) sendGeneric(ctx context.Context, messages []chat.Message) (Reply, error) {
	payload := map[string]any{
		"messages": messages,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("read chat response: %w", err)
	}

	return Reply{
		Text:    ResolveReply(data),
		Elapsed: time.Since(start),
		Origin:  c.Origin(),
	}, nil
}
