package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"encdash/internal/chat"

	openai "github.com/sashabaranov/go-openai"
)

// sendOpenAI 通过 go-openai SDK 走 OpenAI 兼容端点。
// api_style 为 "openai" 时，endpoint 被当作兼容服务的 base URL。
// sendOpenAI goes through the go-openai SDK for OpenAI-compatible endpoints.
// With api_style "openai" the endpoint is treated as the service base URL.
func (c *Client) sendOpenAI(ctx context.Context, messages []chat.Message) (Reply, error) {
	cfg := openai.DefaultConfig(c.apiKey)
	cfg.BaseURL = strings.TrimRight(c.endpoint, "/")
	cfg.HTTPClient = c.httpClient

	client := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: convertMessages(messages),
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, fmt.Errorf("chat completion has no choices")
	}

	return Reply{
		Text:    resp.Choices[0].Message.Content,
		Elapsed: time.Since(start),
		Origin:  c.Origin(),
	}, nil
}

func convertMessages(messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
