package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"encdash/internal/config"
)

// Action 诊断动作，对应固定的探测路径
// Action is one diagnostic action with a fixed probe path
type Action string

const (
	ActionHealth  Action = "health"
	ActionPing    Action = "ping"
	ActionDBCheck Action = "dbcheck"
)

// actionPaths 动作到路径后缀的映射
// actionPaths maps actions to path suffixes
var actionPaths = map[Action]string{
	ActionHealth:  "/api/health",
	ActionPing:    "/api/ping",
	ActionDBCheck: "/api/dbcheck",
}

// previewLimit 响应体预览的最大长度
// previewLimit caps the body preview length
const previewLimit = 160

// maxProbeBytes 读取响应体的上限
// maxProbeBytes caps how much of a probe response is read
const maxProbeBytes = 256 * 1024

// CallResult 一次探测调用的记录；历史只增不删
// CallResult records one probe call; history is append-only
type CallResult struct {
	URL         string
	OK          bool
	Status      int
	StatusText  string
	BodyPreview string
	FullJSON    any
	TimeMS      int64
	At          time.Time
	// Err 仅传输层失败时非空；非 2xx 响应不算失败
	// Err is non-empty only for transport failures; non-2xx is not a failure
	Err string
}

// Prober 对固定诊断端点发起 GET 探测
// Prober issues GET probes against the fixed diagnostic endpoints
type Prober struct {
	baseURL    string
	httpClient *http.Client
}

func NewProber(cfg config.DiagnosticsConfig) *Prober {
	return &Prober{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// URLFor 拼接动作的完整探测 URL
// URLFor joins the full probe URL for an action
func (p *Prober) URLFor(action Action) string {
	path, ok := actionPaths[action]
	if !ok {
		path = "/api/" + string(action)
	}
	return p.baseURL + path
}

// Call 执行一次探测。任何非异常响应（含非 2xx）都算完成的调用，
// OK 取自 HTTP ok 标志；只有传输层异常产生 OK=false、Status=0 和错误串。
// Call performs one probe. Any non-exception response (non-2xx included) is a
// completed call with OK from the HTTP ok indicator; only transport exceptions
// produce OK=false, Status=0 and an error string.
func (p *Prober) Call(ctx context.Context, action Action) CallResult {
	target := p.URLFor(action)
	start := time.Now()

	result := CallResult{
		URL: target,
		At:  start,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		result.Err = fmt.Sprintf("create probe request: %v", err)
		result.TimeMS = time.Since(start).Milliseconds()
		return result
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		result.Err = fmt.Sprintf("probe %s: %v", target, err)
		result.TimeMS = time.Since(start).Milliseconds()
		return result
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxProbeBytes))
	result.TimeMS = time.Since(start).Milliseconds()
	result.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	result.Status = resp.StatusCode
	result.StatusText = http.StatusText(resp.StatusCode)

	if readErr != nil {
		result.BodyPreview = fmt.Sprintf("(read body: %v)", readErr)
		return result
	}

	preview := strings.TrimSpace(string(body))
	if len(preview) > previewLimit {
		preview = preview[:previewLimit] + "…"
	}
	result.BodyPreview = preview

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		result.FullJSON = parsed
	}
	return result
}
