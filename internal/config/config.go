package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AssistantConfig 聊天助手端点配置
// AssistantConfig configures the chat assistant endpoint
type AssistantConfig struct {
	// Endpoint 接收 {"messages":[...]} POST 的完整 URL
	// Endpoint is the full URL receiving the {"messages":[...]} POST
	Endpoint string `json:"endpoint"`
	// APIStyle "generic"（直接 POST + 应答嗅探）或 "openai"（走 SDK）
	// APIStyle is "generic" (raw POST + reply sniffing) or "openai" (via SDK)
	APIStyle  string `json:"api_style"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	TimeoutMS int    `json:"timeout_ms"`
}

// DiagnosticsConfig 诊断面板配置
// DiagnosticsConfig configures the diagnostics panel
type DiagnosticsConfig struct {
	BaseURL         string `json:"base_url"`
	TimeoutMS       int    `json:"timeout_ms"`
	SweepForwardMS  int    `json:"sweep_forward_ms"`
	SweepBackwardMS int    `json:"sweep_backward_ms"`
	SweepPauseMS    int    `json:"sweep_pause_ms"`
}

// SnapshotConfig 单日加密状态快照
// SnapshotConfig is one day's encryption-status snapshot
type SnapshotConfig struct {
	Day       int `json:"day"`
	Encrypted int `json:"encrypted"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
}

// RolloutConfig 饼图播放配置
// RolloutConfig configures rollout pie playback
type RolloutConfig struct {
	StepDelayMS int              `json:"step_delay_ms"`
	Snapshots   []SnapshotConfig `json:"snapshots"`
}

// UIConfig 界面配置
// UIConfig configures the UI shell
type UIConfig struct {
	Locale string `json:"locale"`
}

type Config struct {
	Assistant   AssistantConfig   `json:"assistant"`
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
	Rollout     RolloutConfig     `json:"rollout"`
	UI          UIConfig          `json:"ui"`
}

type fileRolloutConfig struct {
	StepDelayMS *int              `json:"step_delay_ms"`
	Snapshots   *[]SnapshotConfig `json:"snapshots"`
}

type fileConfig struct {
	Assistant   *AssistantConfig   `json:"assistant"`
	Diagnostics *DiagnosticsConfig `json:"diagnostics"`
	Rollout     *fileRolloutConfig `json:"rollout"`
	UI          *UIConfig          `json:"ui"`
}

func Default() Config {
	return Config{
		Assistant: AssistantConfig{
			Endpoint:  "http://127.0.0.1:8080/api/chat",
			APIStyle:  "generic",
			Model:     "gpt-4o-mini",
			TimeoutMS: 30000,
		},
		Diagnostics: DiagnosticsConfig{
			BaseURL:         "http://127.0.0.1:8080",
			TimeoutMS:       8000,
			SweepForwardMS:  1200,
			SweepBackwardMS: 900,
			SweepPauseMS:    350,
		},
		Rollout: RolloutConfig{
			StepDelayMS: 900,
			Snapshots: []SnapshotConfig{
				{Day: 1, Encrypted: 12, Pending: 80, Failed: 2},
				{Day: 2, Encrypted: 31, Pending: 60, Failed: 3},
				{Day: 3, Encrypted: 52, Pending: 40, Failed: 4},
				{Day: 4, Encrypted: 68, Pending: 25, Failed: 4},
				{Day: 5, Encrypted: 80, Pending: 14, Failed: 5},
				{Day: 6, Encrypted: 89, Pending: 6, Failed: 5},
				{Day: 7, Encrypted: 94, Pending: 1, Failed: 5},
			},
		},
		UI: UIConfig{},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("ENCDASH_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".encdash", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"encdash.config.json",
		".encdash/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Assistant != nil {
		cfg.Assistant = mergeAssistant(cfg.Assistant, *fc.Assistant)
	}
	if fc.Diagnostics != nil {
		cfg.Diagnostics = mergeDiagnostics(cfg.Diagnostics, *fc.Diagnostics)
	}
	if fc.Rollout != nil {
		if fc.Rollout.StepDelayMS != nil && *fc.Rollout.StepDelayMS > 0 {
			cfg.Rollout.StepDelayMS = *fc.Rollout.StepDelayMS
		}
		if fc.Rollout.Snapshots != nil && len(*fc.Rollout.Snapshots) > 0 {
			cfg.Rollout.Snapshots = append([]SnapshotConfig(nil), (*fc.Rollout.Snapshots)...)
		}
	}
	if fc.UI != nil {
		if strings.TrimSpace(fc.UI.Locale) != "" {
			cfg.UI.Locale = fc.UI.Locale
		}
	}
}

func mergeAssistant(base AssistantConfig, override AssistantConfig) AssistantConfig {
	if strings.TrimSpace(override.Endpoint) != "" {
		base.Endpoint = override.Endpoint
	}
	if strings.TrimSpace(override.APIStyle) != "" {
		base.APIStyle = override.APIStyle
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	return base
}

func mergeDiagnostics(base DiagnosticsConfig, override DiagnosticsConfig) DiagnosticsConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.SweepForwardMS > 0 {
		base.SweepForwardMS = override.SweepForwardMS
	}
	if override.SweepBackwardMS > 0 {
		base.SweepBackwardMS = override.SweepBackwardMS
	}
	if override.SweepPauseMS > 0 {
		base.SweepPauseMS = override.SweepPauseMS
	}
	return base
}

func normalize(cfg *Config) error {
	def := Default()

	if strings.TrimSpace(cfg.Assistant.Endpoint) == "" {
		cfg.Assistant.Endpoint = def.Assistant.Endpoint
	}
	style := strings.ToLower(strings.TrimSpace(cfg.Assistant.APIStyle))
	switch style {
	case "", "generic":
		cfg.Assistant.APIStyle = "generic"
	case "openai":
		cfg.Assistant.APIStyle = "openai"
	default:
		return fmt.Errorf("unknown assistant api_style %q", cfg.Assistant.APIStyle)
	}
	if cfg.Assistant.TimeoutMS <= 0 {
		cfg.Assistant.TimeoutMS = def.Assistant.TimeoutMS
	}

	// 诊断 base_url 去掉尾部斜杠，探测时统一拼接路径
	// Diagnostics base_url is normalized without a trailing slash
	cfg.Diagnostics.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Diagnostics.BaseURL), "/")
	if cfg.Diagnostics.BaseURL == "" {
		cfg.Diagnostics.BaseURL = def.Diagnostics.BaseURL
	}
	if cfg.Diagnostics.TimeoutMS <= 0 {
		cfg.Diagnostics.TimeoutMS = def.Diagnostics.TimeoutMS
	}
	if cfg.Diagnostics.SweepForwardMS <= 0 {
		cfg.Diagnostics.SweepForwardMS = def.Diagnostics.SweepForwardMS
	}
	if cfg.Diagnostics.SweepBackwardMS <= 0 {
		cfg.Diagnostics.SweepBackwardMS = def.Diagnostics.SweepBackwardMS
	}
	if cfg.Diagnostics.SweepPauseMS <= 0 {
		cfg.Diagnostics.SweepPauseMS = def.Diagnostics.SweepPauseMS
	}

	if cfg.Rollout.StepDelayMS <= 0 {
		cfg.Rollout.StepDelayMS = def.Rollout.StepDelayMS
	}
	if len(cfg.Rollout.Snapshots) == 0 {
		cfg.Rollout.Snapshots = def.Rollout.Snapshots
	}
	for i, snap := range cfg.Rollout.Snapshots {
		if snap.Encrypted < 0 || snap.Pending < 0 || snap.Failed < 0 {
			return fmt.Errorf("rollout snapshot %d has negative counts", i)
		}
	}

	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("ENCDASH_ENDPOINT")); v != "" {
		cfg.Assistant.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("ENCDASH_API_KEY")); v != "" {
		cfg.Assistant.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ENCDASH_DIAG_BASE_URL")); v != "" {
		cfg.Diagnostics.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ENCDASH_LOCALE")); v != "" {
		cfg.UI.Locale = v
	}
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
