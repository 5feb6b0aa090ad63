package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	"encdash/internal/assistant"
	"encdash/internal/chatui"
	"encdash/internal/config"
	"encdash/internal/diagnostics"
	"encdash/internal/i18n"
	"encdash/internal/rollout"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMain(m *testing.M) {
	i18n.Init("en")
	os.Exit(m.Run())
}

func newTestApp() App {
	cfg := config.Default()
	chat := chatui.New(assistant.NewClient(cfg.Assistant))
	pie := rollout.New(rollout.FromConfig(cfg.Rollout.Snapshots), 10*time.Millisecond)
	diag := diagnostics.New(diagnostics.NewProber(cfg.Diagnostics), cfg.Diagnostics)
	return NewApp(chat, pie, diag)
}

func TestTabCyclesPanelsAndDrivesPlayback(t *testing.T) {
	app := newTestApp()

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	updated := m.(App)
	if updated.activePanel != PanelRollout {
		t.Fatalf("expected rollout panel, got %v", updated.activePanel)
	}
	// 进入饼图面板自动开始播放 / entering the pie panel starts playback
	if cmd == nil || !updated.rollout.Playing() {
		t.Fatalf("expected playback to start on entering the rollout panel")
	}

	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyTab})
	updated = m.(App)
	if updated.activePanel != PanelDiag {
		t.Fatalf("expected diagnostics panel, got %v", updated.activePanel)
	}
	// 离开饼图面板停止播放 / leaving the pie panel stops playback
	if updated.rollout.Playing() {
		t.Fatalf("expected playback stopped after leaving the rollout panel")
	}

	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyTab})
	updated = m.(App)
	if updated.activePanel != PanelChat {
		t.Fatalf("expected wrap around to chat, got %v", updated.activePanel)
	}
}

func TestStalePieStepAfterSwitchIsDropped(t *testing.T) {
	app := newTestApp()

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab}) // rollout, playing
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyTab})
	updated := m.(App)

	// 切走后送达的旧步进被丢弃 / a step delivered after switching away is dropped
	m, cmd := updated.Update(rollout.StepMsg{Gen: 1})
	updated = m.(App)
	if cmd != nil || updated.rollout.Index() != 0 {
		t.Fatalf("stale step must not advance playback, index=%d", updated.rollout.Index())
	}
}

func TestViewRendersTabsAndStatus(t *testing.T) {
	app := newTestApp()
	m, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	updated := m.(App)

	out := updated.View()
	for _, label := range []string{"Chat", "Rollout", "Diagnostics", "Ready"} {
		if !strings.Contains(out, label) {
			t.Fatalf("missing %q in view", label)
		}
	}
}

func TestZeroSizeViewShowsPlaceholder(t *testing.T) {
	app := newTestApp()
	if got := app.View(); got != "Initializing..." {
		t.Fatalf("unexpected placeholder: %q", got)
	}
}

func TestDiagnosticsKeysRoutedWhenActive(t *testing.T) {
	app := newTestApp()
	app.activePanel = PanelDiag

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	updated := m.(App)
	if cmd == nil {
		t.Fatalf("expected sweep frame command")
	}
	if len(updated.diag.History()) != 0 {
		t.Fatalf("history must stay empty until the cycle completes")
	}
}
