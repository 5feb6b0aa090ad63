package tui

import (
	"fmt"
	"strings"

	"encdash/internal/chatui"
	"encdash/internal/diagnostics"
	"encdash/internal/i18n"
	"encdash/internal/rollout"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PanelID 面板标识
// PanelID identifies a panel
type PanelID int

const (
	PanelChat PanelID = iota
	PanelRollout
	PanelDiag
)

const panelCount = 3

// App Bubble Tea 主 Model，承载三个面板并负责消息路由
// App is the main Bubble Tea model; it hosts the three panels and routes
// messages to them
type App struct {
	// 布局 / Layout
	width  int
	height int

	// 面板 / Panels
	activePanel PanelID
	chat        chatui.Model
	rollout     rollout.Model
	diag        diagnostics.Model

	// 配置 / Config
	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(chat chatui.Model, pie rollout.Model, diag diagnostics.Model) App {
	return App{
		activePanel: PanelChat,
		chat:        chat,
		rollout:     pie,
		diag:        diag,
		theme:       DarkTheme(),
		keys:        DefaultKeyMap(),
		locale:      i18n.Global(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.chat.Init(), a.diag.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.SwitchPanel):
			return a.switchPanel()
		}
		return a.routeToActive(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2}
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(inner)
		cmds = append(cmds, cmd)
		a.rollout, cmd = a.rollout.Update(inner)
		cmds = append(cmds, cmd)
		a.diag, cmd = a.diag.Update(inner)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case chatui.ReplyMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd

	case rollout.StepMsg:
		var cmd tea.Cmd
		a.rollout, cmd = a.rollout.Update(msg)
		return a, cmd

	case diagnostics.SweepTickMsg, diagnostics.ResultMsg,
		diagnostics.TitleTickMsg, diagnostics.CascadeTickMsg:
		var cmd tea.Cmd
		a.diag, cmd = a.diag.Update(msg)
		return a, cmd
	}

	return a.routeToActive(msg)
}

// switchPanel 切换到下一个面板。离开饼图面板时停止播放并使未到达的
// 步进失效，进入时自动重播。
// switchPanel cycles to the next panel. Leaving the pie panel stops playback
// and invalidates pending steps; entering it replays automatically.
func (a App) switchPanel() (tea.Model, tea.Cmd) {
	if a.activePanel == PanelRollout {
		a.rollout = a.rollout.Stop()
	}
	a.activePanel = (a.activePanel + 1) % panelCount

	if a.activePanel == PanelRollout {
		var cmd tea.Cmd
		a.rollout, cmd = a.rollout.Play()
		return a, cmd
	}
	return a, nil
}

// routeToActive 把消息交给当前面板
// routeToActive hands the message to the active panel
func (a App) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activePanel {
	case PanelChat:
		a.chat, cmd = a.chat.Update(msg)
	case PanelRollout:
		a.rollout, cmd = a.rollout.Update(msg)
	case PanelDiag:
		a.diag, cmd = a.diag.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	tabs := a.renderTabs()
	panel := a.renderActivePanel()
	statusBar := a.renderStatusBar(a.width)

	return lipgloss.JoinVertical(lipgloss.Left, tabs, panel, statusBar)
}

func (a App) renderTabs() string {
	tabs := []struct {
		id   PanelID
		name string
	}{
		{PanelChat, a.locale.T("panel.chat")},
		{PanelRollout, a.locale.T("panel.rollout")},
		{PanelDiag, a.locale.T("panel.diag")},
	}

	var parts []string
	for _, tab := range tabs {
		style := a.theme.InactiveTabStyle
		if tab.id == a.activePanel {
			style = a.theme.ActiveTabStyle
		}
		parts = append(parts, style.Render(tab.name))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) renderActivePanel() string {
	panelHeight := a.height - 2
	if panelHeight < 3 {
		panelHeight = 3
	}

	style := a.theme.PanelStyle.
		Width(a.width).
		Height(panelHeight)

	switch a.activePanel {
	case PanelRollout:
		return style.Render(a.rollout.View())
	case PanelDiag:
		return style.Render(a.diag.View())
	default:
		return style.Render(a.chat.View())
	}
}

func (a App) renderStatusBar(width int) string {
	status := a.locale.T("status.ready")
	if a.chat.Busy() {
		status = a.locale.T("status.busy")
	}

	left := fmt.Sprintf(" %s", status)
	right := "tab · ctrl+c  "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return a.theme.StatusBarStyle.Width(width).Render(bar)
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(chat chatui.Model, pie rollout.Model, diag diagnostics.Model) error {
	p := tea.NewProgram(NewApp(chat, pie, diag), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
