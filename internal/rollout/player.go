package rollout

import (
	"fmt"
	"strings"
	"time"

	"encdash/internal/i18n"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pieRadius 与原 SVG 画法一致的半径基准
// pieRadius matches the SVG drawing the arc geometry was designed for
const pieRadius = 16.0

// StepMsg 一次播放步进；Gen 用于丢弃过期的延时回调
// StepMsg is one playback step; Gen discards stale deferred deliveries
type StepMsg struct {
	Gen int
}

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	encryptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Model 饼图播放组件：idle → playing → idle
// Model is the pie playback widget: idle → playing → idle
type Model struct {
	snapshots []Snapshot
	index     int
	playing   bool
	gen       int
	stepDelay time.Duration
	width     int
	replay    key.Binding
	locale    *i18n.I18n
}

func New(snapshots []Snapshot, stepDelay time.Duration) Model {
	return Model{
		snapshots: snapshots,
		stepDelay: stepDelay,
		width:     60,
		replay: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "replay"),
		),
		locale: i18n.Global(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Playing 是否正在播放
// Playing reports whether playback is running
func (m Model) Playing() bool {
	return m.playing
}

// Index 当前快照下标
// Index is the current snapshot index
func (m Model) Index() int {
	return m.index
}

// Play 开始播放：重置到第 0 天并排定第一步；已在播放时是 no-op
// Play starts playback: reset to day zero and schedule the first step;
// a no-op while already playing
func (m Model) Play() (Model, tea.Cmd) {
	if m.playing || len(m.snapshots) == 0 {
		return m, nil
	}
	m.playing = true
	m.index = 0
	m.gen++
	return m, m.stepCmd()
}

// Stop 终止播放并使未到达的步进失效（组件卸载时调用）
// Stop halts playback and invalidates any pending step (called on teardown)
func (m Model) Stop() Model {
	m.playing = false
	m.gen++
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.replay) {
			return m.Play()
		}
		return m, nil

	case StepMsg:
		// 过期或已停止的步进直接丢弃 / drop stale or post-stop steps
		if !m.playing || msg.Gen != m.gen {
			return m, nil
		}
		if m.index+1 < len(m.snapshots) {
			m.index++
			// 先提交本步状态，再排定下一步 / commit this step before scheduling the next
			return m, m.stepCmd()
		}
		m.playing = false
		return m, nil
	}
	return m, nil
}

func (m Model) stepCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.stepDelay, func(time.Time) tea.Msg {
		return StepMsg{Gen: gen}
	})
}

func (m Model) View() string {
	if len(m.snapshots) == 0 {
		return mutedStyle.Render("  No rollout snapshots configured")
	}

	snap := m.snapshots[m.index]
	f := snap.Fractions()
	arcs := Arcs(f, pieRadius)

	var b strings.Builder
	b.WriteString(titleStyle.Render(" Encryption Rollout"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Day %d / %d\n\n", snap.Day, len(m.snapshots)))

	barWidth := m.width - 6
	if barWidth < 12 {
		barWidth = 12
	}
	if barWidth > 72 {
		barWidth = 72
	}
	b.WriteString("  " + renderSegmentBar(arcs, barWidth) + "\n\n")

	b.WriteString(fmt.Sprintf("  %s %-10s %4d (%.0f%%)\n",
		encryptedStyle.Render("█"), "encrypted", snap.Encrypted, f.Encrypted*100))
	b.WriteString(fmt.Sprintf("  %s %-10s %4d (%.0f%%)\n",
		pendingStyle.Render("█"), "pending", snap.Pending, f.Pending*100))
	b.WriteString(fmt.Sprintf("  %s %-10s %4d (%.0f%%)\n",
		failedStyle.Render("█"), "failed", snap.Failed, f.Failed*100))

	b.WriteString("\n")
	if m.playing {
		b.WriteString(mutedStyle.Render("  ▶ playing"))
	} else {
		b.WriteString(mutedStyle.Render("  " + m.locale.T("rollout.play_hint")))
	}
	return b.String()
}

// renderSegmentBar 把圆弧几何投影为终端里的比例条（顺序同圆弧）
// renderSegmentBar projects the arc geometry onto a proportional terminal bar,
// keeping the slice order
func renderSegmentBar(arcs []Arc, width int) string {
	styles := []lipgloss.Style{encryptedStyle, pendingStyle, failedStyle}

	var b strings.Builder
	used := 0
	for i, arc := range arcs {
		cells := int(arc.Fraction * float64(width))
		used += cells
		style := mutedStyle
		if i < len(styles) {
			style = styles[i]
		}
		b.WriteString(style.Render(strings.Repeat("█", cells)))
	}
	if rest := width - used; rest > 0 {
		b.WriteString(mutedStyle.Render(strings.Repeat("░", rest)))
	}
	return b.String()
}
