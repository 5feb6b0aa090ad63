package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"encdash/internal/config"
	"encdash/internal/i18n"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// frameInterval 扫描动画帧间隔
// frameInterval is the sweep animation frame interval
const frameInterval = 33 * time.Millisecond

// typeCharDelay 打字机每字符间隔
// typeCharDelay is the per-character typewriter cadence
const typeCharDelay = 35 * time.Millisecond

// cascadePauseBeats 级联行间停顿拍数
// cascadePauseBeats is the between-line pause in beats
const cascadePauseBeats = 8

// --- Tea Messages ---

// SweepTickMsg 推进某个调用周期的动画一帧
// SweepTickMsg advances one call cycle's animation by one frame
type SweepTickMsg struct{ ID int }

// ResultMsg 携带探测结果
// ResultMsg carries a probe result
type ResultMsg struct {
	ID     int
	Result CallResult
}

// TitleTickMsg 标题打字机一拍
// TitleTickMsg is one beat of the title typewriter
type TitleTickMsg struct{}

// CascadeTickMsg 级联打字机一拍
// CascadeTickMsg is one beat of the cascading typewriter
type CascadeTickMsg struct{}

type phase int

const (
	phaseForward phase = iota
	phaseAwait
	phasePause
	phaseBackward
)

// cycle 一次触发的完整动画/请求周期。多个周期可以并存：
// 重复触发不做串行化，标记位置以最新周期为准。
// cycle is one trigger's full animation/request lifecycle. Cycles may
// overlap: repeated triggers are not serialized and the marker follows the
// newest cycle.
type cycle struct {
	id     int
	action Action
	phase  phase
	step   int
	result CallResult
	landed bool
}

var (
	diagTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true)
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	flightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Model 诊断面板组件
// Model is the diagnostics panel widget
type Model struct {
	prober  *Prober
	history []CallResult
	lastErr string

	cycles []*cycle
	nextID int

	forwardSteps  int
	backwardSteps int
	pauseSteps    int

	title Reveal
	lines Cascade

	width  int
	locale *i18n.I18n
}

func New(prober *Prober, cfg config.DiagnosticsConfig) Model {
	return Model{
		prober:        prober,
		forwardSteps:  stepsFor(cfg.SweepForwardMS),
		backwardSteps: stepsFor(cfg.SweepBackwardMS),
		pauseSteps:    stepsFor(cfg.SweepPauseMS),
		title:         NewReveal("ENCRYPTION DIAGNOSTICS"),
		lines: NewCascade([]string{
			"probing rollout backend endpoints",
			"non-2xx responses still count as completed calls",
			"transport failures are recorded with ok=false",
		}, cascadePauseBeats),
		width:  60,
		locale: i18n.Global(),
	}
}

func stepsFor(durationMS int) int {
	steps := int(time.Duration(durationMS) * time.Millisecond / frameInterval)
	if steps < 1 {
		steps = 1
	}
	return steps
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(titleTickCmd(), cascadeTickCmd())
}

// History 返回调用历史（只增不删）
// History returns the append-only call history
func (m Model) History() []CallResult {
	return m.history
}

// Trigger 发起一次诊断调用：标记回到路径起点并开始正向扫描。
// 已有周期未结束时允许重叠触发。
// Trigger starts one diagnostic call: the marker returns to the path start
// and the forward sweep begins. Overlapping triggers are allowed.
func (m Model) Trigger(action Action) (Model, tea.Cmd) {
	m.nextID++
	c := &cycle{id: m.nextID, action: action, phase: phaseForward}
	m.cycles = append(m.cycles, c)
	return m, frameCmd(c.id)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "h":
			return m.Trigger(ActionHealth)
		case "p":
			return m.Trigger(ActionPing)
		case "d":
			return m.Trigger(ActionDBCheck)
		}
		return m, nil

	case TitleTickMsg:
		m.title = m.title.Step()
		if m.title.Done() {
			return m, nil
		}
		return m, titleTickCmd()

	case CascadeTickMsg:
		m.lines = m.lines.Step()
		if m.lines.Done() {
			return m, nil
		}
		return m, cascadeTickCmd()

	case SweepTickMsg:
		return m.advanceCycle(msg.ID)

	case ResultMsg:
		c := m.findCycle(msg.ID)
		if c == nil {
			return m, nil
		}
		c.result = msg.Result
		c.landed = true
		c.phase = phasePause
		c.step = 0
		return m, frameCmd(c.id)
	}
	return m, nil
}

func (m Model) advanceCycle(id int) (Model, tea.Cmd) {
	c := m.findCycle(id)
	if c == nil {
		return m, nil
	}

	switch c.phase {
	case phaseForward:
		c.step++
		if c.step >= m.forwardSteps {
			// 正向扫描结束后才发起请求 / the GET fires only after the forward sweep lands
			c.phase = phaseAwait
			return m, m.probeCmd(c.id, c.action)
		}
		return m, frameCmd(c.id)

	case phasePause:
		c.step++
		if c.step >= m.pauseSteps {
			c.phase = phaseBackward
			c.step = 0
		}
		return m, frameCmd(c.id)

	case phaseBackward:
		c.step++
		if c.step >= m.backwardSteps {
			return m.completeCycle(c)
		}
		return m, frameCmd(c.id)
	}
	return m, nil
}

// completeCycle 周期结束：隐藏标记、把结果写入历史
// completeCycle ends a cycle: hide the marker, append the result to history
func (m Model) completeCycle(c *cycle) (Model, tea.Cmd) {
	m.history = append(m.history, c.result)
	if c.result.Err != "" {
		m.lastErr = c.result.Err
	} else {
		m.lastErr = ""
	}

	kept := m.cycles[:0]
	for _, other := range m.cycles {
		if other.id != c.id {
			kept = append(kept, other)
		}
	}
	m.cycles = kept
	return m, nil
}

func (m Model) findCycle(id int) *cycle {
	for _, c := range m.cycles {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (m Model) probeCmd(id int, action Action) tea.Cmd {
	prober := m.prober
	return func() tea.Msg {
		return ResultMsg{ID: id, Result: prober.Call(context.Background(), action)}
	}
}

func frameCmd(id int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return SweepTickMsg{ID: id}
	})
}

func titleTickCmd() tea.Cmd {
	return tea.Tick(typeCharDelay, func(time.Time) tea.Msg {
		return TitleTickMsg{}
	})
}

func cascadeTickCmd() tea.Cmd {
	return tea.Tick(typeCharDelay, func(time.Time) tea.Msg {
		return CascadeTickMsg{}
	})
}

// View 渲染面板；渲染期间的 panic 由边界捕获并替换为静态错误文案。
// 网络失败不经过该边界，它们作为 ok=false 的历史记录呈现。
// View renders the panel; a rendering panic is caught by the boundary and
// replaced with a static error message. Network faults never go through this
// boundary, they surface as ok=false history entries.
func (m Model) View() string {
	return guardRender(m.render, failStyle.Render("  "+m.locale.T("diag.render_fault")))
}

// guardRender 渲染故障的隔离边界：panic 被替换为降级文案
// guardRender is the rendering-fault boundary: a panic is substituted with
// the fallback view
func guardRender(render func() string, fallback string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback
		}
	}()
	return render()
}

func (m Model) render() string {
	var b strings.Builder

	b.WriteString(" " + diagTitleStyle.Render(m.title.Visible()))
	b.WriteString("\n\n")

	if typed := m.lines.Visible(); typed != "" {
		for _, line := range strings.Split(strings.TrimRight(typed, "\n"), "\n") {
			b.WriteString("  " + dimStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + m.locale.T("diag.actions_hint"))
	b.WriteString("\n\n")

	b.WriteString("  " + m.renderTrack())
	b.WriteString("\n\n")

	if len(m.history) == 0 {
		b.WriteString("  " + dimStyle.Render(m.locale.T("diag.no_calls")) + "\n")
	} else {
		start := len(m.history) - 6
		if start < 0 {
			start = 0
		}
		for _, r := range m.history[start:] {
			b.WriteString("  " + renderHistoryLine(r) + "\n")
		}
	}

	if m.lastErr != "" {
		b.WriteString("\n  " + failStyle.Render(m.lastErr) + "\n")
	}
	return b.String()
}

// renderTrack 画出扫描轨道；重叠周期时标记跟随最新周期
// renderTrack draws the sweep track; with overlapping cycles the marker
// follows the newest one
func (m Model) renderTrack() string {
	trackWidth := m.width - 6
	if trackWidth < 16 {
		trackWidth = 16
	}
	if trackWidth > 64 {
		trackWidth = 64
	}

	c := m.newestCycle()
	if c == nil {
		return dimStyle.Render(strings.Repeat("─", trackWidth))
	}

	pos := int(m.markerFraction(c) * float64(trackWidth-1))
	if pos < 0 {
		pos = 0
	}
	if pos > trackWidth-1 {
		pos = trackWidth - 1
	}

	style := flightStyle
	if c.landed {
		if c.result.OK {
			style = okStyle
		} else {
			style = failStyle
		}
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render(strings.Repeat("─", pos)))
	b.WriteString(style.Render("●"))
	b.WriteString(dimStyle.Render(strings.Repeat("─", trackWidth-1-pos)))
	return b.String()
}

func (m Model) newestCycle() *cycle {
	var newest *cycle
	for _, c := range m.cycles {
		if newest == nil || c.id > newest.id {
			newest = c
		}
	}
	return newest
}

func (m Model) markerFraction(c *cycle) float64 {
	switch c.phase {
	case phaseForward:
		return float64(c.step) / float64(m.forwardSteps)
	case phaseAwait, phasePause:
		return 1
	case phaseBackward:
		return 1 - float64(c.step)/float64(m.backwardSteps)
	}
	return 0
}

func renderHistoryLine(r CallResult) string {
	if r.Err != "" {
		return fmt.Sprintf("%s %s %s", failStyle.Render("✗"), r.URL, dimStyle.Render(r.Err))
	}
	mark := okStyle.Render("✓")
	if !r.OK {
		mark = failStyle.Render("✗")
	}
	return fmt.Sprintf("%s %d %s %s %s", mark, r.Status, r.StatusText, r.URL,
		dimStyle.Render(fmt.Sprintf("%dms", r.TimeMS)))
}
