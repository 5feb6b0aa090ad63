package chatui

import (
	"context"
	"fmt"
	"strings"

	"encdash/internal/assistant"
	"encdash/internal/chat"
	"encdash/internal/i18n"
	"encdash/internal/tokens"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ReplyMsg 一次往返的结果（成功或传输失败）
// ReplyMsg carries the outcome of one round trip, success or transport failure
type ReplyMsg struct {
	Reply assistant.Reply
	Err   error
}

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	noteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// block 聊天面板中的一个展示块。系统状态行和失败行同时进入会话，
// 后续提交会把它们一并发往端点。
// block is one displayed unit of the chat panel. System status and failure
// lines also enter the transcript, so later submits carry them on the wire.
type block struct {
	role string // chat role; "error" styles a failed-request system line
	text string
}

// keyMap 聊天面板快捷键
// keyMap holds the chat panel keybindings
type keyMap struct {
	Submit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
	}
}

// Model 聊天终端组件
// Model is the chat terminal widget
type Model struct {
	transcript *chat.Transcript
	client     *assistant.Client
	tokenizer  *tokens.Tokenizer

	input textarea.Model
	view  viewport.Model

	blocks []block
	busy   bool

	width  int
	height int
	keys   keyMap
	locale *i18n.I18n
}

func New(client *assistant.Client) Model {
	ta := textarea.New()
	ta.Placeholder = i18n.T("input.placeholder")
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.Focus()

	return Model{
		transcript: &chat.Transcript{},
		client:     client,
		tokenizer:  tokens.Default(),
		input:      ta,
		view:       viewport.New(80, 20),
		width:      80,
		height:     24,
		keys:       defaultKeyMap(),
		locale:     i18n.Global(),
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Busy 是否有请求在途
// Busy reports whether a request is in flight
func (m Model) Busy() bool {
	return m.busy
}

// Transcript 返回底层会话
// Transcript returns the underlying conversation
func (m Model) Transcript() *chat.Transcript {
	return m.transcript
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}

	case ReplyMsg:
		return m.applyReply(msg), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit 提交当前输入。空白输入和在途请求期间的提交都是 no-op，
// 在途判断发生在提交时刻而不是输入时刻。
// submit sends the current input. Blank input is a no-op, and so is
// submitting while a request is in flight; the busy check happens at submit
// time, not while typing.
func (m Model) submit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return m, nil
	}

	m.transcript.Append(chat.RoleUser, text)
	m.blocks = append(m.blocks, block{role: chat.RoleUser, text: text})
	m.input.Reset()
	m.busy = true
	m.refreshView()

	return m, m.sendCmd()
}

// sendCmd 把完整会话（含最新用户消息）发给助手端点
// sendCmd posts the whole transcript, newest user line included
func (m Model) sendCmd() tea.Cmd {
	client := m.client
	messages := m.transcript.Messages()
	return func() tea.Msg {
		reply, err := client.Send(context.Background(), messages)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

func (m Model) applyReply(msg ReplyMsg) Model {
	m.busy = false

	if msg.Err != nil {
		line := m.locale.T("chat.failed_line", msg.Err.Error())
		m.transcript.Append(chat.RoleSystem, line)
		m.blocks = append(m.blocks, block{role: "error", text: line})
		m.refreshView()
		return m
	}

	text := msg.Reply.Text
	if strings.TrimSpace(text) == "" {
		text = m.locale.T("chat.empty_reply")
	}
	status := m.locale.T("chat.status_line", msg.Reply.Elapsed.Milliseconds(), msg.Reply.Origin)
	m.transcript.Append(chat.RoleAssistant, text)
	m.transcript.Append(chat.RoleSystem, status)
	m.blocks = append(m.blocks, block{role: chat.RoleAssistant, text: text})
	m.blocks = append(m.blocks, block{role: chat.RoleSystem, text: status})
	m.refreshView()
	return m
}

func (m *Model) relayout() {
	viewHeight := m.height - 7
	if viewHeight < 3 {
		viewHeight = 3
	}
	m.view = viewport.New(m.width, viewHeight)
	m.input.SetWidth(m.width - 4)
	m.refreshView()
}

func (m *Model) refreshView() {
	var b strings.Builder
	for _, blk := range m.blocks {
		switch blk.role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render("you") + "\n")
			b.WriteString(blk.text + "\n\n")
		case chat.RoleAssistant:
			b.WriteString(assistantStyle.Render("assistant") + "\n")
			b.WriteString(renderMarkdown(blk.text, m.width-2) + "\n\n")
		case "error":
			b.WriteString(errorStyle.Render(blk.text) + "\n\n")
		default:
			b.WriteString(noteStyle.Render(blk.text) + "\n\n")
		}
	}
	m.view.SetContent(b.String())
	m.view.GotoBottom()
}

func (m Model) View() string {
	status := m.locale.T("status.ready")
	if m.busy {
		status = m.locale.T("status.busy")
	}

	footer := fmt.Sprintf("%s · %s",
		m.locale.T("chat.tokens", m.tokenizer.Count(m.transcript.Messages())),
		status)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.view.View(),
		m.input.View(),
		noteStyle.Render(" "+footer),
	)
}

// renderMarkdown 渲染助手应答的 markdown；渲染失败时退回原文
// renderMarkdown renders assistant markdown, falling back to the raw text
func renderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
