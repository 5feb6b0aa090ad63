package diagnostics

import "strings"

// 两种打字机效果，纯步进逻辑，由定时 tick 驱动，与请求生命周期无关。
// Two typewriter effects as pure step functions driven by timed ticks,
// fully decoupled from the request lifecycle.

// Reveal 单字符串逐字显示
// Reveal types out a single string character by character
type Reveal struct {
	runes []rune
	pos   int
}

func NewReveal(text string) Reveal {
	return Reveal{runes: []rune(text)}
}

// Step 前进一个字符；已完成时为 no-op
// Step advances one character; a no-op once done
func (r Reveal) Step() Reveal {
	if r.pos < len(r.runes) {
		r.pos++
	}
	return r
}

func (r Reveal) Done() bool {
	return r.pos >= len(r.runes)
}

// Visible 当前可见的前缀
// Visible is the currently revealed prefix
func (r Reveal) Visible() string {
	return string(r.runes[:r.pos])
}

// Cascade 多行级联显示：每行完整显示后停顿若干拍，再开始下一行
// Cascade reveals lines in sequence: each line completes fully, pauses for a
// few beats, then the next line begins
type Cascade struct {
	lines      [][]rune
	line       int
	pos        int
	pauseLeft  int
	pauseBeats int
}

func NewCascade(lines []string, pauseBeats int) Cascade {
	c := Cascade{pauseBeats: pauseBeats}
	for _, l := range lines {
		c.lines = append(c.lines, []rune(l))
	}
	return c
}

// Step 前进一拍：要么显示一个字符，要么消耗一拍行间停顿
// Step advances one beat: either reveal one character or consume one beat of
// the between-line pause
func (c Cascade) Step() Cascade {
	if c.Done() {
		return c
	}
	if c.pauseLeft > 0 {
		c.pauseLeft--
		if c.pauseLeft == 0 {
			c.line++
			c.pos = 0
		}
		return c
	}

	current := c.lines[c.line]
	if c.pos < len(current) {
		c.pos++
	}
	if c.pos >= len(current) {
		if c.line+1 >= len(c.lines) {
			// 最后一行完成 / final line finished
			c.line = len(c.lines)
			c.pos = 0
			return c
		}
		c.pauseLeft = c.pauseBeats
		if c.pauseLeft == 0 {
			c.line++
			c.pos = 0
		}
	}
	return c
}

func (c Cascade) Done() bool {
	return c.line >= len(c.lines)
}

// Visible 已完成的行加上当前行的可见前缀
// Visible is the completed lines plus the current line's revealed prefix
func (c Cascade) Visible() string {
	var b strings.Builder
	for i := 0; i < len(c.lines); i++ {
		if i < c.line {
			b.WriteString(string(c.lines[i]))
			b.WriteString("\n")
			continue
		}
		if i == c.line {
			b.WriteString(string(c.lines[i][:c.pos]))
		}
		break
	}
	return b.String()
}
