package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"encdash/internal/assistant"
	"encdash/internal/chat"
	"encdash/internal/i18n"
	"encdash/internal/tokens"

	"github.com/chzyer/readline"
)

type lineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func newBasicLineInput(in io.Reader, out io.Writer) *basicLineInput {
	return &basicLineInput{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(historyPath string) (*readlineInput, error) {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

func newLineInput(historyPath string) (lineInput, error) {
	readlineReader, err := newReadlineInput(historyPath)
	if err == nil {
		return readlineReader, nil
	}
	return newBasicLineInput(os.Stdin, os.Stdout), err
}

var replCommands = []string{"/help", "/tokens", "/quit"}

func printREPLCommands(out io.Writer) {
	if out == nil {
		return
	}
	fmt.Fprintln(out, "commands:")
	for _, cmd := range replCommands {
		fmt.Fprintf(out, "  %s\n", cmd)
	}
}

// runPlainChat 无 TUI 的纯行式聊天：每行输入都连同完整会话发给端点
// runPlainChat is the line-based chat without the TUI: every input line is
// sent to the endpoint together with the whole transcript
func runPlainChat(client *assistant.Client) error {
	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, ".encdash", "repl.history")
	}

	input, inputErr := newLineInput(historyPath)
	if inputErr != nil {
		fmt.Fprintf(os.Stderr, "line editor unavailable, fallback to basic input: %v\n", inputErr)
	}
	defer input.Close()

	transcript := &chat.Transcript{}
	tokenizer := tokens.Default()

	for {
		line, err := input.ReadLine("> ")
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/help":
			printREPLCommands(os.Stdout)
			continue
		case "/tokens":
			fmt.Println(i18n.T("chat.tokens", tokenizer.Count(transcript.Messages())))
			continue
		}

		transcript.Append(chat.RoleUser, line)
		reply, err := client.Send(context.Background(), transcript.Messages())
		if err != nil {
			failed := i18n.T("chat.failed_line", err.Error())
			transcript.Append(chat.RoleSystem, failed)
			fmt.Println(failed)
			continue
		}

		text := reply.Text
		if strings.TrimSpace(text) == "" {
			text = i18n.T("chat.empty_reply")
		}
		status := i18n.T("chat.status_line", reply.Elapsed.Milliseconds(), reply.Origin)
		transcript.Append(chat.RoleAssistant, text)
		transcript.Append(chat.RoleSystem, status)
		fmt.Println(text)
		fmt.Println(status)
	}
}
