package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"encdash/internal/assistant"
	"encdash/internal/chatui"
	"encdash/internal/config"
	"encdash/internal/diagnostics"
	"encdash/internal/i18n"
	"encdash/internal/rollout"
	"encdash/internal/tui"
)

func main() {
	var (
		configPath string
		plain      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON/JSONC")
	flag.BoolVar(&plain, "plain", false, "Run the chat terminal as a plain REPL without the TUI")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	i18n.Init(cfg.UI.Locale)

	client := assistant.NewClient(cfg.Assistant)

	if plain {
		if err := runPlainChat(client); err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(os.Stderr, "repl failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	chatPanel := chatui.New(client)
	pie := rollout.New(
		rollout.FromConfig(cfg.Rollout.Snapshots),
		time.Duration(cfg.Rollout.StepDelayMS)*time.Millisecond,
	)
	diag := diagnostics.New(diagnostics.NewProber(cfg.Diagnostics), cfg.Diagnostics)

	if err := tui.Run(chatPanel, pie, diag); err != nil {
		fmt.Fprintf(os.Stderr, "tui failed: %v\n", err)
		os.Exit(1)
	}
}
