package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestBasicLineInputReadsTrimmedLine(t *testing.T) {
	var out bytes.Buffer
	input := newBasicLineInput(strings.NewReader("hello world\r\n"), &out)

	line, err := input.ReadLine("> ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "hello world" {
		t.Fatalf("unexpected line: %q", line)
	}
	if out.String() != "> " {
		t.Fatalf("prompt not written: %q", out.String())
	}
}

func TestBasicLineInputEOF(t *testing.T) {
	input := newBasicLineInput(strings.NewReader(""), nil)
	if _, err := input.ReadLine("> "); err == nil {
		t.Fatalf("expected error on empty reader")
	}
}

func TestPrintREPLCommands(t *testing.T) {
	var out bytes.Buffer
	printREPLCommands(&out)
	for _, cmd := range replCommands {
		if !strings.Contains(out.String(), cmd) {
			t.Fatalf("missing %q in help output", cmd)
		}
	}
}
