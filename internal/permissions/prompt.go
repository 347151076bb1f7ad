package permissions

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Prompter is the interface every interactive Request* call goes through.
// Prompt displays message and blocks for a single grant/deny response,
// returning true for a grant. Implementations serialize concurrent callers
// themselves if the underlying I/O isn't already safe for concurrent use.
type Prompter interface {
	Prompt(message string) bool
}

// StdioPrompter implements the g/d terminal protocol (§5): the request is
// written to stderr, the operator answers "g" (or "grant") to grant or "d"
// (or "deny") to deny on stdin, and any other input reprompts. Prompts are serialized with a mutex
// since stdin has no notion of concurrent readers.
type StdioPrompter struct {
	mu          sync.Mutex
	reader      *bufio.Reader
	interactive *bool // nil defers to IsInteractive(); set by --prompt/--no-prompt
}

// NewStdioPrompter returns a StdioPrompter reading from os.Stdin.
func NewStdioPrompter() *StdioPrompter {
	return &StdioPrompter{reader: bufio.NewReader(os.Stdin)}
}

// SetInteractive overrides the TTY autodetection, forcing every future
// Prompt call to either attempt a read (true) or deny outright (false).
// Used by the --prompt/--no-prompt flags to override autodetection.
func (p *StdioPrompter) SetInteractive(interactive bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interactive = &interactive
}

// IsInteractive reports whether both stdin and stderr are connected to a
// terminal. When false, StdioPrompter.Prompt denies every request instead
// of blocking on a read nothing will ever answer.
func IsInteractive() bool {
	return isCharDevice(os.Stdin) && isCharDevice(os.Stderr)
}

func isCharDevice(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Prompt writes message to stderr and blocks on stdin for a "g" or "d"
// answer (case-insensitive, surrounding whitespace ignored). Unrecognized
// input reprompts rather than defaulting either way. If the process isn't
// running interactively, the request is denied without ever touching stdin.
func (p *StdioPrompter) Prompt(message string) bool {
	p.mu.Lock()
	interactive := p.interactive
	p.mu.Unlock()
	if interactive != nil {
		if !*interactive {
			return false
		}
	} else if !IsInteractive() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		fmt.Fprintf(os.Stderr, "⚠️  %s. Grant? [g]rant/[d]eny: ", message)
		line, err := p.reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "g", "grant":
			fmt.Fprintln(os.Stderr, "✓ granted")
			return true
		case "d", "deny":
			fmt.Fprintln(os.Stderr, "✗ denied")
			return false
		default:
			fmt.Fprintln(os.Stderr, "please answer g or d")
		}
	}
}

// StubPrompter is a deterministic Prompter for tests: it returns the
// preprogrammed answers in order and records every message it was asked,
// so a test can assert on both what was requested and what was answered.
type StubPrompter struct {
	mu       sync.Mutex
	Answers  []bool
	Messages []string
	next     int
}

// NewStubPrompter returns a StubPrompter that answers with answers in
// order; a call past the end of answers panics, which surfaces a test
// exercising more prompts than it accounted for.
func NewStubPrompter(answers ...bool) *StubPrompter {
	return &StubPrompter{Answers: answers}
}

// Prompt records message and returns the next preprogrammed answer.
func (p *StubPrompter) Prompt(message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, message)
	if p.next >= len(p.Answers) {
		panic("permissions: StubPrompter ran out of answers")
	}
	answer := p.Answers[p.next]
	p.next++
	return answer
}
