// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"alumi/grammar"
	"alumi/internal/config"
	"alumi/internal/errors"
	"alumi/lexer"
	"alumi/syntax"
)

const (
	Prompt             = "alumi> "
	ContinuationPrompt = "...... "
)

const helpText = `REPL commands:
  :tokens  Toggle printing the token stream
  :help    Show this help
  :quit    Exit the REPL
A line ending in ':' opens a block; an empty line closes it.
`

// Session evaluates inputs and keeps the REPL settings between them.
type Session struct {
	out       io.Writer
	maxErrors int
	tabWidth  int
	tokens    bool
}

func NewSession(out io.Writer, cfg config.Config) *Session {
	return &Session{out: out, maxErrors: cfg.MaxErrors, tabWidth: cfg.TabWidth}
}

// Complete reports whether the buffered lines form a whole input. An input
// that opened a block ends with an empty line.
func Complete(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	last := lines[len(lines)-1]
	if strings.TrimSpace(last) == "" {
		return true
	}
	for _, l := range lines {
		if strings.HasSuffix(strings.TrimSpace(l), ":") {
			return false
		}
	}
	return true
}

// Command runs a ':' command. It reports false when the REPL should exit.
func (s *Session) Command(cmd string) bool {
	switch strings.TrimSpace(cmd) {
	case ":quit", ":q":
		return false
	case ":tokens":
		s.tokens = !s.tokens
		fmt.Fprintf(s.out, "token display %s\n", map[bool]string{true: "on", false: "off"}[s.tokens])
	case ":help":
		fmt.Fprint(s.out, helpText)
	default:
		fmt.Fprintf(s.out, "unknown command %s, try :help\n", cmd)
	}
	return true
}

// Evaluate parses src and prints its tree, or its diagnostics when it has
// any.
func (s *Session) Evaluate(src string) {
	doc, err := grammar.Parse(src)
	if err != nil {
		var failure *lexer.Failure
		if stderrors.As(err, &failure) {
			fmt.Fprint(s.out, s.reporter(src).FormatError(errors.FromLexFailure(failure, []rune(src))))
			return
		}
		fmt.Fprintln(s.out, color.RedString("error: %s", err))
		return
	}

	if s.tokens {
		for _, tok := range doc.Tree.Tokens {
			fmt.Fprintf(s.out, "%-12s %-6s %q\n", tok.Kind, tok.Pos, tok.Text(doc.Tree.Source))
		}
	}

	if diags := doc.Diagnostics(); len(diags) > 0 {
		fmt.Fprint(s.out, s.reporter(src).FormatAll(diags, s.maxErrors))
		return
	}
	fmt.Fprint(s.out, syntax.Represent(doc.Tree))
}

func (s *Session) reporter(src string) *errors.ErrorReporter {
	r := errors.NewErrorReporter("<repl>", src)
	r.SetTabWidth(s.tabWidth)
	return r
}

// Start runs an interactive session on the terminal until :quit or EOF.
func Start(cfg config.Config) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	histPath := historyPath(cfg.REPL.HistoryFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := NewSession(os.Stdout, cfg)
	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, kw := range grammar.Keywords() {
			if strings.HasPrefix(kw, line) {
				out = append(out, kw)
			}
		}
		return out
	})

	for {
		src, ok := read(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(src)
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if !s.Command(src) {
				return nil
			}
			continue
		}
		s.Evaluate(src)
	}
}

// read collects one input, prompting for continuation lines while a block
// is open. Ctrl+C drops the pending input.
func read(ln *liner.State) (string, bool) {
	var lines []string
	for {
		prompt := Prompt
		if len(lines) > 0 {
			prompt = ContinuationPrompt
		}
		line, err := ln.Prompt(prompt)
		if stderrors.Is(err, io.EOF) {
			return "", false
		}
		if stderrors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		lines = append(lines, line)
		if Complete(lines) {
			return strings.Join(lines, "\n"), true
		}
	}
}

func historyPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}
