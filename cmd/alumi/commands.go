package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alumi/grammar"
	"alumi/internal/check"
	"alumi/internal/config"
	"alumi/internal/errors"
	"alumi/lexer"
	"alumi/repl"
	"alumi/syntax"
)

var indentation string

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Print the token stream of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := indentationMode(indentation)
		if err != nil {
			return err
		}
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		runes := []rune(source)
		tokens, err := grammar.NewLexer(lexer.WithIndentation(mode)).Lex(runes)
		var failure *lexer.Failure
		if stderrors.As(err, &failure) {
			tokens = failure.Tokens
		} else if err != nil {
			return err
		}

		for i, tok := range tokens {
			fmt.Printf("%4d  %-12s %-7s %q\n", i, tok.Kind, tok.Pos, tok.Text(runes))
		}
		if failure != nil {
			report(args[0], source, []errors.CompilerError{errors.FromLexFailure(failure, runes)})
			return errFailed
		}
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a file and report the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()
		u, err := compile(args[0])
		if err != nil {
			return err
		}
		duration := formatDuration(time.Since(startTime))

		if u.Failed() {
			report(u.Path, u.Source, u.Diagnostics)
			color.Red("Compilation failed after %s", duration)
			return errFailed
		}
		doc := u.Document
		color.Green("Successfully processed %s in %s", u.Path, duration)
		fmt.Printf("outcome %s, %d of %d tokens consumed\n", doc.Outcome, doc.Consumed, len(doc.Tree.Tokens))
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the syntax tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := compile(args[0])
		if err != nil {
			return err
		}
		if u.Document != nil {
			fmt.Print(syntax.Represent(u.Document.Tree))
		}
		if u.Failed() {
			report(u.Path, u.Source, u.Diagnostics)
			return errFailed
		}
		return nil
	},
}

var (
	checkJSON     bool
	checkProgress bool
	timeout       time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check <paths...>",
	Short: "Report the syntax errors of files and directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		opts := check.Options{}
		if checkProgress && !checkJSON {
			opts.Progress = os.Stderr
		}

		startTime := time.Now()
		units, err := check.ProcessPaths(ctx, logger, args, opts)
		if err != nil {
			return err
		}

		failed := 0
		for _, u := range units {
			if u.Failed() {
				failed++
			}
		}
		if checkJSON {
			return printJSON(units, failed)
		}

		for _, u := range units {
			if u.Failed() {
				report(u.Path, u.Source, u.Diagnostics)
			}
		}
		duration := formatDuration(time.Since(startTime))
		if failed > 0 {
			color.Red("%d of %d files failed after %s", failed, len(units), duration)
			return errFailed
		}
		color.Green("Checked %d files in %s", len(units), duration)
		return nil
	},
}

func printJSON(units []*check.Unit, failed int) error {
	data, err := json.MarshalIndent(units, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling diagnostics: %w", err)
	}
	fmt.Println(string(data))
	if failed > 0 {
		return errFailed
	}
	return nil
}

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "List the top-level definitions of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		outline, err := grammar.ParseOutline(args[0], source)
		if err != nil {
			grammar.ReportOutlineError(source, err)
			return errFailed
		}
		for _, def := range outline.Definitions() {
			fmt.Printf("%s:%d\t%-8s %s\n", args[0], def.Pos.Line, def.Kind(), def)
		}
		return nil
	},
}

// initCmd: alumi init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = config.FileName
		}
		if err := config.Save(path, config.Default()); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", path)
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("alumi REPL. Type :help for commands, :quit or Ctrl+D to exit.")
		return repl.Start(cfg)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output diagnostics in JSON format")
	checkCmd.Flags().BoolVar(&checkProgress, "progress", true, "Show a progress bar while checking directories")
	checkCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Give up checking after this long")
	lexCmd.Flags().StringVar(&indentation, "indentation", "every-line", "Indentation tokens: every-line or on-change")
}

func indentationMode(name string) (lexer.Indentation, error) {
	switch name {
	case "every-line":
		return lexer.EveryLine, nil
	case "on-change":
		return lexer.OnChange, nil
	}
	return 0, fmt.Errorf("unknown indentation mode %q", name)
}

func readSource(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(source), nil
}

func compile(path string) (*check.Unit, error) {
	u, err := check.Compile(path)
	if err != nil {
		return nil, err
	}
	if u.Document != nil {
		logger.Debug("parsed",
			zap.String("file", path),
			zap.Stringer("outcome", u.Document.Outcome),
			zap.Int("consumed", u.Document.Consumed),
			zap.Int("nodes", len(u.Document.Tree.Nodes)))
	}
	return u, nil
}

func report(path, source string, diagnostics []errors.CompilerError) {
	reporter := errors.NewErrorReporter(path, source)
	reporter.SetTabWidth(cfg.TabWidth)
	fmt.Print(reporter.FormatAll(diagnostics, cfg.MaxErrors))
}
