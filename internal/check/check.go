// Package check parses alumi sources in bulk and collects their
// diagnostics.
package check

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alumi/grammar"
	"alumi/internal/errors"
	"alumi/lexer"
	"alumi/token"
)

var desiredExtensions = map[string]bool{
	".al": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

// Unit is one checked source file. Document is nil when the file could not
// be read or lexed.
type Unit struct {
	Path        string                 `json:"path"`
	Source      string                 `json:"-"`
	Document    *grammar.Document      `json:"-"`
	Diagnostics []errors.CompilerError `json:"diagnostics"`
}

func (u *Unit) Failed() bool {
	return len(u.Diagnostics) > 0
}

// Compile parses the file at path. Lexer failures and syntax errors both
// end up in the diagnostics; only I/O problems are returned as errors.
func Compile(path string) (*Unit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return CompileSource(path, string(source)), nil
}

// CompileSource is Compile for a source already in memory.
func CompileSource(path, source string) *Unit {
	u := &Unit{Path: path, Source: source}

	doc, err := grammar.Parse(source)
	var failure *lexer.Failure
	switch {
	case stderrors.As(err, &failure):
		u.Diagnostics = []errors.CompilerError{errors.FromLexFailure(failure, []rune(source))}
	case err != nil:
		u.Diagnostics = Unreadable(path, err).Diagnostics
	default:
		u.Document = doc
		u.Diagnostics = doc.Diagnostics()
	}
	return u
}

// Unreadable is the unit reported for a path that could not be read.
func Unreadable(path string, err error) *Unit {
	return &Unit{
		Path: path,
		Diagnostics: []errors.CompilerError{
			errors.NewDiagnostic(errors.ErrorUnreadableSource, token.Position{Line: 1, Column: 1}).
				WithNote(err.Error()).
				Build(),
		},
	}
}

// Options control ProcessPaths.
type Options struct {
	// Progress receives a progress bar while a directory is checked. Nil
	// disables it.
	Progress io.Writer
	// Workers bounds the files parsed at once. Zero means one per CPU.
	Workers int
}

// ProcessPaths checks every path in order. Directories are searched for
// .al files.
func ProcessPaths(ctx context.Context, logger *zap.Logger, paths []string, opts Options) ([]*Unit, error) {
	var units []*Unit
	for _, path := range paths {
		found, err := ProcessPath(ctx, logger, path, opts)
		if err != nil {
			logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		units = append(units, found...)
	}
	return units, nil
}

// ProcessPath checks a file or every .al file below a directory. The units
// come back in walk order whatever order the workers finish in.
func ProcessPath(ctx context.Context, logger *zap.Logger, path string, opts Options) ([]*Unit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return []*Unit{Unreadable(path, err)}, nil
	}
	if !info.IsDir() {
		u, err := Compile(path)
		if err != nil {
			return []*Unit{Unreadable(path, err)}, nil
		}
		return []*Unit{u}, nil
	}

	files, err := CollectFiles(path)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription(path),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	units := make([]*Unit, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := Compile(file)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				u = Unreadable(file, err)
			}
			units[i] = u
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(opts.Progress)
	}
	return units, nil
}

// CollectFiles lists the .al files below root in lexical order.
func CollectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasDesiredExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}
