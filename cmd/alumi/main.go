// SPDX-License-Identifier: Apache-2.0
package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alumi/internal/config"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg    config.Config
	logger *zap.Logger
)

// errFailed reports that diagnostics were already printed.
var errFailed = stderrors.New("compilation failed")

var rootCmd = &cobra.Command{
	Use:           "alumi",
	Short:         "alumi - lexer, parser and syntax tree tooling for alumi sources",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return err
		}

		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.Color != nil {
			color.NoColor = !*cfg.Color
		}
		if noColor {
			color.NoColor = true
		}
		logger.Debug("configuration loaded", zap.String("file", cfgFile), zap.Int("max_errors", cfg.MaxErrors))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file (default .alumi.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(lexCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(replCmd)
}

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		if !stderrors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, color.RedString("error: %s", err))
		}
		os.Exit(1)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
