// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"go.tagwire.dev/tagwire/internal/config"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
	minArgs int
	maxArgs int
}

// globals is shared by every command. It is filled in before any command
// runs.
type globals struct {
	configPath string
	verbose    bool
	color      string

	cfg      *config.Config
	log      *slog.Logger
	stdout   io.Writer
	stderr   io.Writer
	renderer *lipgloss.Renderer
}

func main() {
	ctx := context.Background()
	g := &globals{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	tagwireCmd := &cobra.Command{
		Use:           "tagwire [options] COMMAND",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd.Flags())
		},
	}
	tagwireCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, tagwireCmd.UsageString())
		os.Exit(1)
		return nil
	}
	persistent := tagwireCmd.PersistentFlags()
	persistent.StringVar(&g.configPath, "config", "", "configuration file (default $"+config.EnvVar+")")
	persistent.BoolVarP(&g.verbose, "verbose", "v", false, "log debug records")
	persistent.StringVar(&g.color, "color", "", "colorize diagnostics: auto, always or never")

	commands := []command{
		&cmdCompile{g: g},
		&cmdCodegen{g: g},
		&cmdInspect{g: g},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  cobra.RangeArgs(help.minArgs, help.maxArgs),
			RunE: func(_ *cobra.Command, args []string) error {
				os.Exit(cmd.run(ctx, args))
				return nil
			},
		}
		tagwireCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if err := tagwireCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration file and applies the global flags over it.
func (g *globals) setup(flags *pflag.FlagSet) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if flags.Changed("color") {
		cfg.Color = g.color
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	g.log = newLogger(g.stderr, cfg.Log)
	g.renderer = newRenderer(g.stderr, cfg.Color)
	g.log.Debug("loaded configuration",
		slog.String("path", g.configPath),
		slog.String("color", cfg.Color),
	)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := cfg.Format
	if format == "auto" {
		format = "json"
		if isTerminal(w) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newRenderer(w io.Writer, color string) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(w)
	switch {
	case color == "always":
		renderer.SetColorProfile(termenv.ANSI256)
	case color == "never", color == "auto" && !isTerminal(w):
		renderer.SetColorProfile(termenv.Ascii)
	}
	return renderer
}

// useColor reports whether output written to w should be highlighted.
func (g *globals) useColor(w io.Writer) bool {
	switch g.cfg.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return isTerminal(w)
}
