package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vimdocgen/internal/config"
	"vimdocgen/internal/lint"
	"vimdocgen/internal/logging"
	"vimdocgen/internal/pipeline"
)

var (
	rootCmd = &cobra.Command{
		Use:           "vimdocgen",
		Short:         "Generate Markdown and vimdoc reference docs for a Neovim plugin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	rootDir    string
	logLevel   string
	logFormat  string
	checkOnly  bool
)

// errDrift is returned by generate --check when files are out of date.
var errDrift = errors.New("generated documentation is out of date")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styleFail.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to docgen.yaml (default: ./docgen.yaml when present)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Plugin root, overrides project.root")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console, json, pretty")

	generateCmd.Flags().BoolVar(&checkOnly, "check", false, "Report drift as a diff without writing files")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(lintCmd)
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, logging.Logger, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			path = config.DefaultFileName
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootDir != "" {
		cfg.Project.Root = rootDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate README sections, Markdown API docs and the vimdoc help file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		res, err := pipeline.New(cfg, log).Run(cmd.Context(), checkOnly)
		out := cmd.OutOrStdout()
		if res != nil {
			printResult(out, cfg, res)
		}
		if err != nil {
			return err
		}
		if checkOnly && len(res.Diffs) > 0 {
			return errDrift
		}
		return nil
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint [files...]",
	Short: "Check that relative links and anchors in Markdown files resolve",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		files, err := lintTargets(cfg, args)
		if err != nil {
			return err
		}
		report, err := lint.NewLinter(log).Lint(files)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range report.Problems {
			fmt.Fprintln(out, styleFail.Render("✗ ")+p.Error())
		}
		summary := fmt.Sprintf("%d files, %d links, %d problems", report.Files, report.Links, len(report.Problems))
		if !report.OK() {
			fmt.Fprintln(out, styleFail.Render(summary))
			return fmt.Errorf("lint found %d broken links", len(report.Problems))
		}
		fmt.Fprintln(out, stylePass.Render("✓ ")+summary)
		return nil
	},
}

// lintTargets resolves the files to lint: explicit arguments, then
// markdown.lint_files, then the README plus every doc/*.md.
func lintTargets(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.Markdown.LintFiles) > 0 {
		files := make([]string, 0, len(cfg.Markdown.LintFiles))
		for _, f := range cfg.Markdown.LintFiles {
			files = append(files, cfg.Path(f))
		}
		return files, nil
	}

	var files []string
	if cfg.Markdown.Readme != "" {
		files = append(files, cfg.Path(cfg.Markdown.Readme))
	}
	docs, err := filepath.Glob(filepath.Join(cfg.Path("doc"), "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return append(files, docs...), nil
}

func printResult(w io.Writer, cfg *config.Config, res *pipeline.Result) {
	for _, warn := range res.Warnings {
		fmt.Fprintln(w, styleDim.Render("warning: "+warn.Error()))
	}

	fmt.Fprintln(w, styleTitle.Render("vimdocgen "+res.Report.Mode))
	for _, s := range res.Report.Stages {
		mark := stylePass.Render("✓")
		if s.Status != "ok" {
			mark = styleFail.Render("✗")
		}
		line := fmt.Sprintf("%s %-15s %s", mark, s.Name, styleDim.Render(s.Duration.Round(time.Microsecond).String()))
		if c := formatCounters(s.Counters); c != "" {
			line += " " + styleInfo.Render(c)
		}
		if s.Error != "" {
			line += " " + styleFail.Render(s.Error)
		}
		fmt.Fprintln(w, line)
	}

	for _, d := range res.Diffs {
		fmt.Fprint(w, d.Diff)
	}
	for _, p := range res.Changed {
		if rel, err := filepath.Rel(cfg.Project.Root, p); err == nil {
			p = rel
		}
		verb := "updated"
		if res.Report.Mode == "check" {
			verb = "would update"
		}
		fmt.Fprintln(w, styleInfo.Render(verb+" ")+p)
	}
	if len(res.Changed) == 0 {
		fmt.Fprintln(w, stylePass.Render("everything up to date"))
	}
}

func formatCounters(counters map[string]int) string {
	if len(counters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counters[k]))
	}
	return strings.Join(parts, " ")
}
