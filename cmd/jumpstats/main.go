// Package main provides the CLI entrypoint for jumpstats.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/jumpstats/internal/config"
	"github.com/verte-zerg/jumpstats/internal/model"
	"github.com/verte-zerg/jumpstats/internal/render"
	"github.com/verte-zerg/jumpstats/internal/source"
	"github.com/verte-zerg/jumpstats/internal/stats"
	"github.com/verte-zerg/jumpstats/internal/viewer"
)

const (
	defaultStatsDir = "stats/"
	defaultOutput   = "merged.csv"
	defaultLogLevel = "info"
	defaultFormat   = render.FormatText
)

const noStatsMessage = "No stats to analyze."

var (
	logLevel string

	analyzeDir     string
	analyzeMerge   bool
	analyzeURL     string
	analyzeFormat  string
	analyzeTop     int
	analyzeColor   bool
	analyzeMaxSize int64

	mergeDir    string
	mergeOutput string

	viewDir string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jumpstats [paths...]",
		Short:         "Analyze long-jump statistics exported by the game plugin",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ArbitraryArgs,
		RunE:          runAnalyzeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")

	rootCmd.Flags().StringVarP(&analyzeDir, "dir", "d", defaultStatsDir, "directory searched for .csv stat files")
	rootCmd.Flags().BoolVarP(&analyzeMerge, "merge", "m", false, "merge stat files instead of analyzing them")
	rootCmd.Flags().StringVar(&analyzeURL, "url", "", "download a CSV stat file and analyze it")
	rootCmd.Flags().StringVar(&analyzeFormat, "format", defaultFormat, "output format (text, json, yaml)")
	rootCmd.Flags().IntVar(&analyzeTop, "top", render.DefaultTop, "rows shown in frequency and activity tables")
	rootCmd.Flags().BoolVar(&analyzeColor, "color", false, "force colored output")
	rootCmd.Flags().Int64Var(&analyzeMaxSize, "max-download-size", source.DefaultMaxDownloadSize, "largest accepted download in bytes")

	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Analyze.LogLevel)
	applyStringConfig(cmd, "dir", &analyzeDir, fileCfg.Analyze.StatsDir)
	applyStringConfig(cmd, "format", &analyzeFormat, fileCfg.Analyze.Format)
	applyIntConfig(cmd, "top", &analyzeTop, fileCfg.Analyze.Top)
	applyBoolConfig(cmd, "color", &analyzeColor, fileCfg.Analyze.Color)
	applyInt64Config(cmd, "max-download-size", &analyzeMaxSize, fileCfg.Analyze.MaxDownloadSize)

	log, err := newLogger(logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if analyzeMerge {
		output := defaultOutput
		if fileCfg.Merge.Output != nil {
			output = *fileCfg.Merge.Output
		}
		return mergeStats(cmd.Context(), cmd.OutOrStdout(), model.MergeConfig{StatsDir: analyzeDir, Output: output}, log)
	}

	format, err := render.ParseFormat(analyzeFormat)
	if err != nil {
		return err
	}
	cfg := model.AnalyzeConfig{
		StatsDir:        analyzeDir,
		Paths:           args,
		URL:             analyzeURL,
		Format:          format,
		Top:             analyzeTop,
		Color:           analyzeColor,
		MaxDownloadSize: analyzeMaxSize,
	}
	if err := validateAnalyzeConfig(cfg); err != nil {
		return err
	}

	run, err := analyze(cmd.Context(), cfg, log)
	if errors.Is(err, stats.ErrEmptyInput) {
		return printLine(cmd.OutOrStdout(), noStatsMessage)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Format != render.FormatText {
		return render.Export(out, run.Report, cfg.Format)
	}
	opts := render.Options{
		Top:   cfg.Top,
		Color: render.ShouldUseColor(out, cfg.Color),
	}
	if err := render.Console(out, run.Report, opts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// analyze resolves the configured inputs and aggregates them.
func analyze(ctx context.Context, cfg model.AnalyzeConfig, log hclog.Logger) (stats.Run, error) {
	inputs, err := resolveInputs(ctx, cfg, log)
	if err != nil {
		return stats.Run{}, err
	}
	run, err := stats.BuildReport(ctx, source.NewReader(log), inputs, time.Now())
	log.Debug("read stats", "inputs", run.Inputs, "rows", run.Read.Rows, "records", run.Read.Records, "skipped", run.Read.Skipped)
	if run.Read.Skipped > 0 {
		log.Warn("some rows could not be parsed", "skipped", run.Read.Skipped)
	}
	return run, err
}

func resolveInputs(ctx context.Context, cfg model.AnalyzeConfig, log hclog.Logger) ([]source.Input, error) {
	if cfg.URL != "" {
		log.Info("downloading stats file", "url", cfg.URL)
		data, err := source.Fetch(ctx, cfg.URL, cfg.MaxDownloadSize)
		if err != nil {
			return nil, fmt.Errorf("failed to download stats file: %w", err)
		}
		return []source.Input{source.CSVData{Label: cfg.URL, Data: data}}, nil
	}
	if len(cfg.Paths) > 0 {
		return source.Resolve(cfg.Paths)
	}
	inputs, err := source.Resolve([]string{cfg.StatsDir})
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("stats directory does not exist", "dir", cfg.StatsDir)
		return nil, nil
	}
	return inputs, err
}

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge stat files into one CSV or SQLite file",
		Args:  cobra.NoArgs,
		RunE:  runMergeCmd,
	}
	cmd.Flags().StringVarP(&mergeDir, "dir", "d", defaultStatsDir, "directory searched for .csv stat files")
	cmd.Flags().StringVarP(&mergeOutput, "output", "o", defaultOutput, "output file (.csv, or .db/.sqlite for SQLite)")
	return cmd
}

func runMergeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Analyze.LogLevel)
	applyStringConfig(cmd, "dir", &mergeDir, fileCfg.Analyze.StatsDir)
	applyStringConfig(cmd, "output", &mergeOutput, fileCfg.Merge.Output)

	log, err := newLogger(logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return mergeStats(cmd.Context(), cmd.OutOrStdout(), model.MergeConfig{StatsDir: mergeDir, Output: mergeOutput}, log)
}

func mergeStats(ctx context.Context, w io.Writer, cfg model.MergeConfig, log hclog.Logger) error {
	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("--output must not be empty")
	}
	files, err := source.Discover(cfg.StatsDir)
	if err != nil {
		return err
	}
	var res source.MergeResult
	if source.IsSQLitePath(cfg.Output) {
		res, err = source.MergeDB(ctx, files, cfg.Output, log)
	} else {
		res, err = source.Merge(files, cfg.Output, log)
	}
	if err != nil {
		return fmt.Errorf("failed to merge stats: %w", err)
	}
	if res.Skipped > 0 {
		log.Warn("dropped rows while merging", "skipped", res.Skipped)
	}
	_, err = fmt.Fprintf(w, "Merged %d rows from %d files into %s\n", res.Rows, res.Files, cfg.Output)
	return err
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [paths...]",
		Short: "Browse the report in an interactive viewer",
		RunE:  runViewCmd,
	}
	cmd.Flags().StringVarP(&viewDir, "dir", "d", defaultStatsDir, "directory searched for .csv stat files")
	return cmd
}

func runViewCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Analyze.LogLevel)
	applyStringConfig(cmd, "dir", &viewDir, fileCfg.Analyze.StatsDir)

	log, err := newLogger(logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg := model.AnalyzeConfig{StatsDir: viewDir, Paths: args, Top: render.DefaultTop}
	if fileCfg.Analyze.Top != nil {
		cfg.Top = *fileCfg.Analyze.Top
	}
	if err := validateAnalyzeConfig(cfg); err != nil {
		return err
	}

	run, err := analyze(cmd.Context(), cfg, log)
	if errors.Is(err, stats.ErrEmptyInput) {
		return printLine(cmd.OutOrStdout(), noStatsMessage)
	}
	if err != nil {
		return err
	}

	label := cfg.StatsDir
	if len(args) > 0 {
		label = strings.Join(args, ", ")
	}
	m := viewer.NewModel(run.Report, label, viewOptions(cmd.OutOrStdout(), cfg.Top))
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

// viewOptions styles the viewer like the console report, so NO_COLOR and
// non-terminal output turn tier colors off.
func viewOptions(w io.Writer, top int) render.Options {
	return render.Options{Top: top, Color: render.ShouldUseColor(w, false)}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLogger(level string, w io.Writer) (hclog.Logger, error) {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "jumpstats",
		Level:  lvl,
		Output: w,
	}), nil
}

func validateAnalyzeConfig(cfg model.AnalyzeConfig) error {
	if cfg.Top <= 0 {
		return fmt.Errorf("--top must be > 0")
	}
	if cfg.URL != "" && len(cfg.Paths) > 0 {
		return fmt.Errorf("--url cannot be combined with file paths")
	}
	if cfg.URL != "" && cfg.MaxDownloadSize <= 0 {
		return fmt.Errorf("--max-download-size must be > 0")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# jumpstats configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# stats-dir = %q          # Directory searched for .csv stat files
# top = %d                      # Rows in frequency and activity tables
# format = %q              # Output format: text, json or yaml
# color = false                # Force colored output
# log-level = %q           # trace, debug, info, warn or error
# max-download-size = %d  # Largest accepted --url download in bytes

[merge]
# output = %q      # Merge target (.csv, or .db/.sqlite for SQLite)
`,
		defaultStatsDir,
		render.DefaultTop,
		defaultFormat,
		defaultLogLevel,
		source.DefaultMaxDownloadSize,
		defaultOutput,
	)
}

func printLine(w io.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
