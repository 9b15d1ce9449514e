// Package main provides the entry point for the SpaceX launch records dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/lamim/launch-dash/internal/config"
	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/debug"
	"github.com/lamim/launch-dash/internal/export"
	"github.com/lamim/launch-dash/internal/logging"
	"github.com/lamim/launch-dash/internal/metrics"
	"github.com/lamim/launch-dash/internal/progress"
	"github.com/lamim/launch-dash/internal/report"
	"github.com/lamim/launch-dash/internal/server"
)

type cliFlags struct {
	configPath *string
	dataPath   *string
	addr       *string
	export     *bool
	format     *string
	outputDir  *string
	noProgress *bool
	debugMode  *bool
	logLevel   *string
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := &cliFlags{
		configPath: fs.String("config", "", "Path to configuration file (default dashboard.toml if present)"),
		dataPath:   fs.String("data", "", "Launch records file, CSV or XLSX (overrides config)"),
		addr:       fs.String("addr", "", "Listen address (overrides config)"),
		export:     fs.Bool("export", false, "Write a static export instead of serving"),
		format:     fs.String("format", "", "Export formats: all, html, md, json, png (comma separated)"),
		outputDir:  fs.String("output", "", "Output directory for exports and debug logs (overrides config)"),
		noProgress: fs.Bool("no-progress", false, "Disable progress bar (useful for CI)"),
		debugMode:  fs.Bool("debug", false, "Record every callback invocation to a debug session file"),
		logLevel:   fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)"),
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// loadEnvFile applies KEY=VALUE lines from path to the process environment.
func loadEnvFile(path string) {
	data, err := os.ReadFile(path) // #nosec G304 - fixed local file name
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
			_ = os.Setenv(key, value)
		}
	}
}

// applyOverrides layers environment variables and then flags over cfg.
func applyOverrides(cfg *config.Config, flags *cliFlags) {
	if v := os.Getenv("LAUNCH_DASH_DATA"); v != "" {
		cfg.General.DataPath = v
	}
	if v := os.Getenv("LAUNCH_DASH_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}

	if *flags.dataPath != "" {
		cfg.General.DataPath = *flags.dataPath
	}
	if *flags.addr != "" {
		cfg.Server.ListenAddr = *flags.addr
	}
	if *flags.outputDir != "" {
		cfg.Export.OutputDir = *flags.outputDir
	}
	if *flags.logLevel != "" {
		cfg.Log.Level = *flags.logLevel
	}
	if *flags.format != "" {
		cfg.Export.Formats = parseFormats(*flags.format)
	}
}

func parseFormats(s string) []string {
	if s == "all" {
		return []string{report.FormatHTML, report.FormatMarkdown, report.FormatJSON, report.FormatPNG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	loadEnvFile(".env")

	cfg, err := config.LoadOrDefault(*flags.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	applyOverrides(cfg, flags)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error in configuration: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error configuring logging: %v\n", err)
		return 1
	}

	ds, err := dataset.Load(cfg.General.DataPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.General.DataPath).Msg("failed to load launch records")
		return 1
	}

	printBanner(stdout, cfg.General.Title)
	printSummary(stdout, ds)

	debugLogger := debug.NewLogger(*flags.debugMode, cfg.Export.OutputDir)
	debugLogger.SetDataSource(ds.Source())
	if debugLogger.IsEnabled() {
		fmt.Fprintf(stdout, "🐛 Debug mode enabled: logging to %s/\n\n", debugLogger.GetOutputPath())
	}
	defer finalizeDebug(debugLogger, stdout, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *flags.export {
		return runExport(ctx, cfg, ds, log, !*flags.noProgress, stdout, stderr)
	}

	callbacks := report.NewCallbacks(ds, report.Options{ColorBy: cfg.General.ColorBy})
	srv, err := server.New(ds, callbacks, server.Options{
		Title:             cfg.General.Title,
		SliderStep:        cfg.Slider.Step,
		CompressionLevel:  cfg.Server.CompressionLevel,
		ChartRate:         cfg.Server.ChartRate,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeoutDuration(),
		ShutdownTimeout:   cfg.Server.ShutdownTimeoutDuration(),
		Log:               log,
		Debug:             debugLogger,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build server")
		return 1
	}

	fmt.Fprintf(stdout, "Dashboard running on http://%s/\n\n", cfg.Server.ListenAddr)
	if err := srv.Run(ctx, cfg.Server.ListenAddr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return 1
	}
	return 0
}

func runExport(ctx context.Context, cfg *config.Config, ds *dataset.Dataset, log zerolog.Logger, showProgress bool, stdout, stderr io.Writer) int {
	prog := progress.NewManager(export.Steps(ds), showProgress, stderr)
	runner := export.NewRunner(ds, export.Options{
		Title:       cfg.General.Title,
		OutputDir:   cfg.Export.OutputDir,
		Concurrency: cfg.Export.Concurrency,
		Formats:     cfg.Export.Formats,
		ColorBy:     cfg.General.ColorBy,
		SliderStep:  cfg.Slider.Step,
	}, prog, log)

	dir, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error exporting dashboard: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "✓ Export written to: %s/\n", dir)
	return 0
}

func finalizeDebug(l *debug.Logger, stdout, stderr io.Writer) {
	if !l.IsEnabled() {
		return
	}
	if err := l.Finalize(); err != nil {
		fmt.Fprintf(stderr, "Warning: failed to write debug log: %v\n", err)
		return
	}
	fmt.Fprintf(stdout, "✓ Debug session %s written to: %s\n", l.SessionID(), l.GetSessionPath())
}

func printBanner(w io.Writer, title string) {
	fmt.Fprintf(w, `
╔══════════════════════════════════════════════════════════════╗
║ %-60s ║
║ %-60s ║
╚══════════════════════════════════════════════════════════════╝

`, title, "Launch success by site and payload")
}

func printSummary(w io.Writer, ds *dataset.Dataset) {
	b := ds.Bounds()
	fmt.Fprintf(w, "Loaded %d launches from %d sites (payload %.0f-%.0f kg)\n", ds.Len(), len(ds.Sites()), b.Min, b.Max)
	for _, s := range metrics.Summaries(ds) {
		fmt.Fprintf(w, "  %-14s %3d launches  %5.1f%% success\n", s.Site, s.Launches, s.SuccessRate)
	}
	fmt.Fprintln(w)
}
