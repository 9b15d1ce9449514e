// Package export renders every site option of the dashboard into static files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/logging"
	"github.com/lamim/launch-dash/internal/progress"
	"github.com/lamim/launch-dash/internal/report"
)

// Options configures an export run
type Options struct {
	Title       string
	OutputDir   string
	Concurrency int
	Formats     []string
	ColorBy     string
	SliderStep  float64
}

// Runner computes per-site snapshots and writes export files
type Runner struct {
	ds       *dataset.Dataset
	opts     Options
	progress *progress.Manager
	log      zerolog.Logger
}

// NewRunner creates a new export runner
func NewRunner(ds *dataset.Dataset, opts Options, prog *progress.Manager, log zerolog.Logger) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{report.FormatHTML, report.FormatMarkdown, report.FormatJSON, report.FormatPNG}
	}
	return &Runner{ds: ds, opts: opts, progress: prog, log: log}
}

// Steps returns the number of progress steps an export of ds takes: one per
// site option plus the report files.
func Steps(ds *dataset.Dataset) int {
	return len(ds.SiteOptions()) + 1
}

// Run writes the export into a fresh timestamped directory and returns its path.
func (r *Runner) Run(ctx context.Context) (string, error) {
	outputDir, err := EnsureOutputDir(r.opts.OutputDir)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	layout := report.BuildLayout(r.ds, r.opts.Title, r.opts.SliderStep, nil)
	gen := report.NewGenerator(layout, outputDir)
	charts := slices.Contains(r.opts.Formats, report.FormatPNG)

	var mu sync.Mutex
	snaps := make(map[string]report.Snapshot, len(layout.Options))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for _, opt := range layout.Options {
		site := opt.Value
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.start(site)
			snap, err := r.snapshot(site)
			if err == nil && charts {
				var written []string
				written, err = gen.GenerateCharts(site, snap)
				r.log.Debug().Str(logging.FieldSite, site).Int("charts", len(written)).Msg("charts written")
			}
			r.complete(site, err)
			if err != nil {
				return fmt.Errorf("site %s: %w", site, err)
			}

			mu.Lock()
			snaps[site] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.finish()
		return outputDir, err
	}

	r.start("reports")
	err = gen.GenerateAll(snaps, r.opts.Formats)
	r.complete("reports", err)
	r.finish()
	if err != nil {
		return outputDir, err
	}

	r.log.Info().Str("dir", outputDir).Int("sites", len(snaps)).Msg("export complete")
	return outputDir, nil
}

func (r *Runner) snapshot(site string) (report.Snapshot, error) {
	pie, err := report.BuildPie(r.ds, site)
	if err != nil {
		return report.Snapshot{}, err
	}
	f := report.DefaultFilters(r.ds)
	f.Site = site
	scatter, err := report.BuildScatter(r.ds, f, r.opts.ColorBy)
	if err != nil {
		return report.Snapshot{}, err
	}
	return report.Snapshot{Pie: pie, Scatter: scatter}, nil
}

func (r *Runner) start(name string) {
	if r.progress != nil {
		r.progress.Start(name)
	}
}

func (r *Runner) complete(name string, err error) {
	if r.progress != nil {
		r.progress.Complete(name, err)
	}
}

func (r *Runner) finish() {
	if r.progress != nil {
		r.progress.Finish()
	}
}

// EnsureOutputDir creates a timestamped session subdirectory for exports
func EnsureOutputDir(baseDir string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	sessionDir := filepath.Join(baseDir, timestamp)

	// #nosec G301 - 0750 is more restrictive than 0755 but still allows owner/group access
	if err := os.MkdirAll(sessionDir, 0750); err != nil {
		return "", err
	}
	return sessionDir, nil
}
