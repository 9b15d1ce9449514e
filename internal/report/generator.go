package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yosssi/gohtml"
)

// Export formats understood by Generator.
const (
	FormatHTML     = "html"
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatPNG      = "png"
)

// Generator writes static dashboard exports
type Generator struct {
	layout    Layout
	outputDir string
	generated time.Time
}

// NewGenerator creates a new export generator
func NewGenerator(layout Layout, outputDir string) *Generator {
	return &Generator{
		layout:    layout,
		outputDir: outputDir,
		generated: time.Now(),
	}
}

// GenerateAll writes one report per format. png is skipped here because chart
// images are written per site by GenerateCharts.
func (g *Generator) GenerateAll(snaps map[string]Snapshot, formats []string) error {
	for _, format := range formats {
		var err error
		switch format {
		case FormatHTML:
			err = g.GenerateHTML(snaps)
		case FormatMarkdown:
			err = g.GenerateMarkdown(snaps)
		case FormatJSON:
			err = g.GenerateJSON(snaps)
		case FormatPNG:
			continue
		default:
			err = fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			return fmt.Errorf("failed to generate %s report: %w", format, err)
		}
	}
	return nil
}

// GenerateHTML writes a self-contained dashboard page with every snapshot embedded
func (g *Generator) GenerateHTML(snaps map[string]Snapshot) error {
	page, err := RenderPage(Page{Layout: g.layout, Snapshots: snaps, Generated: g.generated})
	if err != nil {
		return err
	}

	outputPath := filepath.Join(g.outputDir, "report.html")
	// #nosec G306 - 0640 allows owner/group to read, which is appropriate for report files
	return os.WriteFile(outputPath, []byte(gohtml.Format(page)), 0640)
}

// GenerateMarkdown writes a summary of every site option
func (g *Generator) GenerateMarkdown(snaps map[string]Snapshot) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", g.layout.Title)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", g.generated.Format("2006-01-02 15:04:05"))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Site | Launches | Successes | Failures | Success Rate | Avg Payload | Payload Range |\n")
	sb.WriteString("|------|----------|-----------|----------|--------------|-------------|---------------|\n")
	for _, s := range g.layout.Summaries {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %.1f%% | %.0f kg | %.0f-%.0f kg |\n",
			s.Site, s.Launches, s.Successes, s.Failures, s.SuccessRate, s.AvgPayload, s.MinPayload, s.MaxPayload)
	}
	sb.WriteString("\n")

	for _, opt := range g.layout.Options {
		snap, ok := snaps[opt.Value]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", opt.Label)

		if snap.Pie != nil {
			fmt.Fprintf(&sb, "### %s\n\n", snap.Pie.Title)
			if snap.Pie.Empty() {
				sb.WriteString("No launches match the selection.\n\n")
			} else {
				sb.WriteString("| Category | Launches | Share |\n")
				sb.WriteString("|----------|----------|-------|\n")
				for i, label := range snap.Pie.Labels {
					share := float64(snap.Pie.Values[i]) / float64(snap.Pie.Total) * 100
					fmt.Fprintf(&sb, "| %s | %d | %.1f%% |\n", label, snap.Pie.Values[i], share)
				}
				sb.WriteString("\n")
			}
		}

		if snap.Scatter != nil {
			fmt.Fprintf(&sb, "### %s\n\n", snap.Scatter.Title)
			fmt.Fprintf(&sb, "%d launches with payload between %.0f kg and %.0f kg (exclusive).\n\n",
				snap.Scatter.Count, snap.Scatter.Low, snap.Scatter.High)
			if !snap.Scatter.Empty() {
				sb.WriteString("| Booster | Launches | Successes |\n")
				sb.WriteString("|---------|----------|-----------|\n")
				for _, s := range snap.Scatter.Series {
					successes := 0
					for _, p := range s.Points {
						successes += p.Y
					}
					fmt.Fprintf(&sb, "| %s | %d | %d |\n", s.Name, len(s.Points), successes)
				}
				sb.WriteString("\n")
			}
		}
	}

	outputPath := filepath.Join(g.outputDir, "report.md")
	// #nosec G306 - 0640 allows owner/group to read, which is appropriate for report files
	return os.WriteFile(outputPath, []byte(sb.String()), 0640)
}

// GenerateJSON writes the layout and every snapshot as raw data
func (g *Generator) GenerateJSON(snaps map[string]Snapshot) error {
	data := map[string]interface{}{
		"timestamp": g.generated,
		"layout":    g.layout,
		"snapshots": snaps,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	outputPath := filepath.Join(g.outputDir, "report.json")
	// #nosec G306 - 0640 allows owner/group to read, which is appropriate for report files
	return os.WriteFile(outputPath, jsonData, 0640)
}

// GenerateCharts writes PNG images of one snapshot under charts/ and returns the
// paths written. Empty figures are skipped.
func (g *Generator) GenerateCharts(site string, snap Snapshot) ([]string, error) {
	dir := filepath.Join(g.outputDir, "charts")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}

	var written []string
	figures := []struct {
		suffix string
		fig    Figure
	}{
		{"pie", snap.Pie},
		{"scatter", snap.Scatter},
	}
	for _, f := range figures {
		if f.fig == nil || isNilFigure(f.fig) {
			continue
		}
		var buf bytes.Buffer
		err := RenderFigure(&buf, f.fig, ImagePNG, DefaultImageWidth, DefaultImageHeight)
		if errors.Is(err, ErrEmptyFigure) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("%s %s: %w", site, f.suffix, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", Slug(site), f.suffix))
		// #nosec G306 - 0640 allows owner/group to read, which is appropriate for report files
		if err := os.WriteFile(path, buf.Bytes(), 0640); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func isNilFigure(f Figure) bool {
	switch v := f.(type) {
	case *PieFigure:
		return v == nil
	case *ScatterFigure:
		return v == nil
	}
	return false
}

// Slug turns a site name into a file name fragment.
func Slug(site string) string {
	var sb strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(site) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		case !lastDash && sb.Len() > 0:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
