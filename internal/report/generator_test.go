package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/testutil"
)

func sampleSnapshots(t *testing.T, ds *dataset.Dataset) map[string]Snapshot {
	t.Helper()
	snaps := make(map[string]Snapshot)
	for _, site := range ds.SiteOptions() {
		pie, err := BuildPie(ds, site)
		if err != nil {
			t.Fatalf("BuildPie(%s) failed: %v", site, err)
		}
		f := DefaultFilters(ds)
		f.Site = site
		scatter, err := BuildScatter(ds, f, ColorByBoosterVersion)
		if err != nil {
			t.Fatalf("BuildScatter(%s) failed: %v", site, err)
		}
		snaps[site] = Snapshot{Pie: pie, Scatter: scatter}
	}
	return snaps
}

func TestRenderPage_Live(t *testing.T) {
	ds := sampleDataset(t)
	layout := BuildLayout(ds, "Launch <Records>", 1000, []string{OutputPie, OutputScatter})

	page, err := RenderPage(Page{Layout: layout})
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}

	for _, want := range []string{
		"<title>Launch &lt;Records&gt;</title>",
		`<option value="ALL" selected>ALL</option>`,
		`<option value="KSC LC-39A">KSC LC-39A</option>`,
		`id="payload-low"`,
		`id="payload-high"`,
		`const snapshots = null;`,
		`const callbackPath = "/api/callback/";`,
		"success-payload-scatter-chart",
		"flight: p.flight_number, outcome: p.mission_outcome",
		"label: pointLabel",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page should contain %q", want)
		}
	}
	if strings.Contains(page, "<Records>") {
		t.Error("title must be escaped")
	}
}

func TestRenderPage_Snapshots(t *testing.T) {
	ds := sampleDataset(t)
	layout := BuildLayout(ds, "Dashboard", 1000, nil)

	page, err := RenderPage(Page{Layout: layout, Snapshots: sampleSnapshots(t, ds)})
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if strings.Contains(page, `id="payload-low"`) {
		t.Error("snapshot page should not contain the payload selector")
	}
	if strings.Contains(page, "const snapshots = null;") {
		t.Error("snapshot page should embed snapshots")
	}
	if !strings.Contains(page, "Launch Successes and Failures, KSC LC-39A") {
		t.Error("snapshot page should contain per-site titles")
	}
}

func TestGenerator_GenerateAll(t *testing.T) {
	ds := sampleDataset(t)
	tmpDir := t.TempDir()
	gen := NewGenerator(BuildLayout(ds, "SpaceX Launch Records Dashboard", 1000, nil), tmpDir)
	snaps := sampleSnapshots(t, ds)

	formats := []string{FormatHTML, FormatMarkdown, FormatJSON, FormatPNG}
	if err := gen.GenerateAll(snaps, formats); err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "charts")); !os.IsNotExist(err) {
		t.Errorf("png should be left to GenerateCharts, got %v", err)
	}

	for _, name := range []string{"report.html", "report.md", "report.json"} {
		if _, err := os.Stat(filepath.Join(tmpDir, name)); err != nil {
			t.Errorf("%s was not created: %v", name, err)
		}
	}

	md, err := os.ReadFile(filepath.Join(tmpDir, "report.md"))
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	for _, want := range []string{
		"# SpaceX Launch Records Dashboard",
		"| ALL | 14 | 6 | 8 | 42.9% |",
		"### Launch Successes, all sites",
		"### Launch Successes and Failures, CCAFS LC-40",
		"| failure | 5 | 83.3% |",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown should contain %q", want)
		}
	}

	htmlReport, err := os.ReadFile(filepath.Join(tmpDir, "report.html"))
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(htmlReport), "SpaceX Launch Records Dashboard") {
		t.Error("html report should contain the title")
	}
}

func TestGenerator_GenerateAllSelected(t *testing.T) {
	ds := sampleDataset(t)
	tmpDir := t.TempDir()
	gen := NewGenerator(BuildLayout(ds, "Launches", 1000, nil), tmpDir)
	snaps := sampleSnapshots(t, ds)

	if err := gen.GenerateAll(snaps, []string{FormatJSON}); err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "report.json")); err != nil {
		t.Errorf("report.json was not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "report.md")); !os.IsNotExist(err) {
		t.Errorf("report.md should not be written, got %v", err)
	}

	err := gen.GenerateAll(snaps, []string{"pdf"})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestGenerator_GenerateJSON(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	tmpDir := t.TempDir()
	gen := NewGenerator(BuildLayout(ds, "t", 1000, nil), tmpDir)

	if err := gen.GenerateJSON(sampleSnapshots(t, ds)); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, "report.json"))
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, field := range []string{"timestamp", "layout", "snapshots"} {
		if _, ok := data[field]; !ok {
			t.Errorf("JSON should contain %q", field)
		}
	}
	snaps := data["snapshots"].(map[string]interface{})
	if len(snaps) != 3 {
		t.Errorf("expected 3 snapshots, got %d", len(snaps))
	}
}

func TestGenerator_GenerateCharts(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	tmpDir := t.TempDir()
	gen := NewGenerator(BuildLayout(ds, "t", 1000, nil), tmpDir)

	pie, err := BuildPie(ds, "siteA")
	if err != nil {
		t.Fatalf("BuildPie failed: %v", err)
	}
	scatter, err := BuildScatter(ds, Filters{Site: "siteA", Low: 1000, High: 5000}, "")
	if err != nil {
		t.Fatalf("BuildScatter failed: %v", err)
	}

	written, err := gen.GenerateCharts("siteA", Snapshot{Pie: pie, Scatter: scatter})
	if err != nil {
		t.Fatalf("GenerateCharts failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 charts, got %v", written)
	}
	for _, path := range written {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read %s: %v", path, err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Errorf("%s is not a PNG", path)
		}
	}
	if filepath.Base(written[0]) != "sitea-pie.png" {
		t.Errorf("unexpected file name %s", written[0])
	}
}

func TestGenerator_GenerateChartsSkipsEmpty(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	gen := NewGenerator(BuildLayout(ds, "t", 1000, nil), t.TempDir())

	scatter, err := BuildScatter(ds, Filters{Site: "siteB", Low: 0, High: 10}, "")
	if err != nil {
		t.Fatalf("BuildScatter failed: %v", err)
	}
	written, err := gen.GenerateCharts("siteB", Snapshot{Scatter: scatter})
	if err != nil {
		t.Fatalf("GenerateCharts failed: %v", err)
	}
	if len(written) != 0 {
		t.Errorf("expected no charts, got %v", written)
	}
}

func TestRenderFigure(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	pie, _ := BuildPie(ds, dataset.AllSites)

	var png bytes.Buffer
	if err := RenderFigure(&png, pie, ImagePNG, 400, 300); err != nil {
		t.Fatalf("RenderFigure(png) failed: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}

	var svg bytes.Buffer
	if err := RenderFigure(&svg, pie, ImageSVG, 400, 300); err != nil {
		t.Fatalf("RenderFigure(svg) failed: %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Error("expected SVG output")
	}

	if err := RenderFigure(&svg, pie, "gif", 0, 0); err == nil {
		t.Error("expected error for unsupported format")
	}

	empty := &PieFigure{Type: "pie"}
	if err := RenderFigure(&png, empty, ImagePNG, 0, 0); !errors.Is(err, ErrEmptyFigure) {
		t.Errorf("expected ErrEmptyFigure, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"ALL":          "all",
		"CCAFS LC-40":  "ccafs-lc-40",
		"KSC LC-39A":   "ksc-lc-39a",
		"  odd//name ": "odd-name",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
