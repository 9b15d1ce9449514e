package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/progress"
	"github.com/lamim/launch-dash/internal/report"
	"github.com/lamim/launch-dash/internal/testutil"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(testutil.WriteFile(t, "launches.csv", testutil.SampleCSV))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return ds
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunner_RunAllFormats(t *testing.T) {
	ds := sampleDataset(t)
	base := t.TempDir()
	var bar bytes.Buffer

	prog := progress.NewManager(Steps(ds), true, &bar)
	r := NewRunner(ds, Options{
		Title:       "SpaceX Launch Records Dashboard",
		OutputDir:   base,
		Concurrency: 3,
	}, prog, zerolog.Nop())

	dir, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if filepath.Dir(dir) != base {
		t.Errorf("expected export under %s, got %s", base, dir)
	}

	want := []string{"charts", "report.html", "report.json", "report.md"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Errorf("export files mismatch (-want +got):\n%s", diff)
	}

	charts := listDir(t, filepath.Join(dir, "charts"))
	if len(charts) != 2*len(ds.SiteOptions()) {
		t.Errorf("expected %d charts, got %v", 2*len(ds.SiteOptions()), charts)
	}
	for _, name := range []string{"all-pie.png", "all-scatter.png", "ksc-lc-39a-pie.png"} {
		if !contains(charts, name) {
			t.Errorf("missing chart %s", name)
		}
	}

	completed, passed, failed := prog.Counts()
	if completed != Steps(ds) || passed != Steps(ds) || failed != 0 {
		t.Errorf("unexpected progress counts: %d/%d/%d", completed, passed, failed)
	}

	md, err := os.ReadFile(filepath.Join(dir, "report.md"))
	if err != nil {
		t.Fatalf("failed to read markdown: %v", err)
	}
	if !strings.Contains(string(md), "## VAFB SLC-4E") {
		t.Error("markdown should contain every site option")
	}
}

func TestRunner_SelectedFormats(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	r := NewRunner(ds, Options{
		OutputDir: t.TempDir(),
		Formats:   []string{report.FormatMarkdown},
	}, nil, zerolog.Nop())

	dir, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"report.md"}, listDir(t, dir)); diff != "" {
		t.Errorf("export files mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_UnknownFormat(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	r := NewRunner(ds, Options{OutputDir: t.TempDir(), Formats: []string{"pdf"}}, nil, zerolog.Nop())

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRunner_CanceledContext(t *testing.T) {
	ds := sampleDataset(t)
	r := NewRunner(ds, Options{OutputDir: t.TempDir(), Concurrency: 1}, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestEnsureOutputDir(t *testing.T) {
	base := t.TempDir()
	dir, err := EnsureOutputDir(base)
	if err != nil {
		t.Fatalf("EnsureOutputDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s: %v", dir, err)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
