package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lamim/launch-dash/internal/config"
	"github.com/lamim/launch-dash/internal/testutil"
)

func TestParseFormats_All(t *testing.T) {
	result := parseFormats("all")
	if diff := cmp.Diff([]string{"html", "md", "json", "png"}, result); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormats_List(t *testing.T) {
	result := parseFormats(" HTML, md,,json ")
	if diff := cmp.Diff([]string{"html", "md", "json"}, result); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	var stderr bytes.Buffer
	if _, err := parseFlags([]string{"-no-such-flag"}, &stderr); err == nil {
		t.Error("expected error for unknown flag")
	}
	if run([]string{"-no-such-flag"}, &bytes.Buffer{}, &stderr) != 2 {
		t.Error("expected exit code 2 for bad flags")
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("LAUNCH_DASH_DATA", "env.csv")
	t.Setenv("LAUNCH_DASH_ADDR", "127.0.0.1:9999")

	flags, err := parseFlags([]string{"-addr", "0.0.0.0:8050", "-format", "md", "-log-level", "debug"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	cfg := config.Default()
	applyOverrides(cfg, flags)

	if cfg.General.DataPath != "env.csv" {
		t.Errorf("expected env data path, got %s", cfg.General.DataPath)
	}
	if cfg.Server.ListenAddr != "0.0.0.0:8050" {
		t.Errorf("expected flag to win over env, got %s", cfg.Server.ListenAddr)
	}
	if diff := cmp.Diff([]string{"md"}, cfg.Export.Formats); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoadEnv_FileNotFound(t *testing.T) {
	loadEnvFile(filepath.Join(t.TempDir(), ".env"))
}

func TestLoadEnv_ParsesValues(t *testing.T) {
	path := testutil.WriteFile(t, ".env", "# comment\n\nLAUNCH_DASH_TEST_A=\"quoted\"\n  LAUNCH_DASH_TEST_B = spaced  \n")
	t.Setenv("LAUNCH_DASH_TEST_A", "")
	t.Setenv("LAUNCH_DASH_TEST_B", "")

	loadEnvFile(path)

	if v := os.Getenv("LAUNCH_DASH_TEST_A"); v != "quoted" {
		t.Errorf("expected quoted, got %q", v)
	}
	if v := os.Getenv("LAUNCH_DASH_TEST_B"); v != "spaced" {
		t.Errorf("expected spaced, got %q", v)
	}
}

func TestRun_MissingDataFile(t *testing.T) {
	chdir(t, t.TempDir())

	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", "missing.csv"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "failed to load launch records") {
		t.Errorf("expected load error on stderr, got %q", stderr.String())
	}
}

func TestRun_BadConfig(t *testing.T) {
	chdir(t, t.TempDir())

	var stderr bytes.Buffer
	code := run([]string{"-config", "missing.toml"}, &bytes.Buffer{}, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Error loading config") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestRun_Export(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile("launches.csv", []byte(testutil.SampleCSV), 0600); err != nil {
		t.Fatalf("failed to write data: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-data", "launches.csv",
		"-export",
		"-format", "md,json",
		"-output", "out",
		"-no-progress",
		"-debug",
		"-log-level", "warn",
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}

	if !strings.Contains(stdout.String(), "Loaded 14 launches from 4 sites") {
		t.Errorf("expected dataset summary, got %q", stdout.String())
	}

	reports, err := filepath.Glob(filepath.Join(dir, "out", "*", "report.md"))
	if err != nil || len(reports) != 1 {
		t.Fatalf("expected one markdown report, got %v (%v)", reports, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "debug", "session.json")); err != nil {
		t.Errorf("expected debug session file: %v", err)
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, "SpaceX Launch Records Dashboard")
	if !strings.Contains(buf.String(), "SpaceX Launch Records Dashboard") {
		t.Errorf("banner should contain the title, got %q", buf.String())
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
