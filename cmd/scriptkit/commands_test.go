package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptkit/internal/testsupport"
)

// runCommand executes the CLI with a hermetic home directory and captured
// output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.Contains(output, "scriptkit dev") {
		t.Fatalf("unexpected version output %q", output)
	}
}

func TestBalancerPlanCommand(t *testing.T) {
	output, err := runCommand(t, "balancer", "plan", "6")
	if err != nil {
		t.Fatalf("balancer plan returned error: %v", err)
	}
	if !strings.Contains(output, "Planned outputs:   6 (2^1 * 3^1)") {
		t.Fatalf("missing planned size in output:\n%s", output)
	}
	if !strings.Contains(output, "Total splitters: 3") {
		t.Fatalf("missing splitter total in output:\n%s", output)
	}
}

func TestBalancerPlanTrivial(t *testing.T) {
	output, err := runCommand(t, "balancer", "plan", "1")
	if err != nil {
		t.Fatalf("balancer plan returned error: %v", err)
	}
	if !strings.Contains(output, "No splitters needed.") {
		t.Fatalf("unexpected output:\n%s", output)
	}
}

func TestBalancerPlanRejectsBadInput(t *testing.T) {
	if _, err := runCommand(t, "balancer", "plan", "six"); err == nil {
		t.Fatal("expected error for non-numeric fan-out")
	}
	if _, err := runCommand(t, "balancer", "plan", "0"); err == nil {
		t.Fatal("expected error for zero fan-out")
	}
}

func TestBalancerCleanCommand(t *testing.T) {
	output, err := runCommand(t, "balancer", "clean", "100")
	if err != nil {
		t.Fatalf("balancer clean returned error: %v", err)
	}
	if !strings.Contains(output, "Next clean size:     108") {
		t.Fatalf("missing next clean size:\n%s", output)
	}
	if !strings.Contains(output, "Previous clean size: 96") {
		t.Fatalf("missing previous clean size:\n%s", output)
	}

	output, err = runCommand(t, "balancer", "clean", "96")
	if err != nil {
		t.Fatalf("balancer clean returned error: %v", err)
	}
	if !strings.Contains(output, "96 is a clean size.") {
		t.Fatalf("unexpected output:\n%s", output)
	}
}

func TestBalancerPlanJSON(t *testing.T) {
	output, err := runCommand(t, "balancer", "plan", "5", "--json")
	if err != nil {
		t.Fatalf("balancer plan returned error: %v", err)
	}
	if !strings.Contains(output, `"Size": 6`) {
		t.Fatalf("missing size in JSON output:\n%s", output)
	}
}

func TestShortsCommand(t *testing.T) {
	output, err := runCommand(t, "shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("shorts returned error: %v", err)
	}
	if !strings.Contains(output, "https://www.youtube.com/watch?v=dQw4w9WgXcQ") {
		t.Fatalf("unexpected output %q", output)
	}
}

func TestShortsCommandRejectsWatchURL(t *testing.T) {
	_, err := runCommand(t, "shorts", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err == nil || !strings.Contains(err.Error(), "could not be rewritten") {
		t.Fatalf("expected rewrite failure, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(output, "Wrote sample configuration") {
		t.Fatalf("unexpected init output %q", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	output, err = runCommand(t, "config", "validate", "--config", target)
	if err != nil {
		t.Fatalf("config validate returned error: %v", err)
	}
	if !strings.Contains(output, "Configuration valid") {
		t.Fatalf("unexpected validate output %q", output)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runCommand(t, "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	output, err := runCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(output, "[paths]") {
		t.Fatalf("expected TOML sections in output:\n%s", output)
	}
}

func TestMKVEditRequiresEdits(t *testing.T) {
	// Stdout is not a terminal under go test, so the interactive menu is
	// unavailable and the command must fail.
	source := filepath.Join(t.TempDir(), "movie.mkv")
	testsupport.WriteFile(t, source, "mkv")
	_, err := runCommand(t, "mkv", "edit", source)
	if err == nil || !strings.Contains(err.Error(), "no edits requested") {
		t.Fatalf("expected no-edits error, got %v", err)
	}
}

// stubMKVEditBinaries puts mkvmerge and mkvpropedit fakes on PATH and
// returns a source file plus a config enabling mkv.keep_backups.
func stubMKVEditBinaries(t *testing.T) (source, cfgPath, logDir string) {
	t.Helper()
	bin := t.TempDir()
	testsupport.StubBinary(t, bin, "mkvmerge",
		`printf '%s' '{"container":{"type":"Matroska","recognized":true,"supported":true},"tracks":[]}'`)
	testsupport.StubBinary(t, bin, "mkvpropedit", "exit 0")
	t.Setenv("PATH", bin)

	dir := t.TempDir()
	source = filepath.Join(dir, "movie.mkv")
	testsupport.WriteFile(t, source, "mkv")

	logDir = filepath.Join(dir, "logs")
	cfgPath = filepath.Join(dir, "config.toml")
	testsupport.WriteFile(t, cfgPath, fmt.Sprintf(
		"[paths]\nlog_dir = %q\n\n[mkv]\nkeep_backups = true\n", logDir))
	return source, cfgPath, logDir
}

func TestMKVEditKeepsBackupFromConfig(t *testing.T) {
	source, cfgPath, logDir := stubMKVEditBinaries(t)

	output, err := runCommand(t, "mkv", "edit", source, "--title", "Retitled", "--config", cfgPath)
	if err != nil {
		t.Fatalf("mkv edit returned error: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Backup kept at") {
		t.Fatalf("expected kept-backup notice:\n%s", output)
	}
	backups, err := filepath.Glob(filepath.Join(filepath.Dir(source), ".movie.mkv.bak-*"))
	if err != nil {
		t.Fatalf("glob backups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one retained backup, got %v", backups)
	}
	if _, err := os.Stat(filepath.Join(logDir, "scriptkit.log")); err != nil {
		t.Fatalf("expected log file in configured log_dir: %v", err)
	}
}

func TestMKVEditFlagOverridesKeepBackups(t *testing.T) {
	source, cfgPath, _ := stubMKVEditBinaries(t)

	output, err := runCommand(t, "mkv", "edit", source, "--title", "Retitled", "--keep-backup=false", "--config", cfgPath)
	if err != nil {
		t.Fatalf("mkv edit returned error: %v\n%s", err, output)
	}
	backups, err := filepath.Glob(filepath.Join(filepath.Dir(source), ".movie.mkv.bak-*"))
	if err != nil {
		t.Fatalf("glob backups: %v", err)
	}
	if len(backups) != 0 {
		t.Fatalf("expected backup to be removed, got %v", backups)
	}
}

func TestMKVExtractRequiresSelection(t *testing.T) {
	source := filepath.Join(t.TempDir(), "movie.mkv")
	testsupport.WriteFile(t, source, "mkv")
	_, err := runCommand(t, "mkv", "extract", source)
	if err == nil || !strings.Contains(err.Error(), "nothing to extract") {
		t.Fatalf("expected selection error, got %v", err)
	}
}

func TestDepsCommandWithStubbedBinaries(t *testing.T) {
	bin := t.TempDir()
	for _, name := range []string{"mkvmerge", "mkvpropedit", "mkvextract", "ffmpeg", "ffprobe", "brew"} {
		testsupport.StubBinary(t, bin, name, "exit 0")
	}
	t.Setenv("PATH", bin)

	output, err := runCommand(t, "deps", "--offline")
	if err != nil {
		t.Fatalf("deps returned error: %v\n%s", err, output)
	}
	if !strings.Contains(output, "mkvmerge") || !strings.Contains(output, "disk space") {
		t.Fatalf("unexpected deps output:\n%s", output)
	}
}

func TestDepsCommandReportsMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := runCommand(t, "deps", "--offline")
	if err == nil || !strings.Contains(err.Error(), "missing required binaries") {
		t.Fatalf("expected missing-binaries error, got %v", err)
	}
}

func TestBrewCompareRequiresTap(t *testing.T) {
	_, err := runCommand(t, "brew", "compare")
	if err == nil || !strings.Contains(err.Error(), "no tap given") {
		t.Fatalf("expected missing-tap error, got %v", err)
	}
}
