package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "   "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}
}

func TestRequirementsCoverToolkit(t *testing.T) {
	reqs := Requirements(nil)
	want := map[string]bool{
		"mkvmerge": false, "mkvpropedit": false, "mkvextract": false,
		"ffmpeg": false, "ffprobe": false, "brew": false,
	}
	for _, req := range reqs {
		if _, ok := want[req.Name]; !ok {
			t.Fatalf("unexpected requirement %q", req.Name)
		}
		want[req.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("requirement %q missing", name)
		}
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false, Optional: true},
		{Name: "c", Available: false},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "c" {
		t.Fatalf("unexpected missing set %v", missing)
	}
}
