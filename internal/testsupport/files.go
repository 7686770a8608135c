package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and parent directories) with the given content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// StubBinary writes an executable shell script named name into dir and
// returns its path. Tests prepend dir to PATH to intercept tool lookups.
func StubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub binary %s: %v", name, err)
	}
	return path
}
