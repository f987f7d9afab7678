package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadEmail(t *testing.T) {
	raw := "Subject: Hi\r\nContent-Type: text/plain\r\n\r\nLunch at noon?\r\n"

	path := filepath.Join(t.TempDir(), "note.eml")
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("write email: %v", err)
	}

	got, err := readEmail(path, nil)
	if err != nil {
		t.Fatalf("readEmail failed: %v", err)
	}
	if got != "Lunch at noon?" {
		t.Fatalf("expected body from file, got %q", got)
	}

	got, err = readEmail("-", strings.NewReader(raw))
	if err != nil {
		t.Fatalf("readEmail from stdin failed: %v", err)
	}
	if got != "Lunch at noon?" {
		t.Fatalf("expected body from stdin, got %q", got)
	}

	got, err = readEmail("", nil)
	if err != nil || got != "" {
		t.Fatalf("expected empty body without a file, got %q (%v)", got, err)
	}

	if _, err := readEmail(filepath.Join(t.TempDir(), "missing.eml"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}
