package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/extract"
)

func TestLoadInputPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jakarta-2025.md")
	if err := os.WriteFile(path, []byte("Backend engineer   Jakarta\n\nIDR 15-25 juta"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	in, err := loadInput(context.Background(), path, "", "Survey 2025", "salary_report")
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}
	if in.Title != "jakarta-2025" {
		t.Fatalf("expected title from file name, got %q", in.Title)
	}
	if in.Source != "Survey 2025" || in.Category != "salary_report" {
		t.Fatalf("unexpected attribution: %+v", in)
	}
	if in.Content == "" {
		t.Fatalf("expected extracted content")
	}
}

func TestLoadInputExplicitTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Data analyst salaries"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	in, err := loadInput(context.Background(), path, "Analyst notes", "", "")
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}
	if in.Title != "Analyst notes" {
		t.Fatalf("expected explicit title, got %q", in.Title)
	}
}

func TestLoadInputRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := loadInput(context.Background(), path, "", "", "")
	if !errors.Is(err, extract.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestLoadInputMissingFile(t *testing.T) {
	if _, err := loadInput(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), "", "", ""); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestMimeFromExt(t *testing.T) {
	cases := map[string]string{
		"a.PDF":  "application/pdf",
		"b.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"c.md":   "text/plain",
		"d.bin":  "",
	}
	for name, want := range cases {
		if got := mimeFromExt(name); got != want {
			t.Fatalf("mimeFromExt(%q) = %q, want %q", name, got, want)
		}
	}
}
