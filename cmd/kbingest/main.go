package main

// Load reference material into the salary knowledge base:
//   go run ./cmd/kbingest -category salary_report -source "Survey 2025" report.pdf notes.md

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/bootstrap"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/extract"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/kb"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/config"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/util"
)

func main() {
	category := flag.String("category", "", "Knowledge-base category for every file")
	title := flag.String("title", "", "Document title (defaults to the file name; single file only)")
	source := flag.String("source", "", "Source attribution stored with each document")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall ingest timeout")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		exitErr("at least one file is required")
	}
	if *title != "" && len(paths) > 1 {
		exitErr("-title can only be used with a single file")
	}

	cfg := config.Load()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		exitErr("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	inputs := make([]kb.IngestInput, 0, len(paths))
	for _, p := range paths {
		in, err := loadInput(ctx, p, *title, *source, *category)
		if err != nil {
			exitErr(err.Error())
		}
		inputs = append(inputs, in)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		exitErr(fmt.Sprintf("bootstrap: %v", err))
	}
	defer app.Close()
	if app.DB == nil {
		exitErr("database unreachable; refusing to ingest into memory")
	}

	for _, in := range inputs {
		doc, err := app.KBService.Ingest(ctx, in)
		if err != nil {
			exitErr(fmt.Sprintf("ingest %q: %v", in.Title, err))
		}
		fmt.Printf("%s\t%s\t%d chunks\n", doc.ID, doc.Title, doc.ChunkCount)
	}
}

// loadInput reads one file and extracts its text. PDF and DOCX go through the
// extractor; anything else must be UTF-8 text.
func loadInput(ctx context.Context, path, title, source, category string) (kb.IngestInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return kb.IngestInput{}, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	text, err := extract.ExtractTextFromBytes(ctx, raw, mimeFromExt(name), name)
	if err != nil {
		return kb.IngestInput{}, fmt.Errorf("extract %s: %w", path, err)
	}
	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return kb.IngestInput{
		Title:    title,
		Source:   source,
		Category: category,
		Content:  text,
	}, nil
}

func mimeFromExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return util.MimePDF
	case ".docx":
		return util.MimeDOCX
	case ".txt", ".md", ".csv":
		return util.MimeText
	default:
		return ""
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
