package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"NewsDigest/internal/config"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestCollectMatchesKeywordsInConfiguredOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir,
		"Economic_Times_25-08.pdf",
		"The-Hindu-Bengaluru.pdf",
		"notes.txt",
	)

	papers := []config.NewspaperConfig{
		{Name: "The Hindu", Keyword: "thehindu"},
		{Name: "Economic Times", Keyword: "economictimes"},
		{Name: "Mint", Keyword: "mint"},
	}

	refs, err := NewDirSource(dir, papers, nil).Collect(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Newspaper != "The Hindu" || refs[1].Newspaper != "Economic Times" {
		t.Fatalf("refs out of configured order: %+v", refs)
	}
	if filepath.Base(refs[0].PDFPath) != "The-Hindu-Bengaluru.pdf" {
		t.Fatalf("keyword matching failed: %s", refs[0].PDFPath)
	}
}

func TestCollectMissingDir(t *testing.T) {
	t.Parallel()

	_, err := NewDirSource(filepath.Join(t.TempDir(), "absent"), nil, nil).Collect(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected error for missing input dir")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	if got := normalize("The_Hindu-Delhi 25.08.pdf"); got != "thehindudelhi2508pdf" {
		t.Fatalf("normalize = %q", got)
	}
}
