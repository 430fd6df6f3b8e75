package kb

import (
	"strings"
	"testing"
)

func TestBuildContext(t *testing.T) {
	results := []ScoredChunk{
		{Chunk: Chunk{ID: "1", Content: " Backend engineer Jakarta: Rp 15-25 juta ", DocumentTitle: "Salary Guide 2025", Source: "hays.co.id"}},
		{Chunk: Chunk{ID: "2", Content: "UMP DKI Jakarta Rp 5,3 juta", DocumentTitle: "UMP 2025"}},
		{Chunk: Chunk{ID: "3", Content: "unlabelled"}},
	}

	got := BuildContext(results, 0)
	want := "[1] (source: Salary Guide 2025, hays.co.id) Backend engineer Jakarta: Rp 15-25 juta\n\n" +
		"[2] (source: UMP 2025) UMP DKI Jakarta Rp 5,3 juta\n\n" +
		"[3] (source: unknown) unlabelled"
	if got != want {
		t.Fatalf("BuildContext =\n%s\nwant\n%s", got, want)
	}

	limited := BuildContext(results, 100)
	if strings.Contains(limited, "[2]") || !strings.HasPrefix(limited, "[1]") {
		t.Fatalf("expected only the first block within the limit, got %q", limited)
	}

	tiny := BuildContext(results, 10)
	if len(tiny) > 10 || !strings.HasPrefix(tiny, "[1]") {
		t.Fatalf("expected the first block truncated to 10 bytes, got %q", tiny)
	}

	if BuildContext(nil, 100) != "" {
		t.Fatalf("expected empty context for no results")
	}
}
