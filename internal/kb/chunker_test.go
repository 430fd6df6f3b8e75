package kb

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		size      int
		overlap   int
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{name: "empty", text: "   \n\t ", size: 10, overlap: 2, wantCount: 0},
		{name: "shorter than window", text: "a  b\nc", size: 10, overlap: 2, wantCount: 1, wantFirst: "a b c", wantLast: "a b c"},
		{name: "exact window", text: words(10), size: 10, overlap: 2, wantCount: 1, wantFirst: words(10), wantLast: words(10)},
		{name: "overlapping windows", text: words(20), size: 10, overlap: 2, wantCount: 3, wantFirst: words(10), wantLast: "w16 w17 w18 w19"},
		{name: "overlap clamped", text: words(12), size: 8, overlap: 8, wantCount: 2, wantFirst: words(8), wantLast: "w6 w7 w8 w9 w10 w11"},
		{name: "default size", text: words(250), size: 0, overlap: 40, wantCount: 2, wantLast: strings.TrimPrefix(words(250), words(160)+" ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkText(tt.text, tt.size, tt.overlap)
			if len(got) != tt.wantCount {
				t.Fatalf("expected %d chunks, got %d: %q", tt.wantCount, len(got), got)
			}
			if tt.wantCount == 0 {
				return
			}
			if tt.wantFirst != "" && got[0] != tt.wantFirst {
				t.Fatalf("first chunk = %q, want %q", got[0], tt.wantFirst)
			}
			if got[len(got)-1] != tt.wantLast {
				t.Fatalf("last chunk = %q, want %q", got[len(got)-1], tt.wantLast)
			}
		})
	}
}
