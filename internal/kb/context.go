package kb

import (
	"fmt"
	"strings"
)

// BuildContext renders results as numbered blocks for a prompt. Blocks are
// appended whole until the next one would push the text past maxChars; a
// non-positive maxChars means no limit.
func BuildContext(results []ScoredChunk, maxChars int) string {
	var b strings.Builder
	for i, r := range results {
		source := r.DocumentTitle
		if r.Source != "" {
			if source != "" {
				source += ", "
			}
			source += r.Source
		}
		if source == "" {
			source = "unknown"
		}
		block := fmt.Sprintf("[%d] (source: %s) %s\n\n", i+1, source, strings.TrimSpace(r.Content))
		if maxChars > 0 && b.Len()+len(block) > maxChars {
			if b.Len() == 0 {
				b.WriteString(truncate(block, maxChars))
			}
			break
		}
		b.WriteString(block)
	}
	return strings.TrimSpace(b.String())
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
