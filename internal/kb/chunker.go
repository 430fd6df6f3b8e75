package kb

import "strings"

const (
	DefaultChunkSize    = 200
	DefaultChunkOverlap = 40
)

// ChunkText splits text into windows of size words that share overlap words
// with their predecessor. Non-positive size uses the default; an overlap
// that would stall the window is clamped to size/4.
func ChunkText(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	step := size - overlap

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
