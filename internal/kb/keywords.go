package kb

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords filters English and Indonesian filler that adds noise to keyword matching.
var stopWords = map[string]bool{
	// English
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "per": true,
	"any": true, "may": true, "should": true, "must": true, "would": true,
	"there": true, "these": true, "those": true, "such": true, "other": true,
	// Indonesian
	"dan": true, "yang": true, "untuk": true, "dengan": true, "dari": true,
	"pada": true, "dalam": true, "atau": true, "ini": true, "itu": true,
	"akan": true, "oleh": true, "sebagai": true, "adalah": true, "ke": true,
	"tidak": true, "juga": true, "bisa": true, "dapat": true, "lebih": true,
	"para": true, "tersebut": true, "karena": true, "serta": true, "bagi": true,
	"antara": true, "setiap": true, "secara": true, "telah": true, "harus": true,
	"sudah": true, "saat": true, "hingga": true, "sampai": true, "agar": true,
}

// tokenize lowercases text and returns every keyword-eligible token in order,
// duplicates included. "+", "#" and "." count as word characters so tokens
// like "c++" and "node.js" survive.
func tokenize(text string) []string {
	var (
		out  []string
		word strings.Builder
	)
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		w = strings.TrimLeft(w, "+#")
		word.Reset()
		if len([]rune(w)) >= 3 && !stopWords[w] {
			out = append(out, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// ExtractKeywords returns the sorted, de-duplicated keyword set of text.
func ExtractKeywords(text string) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
