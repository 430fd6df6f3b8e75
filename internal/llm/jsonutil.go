package llm

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON pulls the outermost JSON object out of model text, tolerating
// markdown fences and prose around it.
func ExtractJSON(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrEmptyResponse
	}
	if gjson.Valid(s) && strings.HasPrefix(s, "{") {
		return json.RawMessage(s), nil
	}
	if i := strings.Index(s, "```"); i >= 0 {
		inner := s[i+3:]
		inner = strings.TrimPrefix(inner, "json")
		inner = strings.TrimPrefix(inner, "JSON")
		if j := strings.Index(inner, "```"); j >= 0 {
			inner = inner[:j]
		}
		inner = strings.TrimSpace(inner)
		if gjson.Valid(inner) && strings.HasPrefix(inner, "{") {
			return json.RawMessage(inner), nil
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, ErrInvalidJSON
	}
	candidate := s[start : end+1]
	if !gjson.Valid(candidate) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(candidate), nil
}
