package decision

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse attempts to read a model reply as a Decision. It reports false when
// nothing usable could be extracted; it never panics or errors.
func Parse(raw string) (*Decision, bool) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, false
	}

	var dec Decision
	if err := json.Unmarshal([]byte(cleaned), &dec); err == nil && validAction(dec.Action) {
		if dec.Question == "" {
			// Some models put the user-facing text under "message".
			dec.Question = gjson.Get(cleaned, "message").String()
		}
		return &dec, true
	}

	// Strict parsing failed; salvage the fields individually. Models often
	// wrap the object in prose or leave trailing commas behind.
	return salvage(cleaned)
}

// ParseOrDefault always yields a decision: the parsed one, or the fallback.
func ParseOrDefault(raw string) *Decision {
	if dec, ok := Parse(raw); ok {
		return dec
	}
	return Fallback()
}

func salvage(raw string) (*Decision, bool) {
	body := raw
	if start := strings.Index(body, "{"); start >= 0 {
		if end := strings.LastIndex(body, "}"); end > start {
			body = body[start : end+1]
		}
	}

	action := Action(gjson.Get(body, "action").String())
	if !validAction(action) {
		return nil, false
	}

	dec := &Decision{
		Action:    action,
		Tool:      gjson.Get(body, "tool").String(),
		Reasoning: gjson.Get(body, "reasoning").String(),
		Question:  gjson.Get(body, "question").String(),
		Finished:  gjson.Get(body, "finished").Bool(),
	}
	if dec.Question == "" {
		dec.Question = gjson.Get(body, "message").String()
	}
	if params := gjson.Get(body, "parameters"); params.IsObject() {
		if m, ok := params.Value().(map[string]any); ok {
			dec.Parameters = m
		}
	}
	return dec, true
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
