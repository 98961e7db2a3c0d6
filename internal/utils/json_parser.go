package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern         = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	innerFencePattern    = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.+?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	controlCharPattern   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// StripCodeFence removes a markdown code fence wrapping the whole input
// (```json ... ``` or ``` ... ```). Anything else is returned trimmed.
func StripCodeFence(input string) string {
	s := strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if m := fencePattern.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ParseAIJSON extracts and parses JSON from model output that may contain:
// - pure JSON
// - JSON wrapped in a markdown code block
// - a JSON object surrounded by prose
// - trailing commas or stray control characters
func ParseAIJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{StripCodeFence(input)}
	if m := innerFencePattern.FindStringSubmatch(input); len(m) > 1 {
		candidates = append(candidates, m[1])
	}
	if obj := ExtractJSONObject(input); obj != "" {
		candidates = append(candidates, obj, cleanJSON(obj))
	}

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), target); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to parse JSON from input: %s", TruncateString(input, 100))
}

// ExtractJSONObject returns the first balanced {...} object in input, or "".
func ExtractJSONObject(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}
	return extractBalancedBraces(input[start:], '{', '}')
}

// extractBalancedBraces returns the prefix of input up to the brace closing
// the first open brace, ignoring braces inside strings.
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := -1

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

// cleanJSON fixes the formatting mistakes models make most often.
func cleanJSON(input string) string {
	s := trailingCommaPattern.ReplaceAllString(input, "$1")
	return controlCharPattern.ReplaceAllString(s, "")
}

// TruncateString shortens s to at most maxLen runes, marking the cut with "...".
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
