package claude

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// extractJSONFromResponse cleans the response text to extract a JSON object.
// Claude has no JSON response mode and tends to wrap JSON in markdown code
// blocks or surround it with prose even when asked not to.
//
// When no complete object can be found the original text is returned and the
// caller's own parsing decides what to do with it.
func extractJSONFromResponse(text string) string {
	text = strings.TrimSpace(text)

	if matches := codeBlockRegex.FindStringSubmatch(text); len(matches) > 1 {
		text = strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return text
	}

	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate
				}
				return text
			}
		}
	}

	// unbalanced, probably truncated by max_tokens
	return text
}
