package llm

import (
	"encoding/json"
	"regexp"
)

var (
	fencedBlockPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	objectPattern      = regexp.MustCompile(`(?s)\{.*\}`)
	arrayPattern       = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSON digs a JSON document out of model output that may wrap it in
// prose or a fenced code block. The chain tries the text as-is, then each
// fenced block, then the widest brace or bracket span. When nothing parses
// the original text comes back unchanged so the caller's unmarshal reports
// the real error.
func ExtractJSON(text string) string {
	if json.Valid([]byte(text)) {
		return text
	}

	for _, match := range fencedBlockPattern.FindAllStringSubmatch(text, -1) {
		if json.Valid([]byte(match[1])) {
			return match[1]
		}
	}

	if block := objectPattern.FindString(text); block != "" && json.Valid([]byte(block)) {
		return block
	}
	if block := arrayPattern.FindString(text); block != "" && json.Valid([]byte(block)) {
		return block
	}
	return text
}
