// Package synthesis invokes the generative model and recovers a JSON
// object from whatever it returns. Model output is expected to be one JSON
// object but routinely arrives wrapped in markdown fences, surrounded by
// prose, or truncated by token limits; extraction runs a fixed pipeline of
// recovery stages and never propagates a parse failure to the caller.
package synthesis

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Stage identifies which pipeline stage produced the extracted object.
type Stage string

const (
	StageRawParse       Stage = "raw_parse"
	StageExtractedParse Stage = "extracted_parse"
	StageRepairParse    Stage = "repair_parse"
	StageLibraryRepair  Stage = "library_repair"
	StageFallback       Stage = "fallback"
)

// fallbackObject is returned when no stage can recover a JSON object. It
// is a complete, safe ConsultResponse shape.
func fallbackObject() map[string]interface{} {
	return map[string]interface{}{
		"answer":        "I must beg your pardon: my reply miscarried in the writing, and I cannot in good conscience reconstruct it. Pray ask your question once more.",
		"evidence_used": []interface{}{},
		"confidence":    "low",
		"note":          "synthesis output could not be parsed; returning safe default",
	}
}

// Extract recovers a JSON object from raw model output. Each stage runs
// only if the previous one failed; the terminal fallback always succeeds.
func Extract(raw string) (map[string]interface{}, Stage) {
	text := stripFences(raw)

	if obj, ok := parseObject(text); ok {
		return obj, StageRawParse
	}
	if span, ok := outerBraceSpan(text); ok {
		if obj, ok := parseObject(span); ok {
			return obj, StageExtractedParse
		}
		// Repair works on the extracted span; prose outside the braces
		// would defeat the bracket accounting.
		text = span
	}
	if obj, ok := parseObject(balanceDelimiters(text)); ok {
		return obj, StageRepairParse
	}
	if repaired, err := jsonrepair.JSONRepair(text); err == nil {
		if obj, ok := parseObject(repaired); ok {
			return obj, StageLibraryRepair
		}
	}
	return fallbackObject(), StageFallback
}

func parseObject(text string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	// Drop the opening fence line; drop a closing fence if present.
	body := lines[1:]
	if strings.TrimSpace(body[len(body)-1]) == "```" {
		body = body[:len(body)-1]
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// outerBraceSpan returns the substring from the first '{' to the last '}'.
func outerBraceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		// A truncated object may have an opening brace and no closer at
		// all; hand the tail to the repair stage.
		if start != -1 {
			return text[start:], true
		}
		return "", false
	}
	return text[start : end+1], true
}

// balanceDelimiters closes what truncation left open: if an odd number of
// quote characters remains, one closing quote is appended; unmatched
// opening braces and brackets are closed in reverse order of opening.
func balanceDelimiters(text string) string {
	var stack []byte
	inString := false
	escaped := false
	quotes := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			quotes++
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, c)
			}
		case '}':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(text)
	if quotes%2 == 1 {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
