// Package json extracts the JSON portion of model output.
//
// Models emit tool arguments and structured answers wrapped in markdown
// fences or surrounded by commentary. ExtractJSON recovers the raw JSON
// object so callers can unmarshal it with encoding/json.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the JSON object embedded in a model response.
// Handles the common shapes:
//  1. pure JSON - returned as is
//  2. JSON inside a markdown fence (```json ... ```)
//  3. JSON surrounded by commentary - first '{' through last '}'
//
// Limitations: objects only, not arrays; simple brace matching, so
// unbalanced braces inside strings can defeat it.
func ExtractJSON(response string) (string, error) {
	response = stripFences(response)

	var probe any
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end > start {
			candidate := response[start : end+1]
			if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
				return candidate, nil
			}
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON from response: %q", preview)
}

// stripFences removes markdown code fence markers (```json ... ``` or
// ``` ... ```) around a response.
func stripFences(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}
