package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject recovers a JSON object from raw model output.
//
// A single layer of fenced-code markers is stripped if present, then the
// text is sliced from the first "{" to the last "}" inclusive so leading
// and trailing prose are tolerated. The slice must parse; there is no
// second heuristic pass.
func ExtractJSONObject(raw string) (map[string]any, error) {
	text := stripFence(strings.TrimSpace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response: %s", preview(raw))
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %v (response preview: %s)", err, preview(raw))
	}
	return obj, nil
}

// stripFence removes one layer of ``` markers when the text both starts and
// ends with them. The opening fence may carry a language tag.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	body := strings.TrimSuffix(text, "```")
	body = strings.TrimPrefix(body, "```")
	if nl := strings.Index(body, "\n"); nl != -1 {
		firstLine := strings.TrimSpace(body[:nl])
		// Drop a language tag like "json" on the opening fence line.
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
			body = body[nl+1:]
		}
	}
	return strings.TrimSpace(body)
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// FlattenWorkItems lifts nested features[].epics[].stories[] into top-level
// epics and stories arrays for consumer convenience. The nested structure is
// left untouched, and any pre-existing top-level arrays are appended after
// the nested items. Returns a shallow copy; the input map is not modified.
func FlattenWorkItems(data map[string]any) map[string]any {
	var epics, stories []any

	if features, ok := data["features"].([]any); ok {
		for _, f := range features {
			feature, ok := f.(map[string]any)
			if !ok {
				continue
			}
			nested, ok := feature["epics"].([]any)
			if !ok {
				continue
			}
			for _, e := range nested {
				epics = append(epics, e)
				if epic, ok := e.(map[string]any); ok {
					if sts, ok := epic["stories"].([]any); ok {
						stories = append(stories, sts...)
					}
				}
			}
		}
	}

	if existing, ok := data["epics"].([]any); ok {
		epics = append(epics, existing...)
	}
	if existing, ok := data["stories"].([]any); ok {
		stories = append(stories, existing...)
	}

	result := make(map[string]any, len(data)+2)
	for k, v := range data {
		result[k] = v
	}
	if epics == nil {
		epics = []any{}
	}
	if stories == nil {
		stories = []any{}
	}
	result["epics"] = epics
	result["stories"] = stories
	return result
}
