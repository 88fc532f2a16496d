// Package extract turns raw model output into structured artifacts.
//
// Models wrap their answers inconsistently (fenced blocks, leading prose,
// partial documents), so every function here is a pure, deterministic
// heuristic over the input text. Nothing in this package performs I/O.
package extract

import (
	"strings"
	"time"
)

// DesignArtifact is the result of HTML extraction for design tasks.
// CSS and JavaScript are display-only copies pulled from within HTML;
// they are never stripped from the document itself.
type DesignArtifact struct {
	HTML        string `json:"html"`
	CSS         string `json:"css"`
	JavaScript  string `json:"javascript"`
	Framework   string `json:"framework"`
	GeneratedAt string `json:"generatedAt"`
}

const htmlFence = "```html"

// HasDocumentMarker reports whether s contains a full-document marker.
func HasDocumentMarker(s string) bool {
	return strings.Contains(s, "<!DOCTYPE html>") || strings.Contains(s, "<html")
}

// ExtractHTML resolves the HTML document inside raw model output.
//
// Preference order: the first fenced ```html block containing a full-document
// marker, then the largest fenced ```html block, then the whole trimmed text
// when it carries a marker itself, then the whole trimmed text verbatim. The
// last path usually fails the downstream quality gate, which is intended:
// a model that produced no HTML should fail visibly.
func ExtractHTML(raw string) string {
	if strings.Contains(raw, htmlFence) {
		var blocks []string
		pos := 0
		for {
			start := strings.Index(raw[pos:], htmlFence)
			if start == -1 {
				break
			}
			start += pos + len(htmlFence)
			end := strings.Index(raw[start:], "```")
			if end != -1 {
				block := strings.TrimSpace(raw[start : start+end])
				blocks = append(blocks, block)
				if HasDocumentMarker(block) {
					return block
				}
				pos = start + end + 3
				continue
			}
			pos = start + 1
		}
		if len(blocks) > 0 {
			largest := blocks[0]
			for _, b := range blocks[1:] {
				if len(b) > len(largest) {
					largest = b
				}
			}
			return largest
		}
		return strings.TrimSpace(raw)
	}

	return strings.TrimSpace(raw)
}

// StyleBlock returns the contents of the first inline <style> tag, or "".
func StyleBlock(html string) string {
	return innerTag(html, "<style>", "</style>")
}

// ScriptBlock returns the contents of the first inline <script> tag, or "".
func ScriptBlock(html string) string {
	return innerTag(html, "<script>", "</script>")
}

func innerTag(html, open, close string) string {
	start := strings.Index(html, open)
	if start == -1 {
		return ""
	}
	start += len(open)
	end := strings.Index(html[start:], close)
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(html[start : start+end])
}

// BodyContent returns the trimmed text strictly between the body tags.
// ok is false when either tag is missing.
func BodyContent(html string) (string, bool) {
	open := strings.Index(html, "<body")
	if open == -1 {
		return "", false
	}
	openEnd := strings.Index(html[open:], ">")
	if openEnd == -1 {
		return "", false
	}
	start := open + openEnd + 1
	end := strings.Index(html[start:], "</body>")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(html[start : start+end]), true
}

// BuildDesignArtifact extracts the HTML document plus its display-only
// CSS/JS views from raw model output.
func BuildDesignArtifact(raw, framework string) *DesignArtifact {
	html := ExtractHTML(raw)
	return &DesignArtifact{
		HTML:        html,
		CSS:         StyleBlock(html),
		JavaScript:  ScriptBlock(html),
		Framework:   framework,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
