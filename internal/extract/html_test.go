package extract

import (
	"strings"
	"testing"
)

const fullDoc = "<!DOCTYPE html>\n<html>\n<head><title>t</title></head>\n<body><button>Click</button></body>\n</html>"

func TestExtractHTMLPrefersCompleteDocumentBlock(t *testing.T) {
	raw := "Some intro.\n```html\n<div>partial</div>\n```\nmore text\n```html\n" + fullDoc + "\n```\ndone"

	got := ExtractHTML(raw)
	if got != fullDoc {
		t.Fatalf("expected complete document block, got: %q", got)
	}
}

func TestExtractHTMLUsesLargestBlockWithoutMarker(t *testing.T) {
	raw := "```html\n<div>a</div>\n```\n```html\n<div>a much longer fragment here</div>\n```"

	got := ExtractHTML(raw)
	if got != "<div>a much longer fragment here</div>" {
		t.Fatalf("expected largest block, got: %q", got)
	}
}

func TestExtractHTMLUnfencedDocument(t *testing.T) {
	raw := "  \n" + fullDoc + "\n  "
	if got := ExtractHTML(raw); got != fullDoc {
		t.Fatalf("expected trimmed document, got: %q", got)
	}
}

func TestExtractHTMLFallsBackToRawText(t *testing.T) {
	raw := "The model refused to answer."
	if got := ExtractHTML(raw); got != raw {
		t.Fatalf("expected verbatim text, got: %q", got)
	}
	if HasDocumentMarker(raw) {
		t.Fatal("plain prose should not carry a document marker")
	}
}

func TestStyleAndScriptBlocks(t *testing.T) {
	html := "<html><head><style>\nbody { color: red; }\n</style></head><body><script>\nconsole.log(1);\n</script></body></html>"

	if got := StyleBlock(html); got != "body { color: red; }" {
		t.Fatalf("css = %q", got)
	}
	if got := ScriptBlock(html); got != "console.log(1);" {
		t.Fatalf("js = %q", got)
	}
	if got := StyleBlock("<html></html>"); got != "" {
		t.Fatalf("expected empty css, got %q", got)
	}
}

func TestBodyContent(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   string
		wantOK bool
	}{
		{"plain body", "<body>hello</body>", "hello", true},
		{"body with attributes", `<body class="x">  content  </body>`, "content", true},
		{"missing close", "<body>hello", "", false},
		{"missing body", "<html></html>", "", false},
		{"empty body", "<body>   </body>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BodyContent(tt.html)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("BodyContent(%q) = (%q, %v), want (%q, %v)", tt.html, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBuildDesignArtifact(t *testing.T) {
	raw := "```html\n" + fullDoc + "\n```"
	artifact := BuildDesignArtifact(raw, "react")

	if artifact.HTML != fullDoc {
		t.Fatalf("html = %q", artifact.HTML)
	}
	if artifact.CSS != "" || artifact.JavaScript != "" {
		t.Fatalf("expected empty css/js, got %q / %q", artifact.CSS, artifact.JavaScript)
	}
	if artifact.Framework != "react" {
		t.Fatalf("framework = %q", artifact.Framework)
	}
	if !strings.Contains(artifact.HTML, "<button>Click</button>") {
		t.Fatal("button markup lost during extraction")
	}
}
