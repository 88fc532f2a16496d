package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseCodeManifestStrictJSON(t *testing.T) {
	raw := `Here you go:
{"language":"python","codeType":"backend","files":[{"filename":"main.py","content":"print('hi')","type":"main","language":"python"}],"projectStructure":"backend/","dependencies":["fastapi"],"runInstructions":"uvicorn main:app"}`

	got := ParseCodeManifest(raw, "backend", "python")

	if got.Language != "python" || got.CodeType != "backend" {
		t.Fatalf("language/codeType = %q/%q", got.Language, got.CodeType)
	}
	if len(got.Files) != 1 || got.Files[0].Filename != "main.py" {
		t.Fatalf("files = %+v", got.Files)
	}
	if got.RunInstructions != "uvicorn main:app" {
		t.Fatalf("runInstructions = %q", got.RunInstructions)
	}
}

func TestParseCodeManifestFallsBackWithoutRequiredKeys(t *testing.T) {
	// Valid JSON but missing the files key: must synthesize, not pass through.
	raw := `{"language":"python","codeType":"backend"}`
	got := ParseCodeManifest(raw, "backend", "python")

	if len(got.Files) == 0 {
		t.Fatal("expected synthesized files")
	}
	if got.Files[0].Filename != "main.py" {
		t.Fatalf("main filename = %q", got.Files[0].Filename)
	}
}

func TestSynthesizeManifestFromFencedBlocks(t *testing.T) {
	raw := "Some explanation.\n```typescript\nconst x = 1;\n```\n```css\n.app { color: red; }\n```\n"

	got := SynthesizeManifest(raw, "frontend", "typescript")

	if len(got.Files) != 3 {
		t.Fatalf("expected 3 files, got %d: %+v", len(got.Files), got.Files)
	}
	if got.Files[0].Filename != "App.tsx" || got.Files[0].Content != "const x = 1;" {
		t.Fatalf("main file = %+v", got.Files[0])
	}
	if got.Files[1].Filename != "App.css" || got.Files[1].Content != ".app { color: red; }" {
		t.Fatalf("style file = %+v", got.Files[1])
	}
	if got.Files[2].Filename != "package.json" {
		t.Fatalf("config file = %+v", got.Files[2])
	}
	if !strings.Contains(got.Files[2].Content, "react-scripts start") {
		t.Fatal("frontend config should use react-scripts")
	}
}

func TestSynthesizeManifestDefaultStylesheet(t *testing.T) {
	got := SynthesizeManifest("```typescript\nconst x = 1;\n```", "frontend", "typescript")
	if got.Files[1].Filename != "App.css" {
		t.Fatalf("expected default stylesheet, files = %+v", got.Files)
	}
	if !strings.Contains(got.Files[1].Content, "box-sizing: border-box") {
		t.Fatal("default stylesheet content missing")
	}
}

func TestSynthesizeManifestNoFences(t *testing.T) {
	raw := "print('hello')"
	got := SynthesizeManifest(raw, "backend", "python")

	if got.Files[0].Filename != "main.py" || got.Files[0].Content != raw {
		t.Fatalf("main file = %+v", got.Files[0])
	}
	last := got.Files[len(got.Files)-1]
	if last.Filename != "requirements.txt" || last.Language != "text" {
		t.Fatalf("config file = %+v", last)
	}
	if !strings.Contains(last.Content, "fastapi==") {
		t.Fatal("python backend requirements missing")
	}
	if got.RunInstructions != "pip install -r requirements.txt && uvicorn main:app --reload" {
		t.Fatalf("runInstructions = %q", got.RunInstructions)
	}
}

func TestSynthesizeManifestAutoLanguage(t *testing.T) {
	got := SynthesizeManifest("code here", "frontend", "auto")
	if got.Language != "typescript" {
		t.Fatalf("auto should resolve to typescript, got %q", got.Language)
	}
	if got.Files[0].Filename != "App.tsx" {
		t.Fatalf("main filename = %q", got.Files[0].Filename)
	}
}

func TestSynthesizeManifestIdempotent(t *testing.T) {
	raw := "```javascript\nconsole.log(1)\n```\ntrailing prose"
	a := SynthesizeManifest(raw, "fullstack", "javascript")
	b := SynthesizeManifest(raw, "fullstack", "javascript")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("synthesis is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestDetermineFilenameTable(t *testing.T) {
	tests := []struct {
		language, codeType string
		index              int
		want               string
	}{
		{"python", "backend", 0, "main.py"},
		{"python", "backend", 2, "module_2.py"},
		{"typescript", "backend", 0, "server.ts"},
		{"java", "backend", 0, "Application.java"},
		{"csharp", "backend", 1, "Service_1.cs"},
		{"typescript", "frontend", 0, "App.tsx"},
		{"javascript", "frontend", 3, "Component_3.tsx"},
		{"python", "frontend", 0, "app.py"},
		{"go", "backend", 0, "code_0.go"},
		{"brainfuck", "frontend", 0, "code_0.txt"},
	}

	for _, tt := range tests {
		if got := determineFilename(tt.language, tt.codeType, tt.index); got != tt.want {
			t.Errorf("determineFilename(%q, %q, %d) = %q, want %q", tt.language, tt.codeType, tt.index, got, tt.want)
		}
	}
}
