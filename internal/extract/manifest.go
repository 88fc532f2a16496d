package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CodeFile is one generated source file in a code manifest.
type CodeFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Type     string `json:"type"`
	Language string `json:"language"`
}

// CodeArtifact is the structured result of a code-generation task.
type CodeArtifact struct {
	Language         string     `json:"language"`
	CodeType         string     `json:"codeType"`
	Files            []CodeFile `json:"files"`
	ProjectStructure string     `json:"projectStructure"`
	Dependencies     []string   `json:"dependencies"`
	RunInstructions  string     `json:"runInstructions"`
}

// ParseCodeManifest turns raw model output into a code manifest. Strict JSON
// is tried first: when the embedded object carries language, codeType and
// files, it is decoded directly. Anything else falls through to deterministic
// synthesis from the fenced code blocks in the text.
func ParseCodeManifest(raw, codeType, language string) *CodeArtifact {
	if obj, err := ExtractJSONObject(raw); err == nil {
		if hasKeys(obj, "language", "codeType", "files") {
			if artifact := decodeManifest(obj); artifact != nil {
				return artifact
			}
		}
	}
	return SynthesizeManifest(raw, codeType, language)
}

func hasKeys(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

func decodeManifest(obj map[string]any) *CodeArtifact {
	buf, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	var artifact CodeArtifact
	if err := json.Unmarshal(buf, &artifact); err != nil {
		return nil
	}
	return &artifact
}

type codeBlock struct {
	language string
	content  string
}

// SynthesizeManifest builds a manifest from unstructured output. It is a pure
// function of (raw, codeType, language): the same input always yields the
// same files, dependency list and instructions. At most three files are
// produced (main, optional stylesheet, dependency manifest).
func SynthesizeManifest(raw, codeType, language string) *CodeArtifact {
	actual := language
	if actual == "auto" || actual == "" {
		actual = "typescript"
	}

	blocks := splitCodeBlocks(raw, actual)
	if len(blocks) == 0 {
		blocks = []codeBlock{{language: actual, content: raw}}
	}

	files := []CodeFile{{
		Filename: determineFilename(actual, codeType, 0),
		Content:  blocks[0].content,
		Type:     "main",
		Language: actual,
	}}

	if codeType == "frontend" || codeType == "fullstack" {
		css := defaultStylesheet
		for _, b := range blocks {
			if b.language == "css" {
				css = b.content
				break
			}
		}
		files = append(files, CodeFile{
			Filename: "App.css",
			Content:  css,
			Type:     "style",
			Language: "css",
		})
	}

	configName := "package.json"
	configLang := "json"
	if actual == "python" {
		configName = "requirements.txt"
		configLang = "text"
	}
	files = append(files, CodeFile{
		Filename: configName,
		Content:  configContent(codeType, actual),
		Type:     "config",
		Language: configLang,
	})

	return &CodeArtifact{
		Language:         actual,
		CodeType:         codeType,
		Files:            files,
		ProjectStructure: projectStructure(codeType, actual),
		Dependencies:     dependencies(codeType, actual),
		RunInstructions:  runInstructions(codeType, actual),
	}
}

// splitCodeBlocks pairs each ``` opening delimiter's language tag with the
// lines up to the next delimiter. An unterminated final block is kept.
func splitCodeBlocks(raw, fallbackLang string) []codeBlock {
	var blocks []codeBlock
	var current *codeBlock
	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if current != nil {
				current.content = strings.Join(lines, "\n")
				blocks = append(blocks, *current)
				current = nil
				lines = nil
			} else {
				tag := strings.TrimSpace(strings.ReplaceAll(line, "```", ""))
				if tag == "" {
					tag = fallbackLang
				}
				current = &codeBlock{language: tag}
			}
			continue
		}
		if current != nil {
			lines = append(lines, line)
		}
	}
	if current != nil && len(lines) > 0 {
		current.content = strings.Join(lines, "\n")
		blocks = append(blocks, *current)
	}
	return blocks
}

func determineFilename(language, codeType string, index int) string {
	if codeType == "backend" {
		switch language {
		case "python":
			if index == 0 {
				return "main.py"
			}
			return fmt.Sprintf("module_%d.py", index)
		case "javascript", "typescript":
			if index == 0 {
				return "server.ts"
			}
			return fmt.Sprintf("module_%d.ts", index)
		case "java":
			if index == 0 {
				return "Application.java"
			}
			return fmt.Sprintf("Service_%d.java", index)
		case "csharp":
			if index == 0 {
				return "Program.cs"
			}
			return fmt.Sprintf("Service_%d.cs", index)
		}
	} else {
		switch language {
		case "javascript", "typescript":
			if index == 0 {
				return "App.tsx"
			}
			return fmt.Sprintf("Component_%d.tsx", index)
		case "python":
			if index == 0 {
				return "app.py"
			}
			return fmt.Sprintf("component_%d.py", index)
		}
	}
	return fmt.Sprintf("code_%d.%s", index, fileExtension(language))
}

func fileExtension(language string) string {
	extensions := map[string]string{
		"javascript": "js",
		"typescript": "ts",
		"python":     "py",
		"java":       "java",
		"csharp":     "cs",
		"go":         "go",
		"rust":       "rs",
		"php":        "php",
		"css":        "css",
		"html":       "html",
		"json":       "json",
	}
	if ext, ok := extensions[language]; ok {
		return ext
	}
	return "txt"
}

func configContent(codeType, language string) string {
	if language == "python" {
		if codeType == "backend" {
			return "fastapi==0.104.1\nuvicorn[standard]==0.24.0\npydantic==2.5.0\npython-multipart==0.0.6"
		}
		return "streamlit==1.28.0\nrequests==2.31.0"
	}

	config := map[string]any{
		"name":        "generated-app",
		"version":     "1.0.0",
		"description": fmt.Sprintf("Generated %s application", codeType),
	}
	if codeType == "backend" {
		config["scripts"] = map[string]string{
			"start": "node server.js",
			"dev":   "node server.js",
		}
		config["dependencies"] = map[string]string{
			"express": "^4.18.2",
			"cors":    "^2.8.5",
		}
	} else {
		config["scripts"] = map[string]string{
			"start": "react-scripts start",
			"build": "react-scripts build",
		}
		config["dependencies"] = map[string]string{
			"react":     "^18.2.0",
			"react-dom": "^18.2.0",
		}
	}
	buf, _ := json.MarshalIndent(config, "", "  ")
	return string(buf)
}

func projectStructure(codeType, language string) string {
	if codeType == "backend" {
		if language == "python" {
			return "backend/\n├── main.py\n├── requirements.txt\n├── models/\n├── routes/\n└── config/"
		}
		return "backend/\n├── src/\n│   ├── server.ts\n│   ├── routes/\n│   ├── models/\n│   └── config/\n├── package.json\n└── tsconfig.json"
	}
	return "frontend/\n├── src/\n│   ├── App.tsx\n│   ├── components/\n│   ├── pages/\n│   └── styles/\n├── public/\n└── package.json"
}

func dependencies(codeType, language string) []string {
	if codeType == "backend" {
		if language == "python" {
			return []string{"fastapi", "uvicorn", "pydantic", "python-dotenv"}
		}
		return []string{"express", "cors", "typescript", "ts-node", "@types/node"}
	}
	return []string{"react", "react-dom", "typescript", "@types/react", "@types/react-dom"}
}

func runInstructions(codeType, language string) string {
	if codeType == "backend" {
		if language == "python" {
			return "pip install -r requirements.txt && uvicorn main:app --reload"
		}
		return "npm install && npm run dev"
	}
	return "npm install && npm start"
}

const defaultStylesheet = `/* Basic Application Styles */
* {
  box-sizing: border-box;
  margin: 0;
  padding: 0;
}

body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  line-height: 1.6;
  color: #333;
  background-color: #f5f5f5;
}

.app-container {
  max-width: 1200px;
  margin: 0 auto;
  padding: 2rem;
}

.app-header {
  text-align: center;
  margin-bottom: 2rem;
  padding: 2rem;
  background: linear-gradient(135deg, #3b82f6, #8b5cf6);
  color: white;
  border-radius: 12px;
}

.app-main {
  background: white;
  border-radius: 12px;
  padding: 2rem;
  box-shadow: 0 4px 6px -1px rgba(0, 0, 0, 0.1);
}

button {
  padding: 0.75rem 1.5rem;
  border-radius: 8px;
  border: none;
  font-weight: 600;
  cursor: pointer;
  background-color: #3b82f6;
  color: white;
  transition: all 0.2s ease;
}

button:hover {
  background-color: #2563eb;
}`
