package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aura-bridge/internal/ai"
	"aura-bridge/internal/extract"
	"aura-bridge/internal/logging"
	"aura-bridge/internal/metrics"
)

const minDesignContent = 200

type designRequest struct {
	SystemPrompt string `json:"systemPrompt" binding:"required"`
	UserPrompt   string `json:"userPrompt" binding:"required"`
	LLMProvider  string `json:"llm_provider"`
	Model        string `json:"model"`
	ImageData    string `json:"imageData"`
	ImageType    string `json:"imageType"`
	Framework    string `json:"framework"`
}

// GenerateDesignCode produces a single self-contained HTML document from a
// design prompt, optionally grounded on a screenshot. The raw output passes
// through a length gate, the document-marker gate, and the body-content gate
// before the artifact is returned.
func (h *Handler) GenerateDesignCode(c *gin.Context) {
	var req designRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	image, err := decodeImage(req.ImageData)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid image data: %w", err))
		return
	}

	res := h.generate(c, &ai.Request{
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		Provider:     provider(req.LLMProvider),
		Model:        req.Model,
		Image:        image,
		ImageType:    req.ImageType,
		FastPath:     true, // design output needs no extended reasoning
		Task:         "generate-design-code",
	})
	if res == nil {
		return
	}
	if !res.Success {
		fail(c, "Code generation failed", res.Meta.Error)
		return
	}

	if len(res.Content) < minDesignContent {
		metrics.RecordExtractionFailure("generate-design-code", "insufficient_content")
		fail(c, "Code generation failed",
			fmt.Sprintf("LLM returned insufficient content (%d chars - minimum %d required)", len(res.Content), minDesignContent))
		return
	}

	artifact := extract.BuildDesignArtifact(res.Content, req.Framework)

	if !extract.HasDocumentMarker(artifact.HTML) {
		metrics.RecordExtractionFailure("generate-design-code", "invalid_html")
		fail(c, "Code generation failed", "Generated content is not valid HTML")
		return
	}

	body, hasBody := extract.BodyContent(artifact.HTML)
	if !hasBody {
		metrics.RecordExtractionFailure("generate-design-code", "missing_body")
		fail(c, "Code generation failed", "Generated HTML structure is incomplete (missing body tags)")
		return
	}
	switch {
	case len(body) < 5:
		metrics.RecordExtractionFailure("generate-design-code", "empty_body")
		fail(c, "Code generation failed",
			fmt.Sprintf("Generated HTML has insufficient body content (%d chars)", len(body)))
		return
	case len(body) < 20:
		// Simple components like a lone button are acceptable.
		logging.L().Info("minimal body content accepted",
			zap.Int("body_len", len(body)),
			zap.String("request_id", c.GetString("request_id")))
	}

	ok(c, artifact, fmt.Sprintf("Code generated successfully in %.2fs using %s",
		res.Meta.ExecutionSeconds, string(provider(req.LLMProvider))))
}
