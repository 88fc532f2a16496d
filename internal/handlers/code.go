package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"aura-bridge/internal/ai"
	"aura-bridge/internal/extract"
)

type codeRequest struct {
	SystemPrompt string `json:"systemPrompt" binding:"required"`
	UserPrompt   string `json:"userPrompt" binding:"required"`
	LLMProvider  string `json:"llm_provider"`
	Model        string `json:"model"`
	Framework    string `json:"framework"`
	CodeType     string `json:"codeType"`
	Language     string `json:"language"`
	WorkItemID   string `json:"workItemId"`
}

// GenerateCode produces a multi-file code manifest. The model is asked for
// structured JSON; unstructured output is synthesized into a manifest
// deterministically, so this endpoint never fails on shape alone.
func (h *Handler) GenerateCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := h.generate(c, &ai.Request{
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		Provider:     provider(req.LLMProvider),
		Model:        req.Model,
		Task:         "generate-code",
	})
	if res == nil {
		return
	}
	if !res.Success {
		fail(c, "Code generation failed", res.Meta.Error)
		return
	}

	artifact := extract.ParseCodeManifest(res.Content, req.CodeType, req.Language)
	ok(c, artifact, fmt.Sprintf("Code generated successfully in %.2fs", res.Meta.ExecutionSeconds))
}

type reviewRequest struct {
	SystemPrompt string `json:"systemPrompt" binding:"required"`
	UserPrompt   string `json:"userPrompt" binding:"required"`
	LLMProvider  string `json:"llm_provider"`
	Model        string `json:"model"`
	CodeType     string `json:"codeType"`
	Language     string `json:"language"`
}

// ReviewCode runs a code review and returns the model's report verbatim.
// The consumer renders the text; no extraction is applied.
func (h *Handler) ReviewCode(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := h.generate(c, &ai.Request{
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		Provider:     provider(req.LLMProvider),
		Model:        req.Model,
		Task:         "review-code",
	})
	if res == nil {
		return
	}
	if !res.Success || strings.TrimSpace(res.Content) == "" {
		fail(c, "Code review failed", res.Meta.Error)
		return
	}

	ok(c, gin.H{
		"review":   res.Content,
		"codeType": req.CodeType,
		"language": req.Language,
	}, fmt.Sprintf("Code review completed successfully in %.2fs", res.Meta.ExecutionSeconds))
}

type applySuggestionsRequest struct {
	SystemPrompt        string           `json:"systemPrompt" binding:"required"`
	UserPrompt          string           `json:"userPrompt" binding:"required"`
	OriginalCode        map[string]any   `json:"originalCode"`
	AcceptedSuggestions []map[string]any `json:"acceptedSuggestions"`
	CodeType            string           `json:"codeType"`
	Language            string           `json:"language"`
	LLMProvider         string           `json:"llm_provider"`
	Model               string           `json:"model"`
}

// ApplySuggestions rewrites code with the accepted review suggestions
// applied. Like ReviewCode, the model output is returned verbatim.
func (h *Handler) ApplySuggestions(c *gin.Context) {
	var req applySuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := h.generate(c, &ai.Request{
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		Provider:     provider(req.LLMProvider),
		Model:        req.Model,
		Task:         "apply-suggestions",
	})
	if res == nil {
		return
	}
	if !res.Success || strings.TrimSpace(res.Content) == "" {
		fail(c, "Suggestion application failed", res.Meta.Error)
		return
	}

	ok(c, gin.H{
		"content":  res.Content,
		"codeType": req.CodeType,
		"language": req.Language,
	}, fmt.Sprintf("Successfully applied %d suggestion(s) in %.2fs",
		len(req.AcceptedSuggestions), res.Meta.ExecutionSeconds))
}
