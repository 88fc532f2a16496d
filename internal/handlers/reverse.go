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

type reverseDesignRequest struct {
	SystemPrompt  string `json:"systemPrompt" binding:"required"`
	UserPrompt    string `json:"userPrompt" binding:"required"`
	ImageData     string `json:"imageData"`
	ImageType     string `json:"imageType"`
	AnalysisLevel string `json:"analysisLevel"`
	LLMProvider   string `json:"llm_provider"`
	Model         string `json:"model"`
}

// ReverseEngineerDesign analyzes a visual design (optionally with a
// screenshot) into structured work items. Parse failure is not a request
// failure here: the raw analysis text is still useful to the consumer, so
// it is returned under an "analysis" key instead.
func (h *Handler) ReverseEngineerDesign(c *gin.Context) {
	var req reverseDesignRequest
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
		Task:         "reverse-engineer-design",
	})
	if res == nil {
		return
	}
	if !res.Success {
		fail(c, "Failed to reverse engineer design", res.Meta.Error)
		return
	}

	obj, err := extract.ExtractJSONObject(res.Content)
	if err != nil {
		metrics.RecordExtractionFailure("reverse-engineer-design", "json_parse")
		logging.L().Warn("design analysis is not structured JSON, returning raw text",
			zap.Error(err),
			zap.String("request_id", c.GetString("request_id")))
		ok(c, gin.H{
			"analysis":      res.Content,
			"analysisLevel": req.AnalysisLevel,
			"executionTime": res.Meta.ExecutionSeconds,
		}, "Design reverse engineered successfully (text format)")
		return
	}

	ok(c, extract.FlattenWorkItems(obj), "Design reverse engineered successfully")
}

type reverseCodeRequest struct {
	SystemPrompt  string `json:"systemPrompt" binding:"required"`
	UserPrompt    string `json:"userPrompt" binding:"required"`
	Code          string `json:"code" binding:"required"`
	AnalysisLevel string `json:"analysisLevel"`
	LLMProvider   string `json:"llm_provider"`
	Model         string `json:"model"`
}

// codeAnalysisInstruction is appended to the prompt because the consumer
// requires structured fields; prose answers are useless downstream.
const codeAnalysisInstruction = `CRITICAL: You MUST respond with ONLY valid JSON format. Do not include any explanatory text before or after the JSON. Start your response with { and end with }. The JSON must be parseable and contain business requirements, user stories, and acceptance criteria.

Example format:
{
  "businessRequirements": [...],
  "userStories": [...],
  "epics": [...],
  "stories": [...]
}`

// ReverseEngineerCode analyzes source code into structured work items.
// Unlike the design variant, parse failure is a hard request failure.
func (h *Handler) ReverseEngineerCode(c *gin.Context) {
	var req reverseCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userPrompt := fmt.Sprintf("%s\n\nCode to analyze:\n```\n%s\n```\n\n%s",
		req.UserPrompt, req.Code, codeAnalysisInstruction)

	res := h.generate(c, &ai.Request{
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   userPrompt,
		Provider:     provider(req.LLMProvider),
		Model:        req.Model,
		Task:         "reverse-engineer-code",
	})
	if res == nil {
		return
	}
	if !res.Success {
		fail(c, "Code analysis failed", res.Meta.Error)
		return
	}

	obj, err := extract.ExtractJSONObject(res.Content)
	if err != nil {
		metrics.RecordExtractionFailure("reverse-engineer-code", "json_parse")
		fail(c, "Failed to parse LLM response as JSON", err.Error())
		return
	}

	ok(c, extract.FlattenWorkItems(obj),
		fmt.Sprintf("Code analysis completed successfully in %.2fs using %s",
			res.Meta.ExecutionSeconds, string(provider(req.LLMProvider))))
}
