// Package handlers maps each generation task to its prompt assembly,
// extractor, and response shape.
package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aura-bridge/internal/agent"
	"aura-bridge/internal/ai"
	"aura-bridge/internal/config"
	"aura-bridge/internal/history"
)

// Generator runs one generation request. Satisfied by *ai.Orchestrator.
type Generator interface {
	Generate(ctx context.Context, req *ai.Request) (*ai.Result, error)
	Usage() map[ai.Provider]*ai.ProviderUsage
}

// Agent is the browser-automation control channel. Satisfied by *agent.Client.
type Agent interface {
	Run(ctx context.Context, prompt string) (*agent.RunResult, error)
	ListTools(ctx context.Context) ([]agent.Tool, error)
	CreateIssue(ctx context.Context, summary, description, project, issueType, priority string) (string, error)
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	gen   Generator
	agent Agent
	shots *agent.Screenshots
	store *history.Store
	cfg   *config.Config
}

// New builds the handler set. store may be nil when no database is available.
func New(gen Generator, ag Agent, shots *agent.Screenshots, store *history.Store, cfg *config.Config) *Handler {
	return &Handler{gen: gen, agent: ag, shots: shots, store: store, cfg: cfg}
}

// Register wires every route onto the router.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/generate-design-code", h.GenerateDesignCode)
	r.POST("/generate-code", h.GenerateCode)
	r.POST("/review-code", h.ReviewCode)
	r.POST("/apply-suggestions", h.ApplySuggestions)
	r.POST("/reverse-engineer-design", h.ReverseEngineerDesign)
	r.POST("/reverse-engineer-code", h.ReverseEngineerCode)
	r.POST("/execute-test-case", h.ExecuteTestCase)
	r.POST("/create-jira-issue", h.CreateJiraIssue)

	r.GET("/health", h.Health)
	r.GET("/health/jira", h.JiraHealth)
	r.GET("/tools", h.Tools)
	r.GET("/screenshots", h.ListScreenshots)
	r.POST("/clear-screenshots", h.ClearScreenshots)
	r.GET("/history", h.History)
}

// Envelope is the uniform response shape for task endpoints. Logical
// failures travel inside a 200 response; the front end keys off Success,
// not the status code.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func fail(c *gin.Context, message, errMsg string) {
	c.JSON(http.StatusOK, Envelope{Success: false, Message: message, Error: errMsg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: "Invalid request body", Error: err.Error()})
}

// provider maps the wire-level llm_provider value to an internal provider.
// Anything that is not Google-flavored goes to OpenAI, matching the caller's
// two-way switch; an absent value defaults to Gemini.
func provider(llmProvider string) ai.Provider {
	switch strings.ToLower(llmProvider) {
	case "", "google", "gemini":
		return ai.ProviderGemini
	default:
		return ai.ProviderOpenAI
	}
}

// decodeImage decodes a base64 payload, tolerating a data-URI prefix.
func decodeImage(data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}
	if idx := strings.Index(data, ";base64,"); idx != -1 {
		data = data[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(data))
}

// generate runs the request and folds configuration errors into the
// failure envelope. A nil result means the response is already written.
func (h *Handler) generate(c *gin.Context, req *ai.Request) *ai.Result {
	res, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		var cfgErr *ai.ConfigError
		if errors.As(err, &cfgErr) {
			fail(c, "Failed to initialize LLM", err.Error())
			return nil
		}
		fail(c, "Generation failed", err.Error())
		return nil
	}
	return res
}
