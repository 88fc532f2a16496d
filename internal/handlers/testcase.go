package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aura-bridge/internal/agent"
	"aura-bridge/internal/logging"
)

type testCaseRequest struct {
	TestCase    agent.TestCase `json:"testCase" binding:"required"`
	LLMProvider string         `json:"llm_provider"`
	Model       string         `json:"model"`
}

type testCaseResponse struct {
	Result        string   `json:"result"`
	Success       bool     `json:"success"`
	Error         string   `json:"error,omitempty"`
	Screenshots   []string `json:"screenshots"`
	ExecutionTime float64  `json:"execution_time"`
}

// ExecuteTestCase runs a structured test case through the browser-automation
// agent. The agent drives a real browser session, so this call is
// long-running; screenshots the session produced are attached to the result.
func (h *Handler) ExecuteTestCase(c *gin.Context) {
	var req testCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start := time.Now()
	logging.L().Info("executing test case",
		zap.String("title", req.TestCase.Title),
		zap.String("request_id", c.GetString("request_id")))

	result, err := h.agent.Run(c.Request.Context(), req.TestCase.Prompt())
	elapsed := time.Since(start).Seconds()

	if err != nil {
		c.JSON(http.StatusOK, testCaseResponse{
			Success:       false,
			Error:         err.Error(),
			Screenshots:   []string{},
			ExecutionTime: elapsed,
		})
		return
	}

	shots := []string{}
	for _, name := range h.shots.List() {
		shots = append(shots, filepath.Join(h.shots.Dir(), name))
	}

	c.JSON(http.StatusOK, testCaseResponse{
		Result:        result.Output,
		Success:       true,
		Screenshots:   shots,
		ExecutionTime: elapsed,
	})
}
