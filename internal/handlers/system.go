package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// JiraHealth probes the agent's issue-tracker integration by listing its
// tools over a short-lived connection.
func (h *Handler) JiraHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	tools, err := h.agent.ListTools(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":          "unhealthy",
			"error":           err.Error(),
			"authenticated":   false,
			"tools_available": 0,
			"message":         "Agent connection failed - check that the agent is running",
		})
		return
	}

	jiraTools := 0
	sample := []string{}
	for i, t := range tools {
		if strings.Contains(strings.ToLower(t.Name), "jira") {
			jiraTools++
		}
		if i < 5 {
			sample = append(sample, t.Name)
		}
	}

	status := "degraded"
	message := "Agent connection may need authentication"
	if len(tools) > 0 {
		status = "healthy"
		message = "Agent connection is working"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"authenticated":   len(tools) > 0,
		"tools_available": len(tools),
		"jira_tools":      jiraTools,
		"tools_sample":    sample,
		"message":         message,
	})
}

// Tools lists the agent's advertised capabilities.
func (h *Handler) Tools(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	tools, err := h.agent.ListTools(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error(), "tools": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tools": tools})
}

// ListScreenshots returns the filenames in the screenshot directory.
func (h *Handler) ListScreenshots(c *gin.Context) {
	shots := h.shots.List()
	c.JSON(http.StatusOK, gin.H{"success": true, "screenshots": shots, "count": len(shots)})
}

// ClearScreenshots wipes the screenshot directory.
func (h *Handler) ClearScreenshots(c *gin.Context) {
	removed, err := h.shots.Clear()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Screenshots cleared", "removed": removed})
}

// History returns recent generation records, newest first.
func (h *Handler) History(c *gin.Context) {
	if h.store == nil {
		fail(c, "History unavailable", "no history store configured")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.store.Recent(limit)
	if err != nil {
		fail(c, "Failed to load history", err.Error())
		return
	}
	ok(c, gin.H{"records": records, "count": len(records), "usage": h.gen.Usage()}, "History loaded")
}
