// Package agent talks to the external browser-automation agent over a
// websocket JSON-RPC control channel. Connections are per request, matching
// the agent's session model: one dial, one task, one close.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"aura-bridge/internal/logging"
	"aura-bridge/internal/metrics"
)

// Client dials the agent's control channel.
type Client struct {
	url     string
	timeout time.Duration
}

// Tool describes one capability exposed by the agent.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RunResult is the terminal result of an automated session.
type RunResult struct {
	Output string `json:"output"`
	Passed bool   `json:"passed"`
}

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewClient creates an agent client for the given websocket URL.
func NewClient(url string) *Client {
	return &Client{
		url:     url,
		timeout: 5 * time.Minute, // automated sessions are long-running
	}
}

// Run executes a natural-language task through the agent and blocks until
// the session produces its terminal result.
func (c *Client) Run(ctx context.Context, prompt string) (*RunResult, error) {
	raw, err := c.call(ctx, "agent/run", map[string]any{"prompt": prompt})
	metrics.RecordAgentCall("agent/run", err)
	if err != nil {
		return nil, err
	}
	var result RunResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse agent result: %w", err)
	}
	return &result, nil
}

// ListTools returns the agent's advertised capabilities.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	raw, err := c.call(ctx, "tools/list", nil)
	metrics.RecordAgentCall("tools/list", err)
	if err != nil {
		return nil, err
	}
	var result struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse tools list: %w", err)
	}
	return result.Tools, nil
}

// CreateIssue asks the agent to file an issue in the external tracker and
// returns the agent's free-text report.
func (c *Client) CreateIssue(ctx context.Context, summary, description, project, issueType, priority string) (string, error) {
	raw, err := c.call(ctx, "jira/create", map[string]any{
		"summary":     summary,
		"description": description,
		"project":     project,
		"issueType":   issueType,
		"priority":    priority,
	})
	metrics.RecordAgentCall("jira/create", err)
	if err != nil {
		return "", err
	}
	var result RunResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// Some agent versions return the report as a bare string.
		var text string
		if json.Unmarshal(raw, &text) == nil {
			return text, nil
		}
		return "", fmt.Errorf("failed to parse issue result: %w", err)
	}
	return result.Output, nil
}

// conn is one live websocket session with request/response correlation.
type conn struct {
	ws        *websocket.Conn
	requestID int64

	mu      sync.Mutex
	pending map[int64]chan *rpcMessage
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to agent: %w", err)
	}

	session := &conn{
		ws:      ws,
		pending: make(map[int64]chan *rpcMessage),
	}
	defer ws.Close()
	go session.readLoop()

	if _, err := session.request(ctx, "initialize", map[string]any{
		"clientInfo": map[string]string{"name": "aura-bridge", "version": "1.0.0"},
	}, 30*time.Second); err != nil {
		return nil, fmt.Errorf("agent initialization failed: %w", err)
	}

	resp, err := session.request(ctx, method, params, c.timeout)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (s *conn) request(ctx context.Context, method string, params any, timeout time.Duration) (*rpcMessage, error) {
	id := atomic.AddInt64(&s.requestID, 1)

	var paramsJSON json.RawMessage
	if params != nil {
		var err error
		paramsJSON, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
	}

	respChan := make(chan *rpcMessage, 1)
	s.mu.Lock()
	s.pending[id] = respChan
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	if err := s.ws.WriteJSON(&rpcMessage{JSONRPC: "2.0", ID: id, Method: method, Params: paramsJSON}); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-respChan:
		if resp.Error != nil {
			return nil, fmt.Errorf("agent error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return resp, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("agent request timeout")
	}
}

func (s *conn) readLoop() {
	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.S().Debugw("agent read error", "error", err)
			}
			return
		}

		var msg rpcMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.S().Warnw("agent sent unparseable message", "error", err)
			continue
		}

		if msg.ID == nil {
			// Progress notifications are logged, not surfaced.
			logging.S().Debugw("agent notification", "method", msg.Method)
			continue
		}
		if id, ok := msg.ID.(float64); ok {
			s.mu.Lock()
			respChan, exists := s.pending[int64(id)]
			s.mu.Unlock()
			if exists {
				respChan <- &msg
			}
		}
	}
}
