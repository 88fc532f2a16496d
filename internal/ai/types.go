// Package ai contains the provider clients and the generation orchestrator.
package ai

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Provider identifies an LLM vendor.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Request describes one generation call. Immutable once built.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Provider     Provider
	Model        string
	Image        []byte // raw image bytes for multimodal calls
	ImageType    string // mime type, e.g. image/png
	FastPath     bool   // skip extended reasoning on models that support it
	Temperature  float32
	MaxTokens    int
	Task         string // task label for logging and history, e.g. "generate-code"
}

// Prompt returns the combined system + user prompt.
func (r *Request) Prompt() string {
	return r.SystemPrompt + "\n\n" + r.UserPrompt
}

// Multimodal reports whether the request carries an image.
func (r *Request) Multimodal() bool {
	return len(r.Image) > 0
}

// Meta carries per-call metadata alongside the generated content.
type Meta struct {
	ExecutionSeconds float64 `json:"execution_time_seconds"`
	ContentLength    int     `json:"content_length"`
	Model            string  `json:"model_used"`
	Provider         string  `json:"provider"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	TotalTokens      int     `json:"total_tokens,omitempty"`
	Fallback         bool    `json:"fallback,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// Result is the uniform outcome of one provider call. Success is true only
// when Content clears the modality minimum; a failed call never carries
// non-empty content.
type Result struct {
	Success bool
	Content string
	Meta    Meta
}

// Client is implemented by every provider client, dedicated or generic.
type Client interface {
	// Generate performs one call, including the single cross-model fallback
	// for paired model families. Never returns nil.
	Generate(ctx context.Context, req *Request) *Result

	// Available performs a minimal live call and reports reachability.
	Available(ctx context.Context) bool

	Provider() Provider
	Usage() *ProviderUsage
}

// Limits holds the minimum-content thresholds applied at the client boundary.
type Limits struct {
	MinText       int
	MinMultimodal int
}

// Min returns the threshold for the request's modality.
func (l Limits) Min(multimodal bool) int {
	if multimodal {
		return l.MinMultimodal
	}
	return l.MinText
}

// modelPairs maps each member of a two-model family to its sibling. The
// fallback edge is symmetric and traversed at most once per call.
var modelPairs = map[string]string{
	"gemini-2.5-pro":   "gemini-2.5-flash",
	"gemini-2.5-flash": "gemini-2.5-pro",
}

// PairedModel returns the fallback sibling for a model, if it has one.
func PairedModel(model string) (string, bool) {
	pair, ok := modelPairs[model]
	return pair, ok
}

// fastPathModels support disabling extended reasoning. Models outside this
// set silently ignore the fast-path flag (they return empty output with a
// zero reasoning budget).
var fastPathModels = map[string]bool{
	"gemini-2.5-flash": true,
}

const insufficientContent = "insufficient content"

// transient reports whether an error string describes a retriable
// server-side failure that should trigger the model-pair fallback.
func transient(errMsg string) bool {
	return strings.HasPrefix(errMsg, "SERVICE_ERROR:") ||
		strings.HasPrefix(errMsg, "RATE_LIMIT:") ||
		strings.Contains(errMsg, insufficientContent)
}

// ProviderUsage tracks usage statistics for one provider client.
type ProviderUsage struct {
	Provider     Provider  `json:"provider"`
	RequestCount int64     `json:"request_count"`
	TotalTokens  int64     `json:"total_tokens"`
	AvgLatency   float64   `json:"avg_latency"`
	ErrorCount   int64     `json:"error_count"`
	LastUsed     time.Time `json:"last_used"`
}

// usageTracker is embedded by the clients for thread-safe usage accounting.
type usageTracker struct {
	mu    sync.RWMutex
	usage ProviderUsage
}

func newUsageTracker(p Provider) usageTracker {
	return usageTracker{usage: ProviderUsage{Provider: p, LastUsed: time.Now()}}
}

func (t *usageTracker) record(totalTokens int, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.RequestCount++
	t.usage.TotalTokens += int64(totalTokens)
	t.usage.AvgLatency = (t.usage.AvgLatency*float64(t.usage.RequestCount-1) + duration.Seconds()) / float64(t.usage.RequestCount)
	t.usage.LastUsed = time.Now()
}

func (t *usageTracker) recordError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.ErrorCount++
}

// Usage returns a copy of the current statistics.
func (t *usageTracker) Usage() *ProviderUsage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u := t.usage
	return &u
}
