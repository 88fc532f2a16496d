package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aura-bridge/internal/cache"
	"aura-bridge/internal/config"
	"aura-bridge/internal/history"
	"aura-bridge/internal/logging"
	"aura-bridge/internal/metrics"
)

// ConfigError signals that no client could be constructed for the requested
// provider. Distinct from a generation failure: there is nothing to retry.
type ConfigError struct {
	Provider Provider
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no API key configured for provider %q", e.Provider)
}

const cacheTTL = 10 * time.Minute

// Orchestrator selects a client per request (dedicated when configured and
// reachable, generic chat fallback otherwise) and normalizes both paths to
// the same Result before extraction. Clients are process-lifetime
// singletons; the selection decision is made fresh on every request.
type Orchestrator struct {
	dedicated    map[Provider]Client
	fallback     map[Provider]Client
	cache        *cache.Cache
	store        *history.Store
	defaultModel string
}

// NewOrchestrator builds clients for every provider with a configured
// credential. cacheLayer and store may be nil.
func NewOrchestrator(cfg *config.Config, cacheLayer *cache.Cache, store *history.Store) *Orchestrator {
	limits := Limits{
		MinText:       cfg.MinTextContent,
		MinMultimodal: cfg.MinMultimodalContent,
	}

	o := &Orchestrator{
		dedicated:    make(map[Provider]Client),
		fallback:     make(map[Provider]Client),
		cache:        cacheLayer,
		store:        store,
		defaultModel: cfg.DefaultModel,
	}

	if cfg.GeminiAPIKey != "" {
		o.dedicated[ProviderGemini] = NewGeminiClient(cfg.GeminiAPIKey, limits)
		o.fallback[ProviderGemini] = NewChatClient(ProviderGemini, cfg.GeminiAPIKey, cfg.GeminiChatURL, limits)
	}
	if cfg.OpenAIAPIKey != "" {
		o.dedicated[ProviderOpenAI] = NewOpenAIClient(cfg.OpenAIAPIKey, limits)
		o.fallback[ProviderOpenAI] = NewChatClient(ProviderOpenAI, cfg.OpenAIAPIKey, cfg.OpenAIChatURL, limits)
	}

	return o
}

// NewOrchestratorWithClients wires explicit clients. Used by tests.
func NewOrchestratorWithClients(dedicated, fallback map[Provider]Client) *Orchestrator {
	if dedicated == nil {
		dedicated = make(map[Provider]Client)
	}
	if fallback == nil {
		fallback = make(map[Provider]Client)
	}
	return &Orchestrator{dedicated: dedicated, fallback: fallback}
}

// Generate runs one generation request end to end. A non-nil error means a
// configuration problem; generation failures come back inside the Result.
func (o *Orchestrator) Generate(ctx context.Context, req *Request) (*Result, error) {
	if req.Provider == "" {
		req.Provider = ProviderGemini
	}
	if req.Model == "" && req.Provider == ProviderGemini {
		req.Model = o.defaultModel
	}

	client, err := o.selectClient(ctx, req.Provider)
	if err != nil {
		return nil, err
	}

	if res, ok := o.cachedResult(ctx, req); ok {
		logging.L().Info("generation cache hit",
			zap.String("provider", string(req.Provider)),
			zap.String("model", req.Model),
			zap.String("task", req.Task))
		return res, nil
	}

	start := time.Now()
	res := client.Generate(ctx, req)
	duration := time.Since(start)

	logging.L().Info("generation attempt",
		zap.String("provider", string(req.Provider)),
		zap.String("model", res.Meta.Model),
		zap.String("task", req.Task),
		zap.Int("prompt_len", len(req.Prompt())),
		zap.Bool("multimodal", req.Multimodal()),
		zap.Bool("success", res.Success),
		zap.Bool("fallback", res.Meta.Fallback),
		zap.Duration("duration", duration),
		zap.String("error", res.Meta.Error))

	metrics.RecordGeneration(string(req.Provider), res.Meta.Model, res.Success, res.Meta.Fallback, duration)

	o.store.Save(&history.Record{
		Task:          req.Task,
		Provider:      string(req.Provider),
		Model:         res.Meta.Model,
		Success:       res.Success,
		Fallback:      res.Meta.Fallback,
		ContentLength: res.Meta.ContentLength,
		DurationMS:    duration.Milliseconds(),
		Error:         res.Meta.Error,
		CreatedAt:     time.Now().UTC(),
	})

	if res.Success {
		o.storeResult(ctx, req, res)
	}
	return res, nil
}

// selectClient picks the dedicated client when it is configured and passes
// its availability probe, otherwise the generic chat fallback.
func (o *Orchestrator) selectClient(ctx context.Context, p Provider) (Client, error) {
	ded, hasDedicated := o.dedicated[p]
	fb, hasFallback := o.fallback[p]

	if !hasDedicated && !hasFallback {
		return nil, &ConfigError{Provider: p}
	}

	if hasDedicated {
		if ded.Available(ctx) {
			return ded, nil
		}
		logging.S().Warnw("dedicated client unavailable, using chat fallback", "provider", p)
	}
	if hasFallback {
		return fb, nil
	}
	return ded, nil
}

// Usage returns per-provider usage statistics for diagnostics.
func (o *Orchestrator) Usage() map[Provider]*ProviderUsage {
	usage := make(map[Provider]*ProviderUsage)
	for p, c := range o.dedicated {
		usage[p] = c.Usage()
	}
	return usage
}

// Text-only results are memoized; multimodal requests are never cached
// since image payloads make poor keys and re-generation is expected.
func (o *Orchestrator) cachedResult(ctx context.Context, req *Request) (*Result, bool) {
	if o.cache == nil || req.Multimodal() {
		return nil, false
	}
	buf, ok := o.cache.Get(ctx, o.cacheKey(req))
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(buf, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (o *Orchestrator) storeResult(ctx context.Context, req *Request, res *Result) {
	if o.cache == nil || req.Multimodal() {
		return
	}
	buf, err := json.Marshal(res)
	if err != nil {
		return
	}
	o.cache.Set(ctx, o.cacheKey(req), buf, cacheTTL)
}

func (o *Orchestrator) cacheKey(req *Request) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%t|%s", req.Provider, req.Model, req.FastPath, req.Prompt())))
	return "gen:" + hex.EncodeToString(h[:])
}
