package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GeminiClient is the dedicated Gemini REST client. It speaks the native
// generateContent API, supplies images as inline base64 parts, and applies
// the pro/flash pair fallback on transient failures.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limits     Limits
	usageTracker
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float32               `json:"temperature,omitempty"`
	MaxOutputTokens int                   `json:"maxOutputTokens,omitempty"`
	ThinkingConfig  *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
			Role string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiClient creates the dedicated Gemini client.
func NewGeminiClient(apiKey string, limits Limits) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		limits:       limits,
		usageTracker: newUsageTracker(ProviderGemini),
	}
}

// Provider returns the provider identifier.
func (g *GeminiClient) Provider() Provider {
	return ProviderGemini
}

// Generate performs one generation call with the single pair fallback.
func (g *GeminiClient) Generate(ctx context.Context, req *Request) *Result {
	model := req.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}
	return generateWithPairFallback(ctx, model, func(ctx context.Context, model string) *Result {
		return g.attempt(ctx, req, model)
	})
}

func (g *GeminiClient) attempt(ctx context.Context, req *Request, model string) *Result {
	start := time.Now()

	parts := []geminiPart{{Text: req.Prompt()}}
	if req.Multimodal() {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: req.ImageType,
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}})
	}

	genConfig := &geminiGenConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	// A zero thinking budget makes the pro model return empty output, so the
	// fast path only applies to models known to support it.
	if req.FastPath && fastPathModels[model] {
		genConfig.ThinkingConfig = &geminiThinkingConfig{ThinkingBudget: 0}
	}

	geminiReq := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: genConfig,
	}

	result := &Result{Meta: Meta{Model: model, Provider: string(ProviderGemini)}}

	resp, err := g.makeRequest(ctx, model, geminiReq)
	if err != nil {
		g.recordError()
		result.Meta.Error = err.Error()
		result.Meta.ExecutionSeconds = time.Since(start).Seconds()
		return result
	}

	g.record(resp.UsageMetadata.TotalTokenCount, time.Since(start))

	result.Content = extractGeminiText(resp)
	result.Meta.PromptTokens = resp.UsageMetadata.PromptTokenCount
	result.Meta.CompletionTokens = resp.UsageMetadata.CandidatesTokenCount
	result.Meta.TotalTokens = resp.UsageMetadata.TotalTokenCount
	result.Meta.ExecutionSeconds = time.Since(start).Seconds()

	return validate(result, g.limits.Min(req.Multimodal()))
}

// extractGeminiText walks the candidate/part structure and concatenates
// every non-empty text fragment. Empty responses yield "" rather than nil.
func extractGeminiText(resp *geminiResponse) string {
	var buf bytes.Buffer
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				buf.WriteString(part.Text)
			}
		}
	}
	return buf.String()
}

func (g *GeminiClient) makeRequest(ctx context.Context, model string, req *geminiRequest) (*geminiResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case 429:
			return nil, fmt.Errorf("RATE_LIMIT: Gemini API rate limit exceeded")
		case 403:
			if bytes.Contains(body, []byte("quota")) || bytes.Contains(body, []byte("QUOTA")) {
				return nil, fmt.Errorf("QUOTA_EXCEEDED: Gemini API quota exhausted")
			}
			return nil, fmt.Errorf("FORBIDDEN: Gemini API access denied - check API key permissions")
		case 401:
			return nil, fmt.Errorf("UNAUTHORIZED: Invalid Gemini API key")
		case 500, 502, 503, 504:
			return nil, fmt.Errorf("SERVICE_ERROR: Gemini service temporarily unavailable (status %d)", resp.StatusCode)
		default:
			return nil, fmt.Errorf("API_ERROR: Gemini request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if geminiResp.Error != nil {
		return nil, fmt.Errorf("SERVICE_ERROR: %s", geminiResp.Error.Message)
	}
	return &geminiResp, nil
}

// Available issues a minimal live generation and reports reachability.
func (g *GeminiClient) Available(ctx context.Context) bool {
	testReq := &geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: "Hello"}}},
		},
		GenerationConfig: &geminiGenConfig{MaxOutputTokens: 5},
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := g.makeRequest(ctx, "gemini-2.5-flash", testReq)
	return err == nil
}
