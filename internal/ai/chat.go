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

// ChatClient is the generic fallback client. It speaks the OpenAI-compatible
// chat-completions wire format against any configured base URL, which both
// OpenAI itself and Gemini's compatibility endpoint accept, so one
// implementation covers every provider when the dedicated client is
// unavailable. Images travel as data-URI image parts in a multi-part
// message.
type ChatClient struct {
	provider   Provider
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limits     Limits
	usageTracker
}

// NewChatClient creates a generic chat client for the given provider.
func NewChatClient(provider Provider, apiKey, baseURL string, limits Limits) *ChatClient {
	return &ChatClient{
		provider: provider,
		apiKey:   apiKey,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		limits:       limits,
		usageTracker: newUsageTracker(provider),
	}
}

// Provider returns the provider this client fronts.
func (c *ChatClient) Provider() Provider {
	return c.provider
}

// Generate performs one generation call. Gemini model families keep their
// pair fallback on this path too: the fallback edge belongs to the model
// family, not to the transport used to reach it.
func (c *ChatClient) Generate(ctx context.Context, req *Request) *Result {
	model := req.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}
	return generateWithPairFallback(ctx, model, func(ctx context.Context, model string) *Result {
		return c.attempt(ctx, req, model)
	})
}

func (c *ChatClient) attempt(ctx context.Context, req *Request, model string) *Result {
	start := time.Now()

	messages := []openAIMessage{
		{Role: "system", Content: req.SystemPrompt},
	}
	if req.Multimodal() {
		dataURI := fmt.Sprintf("data:%s;base64,%s", req.ImageType, base64.StdEncoding.EncodeToString(req.Image))
		messages = append(messages, openAIMessage{
			Role: "user",
			Content: []openAIContentPart{
				{Type: "text", Text: req.UserPrompt},
				{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURI}},
			},
		})
	} else {
		messages = append(messages, openAIMessage{Role: "user", Content: req.UserPrompt})
	}

	result := &Result{Meta: Meta{Model: model, Provider: string(c.provider)}}

	resp, err := c.makeRequest(ctx, &openAIRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		c.recordError()
		result.Meta.Error = err.Error()
		result.Meta.ExecutionSeconds = time.Since(start).Seconds()
		return result
	}

	c.record(resp.Usage.TotalTokens, time.Since(start))

	if len(resp.Choices) > 0 {
		result.Content = resp.Choices[0].Message.Content
	}
	result.Meta.PromptTokens = resp.Usage.PromptTokens
	result.Meta.CompletionTokens = resp.Usage.CompletionTokens
	result.Meta.TotalTokens = resp.Usage.TotalTokens
	result.Meta.ExecutionSeconds = time.Since(start).Seconds()

	return validate(result, c.limits.Min(req.Multimodal()))
}

func (c *ChatClient) makeRequest(ctx context.Context, req *openAIRequest) (*openAIResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
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
			return nil, fmt.Errorf("RATE_LIMIT: %s chat endpoint rate limit exceeded", c.provider)
		case 401:
			return nil, fmt.Errorf("UNAUTHORIZED: invalid %s API key", c.provider)
		case 500, 502, 503, 504:
			return nil, fmt.Errorf("SERVICE_ERROR: %s chat endpoint temporarily unavailable (status %d)", c.provider, resp.StatusCode)
		default:
			return nil, fmt.Errorf("API_ERROR: %s chat request failed with status %d: %s", c.provider, resp.StatusCode, string(body))
		}
	}

	var chatResp openAIResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("SERVICE_ERROR: %s", chatResp.Error.Message)
	}
	return &chatResp, nil
}

// Available reports reachability of the chat endpoint.
func (c *ChatClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	model := "gpt-4o-mini"
	if c.provider == ProviderGemini {
		model = "gemini-2.5-flash"
	}
	_, err := c.makeRequest(ctx, &openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: 5,
	})
	return err == nil
}
